package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDivideOrZero(t *testing.T) {
	assert.True(t, DivideOrZero(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.Equal(t, "2.5", DivideOrZero(decimal.NewFromInt(5), decimal.NewFromInt(2)).String())
}

func TestShareIsExact(t *testing.T) {
	got := Share(decimal.NewFromInt(9200), decimal.NewFromInt(10000))
	assert.Equal(t, 92.0, F(got))
}

func TestMarkup(t *testing.T) {
	got := Markup(D(130), 20)
	assert.Equal(t, 156.0, F(got))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125))
	assert.Equal(t, 0.1, Round2(0.1))
}
