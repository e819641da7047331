package cmd

import "testing"

func TestParseQuantities(t *testing.T) {
	got, err := parseQuantities([]string{"alv=12", "pint= 40,5"})
	if err != nil {
		t.Fatalf("parseQuantities: %v", err)
	}
	if got["alv"] != 12 || got["pint"] != 40.5 {
		t.Fatalf("parseQuantities = %v, want alv=12 pint=40.5", got)
	}

	for _, bad := range []string{"alv", "=3", "alv=x", "alv=NaN", "alv=Inf", "alv=-inf"} {
		if _, err := parseQuantities([]string{bad}); err == nil {
			t.Errorf("parseQuantities(%q) succeeded, want error", bad)
		}
	}
}
