package theme

import "testing"

func TestByName_FallsBackToDefault(t *testing.T) {
	if got := ByName("flexoki-light").Name; got != "flexoki-light" {
		t.Fatalf("ByName(flexoki-light) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestClassColor(t *testing.T) {
	th := FlexokiDark
	if th.ClassColor("A") != th.Red || th.ClassColor("B") != th.Yellow || th.ClassColor("C") != th.Green {
		t.Fatal("class colors do not follow A=red, B=yellow, C=green")
	}
}
