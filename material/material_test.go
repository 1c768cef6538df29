package material

import "testing"

func TestParseAlphaMode(t *testing.T) {
	cases := map[string]AlphaMode{
		"Opaque":  Opaque,
		"MASK":    Mask,
		"blend":   Blend,
		"Blend":   Blend,
		"":        Opaque,
		"unknown": Opaque,
	}
	for in, want := range cases {
		if got := parseAlphaMode(in); got != want {
			t.Errorf("parseAlphaMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAlphaModeString(t *testing.T) {
	if Opaque.String() != "Opaque" || Mask.String() != "Mask" || Blend.String() != "Blend" {
		t.Fatalf("unexpected AlphaMode.String() outputs")
	}
}
