package theme

import "testing"

func TestParse(t *testing.T) {
	for _, n := range Names {
		got, err := Parse(string(n))
		if err != nil || got != n {
			t.Errorf("Parse(%q) = %q, %v", n, got, err)
		}
	}
	if got, err := Parse(""); err != nil || got != Black {
		t.Errorf("Parse(\"\") = %q, %v; want black", got, err)
	}
	if got, err := Parse(" Dark "); err != nil || got != Dark {
		t.Errorf("Parse(\" Dark \") = %q, %v", got, err)
	}
	if _, err := Parse("neon"); err == nil {
		t.Errorf("Parse(neon) should fail")
	}
}

func TestLookup(t *testing.T) {
	if got := Lookup(Blue).Background; got != "#0E1B3D" {
		t.Errorf("blue background = %q", got)
	}
	if !Lookup(Graffiti).Animated {
		t.Errorf("graffiti should be animated")
	}
	if got := Lookup("unknown"); got != Lookup(Default) {
		t.Errorf("unknown theme = %+v, want default", got)
	}
}
