package operator

import "testing"

func TestParseButton(t *testing.T) {
	for _, s := range []string{"left", "middle", "right"} {
		b, err := ParseButton(s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
		if string(b) != s {
			t.Fatalf("%s: parsed to %s", s, b)
		}
	}
	if _, err := ParseButton("fourth"); err == nil {
		t.Fatal("expected error for unknown button")
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"press", "release", "click"} {
		if _, err := ParseDirection(s); err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
	}
	if _, err := ParseDirection("hold"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestParseSystemCommand(t *testing.T) {
	for _, s := range []string{"copy", "paste", "cut", "undo", "save", "select_all"} {
		if _, err := ParseSystemCommand(s); err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
	}
	if _, err := ParseSystemCommand("redo"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestParseKey_Aliases(t *testing.T) {
	cases := map[string]Key{
		"return":  "Return",
		"Enter":   "Return",
		"ctrl":    "Control",
		"CONTROL": "Control",
		"cmd":     "Meta",
		"command": "Meta",
		"option":  "Alt",
		"esc":     "Escape",
		"uparrow": "Up",
		"down":    "Down",
	}
	for in, want := range cases {
		got, err := ParseKey(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestParseKey_SingleCharacter(t *testing.T) {
	for _, s := range []string{"a", "Z", "7", "é"} {
		got, err := ParseKey(s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Fatalf("%s: expected identity, got %s", s, got)
		}
	}
}

func TestParseKey_Unknown(t *testing.T) {
	for _, s := range []string{"", "superkey", "f13"} {
		if _, err := ParseKey(s); err == nil {
			t.Fatalf("%q: expected error", s)
		}
	}
}

func TestPlatformOperator_Unavailable(t *testing.T) {
	op := Platform()
	if err := op.MouseMove(1, 2); err == nil {
		t.Fatal("expected injection to be unavailable")
	}
	if err := op.TypeText("hello"); err == nil {
		t.Fatal("expected injection to be unavailable")
	}
	if _, _, err := op.MousePosition(); err == nil {
		t.Fatal("expected injection to be unavailable")
	}
}
