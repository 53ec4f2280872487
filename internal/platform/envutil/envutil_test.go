package envutil

import "testing"

func TestString(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_S", "  value  ")
	if got := String("ENVUTIL_TEST_S", "def"); got != "value" {
		t.Fatalf("String = %q", got)
	}
	if got := String("ENVUTIL_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("String default = %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_I", "42")
	if got := Int("ENVUTIL_TEST_I", 7); got != 42 {
		t.Fatalf("Int = %d", got)
	}
	t.Setenv("ENVUTIL_TEST_I", "not-a-number")
	if got := Int("ENVUTIL_TEST_I", 7); got != 7 {
		t.Fatalf("Int fallback = %d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"0": false, "false": false, "no": false, "off": false,
	}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_TEST_B", raw)
		if got := Bool("ENVUTIL_TEST_B", !want); got != want {
			t.Fatalf("Bool(%q) = %v, want %v", raw, got, want)
		}
	}
	t.Setenv("ENVUTIL_TEST_B", "maybe")
	if got := Bool("ENVUTIL_TEST_B", true); got != true {
		t.Fatalf("Bool unparseable should fall back to default")
	}
}
