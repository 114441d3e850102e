package cli

import (
	"testing"
)

func TestParseData(t *testing.T) {
	got, err := parseData([]string{"count=3", "ratio=0.5", "ok=true", "label=hero", "empty=", "eq=a=b"})
	if err != nil {
		t.Fatalf("parseData failed: %v", err)
	}

	want := map[string]any{
		"count": int64(3),
		"ratio": 0.5,
		"ok":    true,
		"label": "hero",
		"empty": "",
		"eq":    "a=b",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %#v, want %#v", k, got[k], v)
		}
	}
}

func TestParseData_Empty(t *testing.T) {
	got, err := parseData(nil)
	if err != nil || got != nil {
		t.Errorf("parseData(nil) = %v, %v", got, err)
	}
}

func TestParseData_Invalid(t *testing.T) {
	for _, in := range []string{"novalue", "=3"} {
		if _, err := parseData([]string{in}); err == nil {
			t.Errorf("parseData(%q) should fail", in)
		}
	}
}
