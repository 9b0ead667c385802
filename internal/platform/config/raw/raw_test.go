package raw

import "testing"

func TestRawGetters(t *testing.T) {
	t.Setenv("LOG_LEVEL", " info ")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "5")
	t.Setenv("LOG_BAD_INT", "-3")

	rc := New().Prefix("LOG_")
	cases := []struct {
		name string
		got  any
		want any
	}{
		{"get", rc.Get("LEVEL", "debug"), "info"},
		{"get default", rc.Get("FORMAT", "console"), "console"},
		{"bool yes", rc.GetBool("CALLER", false), true},
		{"bool default", rc.GetBool("MISSING", true), true},
		{"int", rc.GetInt("SAMPLE_EVERY", 0), 5},
		{"int negative", rc.GetInt("BAD_INT", 7), 7},
		{"int missing", rc.GetInt("MISSING", 2), 2},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}
