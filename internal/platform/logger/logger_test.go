package logger

import (
	"bytes"
	"context"
	"testing"

	kit "comicvault/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" warn ":   zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.InfoLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitNamedAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "json",
		Service:      "comicvault-test",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "test"},
	})

	Named("importer").Info().Msg("named-msg")

	ctx := WithRun(WithRequest(context.Background(), "req-1"), "run-9")
	C(ctx).Info().Msg("ctx-msg")
	C(context.Background()).Info().Msg("bare-msg")

	out := buf.String()
	for _, want := range []string{
		`"named-msg"`, `"component":"importer"`, `"request_id":"req-1"`,
		`"run_id":"run-9"`, `"service":"comicvault-test"`, `"build":"test"`, `"bare-msg"`,
	} {
		kit.MustContain(t, out, want)
	}
	if got := RunID(ctx); got != "run-9" {
		t.Fatalf("RunID = %q, want run-9", got)
	}
	if WithRun(ctx, "") != ctx {
		t.Fatalf("WithRun with empty id should return ctx unchanged")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "comicvault-sync")
	t.Setenv("LOG_CALLER", "1")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "comicvault-sync" || !opt.WithCaller {
		t.Fatalf("FromEnv = %+v", opt)
	}
}
