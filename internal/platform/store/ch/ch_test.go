package ch

import (
	"context"
	"testing"
)

func TestBuildClientInfo(t *testing.T) {
	info := BuildClientInfo(" sync ", "v1.2.0")
	if len(info.Products) != 5 {
		t.Fatalf("products = %d, want 5", len(info.Products))
	}
	if info.Products[0].Name != "comicvault" || info.Products[0].Version != "v1.2.0" {
		t.Fatalf("first product = %+v", info.Products[0])
	}
	if info.Products[1].Version != "sync" {
		t.Fatalf("role not trimmed: %q", info.Products[1].Version)
	}
}

func TestOpenBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("pipeline`_runs"); got != "`pipeline_runs`" {
		t.Fatalf("quoteIdent = %q", got)
	}
}
