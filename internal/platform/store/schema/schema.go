// Package schema ships the catalog DDL and applies it statement by statement
package schema

import (
	"context"
	_ "embed"
	"strings"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store"
)

//go:embed schema.sql
var ddl string

// SQL returns the raw DDL
func SQL() string { return ddl }

// Statements splits the DDL on statement terminators, dropping comments and blanks
func Statements() []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// Apply runs every statement in one transaction
func Apply(ctx context.Context, db store.TxRunner) error {
	return db.Tx(ctx, func(q store.RowQuerier) error {
		for i, stmt := range Statements() {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return perr.FromPostgresf(err, "schema: statement %d", i+1)
			}
		}
		return nil
	})
}
