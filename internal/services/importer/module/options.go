package module

import (
	"time"

	"comicvault/internal/adapters/marvel"
	"comicvault/internal/platform/config"
)

// Options holds importer and upstream client settings
type Options struct {
	PageSize    int
	Delay       time.Duration
	PageTimeout time.Duration
	Concurrent  bool
	MaxRetries  int
	RetryBase   time.Duration
	Types       []string

	// StatementTimeout bounds each statement of a page write; 0 disables it
	StatementTimeout time.Duration

	Marvel marvel.Options
}

// FromConfig reads CORE_IMPORT_* and CORE_MARVEL_*
func FromConfig(cfg config.Conf) Options {
	im := cfg.Prefix("CORE_IMPORT_")
	mv := cfg.Prefix("CORE_MARVEL_")
	return Options{
		PageSize:    im.MayInt("PAGE_SIZE", 100),
		Delay:       im.MayDuration("DELAY", time.Second),
		PageTimeout: im.MayDuration("PAGE_TIMEOUT", 2*time.Minute),
		Concurrent:  im.MayBool("CONCURRENT", false),
		MaxRetries:  im.MayInt("RETRIES", 2),
		RetryBase:   im.MayDuration("RETRY_BASE", time.Second),
		Types:       im.MayCSV("TYPES", nil),

		StatementTimeout: im.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
		Marvel: marvel.Options{
			BaseURL:    mv.MayString("BASE_URL", ""),
			PublicKey:  mv.MustString("PUBLIC_KEY"),
			PrivateKey: mv.MustString("PRIVATE_KEY"),
			Timeout:    mv.MayDuration("TIMEOUT", 15*time.Second),
			MaxRetries: mv.MayInt("RETRIES", 4),
			RetryBase:  mv.MayDuration("RETRY_BASE", 500*time.Millisecond),
			RPS:        mv.MayFloat64("RPS", 2),
		},
	}
}
