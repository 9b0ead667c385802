package store

import (
	"time"

	"comicvault/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
	ES  ESConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string // role reported in client info, e.g. "sync"
	ClientTag  string // release tag reported in client info
}

// RedisConfig configures the query cache
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ESConfig configures the search cluster
type ESConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
}

// ConfigFromEnv reads SERVICE_PGSQL_, SERVICE_CLICKHOUSE_, SERVICE_REDIS_ and
// SERVICE_ELASTIC_ keys; a backend is enabled when its address is set
func ConfigFromEnv(root config.Conf, appName string) Config {
	pgc := root.Prefix("SERVICE_PGSQL_")
	chc := root.Prefix("SERVICE_CLICKHOUSE_")
	rdc := root.Prefix("SERVICE_REDIS_")
	esc := root.Prefix("SERVICE_ELASTIC_")

	cfg := Config{
		AppName: appName,
		PG: PGConfig{
			URL:            pgc.MayString("DBURL", ""),
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 8)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 250),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			URL:        chc.MayString("DBURL", ""),
			ClientName: appName,
			ClientTag:  chc.MayString("CLIENT_TAG", "dev"),
		},
		RDS: RedisConfig{
			Addr:     rdc.MayString("ADDR", ""),
			Password: rdc.MayString("PASSWORD", ""),
			DB:       rdc.MayInt("DB", 0),
		},
		ES: ESConfig{
			Addresses: esc.MayCSV("URLS", nil),
			Username:  esc.MayString("USERNAME", ""),
			Password:  esc.MayString("PASSWORD", ""),
		},
	}
	cfg.PG.Enabled = cfg.PG.URL != ""
	cfg.CH.Enabled = cfg.CH.URL != ""
	cfg.RDS.Enabled = cfg.RDS.Addr != ""
	cfg.ES.Enabled = len(cfg.ES.Addresses) > 0
	return cfg
}
