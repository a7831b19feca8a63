package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/wavetradeapp/wave_trader/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var db *bun.DB
var once sync.Once

// Enabled reports whether a postgres host is configured. Trade history
// recording is skipped when it is not.
func Enabled() bool {
	return config.GetPostgresqlConfig().Host != ""
}

// GetDB get postgressql db instance by sync.Once
func GetDB() *bun.DB {
	once.Do(func() {
		cfg := config.GetPostgresqlConfig()
		if cfg.Host == "" {
			return
		}

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&connect_timeout=10", cfg.Account, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithConnParams(map[string]interface{}{
			"search_path": cfg.SchemaName,
		})))

		sqldb.SetMaxOpenConns(10)
		sqldb.SetMaxIdleConns(5)
		sqldb.SetConnMaxLifetime(time.Hour)

		db = bun.NewDB(sqldb, pgdialect.New())
	})
	return db
}
