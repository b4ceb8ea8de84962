package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crt_bot/internal/journal"
	"crt_bot/pkg/db"
	"crt_bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// journalctl — выгрузка журнала сделок в CSV. Конфиг — .journalctl.yaml
// в рабочей директории, DSN можно переопределить через DATABASE_DSN.
func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}

	viper.SetConfigName(".journalctl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("out", "trade_journal.csv")
	viper.SetDefault("since", "")
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	dsn := viper.GetString("db_dsn")
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		dsn = v
	}
	if dsn == "" {
		panic("has no db_dsn in config")
	}

	filter := journal.ListFilter{
		Symbol: viper.GetString("symbol"),
		Status: viper.GetString("status"),
	}
	if raw := viper.GetString("since"); raw != "" {
		since, err := time.Parse("2006-01-02", raw)
		if err != nil {
			panic(fmt.Errorf("bad since %q: %w", raw, err))
		}
		filter.Since = since
	}

	if err := run(dsn, filter, viper.GetString("out")); err != nil {
		panic(err)
	}
	fmt.Println("done")
}

func run(dsn string, filter journal.ListFilter, outPath string) error {
	ctx := context.Background()

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	manager := db.NewPgTxManager(pool)
	defer manager.Close()

	store := journal.NewStore(manager)
	recs, err := store.List(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "list journal")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create out file")
	}
	defer func() {
		_ = out.Close()
	}()

	if err := journal.WriteCSV(out, recs); err != nil {
		return errors.Wrap(err, "write csv")
	}

	fmt.Printf("%d records -> %s\n", len(recs), outPath)
	return nil
}
