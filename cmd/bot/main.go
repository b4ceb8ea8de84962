package main

import (
	"context"
	"log"

	"crt_bot/internal/engine"
	"crt_bot/internal/modules/config"
	mt5 "crt_bot/internal/modules/mt5_bridge"
	"crt_bot/internal/modules/news"
	"crt_bot/internal/modules/postgres"
	telegram "crt_bot/internal/modules/telegram_bot"
	"crt_bot/pkg/logger"
	"crt_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Provide(
			// ctx гаснет на остановке приложения: цикл выходит на границе,
			// не посреди выставления ордера
			func(lc fx.Lifecycle) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						cancel()
						return nil
					},
				})
				return ctx
			},
		),
		config.Module(),
		postgres.Module(),
		mt5.Module(),
		news.Module(),
		telegram.Module(),
		engine.Module(),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config) {
				if cfg.Tracing.Host == "" {
					return
				}
				_, closeTracer, err := tracing.InitTracer(tracing.Config{
					Host: cfg.Tracing.Host,
					Port: cfg.Tracing.Port,
				})
				if err != nil {
					logger.Error("tracer init: %v", err)
					return
				}
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						closeTracer()
						return nil
					},
				})
			},
		),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
	_ = app.Stop(context.Background())
}
