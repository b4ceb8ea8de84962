package engine

import (
	"context"

	"crt_bot/internal/journal"
	"crt_bot/internal/models"
	"crt_bot/internal/modules/config"
	mt5 "crt_bot/internal/modules/mt5_bridge/service"
	news "crt_bot/internal/modules/news/service"
	"crt_bot/pkg/db"
	"crt_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			// мост закрывает сразу три порта движка
			func(c *mt5.Client) MarketData { return c },
			func(c *mt5.Client) Execution { return c },
			func(c *mt5.Client) AccountSource { return c },
			func(f *news.Filter) NewsFilter { return f },

			func(tx *db.PgTxManager) *journal.Store {
				return journal.NewStore(tx)
			},
			func(s *journal.Store) Journal { return s },

			func(cfg *config.Config, nf NewsFilter) *Gate {
				return NewGate(GateConfig{
					MaxTradesPerDay: cfg.MaxTradesPerDay,
					SessionHours:    cfg.SessionHours,
					MinRR:           cfg.MinRR,
					NewsCooldown:    cfg.NewsCooldown,
				}, nf)
			},
			func(cfg *config.Config, exec Execution, j Journal, n Notifier) *Lifecycle {
				return NewLifecycle(exec, j, n, cfg.Symbol, models.TPMode(cfg.TPMode))
			},
			NewEngine,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, e *Engine, s *journal.Store, ctx context.Context) {
				lc.Append(fx.Hook{
					OnStart: func(startCtx context.Context) error {
						if err := s.Migrate(startCtx); err != nil {
							return err
						}
						go func() {
							if err := e.Run(ctx); err != nil {
								logger.Fatal("engine: %v", err)
							}
						}()
						return nil
					},
				})
			},
		),
	)
}
