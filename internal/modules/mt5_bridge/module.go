package mt5_bridge

import (
	"context"

	"crt_bot/internal/modules/config"
	"crt_bot/internal/modules/mt5_bridge/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("mt5_bridge",
		fx.Provide(
			service.NewClient,
		),
		// WS-стрим тиков живёт весь аптайм приложения
		fx.Invoke(
			func(lc fx.Lifecycle, c *service.Client, cfg *config.Config, ctx context.Context) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						go c.StreamTicks(ctx, cfg.Symbol)
						return nil
					},
				})
			},
		),
	)
}
