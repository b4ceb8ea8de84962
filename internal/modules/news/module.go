package news

import (
	"crt_bot/internal/modules/news/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("news",
		fx.Provide(
			service.NewFilter,
		),
	)
}
