package telegram

import (
	"crt_bot/internal/engine"
	"crt_bot/internal/modules/telegram_bot/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram,
		),
		// Адаптер: *service.Telegram -> engine.Notifier
		fx.Provide(
			func(t *service.Telegram) engine.Notifier {
				return t
			},
		),
	)
}
