package engine

import (
	"context"

	"crt_bot/internal/models"
)

// MarketData — котировки и ограничения символа. В проде — MT5-мост.
type MarketData interface {
	Candles(ctx context.Context, symbol string, timeframe models.Timeframe, count, offset int) ([]models.Candle, error)
	CurrentTick(ctx context.Context, symbol string) (models.Tick, error)
	SymbolConstraints(ctx context.Context, symbol string) (models.SymbolConstraints, error)
}

// Execution — исполнение ордеров у брокера.
type Execution interface {
	SubmitMarketOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error)
	ModifyStop(ctx context.Context, ticket int64, newStop float64) error
	PositionStatus(ctx context.Context, ticket int64) (models.PositionStatus, error)
}

// AccountSource — снимок счёта раз в цикл.
type AccountSource interface {
	AccountSnapshot(ctx context.Context) (models.AccountSnapshot, error)
}

// NewsFilter — "сейчас торговать нельзя".
type NewsFilter interface {
	IsBlocked(ctx context.Context) bool
}

// Journal — журнал сделок.
type Journal interface {
	Open(ctx context.Context, rec models.TradeRecord) error
	Event(ctx context.Context, ticket int64, status string, comment string) error
}

// Notifier — события в телеграм. Реализация может быть выключена.
type Notifier interface {
	Send(ctx context.Context, msg string)
	SendF(ctx context.Context, format string, args ...any)
}
