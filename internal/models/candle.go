package models

import "time"

// Candle — закрытая OHLC-свеча. Время открытия — брокерское (UTC у Exness).
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
}

// Bearish — медвежья свеча (закрытие ниже открытия).
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Bullish — бычья свеча.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Timeframe в нотации MT5-моста.
type Timeframe string

const (
	TimeframeM5 Timeframe = "M5"
	TimeframeH1 Timeframe = "H1"
)

// Tick — последний bid/ask по символу. Time — время биржевого сервера,
// по нему считаем брокерский день и сессионные часы.
type Tick struct {
	Bid  float64
	Ask  float64
	Time time.Time
}
