package models

import "time"

// TradeStatus в журнале.
const (
	TradeStatusOpen      = "OPEN"
	TradeStatusClosed    = "CLOSED"
	TradeStatusBreakeven = "BREAKEVEN"
)

// TradeRecord — строка журнала сделок. Набор полей — тот же, что вёлся
// в старом Excel-журнале, один в один по колонкам.
type TradeRecord struct {
	Ticket     int64
	At         time.Time
	Symbol     string
	Direction  Direction
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Lot        float64
	RR1        float64
	RR2        float64
	Status     string
	ExitPrice  float64
	Profit     float64
	Comment    string
}
