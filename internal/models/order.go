package models

// TPMode — куда ставим тейк.
type TPMode string

const (
	TPModeMid  TPMode = "mid"  // один ордер, TP = середина диапазона
	TPModeFull TPMode = "full" // один ордер, TP = дальняя граница
	TPModeBoth TPMode = "both" // два пол-ордера: TP1 и TP2
)

// OrderRequest — рыночный ордер для моста.
type OrderRequest struct {
	Symbol     string
	Direction  Direction
	Volume     float64
	StopLoss   float64
	TakeProfit float64
	Tag        string // различаем ноги TP1/TP2
}

// OrderResult — ответ моста на выставление.
type OrderResult struct {
	Ticket int64
	Price  float64 // фактическая цена исполнения, если мост уточнил
}

// PositionStatus — состояние позиции по тикету.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// Position — открытая нога. Две на вход в режиме both.
type Position struct {
	Ticket     int64
	Direction  Direction
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Volume     float64
	Status     PositionStatus
}
