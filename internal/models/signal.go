package models

// Direction — сторона сделки. Пустая строка = сигнала нет.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionLong  Direction = "BUY"
	DirectionShort Direction = "SELL"
)

// SweepTieBreak — что делать, когда sweep-свеча пробила И хай И лоу
// диапазона одновременно. Исторически разруливалось в SHORT.
type SweepTieBreak string

const (
	TieBreakShort SweepTieBreak = "short"
	TieBreakLong  SweepTieBreak = "long"
)

// RangeWindow — референсный диапазон, который тестируем на sweep.
type RangeWindow struct {
	High   float64
	Low    float64
	Source Candle
}

// Mid — середина диапазона (TP1).
func (r RangeWindow) Mid() float64 { return (r.High + r.Low) / 2 }

// Signal — результат детектора за цикл.
type Signal struct {
	Direction Direction
	Range     RangeWindow
	Reason    string
}

// OrderBlock — последняя свеча противоположного цвета на младшем ТФ,
// ожидаемая зона реакции.
type OrderBlock struct {
	Anchor    Candle
	Direction Direction
}

// EntrySignal — цена вернулась в ордер-блок (или закрылась обратно
// внутри диапазона). Живёт один цикл.
type EntrySignal struct {
	Trigger   Candle
	Direction Direction
	Reason    string
}
