package models

// RiskPlan — уровни и размер под конкретный вход. Считается заново
// на каждый EntrySignal.
type RiskPlan struct {
	Entry       float64
	StopLoss    float64
	TakeProfit1 float64 // середина диапазона
	TakeProfit2 float64 // дальняя граница
	RR1         float64
	RR2         float64
	Lot         float64 // полный размер
	LegLot      float64 // размер одной ноги в режиме both
}

// BestRR — лучший из двух R:R, по нему фильтрует гейт.
func (p RiskPlan) BestRR() float64 {
	if p.RR1 > p.RR2 {
		return p.RR1
	}
	return p.RR2
}
