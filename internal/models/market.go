package models

// SymbolConstraints — ограничения брокера по символу.
type SymbolConstraints struct {
	MinStopDistance float64 // минимальная дистанция SL от цены
	ContractSize    float64 // размер контракта (100 унций для золота)
	MinLot          float64
	LotStep         float64
	Digits          int
}

// AccountSnapshot — баланс/эквити на начало цикла.
type AccountSnapshot struct {
	Login    int64
	Name     string
	Balance  float64
	Equity   float64
	Currency string
}
