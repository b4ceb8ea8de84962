package service

import (
	"context"
	"fmt"
	"net/url"

	"crt_bot/internal/models"
)

type accountRow struct {
	Login    int64   `json:"login"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency"`
}

// AccountSnapshot — баланс/эквити. Зовётся раз в цикл для сайзинга и
// один раз на старте: если счёта нет — процесс не поднимаем.
func (c *Client) AccountSnapshot(ctx context.Context) (models.AccountSnapshot, error) {
	var row accountRow
	if err := c.get(ctx, "/api/v1/account", nil, &row); err != nil {
		return models.AccountSnapshot{}, err
	}
	if row.Balance <= 0 && row.Equity <= 0 {
		return models.AccountSnapshot{}, fmt.Errorf("account snapshot пустой: login=%d", row.Login)
	}
	return models.AccountSnapshot{
		Login:    row.Login,
		Name:     row.Name,
		Balance:  row.Balance,
		Equity:   row.Equity,
		Currency: row.Currency,
	}, nil
}

type symbolRow struct {
	Symbol          string  `json:"symbol"`
	MinStopDistance float64 `json:"min_stop_distance"` // в ценовых единицах
	ContractSize    float64 `json:"contract_size"`
	MinLot          float64 `json:"min_lot"`
	LotStep         float64 `json:"lot_step"`
	Digits          int     `json:"digits"`
}

// SymbolConstraints — брокерские лимиты символа.
func (c *Client) SymbolConstraints(ctx context.Context, symbol string) (models.SymbolConstraints, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var row symbolRow
	if err := c.get(ctx, "/api/v1/symbol", q, &row); err != nil {
		return models.SymbolConstraints{}, err
	}

	sc := models.SymbolConstraints{
		MinStopDistance: row.MinStopDistance,
		ContractSize:    row.ContractSize,
		MinLot:          row.MinLot,
		LotStep:         row.LotStep,
		Digits:          row.Digits,
	}
	// страховки от кривого моста
	if sc.ContractSize <= 0 {
		sc.ContractSize = 100 // золото: 100 унций на лот
	}
	if sc.MinLot <= 0 {
		sc.MinLot = 0.01
	}
	if sc.LotStep <= 0 {
		sc.LotStep = 0.01
	}
	return sc, nil
}
