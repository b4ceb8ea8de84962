package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"crt_bot/internal/models"
)

// Параметры, с которыми исторически торговался XAUUSD.
const (
	orderDeviation = 20
	orderMagic     = 123456
)

type orderResultRow struct {
	Ticket int64   `json:"ticket"`
	Price  float64 `json:"price"`
}

// SubmitMarketOrder — рыночный ордер с SL/TP в одном запросе.
// Неуспех моста приходит кодом в конверте и превращается в ошибку.
func (c *Client) SubmitMarketOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error) {
	if req.Volume <= 0 {
		return models.OrderResult{}, fmt.Errorf("SubmitMarketOrder: volume <= 0")
	}
	if req.Direction != models.DirectionLong && req.Direction != models.DirectionShort {
		return models.OrderResult{}, fmt.Errorf("SubmitMarketOrder: unsupported direction %q", req.Direction)
	}

	body := map[string]interface{}{
		"symbol":    req.Symbol,
		"type":      string(req.Direction),
		"volume":    req.Volume,
		"sl":        req.StopLoss,
		"tp":        req.TakeProfit,
		"deviation": orderDeviation,
		"magic":     orderMagic,
		"comment":   req.Tag,
	}

	var row orderResultRow
	if err := c.post(ctx, "/api/v1/order", body, &row); err != nil {
		return models.OrderResult{}, fmt.Errorf("SubmitMarketOrder: %w", err)
	}
	if row.Ticket == 0 {
		return models.OrderResult{}, fmt.Errorf("SubmitMarketOrder: empty ticket")
	}
	return models.OrderResult{Ticket: row.Ticket, Price: row.Price}, nil
}

// ModifyStop переносит SL открытой позиции (TRADE_ACTION_SLTP на стороне моста).
func (c *Client) ModifyStop(ctx context.Context, ticket int64, newStop float64) error {
	body := map[string]interface{}{
		"ticket": ticket,
		"sl":     newStop,
	}
	if err := c.post(ctx, "/api/v1/position/modify", body, nil); err != nil {
		return fmt.Errorf("ModifyStop ticket=%d: %w", ticket, err)
	}
	return nil
}

type positionRow struct {
	Ticket int64  `json:"ticket"`
	Status string `json:"status"` // OPEN | CLOSED
}

// PositionStatus — жива ли позиция. Исчезнувший у брокера тикет
// трактуем как закрытие (сработал TP или SL).
func (c *Client) PositionStatus(ctx context.Context, ticket int64) (models.PositionStatus, error) {
	q := url.Values{}
	q.Set("ticket", strconv.FormatInt(ticket, 10))

	var row positionRow
	err := c.get(ctx, "/api/v1/position", q, &row)
	if err != nil {
		if isNoData(err) {
			return models.PositionClosed, nil
		}
		return "", err
	}
	if row.Status == string(models.PositionClosed) {
		return models.PositionClosed, nil
	}
	return models.PositionOpen, nil
}
