package service

import (
	"context"
	"net/url"
	"time"

	"crt_bot/internal/models"
	"crt_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

type tickRow struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"` // unix, серверное время брокера
}

// CurrentTick отдаёт свежий тик из WS-кеша; если кеш протух или стрим
// не поднят — ходит по REST.
func (c *Client) CurrentTick(ctx context.Context, symbol string) (models.Tick, error) {
	c.tickMu.RLock()
	tick, at := c.tick, c.tickAt
	c.tickMu.RUnlock()

	if !at.IsZero() && time.Since(at) < tickStaleAfter {
		return tick, nil
	}

	q := url.Values{}
	q.Set("symbol", symbol)

	var row tickRow
	if err := c.get(ctx, "/api/v1/tick", q, &row); err != nil {
		return models.Tick{}, err
	}
	return tickFromRow(row), nil
}

func tickFromRow(r tickRow) models.Tick {
	return models.Tick{
		Bid:  r.Bid,
		Ask:  r.Ask,
		Time: time.Unix(r.Time, 0).UTC(),
	}
}

// StreamTicks держит WS-подписку на тики символа и обновляет кеш.
// Переподключается с бэкоффом, пока жив ctx. Запускается из fx-хука.
func (c *Client) StreamTicks(ctx context.Context, symbol string) {
	if c.wsURL == "" {
		logger.Info("[BRIDGE] ws url не задан — тики только по REST")
		return
	}

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.runTickStream(ctx, symbol); err != nil && ctx.Err() == nil {
			logger.Error("[BRIDGE] WS тиков упал: %v, реконнект через %s", err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) runTickStream(ctx context.Context, symbol string) error {
	conn, _, err := c.wsDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := map[string]string{"op": "subscribe", "channel": "ticks", "symbol": symbol}
	payload, err := sonic.Marshal(sub)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}

	logger.Info("[BRIDGE] WS тиков подключен: %s", symbol)

	// закрываем сокет при отмене, чтобы ReadMessage не висел
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var row tickRow
		if err := sonic.Unmarshal(msg, &row); err != nil {
			continue // сервисные сообщения моста пропускаем
		}
		if row.Symbol != "" && row.Symbol != symbol {
			continue
		}

		c.tickMu.Lock()
		c.tick = tickFromRow(row)
		c.tickAt = time.Now()
		c.tickMu.Unlock()
	}
}
