package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"crt_bot/internal/models"
)

type rateRow struct {
	Time  int64   `json:"time"` // unix, открытие бара
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Candles — count закрытых свечей, offset=1 отступает от текущего
// (ещё не закрытого) бара. Аналог copy_rates_from_pos у терминала.
func (c *Client) Candles(
	ctx context.Context,
	symbol string,
	timeframe models.Timeframe,
	count int,
	offset int,
) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", string(timeframe))
	q.Set("count", strconv.Itoa(count))
	q.Set("offset", strconv.Itoa(offset))

	var rows []rateRow
	if err := c.get(ctx, "/api/v1/rates", q, &rows); err != nil {
		return nil, err
	}
	// мост мог отдать меньше запрошенного — для детектора это "нет данных"
	if len(rows) < count {
		return nil, fmt.Errorf("%w: got %d of %d bars", ErrNoData, len(rows), count)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Candle{
			OpenTime: time.Unix(r.Time, 0).UTC(),
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
		})
	}
	return out, nil
}
