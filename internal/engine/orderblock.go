package engine

import (
	"fmt"

	"crt_bot/internal/models"
)

// FindOrderBlock — последняя свеча противоположного цвета в окне
// младшего ТФ: для BUY ищем последнюю медвежью, для SELL — бычью.
func FindOrderBlock(candles []models.Candle, dir models.Direction) (models.OrderBlock, bool) {
	for i := len(candles) - 1; i >= 0; i-- {
		c := candles[i]
		if dir == models.DirectionLong && c.Bearish() {
			return models.OrderBlock{Anchor: c, Direction: dir}, true
		}
		if dir == models.DirectionShort && c.Bullish() {
			return models.OrderBlock{Anchor: c, Direction: dir}, true
		}
	}
	return models.OrderBlock{}, false
}

// LocateEntry — вход в момент, когда экстремум ПОСЛЕДНЕЙ свечи
// возвращается в ордер-блок: low <= block.low для BUY,
// high >= block.high для SELL.
func LocateEntry(candles []models.Candle, block models.OrderBlock) (models.EntrySignal, bool) {
	if len(candles) == 0 {
		return models.EntrySignal{}, false
	}
	last := candles[len(candles)-1]

	switch block.Direction {
	case models.DirectionLong:
		if last.Low <= block.Anchor.Low {
			return models.EntrySignal{
				Trigger:   last,
				Direction: block.Direction,
				Reason:    fmt.Sprintf("OB retest: low=%.2f <= ob.low=%.2f", last.Low, block.Anchor.Low),
			}, true
		}
	case models.DirectionShort:
		if last.High >= block.Anchor.High {
			return models.EntrySignal{
				Trigger:   last,
				Direction: block.Direction,
				Reason:    fmt.Sprintf("OB retest: high=%.2f >= ob.high=%.2f", last.High, block.Anchor.High),
			}, true
		}
	}
	return models.EntrySignal{}, false
}

// LocateRangeReentry — режим без ордер-блока: первая свеча, которая
// проколола границу диапазона и закрылась обратно внутри. want
// ограничивает сторону; DirectionNone принимает любую (simple-режим,
// направление назначается реактивно).
func LocateRangeReentry(candles []models.Candle, rng models.RangeWindow, want models.Direction) (models.EntrySignal, bool) {
	for _, c := range candles {
		if want != models.DirectionLong && c.High > rng.High && c.Close < rng.High {
			return models.EntrySignal{
				Trigger:   c,
				Direction: models.DirectionShort,
				Reason:    fmt.Sprintf("reentry: high=%.2f > %.2f, close=%.2f back inside", c.High, rng.High, c.Close),
			}, true
		}
		if want != models.DirectionShort && c.Low < rng.Low && c.Close > rng.Low {
			return models.EntrySignal{
				Trigger:   c,
				Direction: models.DirectionLong,
				Reason:    fmt.Sprintf("reentry: low=%.2f < %.2f, close=%.2f back inside", c.Low, rng.Low, c.Close),
			}, true
		}
	}
	return models.EntrySignal{}, false
}
