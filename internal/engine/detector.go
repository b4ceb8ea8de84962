package engine

import (
	"errors"
	"fmt"

	"crt_bot/internal/models"
)

// ErrNotEnoughData — моста хватило меньше чем на окно детектора.
// Не сигнал и не фатал: цикл пропускаем и пробуем позже.
var ErrNotEnoughData = errors.New("detector: not enough candles")

// DetectPowerOfThree ищет трёхсвечную секвенцию range -> sweep -> confirm
// на часовиках: sweep прокалывает границу диапазона, confirm закрывается
// обратно внутри. Нужны ровно 3 последние закрытые свечи.
//
// Когда sweep пробил обе границы сразу (широкая свеча), направление
// разруливает tie — исторически в SHORT.
func DetectPowerOfThree(candles []models.Candle, tie models.SweepTieBreak) (models.Signal, error) {
	if len(candles) < 3 {
		return models.Signal{}, fmt.Errorf("%w: got %d, want 3", ErrNotEnoughData, len(candles))
	}

	rangeC := candles[len(candles)-3]
	sweepC := candles[len(candles)-2]
	confirmC := candles[len(candles)-1]

	rng := models.RangeWindow{High: rangeC.High, Low: rangeC.Low, Source: rangeC}

	sweptHigh := sweepC.High > rng.High
	sweptLow := sweepC.Low < rng.Low
	confirmed := rng.Low < confirmC.Close && confirmC.Close < rng.High

	if !(sweptHigh || sweptLow) || !confirmed {
		return models.Signal{Direction: models.DirectionNone, Range: rng}, nil
	}

	var dir models.Direction
	switch {
	case sweptHigh && sweptLow:
		dir = models.DirectionShort
		if tie == models.TieBreakLong {
			dir = models.DirectionLong
		}
	case sweptHigh:
		dir = models.DirectionShort
	default:
		dir = models.DirectionLong
	}

	reason := fmt.Sprintf(
		"CRT po3: range=[%.2f..%.2f] sweptHigh=%v sweptLow=%v confirm=%.2f",
		rng.Low, rng.High, sweptHigh, sweptLow, confirmC.Close,
	)

	return models.Signal{Direction: dir, Range: rng, Reason: reason}, nil
}

// DetectSimpleRange — упрощённый режим: диапазон последней закрытой
// часовой свечи, направление назначит локатор по факту возврата в него.
func DetectSimpleRange(candles []models.Candle) (models.RangeWindow, error) {
	if len(candles) == 0 {
		return models.RangeWindow{}, ErrNotEnoughData
	}
	last := candles[len(candles)-1]
	return models.RangeWindow{High: last.High, Low: last.Low, Source: last}, nil
}
