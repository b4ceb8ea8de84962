package engine

import (
	"testing"
	"time"

	"crt_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h1(hour int, o, h, l, c float64) models.Candle {
	return models.Candle{
		OpenTime: time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC),
		Open:     o, High: h, Low: l, Close: c,
	}
}

func TestDetectPowerOfThree_ShortOnHighSweep(t *testing.T) {
	// сценарий из золота: диапазон 1990..2000, sweep прокалывает хай,
	// confirm закрывается внутри
	candles := []models.Candle{
		h1(10, 1995, 2000, 1990, 1996), // range
		h1(11, 1996, 2005, 1991, 1992), // sweep
		h1(12, 1992, 1997, 1991, 1995), // confirm
	}

	sig, err := DetectPowerOfThree(candles, models.TieBreakShort)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionShort, sig.Direction)
	assert.Equal(t, 2000.0, sig.Range.High)
	assert.Equal(t, 1990.0, sig.Range.Low)
}

func TestDetectPowerOfThree_LongOnLowSweep(t *testing.T) {
	candles := []models.Candle{
		h1(10, 1995, 2000, 1990, 1996),
		h1(11, 1994, 1999, 1985, 1993), // только лоу проколот
		h1(12, 1993, 1997, 1991, 1995),
	}

	sig, err := DetectPowerOfThree(candles, models.TieBreakShort)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionLong, sig.Direction)
}

func TestDetectPowerOfThree_NoSignalWhenConfirmOutside(t *testing.T) {
	candles := []models.Candle{
		h1(10, 1995, 2000, 1990, 1996),
		h1(11, 1996, 2005, 1991, 1992),
		h1(12, 1992, 2008, 1991, 2003), // закрылся выше диапазона
	}

	sig, err := DetectPowerOfThree(candles, models.TieBreakShort)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionNone, sig.Direction)
}

func TestDetectPowerOfThree_NoSignalWithoutSweep(t *testing.T) {
	candles := []models.Candle{
		h1(10, 1995, 2000, 1990, 1996),
		h1(11, 1996, 1999, 1992, 1994), // внутри диапазона
		h1(12, 1994, 1997, 1991, 1995),
	}

	sig, err := DetectPowerOfThree(candles, models.TieBreakShort)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionNone, sig.Direction)
}

func TestDetectPowerOfThree_WideSweepTieBreak(t *testing.T) {
	// широкая sweep-свеча пробила обе границы
	candles := []models.Candle{
		h1(10, 1995, 2000, 1990, 1996),
		h1(11, 1996, 2006, 1984, 1993),
		h1(12, 1993, 1997, 1991, 1995),
	}

	sig, err := DetectPowerOfThree(candles, models.TieBreakShort)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionShort, sig.Direction, "исторический разбор — в SHORT")

	sig, err = DetectPowerOfThree(candles, models.TieBreakLong)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionLong, sig.Direction)
}

func TestDetectPowerOfThree_NotEnoughData(t *testing.T) {
	for n := 0; n < 3; n++ {
		candles := make([]models.Candle, n)
		_, err := DetectPowerOfThree(candles, models.TieBreakShort)
		assert.ErrorIs(t, err, ErrNotEnoughData, "len=%d", n)
	}
}

func TestDetectSimpleRange(t *testing.T) {
	candles := []models.Candle{
		h1(10, 1995, 2001, 1989, 1996),
		h1(11, 1996, 1999, 1992, 1994),
	}

	rng, err := DetectSimpleRange(candles)
	require.NoError(t, err)

	// диапазон последней закрытой свечи
	assert.Equal(t, 1999.0, rng.High)
	assert.Equal(t, 1992.0, rng.Low)

	_, err = DetectSimpleRange(nil)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}
