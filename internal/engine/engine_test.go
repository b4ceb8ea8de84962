package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"crt_bot/internal/models"
	"crt_bot/internal/modules/config"
	"crt_bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeMarket раздаёт заранее заданные свечи по таймфрейму.
type fakeMarket struct {
	h1      []models.Candle
	m5      []models.Candle
	tick    models.Tick
	tickErr error
}

func (f *fakeMarket) Candles(_ context.Context, _ string, tf models.Timeframe, _, _ int) ([]models.Candle, error) {
	switch tf {
	case models.TimeframeH1:
		return f.h1, nil
	case models.TimeframeM5:
		return f.m5, nil
	}
	return nil, errors.New("unknown timeframe")
}

func (f *fakeMarket) CurrentTick(_ context.Context, _ string) (models.Tick, error) {
	if f.tickErr != nil {
		return models.Tick{}, f.tickErr
	}
	return f.tick, nil
}

func (f *fakeMarket) SymbolConstraints(_ context.Context, _ string) (models.SymbolConstraints, error) {
	return goldConstraints, nil
}

type fakeAccount struct {
	balance float64
	err     error
}

func (f *fakeAccount) AccountSnapshot(_ context.Context) (models.AccountSnapshot, error) {
	if f.err != nil {
		return models.AccountSnapshot{}, f.err
	}
	return models.AccountSnapshot{Name: "test", Balance: f.balance, Currency: "USD"}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Symbol:          "XAUUSDm",
		RiskPct:         1.0,
		MinRR:           0.1, // R:R в этих сценариях маленький, гейт не о нём
		MaxTradesPerDay: 3,
		SessionHours:    []int{1, 5, 9, 13, 15, 18, 21},

		UseOrderBlock:   true,
		UsePowerOfThree: true,
		TPMode:          "both",
		SweepTieBreak:   "short",

		EntryTimeframe: "M5",
		RangeTimeframe: "H1",
		EntryLookback:  10,
		RangeLookback:  3,

		PollInterval:      60 * time.Second,
		DataRetryInterval: 10 * time.Second,
		NewsCooldown:      30 * time.Minute,
	}
	return cfg
}

// shortSetup — паттерн, который даёт SELL: sweep хая часового диапазона,
// на M5 бычий ордер-блок и свеча, дотянувшаяся до его хая.
func shortSetup() *fakeMarket {
	return &fakeMarket{
		h1: []models.Candle{
			h1(10, 1995, 2000, 1990, 1996),
			h1(11, 1996, 2005, 1991, 1992),
			h1(12, 1992, 1997, 1991, 1995),
		},
		m5: []models.Candle{
			m5(30, 1993, 1994, 1992, 1993.5),
			m5(35, 1993.5, 1996, 1993, 1995),
			m5(40, 1995, 1998, 1994, 1997), // бычья, последняя: блок и триггер разом
		},
		tick: models.Tick{
			Bid:  1994,
			Ask:  1994.3,
			Time: time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC),
		},
	}
}

func newTestEngine(market *fakeMarket, exec *fakeExec, cfg *config.Config) *Engine {
	jr := &fakeJournal{}
	nt := &fakeNotifier{}
	gate := NewGate(GateConfig{
		MaxTradesPerDay: cfg.MaxTradesPerDay,
		SessionHours:    cfg.SessionHours,
		MinRR:           cfg.MinRR,
		NewsCooldown:    cfg.NewsCooldown,
	}, stubNews{})
	lc := NewLifecycle(exec, jr, nt, cfg.Symbol, models.TPMode(cfg.TPMode))

	e := NewEngine(cfg, market, &fakeAccount{balance: 10000}, gate, lc, nt)
	e.constraints = goldConstraints
	return e
}

func TestEngine_CycleOpensTrade(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	delay := e.Cycle(context.Background())

	require.Len(t, exec.orders, 2, "both-режим — две ноги")
	assert.Equal(t, models.DirectionShort, exec.orders[0].Direction)
	assert.Equal(t, 1995.0, exec.orders[0].TakeProfit)
	assert.Equal(t, 1990.0, exec.orders[1].TakeProfit)
	assert.Equal(t, 1, e.State().TradesToday)
	assert.Len(t, e.State().Promotions, 1)
	assert.Equal(t, cfg.PollInterval, delay)
}

func TestEngine_CycleDuplicateSuppressed(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	e.Cycle(context.Background())
	require.Len(t, exec.orders, 2)

	// те же свечи во втором цикле — вход уже отработан
	e.Cycle(context.Background())
	assert.Len(t, exec.orders, 2)
	assert.Equal(t, 1, e.State().TradesToday)
}

func TestEngine_CycleNoPattern(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	// sweep внутри диапазона — паттерна нет
	market.h1[1] = h1(11, 1996, 1999, 1992, 1994)
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	delay := e.Cycle(context.Background())
	assert.Empty(t, exec.orders)
	assert.Equal(t, cfg.PollInterval, delay)
}

func TestEngine_CycleOutOfSession(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	market.tick.Time = time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC)
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	e.Cycle(context.Background())
	assert.Empty(t, exec.orders)
}

func TestEngine_CycleNoTickShortRetry(t *testing.T) {
	cfg := testConfig()
	// без тика брокерское время берётся из wall clock — открываем все
	// часы, чтобы тест не зависел от момента запуска
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	cfg.SessionHours = hours

	market := shortSetup()
	market.tickErr = errors.New("bridge down")
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	delay := e.Cycle(context.Background())
	assert.Empty(t, exec.orders)
	assert.Equal(t, cfg.DataRetryInterval, delay, "без тика перезапрашиваем быстрее")
}

func TestEngine_CyclePromotesBeforeNewEntries(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	e.Cycle(context.Background())
	require.Len(t, e.State().Promotions, 1)
	p := e.State().Promotions[0]

	// нога TP1 закрылась между циклами; следующий цикл вне сессии,
	// но безубыток всё равно отрабатывает
	exec.statuses[p.TP1Ticket] = models.PositionClosed
	market.tick.Time = time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC)

	e.Cycle(context.Background())
	assert.Empty(t, e.State().Promotions)
	assert.Equal(t, 1994.0, exec.stops[p.TP2Ticket], "стоп второй ноги ровно на входе")
}

func TestEngine_CycleDailyCapStopsEntries(t *testing.T) {
	cfg := testConfig()
	market := shortSetup()
	exec := newFakeExec()
	e := newTestEngine(market, exec, cfg)

	e.State().RolloverIfNewDay(market.tick.Time)
	e.State().TradesToday = cfg.MaxTradesPerDay

	e.Cycle(context.Background())
	assert.Empty(t, exec.orders)
}
