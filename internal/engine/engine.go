package engine

import (
	"context"
	"time"

	"crt_bot/internal/models"
	"crt_bot/internal/modules/config"
	"crt_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// Engine — однопоточный цикл: данные -> детектор -> локатор -> риск ->
// гейт -> ордера -> журнал. Все вызовы наружу блокирующие, точки
// ожидания — только сон между циклами. Остановка по ctx на границе
// цикла, никогда посреди выставления ордера.
type Engine struct {
	cfg *config.Config

	market    MarketData
	account   AccountSource
	gate      *Gate
	lifecycle *Lifecycle
	notifier  Notifier

	state       *models.SessionState
	constraints models.SymbolConstraints
	cycles      int64
}

func NewEngine(
	cfg *config.Config,
	market MarketData,
	account AccountSource,
	gate *Gate,
	lifecycle *Lifecycle,
	notifier Notifier,
) *Engine {
	return &Engine{
		cfg:       cfg,
		market:    market,
		account:   account,
		gate:      gate,
		lifecycle: lifecycle,
		notifier:  notifier,
		state:     models.NewSessionState(),
	}
}

// Run — стартовая проверка счёта (единственный фатал) и вечный цикл.
func (e *Engine) Run(ctx context.Context) error {
	acc, err := e.account.AccountSnapshot(ctx)
	if err != nil {
		// до входа в цикл — единственное место, где падаем
		return err
	}
	logger.Info("Connected: %s | Balance: %.2f %s", acc.Name, acc.Balance, acc.Currency)
	e.notifier.SendF(ctx, "🚀 CRT-бот запущен: %s | баланс %.2f %s | символ %s",
		acc.Name, acc.Balance, acc.Currency, e.cfg.Symbol)

	sc, err := e.market.SymbolConstraints(ctx, e.cfg.Symbol)
	if err != nil {
		return err
	}
	e.constraints = sc

	for {
		select {
		case <-ctx.Done():
			logger.Info("[LOOP] остановка по ctx")
			return nil
		default:
		}

		delay := e.Cycle(ctx)

		select {
		case <-ctx.Done():
			logger.Info("[LOOP] остановка по ctx")
			return nil
		case <-time.After(delay):
		}
	}
}

// Раз в столько циклов шлём сводку в телеграм (час при 60s опросе).
const statusEveryCycles = 60

// Cycle — один проход. Возвращает паузу до следующего: короткую при
// отсутствии данных, новостной кулдаун при блоке, иначе обычный опрос.
func (e *Engine) Cycle(ctx context.Context) time.Duration {
	e.cycles++
	span := opentracing.StartSpan("cycle")
	defer span.Finish()

	outcome := e.runCycle(ctx, span)
	span.SetTag("outcome", outcome.note)

	if e.cycles%statusEveryCycles == 0 {
		e.notifier.SendF(ctx, "📊 [%s] циклов=%d | сделок сегодня=%d | ждут безубытка=%d",
			e.cfg.Symbol, e.cycles, e.state.TradesToday, len(e.state.Promotions))
	}
	return outcome.delay
}

type cycleOutcome struct {
	note  string
	delay time.Duration
}

func (e *Engine) skip(note string, delay time.Duration) cycleOutcome {
	return cycleOutcome{note: note, delay: delay}
}

func (e *Engine) runCycle(ctx context.Context, span opentracing.Span) cycleOutcome {
	// 1) Висящие переводы в безубыток — раньше всего остального
	e.lifecycle.CheckPromotions(ctx, e.state)

	// 2) Брокерское время: из тика; нет тика — UTC now
	brokerNow := time.Now().UTC()
	tick, tickErr := e.market.CurrentTick(ctx, e.cfg.Symbol)
	if tickErr == nil && !tick.Time.IsZero() {
		brokerNow = tick.Time
	}
	span.SetTag("broker_time", brokerNow.Format(time.RFC3339))

	// 3) Дешёвые отказы: лимит, сессия, новости
	if res := e.gate.PreCheck(ctx, e.state, brokerNow); !res.Accepted() {
		logger.Info("%s skip: %s %s", brokerNow.Format(time.RFC3339), res.Skip, res.Detail)
		if res.DeferLong {
			return e.skip(res.Skip, e.cfg.NewsCooldown)
		}
		return e.skip(res.Skip, e.cfg.PollInterval)
	}

	// 4) Часовики для диапазона (offset=1 — только закрытые бары)
	h1, err := e.market.Candles(ctx, e.cfg.Symbol, models.Timeframe(e.cfg.RangeTimeframe), e.cfg.RangeLookback, 1)
	if err != nil {
		logger.Info("No %s data (%v). Waiting...", e.cfg.RangeTimeframe, err)
		return e.skip("no_range_data", e.cfg.DataRetryInterval)
	}

	// 5) Детектор
	var rng models.RangeWindow
	direction := models.DirectionNone
	if e.cfg.UsePowerOfThree {
		sig, err := DetectPowerOfThree(h1, models.SweepTieBreak(e.cfg.SweepTieBreak))
		if err != nil {
			logger.Info("No %s data (%v). Waiting...", e.cfg.RangeTimeframe, err)
			return e.skip("no_range_data", e.cfg.DataRetryInterval)
		}
		if sig.Direction == models.DirectionNone {
			logger.Info("%s No CRT power-of-three pattern.", brokerNow.Format(time.RFC3339))
			return e.skip("no_pattern", e.cfg.PollInterval)
		}
		rng = sig.Range
		direction = sig.Direction
		logger.Info("[CRT] %s | %s", sig.Direction, sig.Reason)
	} else {
		rng, err = DetectSimpleRange(h1)
		if err != nil {
			return e.skip("no_range_data", e.cfg.DataRetryInterval)
		}
	}

	// 6) Младший ТФ для входа
	m5, err := e.market.Candles(ctx, e.cfg.Symbol, models.Timeframe(e.cfg.EntryTimeframe), e.cfg.EntryLookback, 1)
	if err != nil {
		logger.Info("No %s data (%v). Waiting...", e.cfg.EntryTimeframe, err)
		return e.skip("no_entry_data", e.cfg.DataRetryInterval)
	}

	// 7) Локатор входа
	entry, found := e.locate(m5, rng, direction)
	if !found {
		logger.Info("%s No CRT entry signal.", brokerNow.Format(time.RFC3339))
		return e.skip("no_entry", e.cfg.PollInterval)
	}

	// 8) Живой тик обязателен для цены входа
	if tickErr != nil {
		logger.Info("No tick (%v). Waiting...", tickErr)
		return e.skip("no_tick", e.cfg.DataRetryInterval)
	}

	// 9) Счёт под сайзинг
	acc, err := e.account.AccountSnapshot(ctx)
	if err != nil {
		logger.Error("[ACCOUNT] снапшот не получен: %v", err)
		return e.skip("no_account", e.cfg.DataRetryInterval)
	}

	plan, err := BuildRiskPlan(RiskInput{
		Direction:    entry.Direction,
		Range:        rng,
		Trigger:      entry.Trigger,
		Tick:         tick,
		Constraints:  e.constraints,
		Balance:      acc.Balance,
		RiskFraction: e.cfg.RiskPct / 100.0,
		SLBuffer:     e.cfg.SLBuffer,
		SplitTP:      models.TPMode(e.cfg.TPMode) == models.TPModeBoth,
	})
	if err != nil {
		logger.Error("[RISK] план не посчитался: %v", err)
		return e.skip("risk_error", e.cfg.PollInterval)
	}

	// 10) Финальный гейт: дубликат + R:R
	if res := e.gate.Admit(e.state, entry, plan); !res.Accepted() {
		logger.Info("%s skip: %s %s", brokerNow.Format(time.RFC3339), res.Skip, res.Detail)
		return e.skip(res.Skip, e.cfg.PollInterval)
	}

	// 11) Ордера
	if e.lifecycle.Execute(ctx, e.state, entry, plan, brokerNow) {
		span.SetTag("ticket_opened", true)
		return e.skip("trade_opened", e.cfg.PollInterval)
	}
	return e.skip("order_failed", e.cfg.PollInterval)
}

// locate выбирает режим поиска входа по конфигу.
func (e *Engine) locate(m5 []models.Candle, rng models.RangeWindow, direction models.Direction) (models.EntrySignal, bool) {
	if e.cfg.UseOrderBlock && direction != models.DirectionNone {
		block, ok := FindOrderBlock(m5, direction)
		if !ok {
			return models.EntrySignal{}, false
		}
		return LocateEntry(m5, block)
	}
	// без ордер-блока (или simple-режим): возврат в диапазон;
	// direction==None принимает любую сторону
	return LocateRangeReentry(m5, rng, direction)
}

// State отдаёт состояние сессии (для статуса и тестов).
func (e *Engine) State() *models.SessionState { return e.state }
