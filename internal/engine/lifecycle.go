package engine

import (
	"context"
	"time"

	"crt_bot/internal/models"
	"crt_bot/pkg/logger"
)

// Теги ног для журнала и комментария ордера.
const (
	tagSingle = "CRT advanced"
	tagTP1    = "CRT TP1"
	tagTP2    = "CRT TP2"
)

// Lifecycle выставляет ордера по принятому входу и ведёт пары ног до
// перевода в безубыток. Блокирующего watch-цикла нет: пендинги
// проверяются в начале каждого цикла, их может висеть несколько.
type Lifecycle struct {
	exec     Execution
	journal  Journal
	notifier Notifier

	symbol string
	tpMode models.TPMode
}

func NewLifecycle(exec Execution, journal Journal, notifier Notifier, symbol string, tpMode models.TPMode) *Lifecycle {
	return &Lifecycle{
		exec:     exec,
		journal:  journal,
		notifier: notifier,
		symbol:   symbol,
		tpMode:   tpMode,
	}
}

// Execute — вход по плану. Возвращает true, если хотя бы одна нога
// открылась (тогда дневной счётчик растёт на единицу: две ноги —
// одна сделка). Неуспех ноги — лог и дальше, цикл не валим.
func (l *Lifecycle) Execute(
	ctx context.Context,
	st *models.SessionState,
	entry models.EntrySignal,
	plan models.RiskPlan,
	brokerNow time.Time,
) bool {
	if l.tpMode != models.TPModeBoth {
		tp := plan.TakeProfit1
		if l.tpMode == models.TPModeFull {
			tp = plan.TakeProfit2
		}
		res, ok := l.submitLeg(ctx, entry, plan, tp, plan.Lot, tagSingle, brokerNow)
		if !ok {
			return false
		}
		st.TradesToday++
		l.notifier.SendF(ctx,
			"✅ [%s] OPEN %s @ %.2f | SL=%.2f TP=%.2f lot=%.2f | RR1=%.2f RR2=%.2f (ticket=%d)",
			l.symbol, entry.Direction, plan.Entry, plan.StopLoss, tp, plan.Lot,
			plan.RR1, plan.RR2, res.Ticket,
		)
		return true
	}

	// Сплит: нога TP1 + нога TP2, после закрытия первой стоп второй
	// уедет на вход.
	leg1, ok1 := l.submitLeg(ctx, entry, plan, plan.TakeProfit1, plan.LegLot, tagTP1, brokerNow)
	leg2, ok2 := l.submitLeg(ctx, entry, plan, plan.TakeProfit2, plan.LegLot, tagTP2, brokerNow)

	if !ok1 && !ok2 {
		return false
	}
	st.TradesToday++

	if ok1 && ok2 {
		st.AddPromotion(models.PendingPromotion{
			Symbol:    l.symbol,
			TP1Ticket: leg1.Ticket,
			TP2Ticket: leg2.Ticket,
			Entry:     plan.Entry,
			OpenedAt:  brokerNow,
		})
	}

	l.notifier.SendF(ctx,
		"✅ [%s] OPEN %s @ %.2f | SL=%.2f TP1=%.2f TP2=%.2f lot=%.2fx2 | RR1=%.2f RR2=%.2f (tickets=%d/%d)",
		l.symbol, entry.Direction, plan.Entry, plan.StopLoss,
		plan.TakeProfit1, plan.TakeProfit2, plan.LegLot,
		plan.RR1, plan.RR2, leg1.Ticket, leg2.Ticket,
	)
	return true
}

func (l *Lifecycle) submitLeg(
	ctx context.Context,
	entry models.EntrySignal,
	plan models.RiskPlan,
	tp float64,
	lot float64,
	tag string,
	brokerNow time.Time,
) (models.OrderResult, bool) {
	res, err := l.exec.SubmitMarketOrder(ctx, models.OrderRequest{
		Symbol:     l.symbol,
		Direction:  entry.Direction,
		Volume:     lot,
		StopLoss:   plan.StopLoss,
		TakeProfit: tp,
		Tag:        tag,
	})
	if err != nil {
		logger.Error("[ORDER] %s %s не открылся: %v", l.symbol, tag, err)
		l.notifier.SendF(ctx, "❗️ [%s] Ошибка открытия ордера (%s): %v", l.symbol, tag, err)
		return models.OrderResult{}, false
	}

	logger.Info("[ORDER] %s %s @ %.2f sl=%.2f tp=%.2f lot=%.2f ticket=%d (%s)",
		l.symbol, entry.Direction, plan.Entry, plan.StopLoss, tp, lot, res.Ticket, tag)

	if err := l.journal.Open(ctx, models.TradeRecord{
		Ticket:     res.Ticket,
		At:         brokerNow,
		Symbol:     l.symbol,
		Direction:  entry.Direction,
		Entry:      plan.Entry,
		StopLoss:   plan.StopLoss,
		TakeProfit: tp,
		Lot:        lot,
		RR1:        plan.RR1,
		RR2:        plan.RR2,
		Status:     models.TradeStatusOpen,
		Comment:    tag,
	}); err != nil {
		// журнал не должен останавливать торговлю
		logger.Error("[JOURNAL] запись OPEN не легла: %v", err)
	}

	return res, true
}

// CheckPromotions — начало каждого цикла: для каждой пары ног смотрим,
// жива ли нога TP1; исчезла — переносим стоп ноги TP2 на цену входа.
// Неудачный перенос остаётся в пендингах и повторится в следующий цикл.
func (l *Lifecycle) CheckPromotions(ctx context.Context, st *models.SessionState) {
	for _, p := range append([]models.PendingPromotion(nil), st.Promotions...) {
		status, err := l.exec.PositionStatus(ctx, p.TP1Ticket)
		if err != nil {
			logger.Error("[BE] статус тикета %d не получен: %v", p.TP1Ticket, err)
			continue
		}
		if status != models.PositionClosed {
			continue
		}

		if err := l.exec.ModifyStop(ctx, p.TP2Ticket, p.Entry); err != nil {
			logger.Error("[BE] перенос стопа тикета %d: %v", p.TP2Ticket, err)
			continue
		}

		st.RemovePromotion(p.TP1Ticket)
		logger.Info("[BE] %s тикет %d -> безубыток %.2f (TP1 %d закрылся)",
			p.Symbol, p.TP2Ticket, p.Entry, p.TP1Ticket)
		l.notifier.SendF(ctx, "🛡 [%s] TP1 закрыт, стоп второй ноги -> безубыток %.2f (ticket=%d)",
			p.Symbol, p.Entry, p.TP2Ticket)

		if err := l.journal.Event(ctx, p.TP2Ticket, models.TradeStatusBreakeven, "stop moved to entry after TP1"); err != nil {
			logger.Error("[JOURNAL] запись BREAKEVEN не легла: %v", err)
		}
	}
}
