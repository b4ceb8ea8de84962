package engine

import (
	"fmt"
	"math"

	"crt_bot/internal/models"
)

// Доля фитиля за закрытием, на которую отступаем стоп за экстремум
// триггерной свечи.
const wickOffsetFrac = 0.1

// RiskInput — всё, что нужно для расчёта уровней и размера.
type RiskInput struct {
	Direction    models.Direction
	Range        models.RangeWindow
	Trigger      models.Candle
	Tick         models.Tick
	Constraints  models.SymbolConstraints
	Balance      float64
	RiskFraction float64 // 0.01 => 1% баланса на стоп
	SLBuffer     float64 // ценовые единицы, $1 для золота
	SplitTP      bool    // режим both: две пол-ноги
}

// BuildRiskPlan считает SL (за фитиль, с клампом на минимальную
// дистанцию брокера), TP1/TP2, R:R и размер по денежному риску.
func BuildRiskPlan(in RiskInput) (models.RiskPlan, error) {
	if in.Direction != models.DirectionLong && in.Direction != models.DirectionShort {
		return models.RiskPlan{}, fmt.Errorf("unknown direction %q", in.Direction)
	}
	if in.Balance <= 0 {
		return models.RiskPlan{}, fmt.Errorf("balance <= 0")
	}
	if in.RiskFraction <= 0 {
		return models.RiskPlan{}, fmt.Errorf("riskFraction <= 0")
	}

	// 1) Цена входа: bid для SELL, ask для BUY
	var entry float64
	if in.Direction == models.DirectionShort {
		entry = in.Tick.Bid
	} else {
		entry = in.Tick.Ask
	}
	if entry <= 0 {
		return models.RiskPlan{}, fmt.Errorf("entry <= 0")
	}

	// 2) Сырой SL — сразу за фитилём триггерной свечи
	var sl float64
	if in.Direction == models.DirectionShort {
		sl = in.Trigger.High + (in.Trigger.High-in.Trigger.Close)*wickOffsetFrac + in.SLBuffer
	} else {
		sl = in.Trigger.Low - (in.Trigger.Close-in.Trigger.Low)*wickOffsetFrac - in.SLBuffer
	}

	// 3) Кламп: брокер не примет стоп ближе минимальной дистанции —
	//    отодвигаем, а не отклоняем вход
	if min := in.Constraints.MinStopDistance; min > 0 && math.Abs(entry-sl) < min {
		if in.Direction == models.DirectionShort {
			sl = entry + min
		} else {
			sl = entry - min
		}
	}

	// 4) Тейки: TP1 — середина диапазона, TP2 — дальняя граница
	tp1 := in.Range.Mid()
	var tp2 float64
	if in.Direction == models.DirectionShort {
		tp2 = in.Range.Low
	} else {
		tp2 = in.Range.High
	}

	// 5) R:R; нулевой риск => 0, такой вход дальше зарежет гейт
	risk := math.Abs(entry - sl)
	var rr1, rr2 float64
	if risk > 0 {
		rr1 = math.Abs(entry-tp1) / risk
		rr2 = math.Abs(entry-tp2) / risk
	}

	// 6) Сайзинг по денежному риску
	lot, err := lotByRisk(in.Balance, in.RiskFraction, risk, in.Constraints)
	if err != nil {
		return models.RiskPlan{}, err
	}

	plan := models.RiskPlan{
		Entry:       entry,
		StopLoss:    sl,
		TakeProfit1: tp1,
		TakeProfit2: tp2,
		RR1:         rr1,
		RR2:         rr2,
		Lot:         lot,
	}

	// 7) Режим both: половина на ногу, каждая округляется отдельно
	if in.SplitTP {
		plan.LegLot = floorToStep(lot/2, in.Constraints.LotStep)
		if plan.LegLot < in.Constraints.MinLot {
			plan.LegLot = in.Constraints.MinLot
		}
	}

	return plan, nil
}

// lotByRisk: lot * |entry-sl| * contractSize ~= balance * riskFraction,
// с полом на minLot и округлением вниз до шага лота.
func lotByRisk(balance, riskFraction, stopDist float64, sc models.SymbolConstraints) (float64, error) {
	if stopDist <= 0 {
		// нулевая дистанция риска — торговать нельзя, но падать незачем:
		// R:R уже 0 и гейт вход не пропустит
		return sc.MinLot, nil
	}

	contract := sc.ContractSize
	if contract <= 0 {
		contract = 1.0
	}

	riskMoney := balance * riskFraction
	raw := riskMoney / (stopDist * contract)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("lot invalid: %.8f", raw)
	}

	lot := floorToStep(raw, sc.LotStep)
	if lot < sc.MinLot {
		// меньше минимума — поднимаем до minLot (риск чуть превысит целевой,
		// иначе брокер ордер не примет)
		lot = sc.MinLot
	}
	if lot <= 0 {
		return 0, fmt.Errorf("ноль после округления: lot=%.8f", lot)
	}
	return lot, nil
}

func floorToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	steps := math.Floor(v/step + 1e-9)
	return steps * step
}
