package engine

import (
	"context"
	"fmt"
	"time"

	"crt_bot/internal/models"
)

// Причины пропуска цикла. Это не ошибки — ожидаемый control-flow.
const (
	SkipDailyCap  = "daily_cap"
	SkipSession   = "session_hours"
	SkipNews      = "news_block"
	SkipNewsPause = "news_pause"
	SkipDuplicate = "duplicate_entry"
	SkipLowRR     = "low_rr"
)

// GateConfig — пороги гейта.
type GateConfig struct {
	MaxTradesPerDay int
	SessionHours    []int
	MinRR           float64
	NewsCooldown    time.Duration
}

// GateResult — вердикт. Skip=="" значит проходим дальше.
// DeferLong просит цикл уснуть на новостной кулдаун вместо обычного.
type GateResult struct {
	Skip      string
	Detail    string
	DeferLong bool
}

func (r GateResult) Accepted() bool { return r.Skip == "" }

// Gate — состояния-проверки перед входом: дневной лимит, сессионные
// часы, новости, дубликат, минимальный R:R.
type Gate struct {
	cfg  GateConfig
	news NewsFilter
}

func NewGate(cfg GateConfig, news NewsFilter) *Gate {
	return &Gate{cfg: cfg, news: news}
}

// PreCheck гоняется до запроса данных: дешёвые отказы по времени и
// счётчику. brokerNow — время сервера брокера, не локальное.
func (g *Gate) PreCheck(ctx context.Context, st *models.SessionState, brokerNow time.Time) GateResult {
	st.RolloverIfNewDay(brokerNow)

	if g.cfg.MaxTradesPerDay > 0 && st.TradesToday >= g.cfg.MaxTradesPerDay {
		return GateResult{
			Skip:   SkipDailyCap,
			Detail: fmt.Sprintf("%d trades for %s", st.TradesToday, st.Day.Format("2006-01-02")),
		}
	}

	if !g.inSession(brokerNow.Hour()) {
		return GateResult{
			Skip:   SkipSession,
			Detail: fmt.Sprintf("hour=%d not in session", brokerNow.Hour()),
		}
	}

	// хвост прошлого новостного блока
	if !st.NewsPauseTil.IsZero() && brokerNow.Before(st.NewsPauseTil) {
		return GateResult{
			Skip:      SkipNewsPause,
			Detail:    fmt.Sprintf("paused until %s", st.NewsPauseTil.Format(time.RFC3339)),
			DeferLong: true,
		}
	}

	if g.news != nil && g.news.IsBlocked(ctx) {
		st.NewsPauseTil = brokerNow.Add(g.cfg.NewsCooldown)
		return GateResult{Skip: SkipNews, DeferLong: true}
	}

	return GateResult{}
}

// Admit — финальные проверки по конкретному входу. Принятый вход
// двигает LastEntryAt: тот же триггер второй раз не пройдёт.
func (g *Gate) Admit(st *models.SessionState, entry models.EntrySignal, plan models.RiskPlan) GateResult {
	ts := entry.Trigger.OpenTime
	if !st.LastEntryAt.IsZero() && !ts.After(st.LastEntryAt) {
		return GateResult{
			Skip:   SkipDuplicate,
			Detail: fmt.Sprintf("trigger %s <= last %s", ts.Format(time.RFC3339), st.LastEntryAt.Format(time.RFC3339)),
		}
	}

	if plan.BestRR() < g.cfg.MinRR {
		return GateResult{
			Skip:   SkipLowRR,
			Detail: fmt.Sprintf("rr1=%.2f rr2=%.2f < %.2f", plan.RR1, plan.RR2, g.cfg.MinRR),
		}
	}

	st.LastEntryAt = ts
	return GateResult{}
}

func (g *Gate) inSession(hour int) bool {
	for _, h := range g.cfg.SessionHours {
		if h == hour {
			return true
		}
	}
	return false
}
