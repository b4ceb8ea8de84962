package engine

import (
	"context"
	"errors"
	"testing"

	"crt_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec — исполнение в памяти: раздаёт тикеты по порядку, помнит
// статусы и переносы стопов.
type fakeExec struct {
	nextTicket int64
	orders     []models.OrderRequest
	statuses   map[int64]models.PositionStatus
	stops      map[int64]float64

	submitErr error
	modifyErr error
	statusErr error
}

func newFakeExec() *fakeExec {
	return &fakeExec{
		nextTicket: 100,
		statuses:   map[int64]models.PositionStatus{},
		stops:      map[int64]float64{},
	}
}

func (f *fakeExec) SubmitMarketOrder(_ context.Context, req models.OrderRequest) (models.OrderResult, error) {
	if f.submitErr != nil {
		return models.OrderResult{}, f.submitErr
	}
	f.nextTicket++
	f.orders = append(f.orders, req)
	f.statuses[f.nextTicket] = models.PositionOpen
	return models.OrderResult{Ticket: f.nextTicket, Price: 1994}, nil
}

func (f *fakeExec) ModifyStop(_ context.Context, ticket int64, newStop float64) error {
	if f.modifyErr != nil {
		return f.modifyErr
	}
	f.stops[ticket] = newStop
	return nil
}

func (f *fakeExec) PositionStatus(_ context.Context, ticket int64) (models.PositionStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	st, ok := f.statuses[ticket]
	if !ok {
		return models.PositionClosed, nil
	}
	return st, nil
}

type fakeJournal struct {
	opened []models.TradeRecord
	events []string
}

func (f *fakeJournal) Open(_ context.Context, rec models.TradeRecord) error {
	f.opened = append(f.opened, rec)
	return nil
}

func (f *fakeJournal) Event(_ context.Context, _ int64, status string, _ string) error {
	f.events = append(f.events, status)
	return nil
}

type fakeNotifier struct{ messages []string }

func (f *fakeNotifier) Send(_ context.Context, msg string) { f.messages = append(f.messages, msg) }
func (f *fakeNotifier) SendF(_ context.Context, format string, _ ...any) {
	f.messages = append(f.messages, format)
}

func testEntry() models.EntrySignal {
	return models.EntrySignal{
		Direction: models.DirectionShort,
		Trigger:   m5(55, 1996, 2005, 1993, 1994),
	}
}

func testPlan() models.RiskPlan {
	return models.RiskPlan{
		Entry:       1994,
		StopLoss:    2003,
		TakeProfit1: 1995,
		TakeProfit2: 1990,
		RR1:         0.11,
		RR2:         0.44,
		Lot:         0.10,
		LegLot:      0.05,
	}
}

func TestLifecycle_ExecuteSingle(t *testing.T) {
	exec := newFakeExec()
	jr := &fakeJournal{}
	lc := NewLifecycle(exec, jr, &fakeNotifier{}, "XAUUSDm", models.TPModeMid)
	st := models.NewSessionState()

	ok := lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13))
	require.True(t, ok)

	require.Len(t, exec.orders, 1)
	assert.Equal(t, 1995.0, exec.orders[0].TakeProfit, "mid-режим целится в TP1")
	assert.Equal(t, 0.10, exec.orders[0].Volume, "одна нога — полный лот")
	assert.Equal(t, 1, st.TradesToday)
	assert.Empty(t, st.Promotions, "одиночный ордер безубыток не ждёт")

	require.Len(t, jr.opened, 1)
	assert.Equal(t, models.TradeStatusOpen, jr.opened[0].Status)
}

func TestLifecycle_ExecuteFullTargetsFarBoundary(t *testing.T) {
	exec := newFakeExec()
	lc := NewLifecycle(exec, &fakeJournal{}, &fakeNotifier{}, "XAUUSDm", models.TPModeFull)
	st := models.NewSessionState()

	ok := lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13))
	require.True(t, ok)
	require.Len(t, exec.orders, 1)
	assert.Equal(t, 1990.0, exec.orders[0].TakeProfit)
}

func TestLifecycle_ExecuteBothRegistersPromotion(t *testing.T) {
	exec := newFakeExec()
	jr := &fakeJournal{}
	lc := NewLifecycle(exec, jr, &fakeNotifier{}, "XAUUSDm", models.TPModeBoth)
	st := models.NewSessionState()

	ok := lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13))
	require.True(t, ok)

	require.Len(t, exec.orders, 2)
	assert.Equal(t, 1995.0, exec.orders[0].TakeProfit)
	assert.Equal(t, 1990.0, exec.orders[1].TakeProfit)
	assert.Equal(t, 0.05, exec.orders[0].Volume, "каждая нога — половина")

	assert.Equal(t, 1, st.TradesToday, "две ноги считаются одной сделкой")
	require.Len(t, st.Promotions, 1)
	assert.Equal(t, 1994.0, st.Promotions[0].Entry)
	assert.Len(t, jr.opened, 2)
}

func TestLifecycle_ExecuteOrderFailure(t *testing.T) {
	exec := newFakeExec()
	exec.submitErr = errors.New("broker rejected")
	lc := NewLifecycle(exec, &fakeJournal{}, &fakeNotifier{}, "XAUUSDm", models.TPModeBoth)
	st := models.NewSessionState()

	ok := lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13))
	assert.False(t, ok)
	assert.Zero(t, st.TradesToday, "неоткрывшийся вход счётчик не двигает")
	assert.Empty(t, st.Promotions)
}

func TestLifecycle_CheckPromotions_MovesStopToEntry(t *testing.T) {
	exec := newFakeExec()
	jr := &fakeJournal{}
	lc := NewLifecycle(exec, jr, &fakeNotifier{}, "XAUUSDm", models.TPModeBoth)
	st := models.NewSessionState()

	require.True(t, lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13)))
	require.Len(t, st.Promotions, 1)
	p := st.Promotions[0]

	// пока обе ноги живы — ничего не происходит
	lc.CheckPromotions(context.Background(), st)
	assert.Len(t, st.Promotions, 1)
	assert.Empty(t, exec.stops)

	// нога TP1 исчезла — стоп второй уехал ровно на вход
	exec.statuses[p.TP1Ticket] = models.PositionClosed
	lc.CheckPromotions(context.Background(), st)

	assert.Empty(t, st.Promotions)
	assert.Equal(t, 1994.0, exec.stops[p.TP2Ticket])
	assert.Contains(t, jr.events, models.TradeStatusBreakeven)
}

func TestLifecycle_CheckPromotions_ModifyFailureKeepsPending(t *testing.T) {
	exec := newFakeExec()
	lc := NewLifecycle(exec, &fakeJournal{}, &fakeNotifier{}, "XAUUSDm", models.TPModeBoth)
	st := models.NewSessionState()

	require.True(t, lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13)))
	p := st.Promotions[0]
	exec.statuses[p.TP1Ticket] = models.PositionClosed

	exec.modifyErr = errors.New("trade context busy")
	lc.CheckPromotions(context.Background(), st)
	assert.Len(t, st.Promotions, 1, "неудачный перенос повторится в следующем цикле")

	exec.modifyErr = nil
	lc.CheckPromotions(context.Background(), st)
	assert.Empty(t, st.Promotions)
	assert.Equal(t, 1994.0, exec.stops[p.TP2Ticket])
}

func TestLifecycle_CheckPromotions_StatusErrorKeepsPending(t *testing.T) {
	exec := newFakeExec()
	lc := NewLifecycle(exec, &fakeJournal{}, &fakeNotifier{}, "XAUUSDm", models.TPModeBoth)
	st := models.NewSessionState()

	require.True(t, lc.Execute(context.Background(), st, testEntry(), testPlan(), at(10, 13)))

	exec.statusErr = errors.New("bridge down")
	lc.CheckPromotions(context.Background(), st)
	assert.Len(t, st.Promotions, 1)
}
