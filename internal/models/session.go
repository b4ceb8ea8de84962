package models

import "time"

// PendingPromotion — пара ног, ждущая перевода в безубыток: когда нога
// TP1 закрывается, стоп ноги TP2 переносится на цену входа.
type PendingPromotion struct {
	Symbol    string
	TP1Ticket int64
	TP2Ticket int64
	Entry     float64
	OpenedAt  time.Time
}

// SessionState — состояние торговой сессии между циклами. Передаётся в
// решающую функцию явно, никаких глобальных счётчиков: прошлое состояние
// можно подложить в тестах.
type SessionState struct {
	Day          time.Time // брокерский день, по нему сбрасываем счётчик
	TradesToday  int
	LastEntryAt  time.Time // время свечи последнего принятого входа
	Promotions   []PendingPromotion
	NewsPauseTil time.Time // после новостного блока не проверяем вход до этого момента
}

func NewSessionState() *SessionState {
	return &SessionState{}
}

// RolloverIfNewDay сбрасывает дневной счётчик при смене брокерского дня.
func (s *SessionState) RolloverIfNewDay(brokerNow time.Time) bool {
	day := brokerNow.UTC().Truncate(24 * time.Hour)
	if s.Day.Equal(day) {
		return false
	}
	s.Day = day
	s.TradesToday = 0
	return true
}

// AddPromotion регистрирует пару ног под перевод в безубыток.
func (s *SessionState) AddPromotion(p PendingPromotion) {
	s.Promotions = append(s.Promotions, p)
}

// RemovePromotion удаляет запись по тикету ноги TP1.
func (s *SessionState) RemovePromotion(tp1Ticket int64) {
	out := s.Promotions[:0]
	for _, p := range s.Promotions {
		if p.TP1Ticket != tp1Ticket {
			out = append(out, p)
		}
	}
	s.Promotions = out
}
