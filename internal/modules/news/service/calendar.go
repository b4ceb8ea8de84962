package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"crt_bot/internal/modules/config"
	"crt_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// Filter — предикат "сейчас торговать нельзя" по экономическому календарю.
// Эндпоинт отдаёт события с окнами блокировки; без эндпоинта фильтр
// всегда пропускает.
type Filter struct {
	cfg  *config.Config
	http *http.Client
}

func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type calendarEvent struct {
	Title string `json:"title"`
	Start int64  `json:"start"` // unix, начало окна блокировки
	End   int64  `json:"end"`
}

// IsBlocked — попадаем ли сейчас в окно новостного события.
// Ошибку календаря не считаем блокировкой: лог и торгуем дальше.
func (f *Filter) IsBlocked(ctx context.Context) bool {
	if f.cfg.News.URL == "" {
		return false
	}

	events, err := f.fetch(ctx)
	if err != nil {
		logger.Error("[NEWS] календарь недоступен: %v", err)
		return false
	}

	now := time.Now().UTC()
	for _, e := range events {
		start := time.Unix(e.Start, 0).UTC()
		end := time.Unix(e.End, 0).UTC()
		if !now.Before(start) && now.Before(end) {
			logger.Info("[NEWS] блокировка: %s до %s", e.Title, end.Format(time.RFC3339))
			return true
		}
	}
	return false
}

func (f *Filter) fetch(ctx context.Context) ([]calendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.News.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var events []calendarEvent
	if err := sonic.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return events, nil
}
