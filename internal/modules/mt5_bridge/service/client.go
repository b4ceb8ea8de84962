package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"crt_bot/internal/models"
	"crt_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// ErrNoData — мост не отдал котировки (терминал не прогрет или история
// не подкачана). Не фатально: цикл пропускается и повторяется позже.
var ErrNoData = errors.New("mt5 bridge: no data")

// Client ходит в REST MT5-моста и держит WS-кеш последнего тика.
// Сам терминал (инициализация, логин) — забота моста, не наша.
type Client struct {
	cfg *config.Config

	http     *http.Client
	wsDialer *websocket.Dialer
	baseURL  string
	wsURL    string

	tickMu sync.RWMutex
	tick   models.Tick
	tickAt time.Time // когда тик приехал по WS
}

// Сколько живёт WS-кеш тика, дальше ходим по REST.
const tickStaleAfter = 10 * time.Second

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: 10 * time.Second},
		wsDialer: &websocket.Dialer{},
		baseURL:  cfg.Bridge.URL,
		wsURL:    cfg.Bridge.WSURL,
	}
}

func isNoData(err error) bool { return errors.Is(err, ErrNoData) }

// envelope — общий конверт ответов моста.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w; body=%s", err, string(data))
	}
	if env.Code != 0 {
		return fmt.Errorf("bridge error code=%d msg=%s", env.Code, env.Msg)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w; body=%s", err, string(data))
	}
	return nil
}
