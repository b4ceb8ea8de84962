package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	bridgeURLENV      = "MT5_BRIDGE_URL"
	bridgeWSENV       = "MT5_BRIDGE_WS_URL"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	// MT5-мост: REST для свечей/ордеров, WS для тиков
	Bridge struct {
		URL   string `yaml:"url"`
		WSURL string `yaml:"ws_url"`
	} `yaml:"bridge"`

	News struct {
		URL string `yaml:"url"` // пусто => фильтр всегда пропускает
	} `yaml:"news"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	Symbol string `yaml:"symbol"`

	// Сколько от депозита готовы потерять по СТОПУ
	RiskPct float64 `yaml:"risk_pct"` // 1.0 => 1% баланса

	// Буфер к стопу в ценовых единицах ($1 для золота)
	SLBuffer float64 `yaml:"sl_buffer"`

	// Минимальный R:R до лучшего тейка, ниже — пропускаем вход
	MinRR float64 `yaml:"min_rr"`

	MaxTradesPerDay int `yaml:"max_trades_per_day"`

	// Часы сессий по времени Market Watch брокера (UTC+0 у Exness)
	SessionHours []int `yaml:"session_hours"`

	// Режимы стратегии
	UseOrderBlock   bool   `yaml:"use_order_block"`
	UsePowerOfThree bool   `yaml:"use_power_of_three"`
	TPMode          string `yaml:"tp_mode"`         // mid | full | both
	SweepTieBreak   string `yaml:"sweep_tie_break"` // short | long

	EntryTimeframe string `yaml:"entry_timeframe"` // M5
	RangeTimeframe string `yaml:"range_timeframe"` // H1
	EntryLookback  int    `yaml:"entry_lookback"`
	RangeLookback  int    `yaml:"range_lookback"`

	PollInterval      time.Duration
	DataRetryInterval time.Duration
	NewsCooldown      time.Duration
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Symbol:          getenvDefault("SYMBOL", "XAUUSDm"),
		RiskPct:         floatFromEnv("RISK_PCT", 1.0),
		SLBuffer:        floatFromEnv("SL_BUFFER", 1.0),
		MinRR:           floatFromEnv("MIN_RR", 2.0),
		MaxTradesPerDay: intFromEnv("MAX_TRADES_PER_DAY", 3),
		SessionHours:    hoursFromEnv("SESSION_HOURS", []int{1, 5, 9, 13, 15, 18, 21}),

		UseOrderBlock:   boolFromEnv("USE_ORDER_BLOCK", true),
		UsePowerOfThree: boolFromEnv("USE_POWER_OF_THREE", true),
		TPMode:          getenvDefault("TP_MODE", "both"),
		SweepTieBreak:   getenvDefault("SWEEP_TIE_BREAK", "short"),

		EntryTimeframe: getenvDefault("ENTRY_TIMEFRAME", "M5"),
		RangeTimeframe: getenvDefault("RANGE_TIMEFRAME", "H1"),
		EntryLookback:  intFromEnv("ENTRY_LOOKBACK", 10),
		RangeLookback:  intFromEnv("RANGE_LOOKBACK", 3),

		PollInterval:      durationFromEnv("POLL_INTERVAL", "60s"),
		DataRetryInterval: durationFromEnv("DATA_RETRY_INTERVAL", "10s"),
		NewsCooldown:      durationFromEnv("NEWS_COOLDOWN", "30m"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if v := os.Getenv(bridgeURLENV); v != "" {
		config.Bridge.URL = v
	}
	if v := os.Getenv(bridgeWSENV); v != "" {
		config.Bridge.WSURL = v
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.TPMode {
	case "mid", "full", "both":
	default:
		return fmt.Errorf("tp_mode must be mid|full|both, got %q", c.TPMode)
	}
	switch c.SweepTieBreak {
	case "short", "long":
	default:
		return fmt.Errorf("sweep_tie_break must be short|long, got %q", c.SweepTieBreak)
	}
	if c.RiskPct <= 0 {
		return fmt.Errorf("risk_pct must be > 0")
	}
	if c.RangeLookback < 3 && c.UsePowerOfThree {
		return fmt.Errorf("range_lookback must be >= 3 for power-of-three")
	}
	if len(c.SessionHours) == 0 {
		return fmt.Errorf("session_hours is empty")
	}
	if c.Bridge.URL == "" {
		return fmt.Errorf("bridge url is required (%s)", bridgeURLENV)
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

// hoursFromEnv парсит "1,5,9" в список часов.
func hoursFromEnv(key string, def []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]int, 0, 8)
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 23 {
			return def
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
