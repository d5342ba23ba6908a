package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

// Config хранит параметры HTTP-сервера дашборда и размеры графиков.
type Config struct {
	ListenAddr      string      `json:"listen_addr"`
	MaxUploadMB     int         `json:"max_upload_mb"`
	PreviewRows     int         `json:"preview_rows"`
	UploadRateLimit int         `json:"upload_rate_limit"`
	Charts          ChartConfig `json:"charts"`
}

// ChartConfig задаёт размеры графиков в пикселях.
type ChartConfig struct {
	PieSize    int `json:"pie_size"`
	WideWidth  int `json:"wide_width"`
	BarHeight  int `json:"bar_height"`
	LineHeight int `json:"line_height"`
}

// Default возвращает конфигурацию, с которой дашборд запускается без config.json.
func Default() *Config {
	return &Config{
		ListenAddr:      ":8080",
		MaxUploadMB:     200,
		PreviewRows:     1000,
		UploadRateLimit: 30,
		Charts: ChartConfig{
			PieSize:    400,
			WideWidth:  2000,
			BarHeight:  600,
			LineHeight: 450,
		},
	}
}

// MaxUploadBytes возвращает лимит загрузки в байтах.
func (cfg *Config) MaxUploadBytes() int64 {
	return int64(cfg.MaxUploadMB) << 20
}

// Validate проверяет адрес, лимиты и размеры графиков.
func (cfg *Config) Validate() error {
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address: %s", cfg.ListenAddr)
	}
	if cfg.MaxUploadMB < 1 {
		return errors.New("max upload size must be ≥ 1 MB")
	}
	if cfg.PreviewRows < 0 {
		return errors.New("preview rows must not be negative")
	}
	if cfg.UploadRateLimit < 1 {
		return errors.New("upload rate limit must be ≥ 1 per minute")
	}
	c := cfg.Charts
	if c.PieSize < 100 || c.WideWidth < 100 || c.BarHeight < 100 || c.LineHeight < 100 {
		return errors.New("chart dimensions must be ≥ 100 px")
	}
	return nil
}

// ApplyEnv переопределяет значения из окружения: LISTEN_ADDR, PORT, MAX_UPLOAD_MB.
func (cfg *Config) ApplyEnv() error {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if raw := os.Getenv("MAX_UPLOAD_MB"); raw != "" {
		mb, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
		}
		cfg.MaxUploadMB = mb
	}
	return nil
}

// LoadConfig читает JSON-файл по пути path поверх значений Default.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load читает path, если файл существует, применяет окружение и валидирует результат.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
