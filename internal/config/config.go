package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Host              string        `env:"HOST" envDefault:"127.0.0.1"`
	Port              string        `env:"PORT" envDefault:"3000"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Addr is derived from Host and Port by Load.
	Addr string
}

// StorageConfig 描述两个持久化文档的位置。
type StorageConfig struct {
	TokenPath   string `env:"TOKEN_STORE_PATH" envDefault:"data/tokens.json"`
	MessagePath string `env:"MESSAGE_STORE_PATH" envDefault:"data/messages.json"`
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Format string     `env:"LOG_FORMAT" envDefault:"text"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom 从给定的键值表加载配置，不读取进程环境。
func LoadFrom(environment map[string]string) (*Config, error) {
	return load(env.Options{Environment: environment})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	addr, err := resolveAddr(cfg.Server.Host, cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT value: %q", cfg.Log.Format)
	}

	if cfg.Server.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES value: %d", cfg.Server.MaxBodyBytes)
	}

	return cfg, nil
}

// resolveAddr 解析服务器监听地址。
func resolveAddr(host, port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return port, nil
	}

	if strings.ContainsAny(port, " \t") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return net.JoinHostPort(strings.TrimSpace(host), port), nil
}
