package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" envDefault:"3001"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"decodeit.db"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"decodeit-dev-jwt-secret"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"decodeit-dev-secret"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"web/static/uploads"`
	UploadURLPath string `env:"UPLOAD_URL_PATH" envDefault:"/static/uploads"`
	// CORSOrigins 为空时允许任意来源
	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:","`

	EmailUser        string `env:"EMAIL_USER"`
	EmailPass        string `env:"EMAIL_PASS"`
	SMTPHost         string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`
	ContactRecipient string `env:"CONTACT_RECIPIENT"`

	AIBaseURL string        `env:"AI_BASE_URL"`
	AITextURL string        `env:"AI_TEXT_URL"`
	AIModel   string        `env:"AI_MODEL"`
	AIAPIKey  string        `env:"AI_API_KEY"`
	AITimeout time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"30s"`
}

// Load 读取 .env（若存在）与环境变量，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse 只从当前环境变量解析，便于测试。
func Parse() (AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = ":" + cfg.Port
	}
	cfg.EmailUser = strings.TrimSpace(cfg.EmailUser)
	cfg.EmailPass = stripQuotes(cfg.EmailPass)

	origins := cfg.CORSOrigins[:0]
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSOrigins = origins
	return cfg, nil
}

// stripQuotes 去掉应用专用密码两侧误写的引号与空白。
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
