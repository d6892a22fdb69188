package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SessionBackend selects where learner session state lives.
type SessionBackend string

const (
	SessionMemory SessionBackend = "memory"
	SessionRedis  SessionBackend = "redis"
	SessionSQL    SessionBackend = "sql"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	ContentRoot string

	DBDriver string
	DBDSN    string

	SessionBackend SessionBackend
	RedisURL       string

	AssetBasePath string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	EnrichCacheSize int

	CORSOrigins []string

	LogLevel string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		ContentRoot: envOr("CONTENT_ROOT", "./data"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		SessionBackend: SessionBackend(envOr("SESSION_BACKEND", string(SessionMemory))),
		RedisURL:       envOr("REDIS_URL", "redis://localhost:6379/0"),

		AssetBasePath: envOr("ASSET_BASE_PATH", "./assets"),

		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 15*time.Second),

		EnrichCacheSize: envInt("ENRICH_CACHE_SIZE", 256),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
