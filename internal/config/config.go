package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// Model providers
	ModelsConfigPath string
	DefaultModel     string
	AITimeout        time.Duration

	// Embeddings (RAG)
	EmbeddingAPIKey  string
	EmbeddingAPIBase string
	EmbeddingModel   string

	// News
	NewsAPIKey string
	NewsTTL    time.Duration

	// Tools
	GeneratedDir string
	RAGDocsDir   string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "studio_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",

		ModelsConfigPath: getEnv("MODELS_CONFIG_PATH", "models.json"),
		DefaultModel:     getEnv("DEFAULT_MODEL", "mixtral"),
		AITimeout:        parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingAPIBase: getEnv("EMBEDDING_API_BASE", "https://api.openai.com/v1"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		NewsAPIKey: getEnv("NEWSAPI_KEY", ""),
		NewsTTL:    parseDuration(getEnv("NEWS_CACHE_TTL", "5m"), 5*time.Minute),

		GeneratedDir: getEnv("GENERATED_DIR", "generated"),
		RAGDocsDir:   getEnv("RAG_DOCS_DIR", "rag/documents"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
