package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// FrontendBaseURL is where OAuth callback redirects land.
	FrontendBaseURL string

	// AuthTokenSecret signs identity tokens and OAuth state tokens.
	AuthTokenSecret string
	AuthTokenTTL    time.Duration

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string

	Google    GoogleConfig
	Broker    BrokerConfig
	RateLimit RateLimitConfig

	EventsCacheTTL time.Duration

	Logger LoggerConfig
}

type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	Scopes          []string
	AuthURL         string
	TokenURL        string
	UserinfoURL     string
	CalendarBaseURL string
}

type BrokerConfig struct {
	// Mode selects how the agenda client fetches events: "direct" calls the
	// calendar provider with locally minted tokens, "proxy" goes through the
	// backend events endpoint.
	Mode string

	// BackendBaseURL is the daybook API base used for minting and proxying.
	BackendBaseURL string

	// Namespace prefixes durable token cache keys.
	Namespace string
}

const (
	BrokerModeDirect = "direct"
	BrokerModeProxy  = "proxy"
)

// RateLimitConfig bounds the token minting endpoint. It only takes effect
// when redis is configured.
type RateLimitConfig struct {
	MintRate  float64
	MintBurst int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:         getenv("APP_SERVICE", "daybook"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		FrontendBaseURL: strings.TrimRight(getenv("FRONTEND_BASE_URL", "http://localhost:5173"), "/"),
		AuthTokenSecret: strings.TrimSpace(getenv("AUTH_TOKEN_SECRET", "")),
		AuthTokenTTL:    getenvDuration("AUTH_TOKEN_TTL", 7*24*time.Hour),
		DBType:          getenv("DATABASE_TYPE", "postgres"),
		DBHost:          getenv("DATABASE_HOST", "localhost"),
		DBPort:          getenv("DATABASE_PORT", "5432"),
		DBName:          getenv("DATABASE_NAME", "daybook"),
		DBUser:          getenv("DATABASE_USER", "postgres"),
		DBPassword:      getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:       getenv("DATABASE_SSLMODE", "disable"),
		RedisAddr:       strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		Google: GoogleConfig{
			ClientID:        strings.TrimSpace(getenv("GOOGLE_CLIENT_ID", "")),
			ClientSecret:    strings.TrimSpace(getenv("GOOGLE_CLIENT_SECRET", "")),
			RedirectURL:     strings.TrimSpace(getenv("GOOGLE_REDIRECT_URL", "")),
			Scopes:          parseScopes(getenv("GOOGLE_SCOPES", "")),
			AuthURL:         getenv("GOOGLE_AUTH_URL", ""),
			TokenURL:        getenv("GOOGLE_TOKEN_URL", ""),
			UserinfoURL:     getenv("GOOGLE_USERINFO_URL", ""),
			CalendarBaseURL: getenv("GOOGLE_CALENDAR_BASE_URL", ""),
		},
		Broker: BrokerConfig{
			Mode:           normalizeBrokerMode(getenv("BROKER_MODE", BrokerModeDirect)),
			BackendBaseURL: strings.TrimRight(getenv("BACKEND_BASE_URL", "http://localhost:8080"), "/"),
			Namespace:      getenv("BROKER_CACHE_NAMESPACE", "daybook:gcal"),
		},
		RateLimit: RateLimitConfig{
			MintRate:  getenvFloat("MINT_RATE_LIMIT_RPS", 1),
			MintBurst: getenvInt("MINT_RATE_LIMIT_BURST", 5),
		},
		EventsCacheTTL: getenvDuration("EVENTS_CACHE_TTL", 20*time.Second),
		Logger: LoggerConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
	}
}

type LoggerConfig struct {
	Level string
}

func normalizeBrokerMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case BrokerModeProxy:
		return BrokerModeProxy
	default:
		return BrokerModeDirect
	}
}

func parseScopes(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) == 0 {
		return nil
	}
	return parts
}

// Module provides application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)
