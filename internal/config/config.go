package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Agent    AgentConfig
	OAuth    OAuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI string
	Tavily string
}

type AgentConfig struct {
	// Provider selects the LLM backend: "openai" or "openrouter".
	Provider           string
	Model              string
	BaseURL            string
	MaxIterations      int
	TurnTimeoutSeconds int
	SearchMaxResults   int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Tavily: getEnv("TAVILY_API_KEY", ""),
		},
		Agent: AgentConfig{
			Provider:           getEnv("AGENT_PROVIDER", "openai"),
			Model:              getEnv("AGENT_MODEL", "gpt-4o-mini"),
			BaseURL:            getEnv("AGENT_BASE_URL", ""),
			MaxIterations:      getEnvAsInt("AGENT_MAX_ITERATIONS", 5),
			TurnTimeoutSeconds: getEnvAsInt("AGENT_TURN_TIMEOUT_SECONDS", 60),
			SearchMaxResults:   getEnvAsInt("SEARCH_MAX_RESULTS", 5),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
