package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
// It is built once in main and passed down explicitly; core logic never
// reads the environment itself.
type Config struct {
	OpenAIKey      string
	OpenAIEndpoint string
	OpenAIModel    string
	TTSBaseURL     string
	TTSLanguage    string
	MaxUploadBytes int64
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	return Config{
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint: getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TTSBaseURL:     getEnv("TTS_BASE_URL", "https://translate.google.com/translate_tts"),
		TTSLanguage:    getEnv("TTS_LANGUAGE", "en"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 32<<20),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
