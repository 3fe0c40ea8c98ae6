package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds process-level settings. Game rules live in room configs,
// not here.
type Config struct {
	Addr      string // listen address
	PublicURL string // external base URL, used for QR join links
	StaticDir string // directory served as the web client
}

// Load reads .env if present, then the environment. Missing values fall
// back to defaults that work for local development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      getenv("ADDR", ":8080"),
		PublicURL: getenv("PUBLIC_URL", "http://localhost:8080"),
		StaticDir: getenv("STATIC_DIR", "public"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
