package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	CaptionModel string

	UploadDir     string
	TextractedDir string

	ChunkSize    int
	ChunkOverlap int
	MaxFileBytes int64
	MaxImageDim  int
	OCRLanguage  string

	Workers        int
	WatchUploads   bool
	CaptionPerSec  float64
	ChatTimeout    time.Duration
	ConnectRetries int
	ConnectBackoff time.Duration
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "9090"),

		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		CaptionModel: getEnv("CAPTION_MODEL", "gemini-1.5-flash"),

		UploadDir:     getEnv("UPLOAD_FOLDER", "uploads"),
		TextractedDir: getEnv("TEXTRACTED_PATH", "textracted"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		MaxFileBytes: int64(getEnvInt("MAX_FILE_MB", 50)) << 20,
		MaxImageDim:  getEnvInt("MAX_IMAGE_DIM", 1000),
		OCRLanguage:  getEnv("OCR_LANGUAGE", "eng"),

		Workers:        getEnvInt("INGEST_WORKERS", 4),
		WatchUploads:   getEnv("WATCH_UPLOADS", "") == "true",
		CaptionPerSec:  getEnvFloat("CAPTION_PER_SEC", 2),
		ChatTimeout:    getEnvDuration("CHAT_TIMEOUT", 30*time.Second),
		ConnectRetries: getEnvInt("STORE_CONNECT_RETRIES", 5),
		ConnectBackoff: getEnvDuration("STORE_CONNECT_BACKOFF", 2*time.Second),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a number, using default %g", key, v, def)
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
