package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTMLDir   string
	OutputDir string
	DBPath    string

	OverflowWarnThreshold int
	CostWarnThreshold     float64
	PctSuppressNotStarted bool
	ParseWorkers          int
	NoteMaxLen            int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTMLDir:   getEnv("HTML_DIR", filepath.Join(cwd, "html")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "csv")),
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),

		OverflowWarnThreshold: getEnvInt("OVERFLOW_WARN_THRESHOLD", 4),
		CostWarnThreshold:     getEnvFloat("COST_WARN_THRESHOLD", 10_000_000_000),
		PctSuppressNotStarted: getEnvBool("PCT_SUPPRESS_NOT_STARTED", false),
		ParseWorkers:          getEnvInt("PARSE_WORKERS", 4),
		NoteMaxLen:            getEnvInt("NOTE_MAX_LEN", 500),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
