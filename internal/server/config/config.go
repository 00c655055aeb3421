package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	RootDir         string
	MaxUploadSize   int64 // 0 means no ceiling
	ProtectedFiles  []string
	ListingTheme    string
	DatabaseURL     string
	CleanupInterval time.Duration
	TempFileMaxAge  time.Duration
	LogLevel        slog.Level
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8000"),
		RootDir:         getEnv("ROOT_DIR", workingDir()),
		MaxUploadSize:   getEnvInt64("MAX_UPLOAD_SIZE", 0),
		ProtectedFiles:  protectedFiles(os.Args[0], getEnv("PROTECTED_FILES", "")),
		ListingTheme:    getEnv("LISTING_THEME", "classic"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL_HOURS", 1*time.Hour),
		TempFileMaxAge:  getEnvDuration("TEMP_FILE_MAX_AGE_HOURS", 24*time.Hour),
		LogLevel:        getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// protectedFiles always includes the running program's own basename.
func protectedFiles(program, extra string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || name == "." || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	add(filepath.Base(program))
	for _, name := range strings.Split(extra, ",") {
		add(name)
	}
	return out
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if hours, err := strconv.ParseFloat(val, 64); err == nil && hours > 0 {
			return time.Duration(hours * float64(time.Hour))
		}
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	if val := os.Getenv(key); val != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(val)); err == nil {
			return level
		}
	}
	return fallback
}
