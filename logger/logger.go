// Package logger provides the shared zap sugared logger used by the API, the
// web UI and the CLI, plus helpers for keeping respondent data out of logs.
package logger

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest switches the logger to a development encoder on stdout.
var IsTest bool

func buildConfig(level zapcore.Level, environment string) zap.Config {
	var cfg zap.Config
	switch {
	case IsTest:
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stdout"}
	case environment == "production":
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg
}

func initLoggerInternal() {
	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	zapLogger, err := buildConfig(level, os.Getenv("SERVER_ENVIRONMENT")).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

// InitLogger initializes the global logger once.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// Component returns the shared logger tagged with a component name.
func Component(name string) *zap.SugaredLogger {
	return GetLogger().With("component", name)
}

// Close flushes buffered log entries.
func Close() error {
	if logger == nil || IsTest {
		return nil
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen characters
// of s and elides the rest. Short strings are masked entirely.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskEmail masks the local part of a respondent email and keeps the domain.
func MaskEmail(email string) string {
	if strings.Count(email, "@") != 1 {
		return MaskSensitiveString(email, 2, 2)
	}
	local, domain, _ := strings.Cut(email, "@")
	return MaskSensitiveString(local, 2, 1) + "@" + domain
}

// MaskConnectionString hides the password in a postgres URL or key-value DSN.
func MaskConnectionString(connStr string) string {
	if strings.Contains(connStr, "://") {
		u, err := url.Parse(connStr)
		if err == nil {
			return u.Redacted()
		}
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=***"
		}
	}
	return strings.Join(fields, " ")
}
