package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Pipeline execution mode: "publish" (hard gate) or "ci" (soft gate)
	Mode string

	// Paths
	Paths PathsConfig

	// External API
	EIA EIAConfig

	// Cache freshness
	CacheTTLBusinessDays int

	// Validation thresholds
	Validation ValidationConfig

	// Backtest defaults
	Backtest BacktestConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Read-only status API
	APIPort string
}

// PathsConfig holds every file location the pipeline touches.
// 디렉토리 생성은 EnsureDirs()에서만 (import 시점 부작용 금지)
type PathsConfig struct {
	DataDir      string
	OutputsDir   string
	SnapshotsDir string

	PanelFile      string
	SnapshotFile   string
	LineageLogFile string
	StatusFile     string
	RunMetaFile    string
	NoticeFile     string
	MetricsFile    string
	ForecastFile   string
}

// EIAConfig holds EIA v2 API configuration
type EIAConfig struct {
	APIKey        string
	BaseURL       string
	EndpointsFile string
	Timeout       time.Duration
	RatePerSecond float64
	MaxRetries    int
	RetryDelay    time.Duration
}

// ValidationConfig holds the gate thresholds
type ValidationConfig struct {
	MaxStaleBusinessDays int
	TolerancePct         float64
}

// BacktestConfig holds rolling backtest defaults
type BacktestConfig struct {
	Horizon  int
	Lookback int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	dataDir := getEnv("FT_DATA_DIR", "data")
	outDir := getEnv("FT_OUTPUTS_DIR", "outputs")
	snapDir := getEnv("FT_SNAPSHOTS_DIR", "snapshots")

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Mode: getEnv("FT_MODE", "publish"),

		Paths: PathsConfig{
			DataDir:      dataDir,
			OutputsDir:   outDir,
			SnapshotsDir: snapDir,

			PanelFile:      filepath.Join(outDir, "panel_monthly.csv"),
			SnapshotFile:   filepath.Join(snapDir, "panel_monthly_prev.csv"),
			LineageLogFile: filepath.Join(outDir, "lineage_log.jsonl"),
			StatusFile:     filepath.Join(outDir, "status.json"),
			RunMetaFile:    filepath.Join(outDir, "run_meta.json"),
			NoticeFile:     filepath.Join(outDir, "FORECAST_NOTICE.txt"),
			MetricsFile:    filepath.Join(outDir, "metrics.csv"),
			ForecastFile:   filepath.Join(outDir, "forecast_12m.csv"),
		},

		EIA: EIAConfig{
			APIKey:        getEnv("EIA_API_KEY", ""),
			BaseURL:       getEnv("EIA_BASE_URL", "https://api.eia.gov/v2"),
			EndpointsFile: getEnv("EIA_ENDPOINTS_FILE", filepath.Join("config", "eia_endpoints.yml")),
			Timeout:       getEnvAsDuration("EIA_TIMEOUT", "30s"),
			RatePerSecond: getEnvAsFloat("EIA_RATE_PER_SECOND", 2.0),
			MaxRetries:    getEnvAsInt("EIA_MAX_RETRIES", 4),
			RetryDelay:    getEnvAsDuration("EIA_RETRY_DELAY", "4s"),
		},

		CacheTTLBusinessDays: getEnvAsInt("FT_CACHE_TTL_BUSINESS_DAYS", 3),

		Validation: ValidationConfig{
			MaxStaleBusinessDays: getEnvAsInt("FT_MAX_STALE_BUSINESS_DAYS", 3),
			TolerancePct:         getEnvAsFloat("FT_TOLERANCE_PCT", 0.02),
		},

		Backtest: BacktestConfig{
			Horizon:  getEnvAsInt("FT_BACKTEST_HORIZON", 12),
			Lookback: getEnvAsInt("FT_BACKTEST_LOOKBACK", 60),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		APIPort: getEnv("FT_API_PORT", "8087"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Mode != "publish" && c.Mode != "ci" {
		return fmt.Errorf("FT_MODE must be one of: publish, ci")
	}

	if c.Validation.TolerancePct <= 0 {
		return fmt.Errorf("FT_TOLERANCE_PCT must be positive")
	}

	return nil
}

// EnsureDirs creates the working directories. The orchestrator calls this
// exactly once at startup; nothing else creates directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputsDir, c.Paths.SnapshotsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
