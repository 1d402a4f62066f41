package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	OutputDir    string
	ExportFile   string
	MetadataFile string

	LogLevel  string
	LogFormat string
	LogFile   string

	City        string
	State       string
	Areas       []string
	Specialties []string

	FetchMode          string
	FetchTimeoutMs     int
	RequestDelayMs     int
	MaxListingsPerPage int
	CheckpointEvery    int
	BrowserHeadless    bool
	BrowserWaitMs      int

	AIEnabled     bool
	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	AIMaxTokens   int
	AITemperature float64
	AITimeoutMs   int

	SweepIntervalHours int
}

var (
	DefaultAreas = []string{
		"aundh", "baner", "wakad", "kothrud", "viman-nagar",
		"hadapsar", "pune-city", "camp", "koregaon-park", "deccan",
	}
	DefaultSpecialties = []string{
		"cardiology", "dermatology", "neurology", "orthopedic", "pediatric", "gynecology",
		"general-medicine", "oncology", "psychiatry", "ent", "ophthalmology", "urology",
	}
)

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "drdata.db")),
		OutputDir:    getEnv("OUTPUT_DIR", cwd),
		ExportFile:   getEnv("EXPORT_FILE", "healthcare_doctors.xlsx"),
		MetadataFile: getEnv("METADATA_FILE", "scraping_metadata.json"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogFile:   getEnv("LOG_FILE", ""),

		City:        getEnv("SCRAPE_CITY", "pune"),
		State:       getEnv("SCRAPE_STATE", "Maharashtra"),
		Areas:       getEnvList("SCRAPE_AREAS", DefaultAreas),
		Specialties: getEnvList("SCRAPE_SPECIALTIES", DefaultSpecialties),

		FetchMode:          getEnv("FETCH_MODE", "http"),
		FetchTimeoutMs:     getEnvInt("FETCH_TIMEOUT_MS", 15000),
		RequestDelayMs:     getEnvInt("REQUEST_DELAY_MS", 500),
		MaxListingsPerPage: getEnvInt("MAX_LISTINGS_PER_PAGE", 25),
		CheckpointEvery:    getEnvInt("CHECKPOINT_EVERY", 3),
		BrowserHeadless:    getEnvBool("BROWSER_HEADLESS", true),
		BrowserWaitMs:      getEnvInt("BROWSER_WAIT_MS", 8000),

		AIEnabled:     getEnvBool("AI_ENABLED", true),
		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.groq.com/openai/v1/chat/completions"),
		AIAPIKey:      getEnv("GROQ_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "llama3-8b-8192"),
		AIMaxTokens:   getEnvInt("AI_MAX_TOKENS", 300),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 0.3),
		AITimeoutMs:   getEnvInt("AI_TIMEOUT_MS", 30000),

		SweepIntervalHours: getEnvInt("SWEEP_INTERVAL_HOURS", 168),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func (c Config) ExportPath() string {
	return filepath.Join(c.OutputDir, c.ExportFile)
}

func (c Config) MetadataPath() string {
	return filepath.Join(c.OutputDir, c.MetadataFile)
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

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return append([]string(nil), fallback...)
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
