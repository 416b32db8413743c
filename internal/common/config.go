package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	OCR    OCRConfig    `yaml:"ocr"`
	LLM    LLMConfig    `yaml:"llm"`
	Export ExportConfig `yaml:"export"`
	Store  StoreConfig  `yaml:"store"`
}

// OCRConfig holds recognizer-related configuration
type OCRConfig struct {
	Tesseract   string `yaml:"tesseract"`    // binary name or absolute path; if empty -> "tesseract"
	Languages   string `yaml:"languages"`    // tesseract language set, e.g. "eng+rus"
	TessdataDir string `yaml:"tessdata_dir"` // optional --tessdata-dir
	DPI         int    `yaml:"dpi"`          // user_defined_dpi hint, 0 = let tesseract guess
	TempDir     string `yaml:"temp_dir"`     // scratch dir for preprocessed image variants
}

// LLMConfig holds AI-provider configuration for the alternative extraction path
type LLMConfig struct {
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	SheetName string `yaml:"sheet_name"`
}

// StoreConfig holds local store configuration
type StoreConfig struct {
	Path string `yaml:"path"` // sqlite file path
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract:   getEnv("CARDSCAN_TESSERACT", "tesseract"),
			Languages:   getEnv("CARDSCAN_LANGS", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("CARDSCAN_DPI", 0),
			TempDir:     getEnv("CARDSCAN_TMP", os.TempDir()),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Export: ExportConfig{
			SheetName: getEnv("CARDSCAN_SHEET", "Cards"),
		},
		Store: StoreConfig{
			Path: getEnv("CARDSCAN_DB", "cards.db"),
		},
	}
}

// LoadConfigFile overlays a YAML config file on top of env defaults.
// A missing file is not an error; a malformed one is.
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, WrapError(err, "read config file")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, WrapError(err, fmt.Sprintf("parse config file %s", path))
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.OCR.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "ocr.tesseract is required", ErrInvalidInput)
	}
	if c.OCR.Languages == "" {
		return NewAppError("CONFIG_ERROR", "ocr.languages is required", ErrInvalidInput)
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "store.path is required", ErrInvalidInput)
	}
	return nil
}
