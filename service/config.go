package service

import (
	"os"
	"path/filepath"
)

// Config is built once at process start and passed by reference into the
// components that need it. Core packages never read the environment.
type Config struct {
	Environment string
	OutputDir   string
	DBPath      string
	FontPath    string
	BoardName   string

	Pinterest struct {
		AccessToken string
	}

	Affiliate struct {
		Tag string
	}

	Anthropic struct {
		APIKey string
	}

	Catalog struct {
		Source  string // static | feed | store
		FeedURL string
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		OutputDir:   getEnv("OUTPUT_DIR", "."),
		DBPath:      getEnv("DB_PATH", "./db/glowpost.db"),
		FontPath:    getEnv("FONT_PATH", ""),
		BoardName:   getEnv("BOARD_NAME", "Daily Skincare Finds"),
	}

	config.Pinterest.AccessToken = getEnv("PINTEREST_ACCESS_TOKEN", "")
	config.Affiliate.Tag = getEnv("AMAZON_AFFILIATE_TAG", "wellnesslabco-20")
	config.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", "")

	config.Catalog.Source = getEnv("CATALOG_SOURCE", "static")
	config.Catalog.FeedURL = getEnv("CATALOG_FEED_URL", "")

	return config, nil
}

// HistoryPath is where the append-only posting log lives.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.OutputDir, "posting_history.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
