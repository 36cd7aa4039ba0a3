package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ".", config.OutputDir)
	assert.Equal(t, "Daily Skincare Finds", config.BoardName)
	assert.Equal(t, "wellnesslabco-20", config.Affiliate.Tag)
	assert.Equal(t, "static", config.Catalog.Source)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/tmp/posts")
	t.Setenv("PINTEREST_ACCESS_TOKEN", "token-123")
	t.Setenv("CATALOG_SOURCE", "feed")
	t.Setenv("CATALOG_FEED_URL", "https://example.com/bestsellers.json")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/posts", config.OutputDir)
	assert.Equal(t, "token-123", config.Pinterest.AccessToken)
	assert.Equal(t, "feed", config.Catalog.Source)
	assert.Equal(t, "https://example.com/bestsellers.json", config.Catalog.FeedURL)
}

func TestHistoryPathFollowsOutputDir(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/tmp/posts")
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/posts", "posting_history.json"), config.HistoryPath())
}
