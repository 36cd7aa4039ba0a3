package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnesslabco/glowpost/storage"
)

func TestHistoryCommandReadsAuditStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "glowpost.db")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("OUTPUT_DIR", dir)

	store, err := storage.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.RecordPost(context.Background(), storage.PostAudit{
		ASIN:              "B2",
		ProductName:       "Niacinamide Serum",
		AffiliateLink:     "https://www.amazon.com/dp/B2/?tag=wellnesslabco-20",
		PinID:             "pin-789",
		BoardID:           "board-2",
		ImagePath:         filepath.Join(dir, "pinterest_20260901_B2.jpg"),
		DescriptionSource: "template",
	}))
	require.NoError(t, store.Close())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"history", "--source", "db"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "B2")
	assert.Contains(t, out.String(), "Niacinamide Serum")
	assert.Contains(t, out.String(), "pin=pin-789")
	assert.Contains(t, out.String(), "board=board-2")
}

func TestHistoryCommandEmptyAuditStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "glowpost.db"))
	t.Setenv("OUTPUT_DIR", dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"history", "--source", "db"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "No posts recorded yet.")
}

func TestHistoryCommandRejectsUnknownSource(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "glowpost.db"))
	t.Setenv("OUTPUT_DIR", dir)

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"history", "--source", "csv"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown history source")
}
