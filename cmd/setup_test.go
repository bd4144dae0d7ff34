//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemusake/tdnet-downloader/internal/config"
)

func TestResolveDate_DefaultsToToday(t *testing.T) {
	orig := dateFlag
	defer func() { dateFlag = orig }()

	dateFlag = ""
	date, err := resolveDate()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}$`), date)
}

func TestResolveDate_Canonicalizes(t *testing.T) {
	orig := dateFlag
	defer func() { dateFlag = orig }()

	for _, input := range []string{"20250819", "2025-08-19", "2025/08/19"} {
		dateFlag = input
		date, err := resolveDate()
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "20250819", date)
	}
}

func TestResolveDate_Invalid(t *testing.T) {
	orig := dateFlag
	defer func() { dateFlag = orig }()

	dateFlag = "2025-13-40"
	_, err := resolveDate()
	assert.Error(t, err)
}

func TestInitStore_SQLite(t *testing.T) {
	tmpDir := t.TempDir()
	dsn := filepath.Join(tmpDir, "test.db")

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "sqlite",
			DSN:    dsn,
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	// When DSN is empty, initStore should default to "tdnet.db". Run in
	// a temp dir so we don't create files in the project root.
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "sqlite",
			DSN:    "",
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	// Verify the default file was created.
	_, statErr := os.Stat(filepath.Join(tmpDir, "tdnet.db"))
	assert.NoError(t, statErr)
}

func TestInitStore_Off(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "off",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.NoError(t, err)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "mysql",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestOpenStore_Migrates(t *testing.T) {
	tmpDir := t.TempDir()

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(tmpDir, "test.db"),
		},
	}

	st, err := openStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	// Migrated schema accepts a run straight away.
	run, err := st.SaveRun(context.Background(), "20250819")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestOpenStore_Off(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "off",
		},
	}

	st, err := openStore(context.Background())
	assert.Nil(t, st)
	assert.NoError(t, err)
}
