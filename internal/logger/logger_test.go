package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/checklist/internal/logger"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.log")
	l, err := logger.New("info", path, false)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("added todo")
	require.NoError(t, logger.Sync(l))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"added todo"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestNewRejectsLevel(t *testing.T) {
	_, err := logger.New("loud", "", false)
	require.Error(t, err)
}

func TestFileOnlyWithoutFile(t *testing.T) {
	l, err := logger.FileOnly("debug", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(0))
	assert.NoError(t, logger.Sync(nil))
}
