package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := New("test", Options{Dir: dir, Console: zapcore.AddSync(&console)})
	require.NoError(t, err)

	logger.Debug("debug only in file", zap.String("site_id", "site-1"))
	logger.Info("info everywhere")
	require.NoError(t, logger.Sync())

	assert.Contains(t, console.String(), "info everywhere")
	assert.NotContains(t, console.String(), "debug only in file")

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug only in file", entry["msg"])
	assert.Equal(t, "site-1", entry["site_id"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, err := New("dev", Options{Dir: t.TempDir(), Verbose: true, Console: zapcore.AddSync(&console)})
	require.NoError(t, err)

	logger.Debug("now visible")
	require.NoError(t, logger.Sync())
	assert.Contains(t, console.String(), "now visible")
}
