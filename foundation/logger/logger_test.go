package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/logger"
)

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := logger.New(dir, "advisor", "test")
	require.NoError(t, err)

	log.Infow("startup", "status", "ok")
	_ = log.Sync()

	bytes, err := os.ReadFile(filepath.Join(dir, "advisor.log"))
	require.NoError(t, err)
	assert.Contains(t, string(bytes), `"msg":"startup"`)
	assert.Contains(t, string(bytes), `"service":"advisor"`)
}
