package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LevelFromCount(t *testing.T) {
	assert.Equal(t, LevelSilent, LevelFromCount(0))
	assert.Equal(t, LevelVerbose, LevelFromCount(1))
	assert.Equal(t, LevelDebug, LevelFromCount(2))
	assert.Equal(t, LevelDebug, LevelFromCount(5))
}

func Test_NewSilentIsNop(t *testing.T) {
	log, err := New(LevelSilent)
	require.NoError(t, err)
	require.NotNil(t, log)
	// A Nop logger must not panic and must produce no output; we can
	// only assert it doesn't error, since zap.NewNop gives no handle
	// to inspect written bytes.
	log.Info("should be discarded")
}

func Test_NewVerboseAndDebugBuildWithoutError(t *testing.T) {
	for _, lvl := range []Level{LevelVerbose, LevelDebug} {
		log, err := New(lvl)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}
