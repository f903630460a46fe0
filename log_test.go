package fixcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLayoutLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	ResetLayoutCache()
	_, err := LayoutOf(fooType)
	require.NoError(t, err)
	_, err = LayoutOf(fooType)
	require.NoError(t, err)

	entries := logs.FilterMessage("layout computed").All()
	require.Len(t, entries, 1, "cached layouts are not logged again")
	assert.Equal(t, "Foo", entries[0].ContextMap()["type"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["size"])
}
