package stacktrace

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func explode() {
	panic("boom")
}

func TestInternal(t *testing.T) {
	frames := Internal()

	require.NotEmpty(t, frames)
	assert.True(t, strings.HasPrefix(frames[0], "internal/pkg/stacktrace/stacktrace_test.go:"), frames[0])
}

func TestAttr_FromRecover(t *testing.T) {
	var attr slog.Attr
	func() {
		defer func() {
			_ = recover()
			attr = Attr()
		}()
		explode()
	}()

	assert.Equal(t, "stack", attr.Key)
	frames, ok := attr.Value.Any().([]string)
	require.True(t, ok)

	joined := strings.Join(frames, "\n")
	assert.Contains(t, joined, "internal/pkg/stacktrace/stacktrace_test.go:13")
	assert.NotContains(t, joined, "stacktrace/stacktrace.go")
}
