package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		logger, err := New("debug", format, "torchlight-intake")
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	logger, err := New("bogus", "json", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "unknown level falls back to info")
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jordan@example.com": "j***@example.com",
		" a@b.co ":           "a***@b.co",
		"not-an-email":       "***",
		"@example.com":       "***",
		"user@":              "***",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
	assert.Equal(t, "j***@example.com", Email("email", "jordan@example.com").String)
}
