package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("ruidoso"))
}

func TestNewNop_NoEscribe(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info().Str("k", "v").Msg("ignorado")
		c := l.Component("workflow")
		c.Warn().Msg("ignorado")
	})
}
