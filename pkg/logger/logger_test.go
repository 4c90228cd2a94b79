package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	l := GetLogger()

	l.SetLogLevel("debug")
	assert.Equal(t, log.DebugLevel, l.GetLevel())

	l.SetLogLevel("WARN")
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	// Unknown names fall back to info
	l.SetLogLevel("nonsense")
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}
