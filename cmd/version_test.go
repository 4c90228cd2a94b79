package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewerRelease(t *testing.T) {
	tests := []struct {
		current string
		tag     string
		want    bool
	}{
		{"1.0.0", "v1.0.1", true},
		{"1.0.0", "v1.0.0", false},
		{"1.2.0", "v1.1.9", false},
		{"v0.9.0", "v1.0.0", true},
		{"dev", "v0.0.1", true},
	}
	for _, tt := range tests {
		t.Run(tt.current+"_vs_"+tt.tag, func(t *testing.T) {
			got, err := isNewerRelease(tt.current, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNewerRelease_BadInputs(t *testing.T) {
	_, err := isNewerRelease("not-a-version", "v1.0.0")
	assert.Error(t, err)
	_, err = isNewerRelease("1.0.0", "nightly")
	assert.Error(t, err)
}
