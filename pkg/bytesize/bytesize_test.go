package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"512MB", 512 << 20},
		{"1GB", 1 << 30},
		{"1.5GB", 1610612736},
		{"100B", 100},
		{"2kb", 2048},
		{" 1 TB ", 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "MB", "12", "-1GB", "abcGB"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100 B", Format(100))
	assert.Equal(t, "1 KB", Format(1024))
	assert.Equal(t, "1.5 MB", Format(1536*1024))
	assert.Equal(t, "2 GB", Format(2<<30))
}
