package uaprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		userAgent   string
		constrained bool
	}{
		{
			name:        "iphone safari",
			userAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
			constrained: true,
		},
		{
			name:        "ipad safari",
			userAgent:   "Mozilla/5.0 (iPad; CPU OS 16_5 like Mac OS X) AppleWebKit/605.1.15",
			constrained: true,
		},
		{
			name:        "ipod touch",
			userAgent:   "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_0 like Mac OS X)",
			constrained: true,
		},
		{
			name:        "desktop chrome",
			userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0",
			constrained: false,
		},
		{
			name:        "macos safari is not constrained",
			userAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Safari/605.1.15",
			constrained: false,
		},
		{
			name:        "case sensitive token",
			userAgent:   "mozilla iphone lowercase",
			constrained: false,
		},
		{
			name:        "empty user agent fails open",
			userAgent:   "",
			constrained: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.constrained, Classify(tt.userAgent).Constrained)
		})
	}
}
