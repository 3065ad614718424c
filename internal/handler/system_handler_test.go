package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "0m 42s"},
		{3*time.Hour + 5*time.Minute + 1*time.Second, "3h 5m 1s"},
		{50*time.Hour + 30*time.Second, "2d 2h 0m 30s"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatDuration(tc.in))
	}
}
