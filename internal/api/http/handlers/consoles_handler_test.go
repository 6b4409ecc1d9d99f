package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWait(t *testing.T) {
	cases := map[string]time.Duration{
		"":      0,
		"abc":   0,
		"-1":    0,
		"0":     0,
		"NaN":   0,
		"Inf":   0,
		"-Inf":  0,
		"1e300": maxWait,
		"0.5":   500 * time.Millisecond,
		"2":     2 * time.Second,
		"90":    maxWait,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, parseWait(raw))
		})
	}
}
