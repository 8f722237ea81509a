package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m"},
		{3600, "60m"},
		{7300, "2h"},
		{-30, "30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRoundedUnit(tt.seconds))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{8, "8s"},
		{750, "12m 30s"},
		{3900, "1h 05m"},
		{-5, "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}
