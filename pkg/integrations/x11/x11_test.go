package x11

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWMClass(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		instance string
		class    string
	}{
		{"both", []byte("navigator\x00firefox\x00"), "navigator", "firefox"},
		{"instance only", []byte("xterm\x00"), "xterm", ""},
		{"empty", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, class := parseWMClass(tt.data)
			assert.Equal(t, tt.instance, instance)
			assert.Equal(t, tt.class, class)
		})
	}
}

func TestDecodeCardinal(t *testing.T) {
	assert.Equal(t, uint32(4242), decodeCardinal([]byte{0x92, 0x10, 0, 0}))
	assert.Zero(t, decodeCardinal([]byte{1, 2}))
}

func TestNewProbeWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	p, err := NewProbe()
	if err == nil {
		p.Close()
		t.Skip("X server reachable without DISPLAY")
	}
	assert.Contains(t, err.Error(), "X server")
}

func TestClosedProbe(t *testing.T) {
	p := &Probe{}
	_, err := p.Poll()
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}
