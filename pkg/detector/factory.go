package detector

import (
	"errors"
	"fmt"
	"os"

	"github.com/actionsum/focusday/pkg/integrations/x11"
	"github.com/actionsum/focusday/pkg/window"
)

// ErrUnsupported is returned when no probe exists for the session type.
var ErrUnsupported = errors.New("unsupported display server")

// New opens a probe for the current graphical session.
func New() (window.Probe, error) {
	switch server := DetectDisplayServer(); server {
	case "x11":
		return openX11()
	case "wayland":
		// XWayland still exposes EWMH for X clients
		if os.Getenv("DISPLAY") != "" {
			return openX11()
		}
		return nil, fmt.Errorf("%w: %s without XWayland", ErrUnsupported, server)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, server)
	}
}

func openX11() (window.Probe, error) {
	p, err := x11.NewProbe()
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Resolver defers probe creation until monitoring starts.
func Resolver() window.Resolver {
	return New
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
