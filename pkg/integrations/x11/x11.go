// Package x11 reads the focused window through EWMH properties.
package x11

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/actionsum/focusday/pkg/integrations/process"
	"github.com/actionsum/focusday/pkg/window"
)

const DisplayServer = "x11"

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Probe keeps one X connection open for the life of the sampler.
type Probe struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
	names *process.Names
}

// NewProbe connects to $DISPLAY.
func NewProbe() (*Probe, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	p := &Probe{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom),
		names: process.NewNames(),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern %s: %w", name, err)
		}
		p.atoms[name] = reply.Atom
	}

	return p, nil
}

// Poll returns nil, nil when no window has focus.
func (p *Probe) Poll() (*window.Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil, errors.New("x11 probe is closed")
	}

	win := p.activeWindow()
	if win == 0 {
		return nil, nil
	}

	instance, class := parseWMClass(p.property(win, p.atoms["WM_CLASS"], xproto.AtomString, 256))
	pid := int(decodeCardinal(p.property(win, p.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)))

	owner := class
	if owner == "" {
		owner = instance
	}
	if pid > 0 {
		if name, err := p.names.Lookup(pid); err == nil && name != "" {
			owner = name
		}
	}

	return &window.Sample{
		OwnerProcessName: owner,
		WindowTitle:      p.windowName(win),
		PID:              pid,
		DisplayServer:    DisplayServer,
	}, nil
}

func (p *Probe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return nil
}

func (p *Probe) property(win xproto.Window, atom, typ xproto.Atom, length uint32) []byte {
	reply, err := xproto.GetProperty(p.conn, false, win, atom, typ, 0, length).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

// activeWindow prefers _NET_ACTIVE_WINDOW and falls back to the top level
// parent of the input focus.
func (p *Probe) activeWindow() xproto.Window {
	if data := p.property(p.root, p.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1); len(data) >= 4 {
		if win := xproto.Window(binary.LittleEndian.Uint32(data)); win != 0 && p.hasName(win) {
			return win
		}
	}

	focus, err := xproto.GetInputFocus(p.conn).Reply()
	if err != nil || focus.Focus == 0 || focus.Focus == p.root {
		return 0
	}
	win := p.topLevel(focus.Focus)
	if !p.hasName(win) {
		return 0
	}
	return win
}

func (p *Probe) topLevel(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(p.conn, win).Reply()
		if err != nil || reply.Parent == p.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (p *Probe) hasName(win xproto.Window) bool {
	if len(p.property(win, p.atoms["_NET_WM_NAME"], p.atoms["UTF8_STRING"], 1)) > 0 {
		return true
	}
	return len(p.property(win, p.atoms["WM_NAME"], xproto.AtomString, 1)) > 0
}

func (p *Probe) windowName(win xproto.Window) string {
	if data := p.property(win, p.atoms["_NET_WM_NAME"], p.atoms["UTF8_STRING"], 256); len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return strings.TrimRight(string(p.property(win, p.atoms["WM_NAME"], xproto.AtomString, 256)), "\x00")
}

// parseWMClass splits the NUL separated WM_CLASS value.
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func decodeCardinal(data []byte) uint32 {
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

var (
	_ window.Probe  = (*Probe)(nil)
	_ window.Closer = (*Probe)(nil)
)
