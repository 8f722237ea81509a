package window

import (
	"errors"
	"testing"
)

type MockProbe struct {
	samples []*Sample
	errs    []error
	calls   int
}

func (m *MockProbe) Poll() (*Sample, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.samples) {
		return m.samples[i], nil
	}
	return nil, nil
}

func TestMockProbe(t *testing.T) {
	var _ Probe = (*MockProbe)(nil)

	mock := &MockProbe{
		samples: []*Sample{
			{OwnerProcessName: "code", WindowTitle: "main.go - focusday", DisplayServer: "x11"},
			nil,
		},
		errs: []error{nil, errors.New("boom")},
	}

	s, err := mock.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if s.OwnerProcessName != "code" {
		t.Errorf("OwnerProcessName = %s, want code", s.OwnerProcessName)
	}

	if _, err := mock.Poll(); err == nil {
		t.Error("Poll() error = nil, want boom")
	}

	s, err = mock.Poll()
	if err != nil || s != nil {
		t.Errorf("Poll() = %v, %v, want nil, nil", s, err)
	}
}

func TestProbeFunc(t *testing.T) {
	calls := 0
	var p Probe = ProbeFunc(func() (*Sample, error) {
		calls++
		return &Sample{OwnerProcessName: "firefox"}, nil
	})

	s, err := p.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if s.OwnerProcessName != "firefox" || calls != 1 {
		t.Errorf("Poll() = %+v after %d calls", s, calls)
	}
}

func TestStatic(t *testing.T) {
	mock := &MockProbe{}
	p, err := Static(mock)()
	if err != nil {
		t.Fatalf("Static() error: %v", err)
	}
	if p != mock {
		t.Error("Static() returned a different probe")
	}
}
