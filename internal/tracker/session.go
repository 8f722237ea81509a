package tracker

import (
	"time"

	"github.com/actionsum/focusday/internal/classifier"
	"github.com/actionsum/focusday/internal/models"
)

// Policy holds the parameters of the session state machine.
type Policy struct {
	MinSessionDuration time.Duration
	Location           *time.Location
}

// OpenSession is the interval currently accumulating.
type OpenSession struct {
	App    string
	Title  string // Title seen when the session opened
	Domain string
	Start  time.Time
}

// State is Idle when Running is false. Open is nil until the first sample.
type State struct {
	Running bool
	Open    *OpenSession
}

// Effects are the side effects a transition asks the caller to perform.
type Effects struct {
	Flush     *models.Session  // Session to persist
	Discarded *models.Session  // Closed session below the minimum duration
	Progress  *models.Progress // Live view after the transition
}

// Observe applies one classified sample taken at now.
func (p Policy) Observe(st State, r classifier.Result, now time.Time) (State, Effects) {
	var eff Effects
	if !st.Running {
		return st, eff
	}

	if st.Open == nil || st.Open.App != r.App || st.Open.Domain != r.Domain {
		if st.Open != nil {
			eff = p.close(*st.Open, now)
		}
		st.Open = &OpenSession{App: r.App, Title: r.Title, Domain: r.Domain, Start: now}
	}

	eff.Progress = &models.Progress{
		App:     st.Open.App,
		Title:   st.Open.Title,
		Domain:  models.StringPtr(st.Open.Domain),
		Elapsed: wholeSeconds(now.Sub(st.Open.Start)),
	}
	return st, eff
}

// Finish closes the open session, if any, and returns to Idle.
func (p Policy) Finish(st State, now time.Time) (State, Effects) {
	var eff Effects
	if st.Running && st.Open != nil {
		eff = p.close(*st.Open, now)
	}
	return State{}, eff
}

func (p Policy) close(open OpenSession, now time.Time) Effects {
	s := &models.Session{
		App:       open.App,
		Title:     open.Title,
		Domain:    models.StringPtr(open.Domain),
		Duration:  wholeSeconds(now.Sub(open.Start)),
		Timestamp: models.FormatInstant(now),
		Date:      models.FormatDate(now, p.location()),
	}
	if s.Duration > wholeSeconds(p.MinSessionDuration) {
		return Effects{Flush: s}
	}
	return Effects{Discarded: s}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func wholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
