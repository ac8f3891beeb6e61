package stroke

import (
	"errors"

	"github.com/inamate/inkcanvas/internal/geom"
)

var ErrNoPendingPoints = errors.New("no pending points")

// CommitState tracks deferred point delivery for a stroke.
//
//	Idle --PreCommit--> PendingCommit --CommitNext--> Animating --last point--> Idle
//	                    PendingCommit / Animating --CommitAll--> Idle
type CommitState int

const (
	Idle CommitState = iota
	PendingCommit
	Animating
)

func (c CommitState) String() string {
	switch c {
	case Idle:
		return "idle"
	case PendingCommit:
		return "pending"
	case Animating:
		return "animating"
	default:
		return "unknown"
	}
}

type commit struct {
	state   CommitState
	pending []geom.Point
	next    int
}

// CommitState returns the current deferred-delivery state.
func (s *Stroke) CommitState() CommitState { return s.commit.state }

// Pending returns how many pre-committed points have not been applied yet.
func (s *Stroke) Pending() int {
	if s.commit.state == Idle {
		return 0
	}
	return len(s.commit.pending) - s.commit.next
}

// PreCommit stages points to replace the stroke's points later, either all at
// once (CommitAll) or one per call (CommitNext). Staging again discards any
// previously staged points.
func (s *Stroke) PreCommit(points []geom.Point) {
	s.commit = commit{
		state:   PendingCommit,
		pending: append([]geom.Point(nil), points...),
	}
}

// CommitAll applies every staged point in one rebuild.
func (s *Stroke) CommitAll() error {
	if s.commit.state == Idle {
		return ErrNoPendingPoints
	}
	pending := s.commit.pending
	s.commit = commit{}
	s.SetPoints(pending)
	return nil
}

// CommitNext applies the next staged point and returns how many remain.
// The first call clears the stroke so the animation replays the whole path;
// once every point is applied the stroke equals the result of CommitAll.
func (s *Stroke) CommitNext() (int, error) {
	switch s.commit.state {
	case Idle:
		return 0, ErrNoPendingPoints
	case PendingCommit:
		s.points = s.points[:0:0]
		s.geometry.Reset()
		s.dirty = true
		s.commit.state = Animating
	}

	if s.commit.next < len(s.commit.pending) {
		s.AppendPoint(s.commit.pending[s.commit.next])
		s.commit.next++
	}
	remaining := len(s.commit.pending) - s.commit.next
	if remaining == 0 {
		s.commit = commit{}
	}
	return remaining, nil
}
