package world

import (
	"math"
	"time"
)

// Verdict is the outcome of validating one proposed move.
type Verdict int

const (
	Accept Verdict = iota
	RejectRateLimited
	RejectOutOfBounds
	RejectSpeedViolation
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RejectRateLimited:
		return "rate_limited"
	case RejectOutOfBounds:
		return "out_of_bounds"
	case RejectSpeedViolation:
		return "speed_violation"
	}
	return "unknown"
}

// MoveValidator is a stateless move-acceptance policy. The speed check is a
// coarse anti-teleport heuristic, not a physics model, and can be disabled
// by configuration.
type MoveValidator struct {
	WorldWidth  float64
	WorldHeight float64
	MaxSpeed    float64
	SpeedBuffer float64
	Throttle    time.Duration
	SpeedCheck  bool
}

// Validate checks a proposed position for p at time now. On Accept the caller
// must set p.LastMoveAt = now before evaluating the next message; that makes
// the limiter a leaky bucket of one.
func (v MoveValidator) Validate(p *Player, x, y float64, now time.Time) Verdict {
	if now.Sub(p.LastMoveAt) < v.Throttle {
		return RejectRateLimited
	}
	if x < 0 || x > v.WorldWidth || y < 0 || y > v.WorldHeight {
		return RejectOutOfBounds
	}
	if v.SpeedCheck {
		dist := math.Hypot(x-p.X, y-p.Y)
		if dist > v.MaxSpeed*v.SpeedBuffer {
			return RejectSpeedViolation
		}
	}
	return Accept
}
