package health

import (
	"context"
	"errors"
)

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports p unhealthy when its ping fails.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// BuildState describes the latest build as seen by a readiness check.
type BuildState struct {
	// Ran is false until the first build completes.
	Ran bool

	// OK reports whether the latest build wrote the manifest.
	OK bool

	// Err is the failure of the latest build, if any.
	Err error
}

// BuildCheck fails until a build has run and while the latest build is
// failing.
func BuildCheck(state func() BuildState) CheckFunc {
	return func(context.Context) error {
		s := state()
		switch {
		case !s.Ran:
			return errors.New("no build has completed yet")
		case !s.OK && s.Err != nil:
			return s.Err
		case !s.OK:
			return errors.New("latest build failed")
		}
		return nil
	}
}
