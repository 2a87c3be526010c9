package sim

import (
	"github.com/san-kum/vortex/internal/bem"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/influence"
	"github.com/san-kum/vortex/internal/metrics"
)

// step advances every collection by one time step. Phases run in order and
// each finishes before the next starts.
func (s *Simulation) step() error {
	t, dt := s.time, s.params.Dt
	fs := s.params.Freestream
	log := s.logger.With("step", s.nstep, "time", t)

	// 1: velocities on reactive panels from everything with known strength
	known := make([]elements.Collection, 0, len(s.vort)+len(s.bdry))
	known = append(known, s.vort...)
	for _, b := range s.bdry {
		if b.Category() == elements.Active {
			known = append(known, elements.FromSurfaces(b))
		}
	}
	for _, b := range s.bdry {
		if b.Category() != elements.Reactive {
			continue
		}
		b.ZeroVels()
		targ := elements.FromSurfaces(b)
		for _, src := range known {
			influence.Accumulate(src, targ, s.backend)
		}
		b.FinalizeVels(fs)
		if err := b.AddBodyMotion(-1, t); err != nil {
			return s.fail("boundary velocity", err)
		}
	}
	log.Debug("boundary velocities done", "collections", len(s.bdry))

	// 2: boundary coefficients, right-hand side and strengths
	sys := bem.Assemble(s.bdry, s.backend)
	if err := sys.Solve(s.solver); err != nil {
		return s.fail("boundary solve", err)
	}
	log.Debug("boundary solve done", "rows", sys.Rows(), "cols", sys.Cols())

	sources := make([]elements.Collection, 0, len(s.vort)+len(s.bdry))
	sources = append(sources, s.vort...)
	for _, b := range s.bdry {
		sources = append(sources, elements.FromSurfaces(b))
	}

	// 3: free vorticity
	s.velocities(s.vort, sources)
	log.Debug("vorticity velocities done", "particles", s.NumParticles())

	// 4: field points
	s.velocities(s.fldpt, sources)

	snap := s.Snapshot()
	if !metrics.Finite(snap) {
		return s.fail("velocity", ErrUnstable)
	}

	// 5: move
	for _, c := range s.vort {
		c.Move(t, dt)
	}
	for _, b := range s.bdry {
		b.Move(t, dt)
	}
	for _, c := range s.fldpt {
		c.Move(t, dt)
	}

	// 6: advance time
	s.time += dt
	s.nstep++

	s.last = metrics.Measure(s.Snapshot())
	for _, m := range s.metrics {
		m.Observe(s.last)
	}
	s.logger.Info("step done", "stats", s.last)
	return nil
}

func (s *Simulation) velocities(targs, sources []elements.Collection) {
	for _, targ := range targs {
		targ.ZeroVels()
		for _, src := range sources {
			influence.Accumulate(src, targ, s.backend)
		}
		targ.FinalizeVels(s.params.Freestream)
	}
}

func (s *Simulation) fail(phase string, err error) error {
	return &StepError{Step: s.nstep, Time: s.time, Phase: phase, Wrapped: err}
}
