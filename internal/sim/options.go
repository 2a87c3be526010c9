package sim

import (
	"log/slog"

	"github.com/san-kum/vortex/internal/bem"
	"github.com/san-kum/vortex/internal/compute"
)

type Option func(*Simulation)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithBackend(b compute.Backend) Option {
	return func(s *Simulation) {
		if b != nil {
			s.backend = b
		}
	}
}

func WithSolver(solver bem.Solver) Option {
	return func(s *Simulation) {
		if solver != nil {
			s.solver = solver
		}
	}
}
