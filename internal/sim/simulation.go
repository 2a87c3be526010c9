package sim

import (
	"log/slog"
	"sync"

	"github.com/san-kum/vortex/internal/bem"
	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/metrics"
)

// Simulation owns the element collections of a vortex particle/panel run and
// advances them one step at a time, either synchronously with Step or in the
// background with BeginStep and Poll.
//
// While a step is running the collections belong to it: callers must Poll
// (or Wait) until the step is done before reading or changing them.
type Simulation struct {
	params Params
	time   float64
	nstep  int

	vort  []elements.Collection
	bdry  []*elements.Surfaces
	fldpt []elements.Collection

	backend compute.Backend
	solver  bem.Solver
	logger  *slog.Logger
	metrics []metrics.Metric
	last    metrics.Record

	mu  sync.Mutex
	fut *future
}

// New returns an idle simulation at time zero with no elements.
func New(p Params, opts ...Option) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		params:  p,
		backend: compute.GetBackend(),
		solver:  bem.DenseSolver{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulation) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulation) Params() Params           { return s.params }
func (s *Simulation) Time() float64            { return s.time }
func (s *Simulation) Steps() int               { return s.nstep }
func (s *Simulation) Backend() compute.Backend { return s.backend }

// Vorticity returns the free vorticity collections.
func (s *Simulation) Vorticity() []elements.Collection { return s.vort }

// Boundaries returns the boundary panel collections.
func (s *Simulation) Boundaries() []*elements.Surfaces { return s.bdry }

// FieldPoints returns the tracer and measurement collections.
func (s *Simulation) FieldPoints() []elements.Collection { return s.fldpt }

// Result returns the summary recorded at the end of the last step.
func (s *Simulation) Result() metrics.Record { return s.last }

// Metrics returns the current value of every registered metric.
func (s *Simulation) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Simulation) Snapshot() metrics.Snapshot {
	return metrics.Snapshot{
		Step:        s.nstep,
		Time:        s.time,
		Vorticity:   s.vort,
		Boundaries:  s.bdry,
		FieldPoints: s.fldpt,
	}
}

func (s *Simulation) NumParticles() int {
	n := 0
	for _, c := range s.vort {
		if p, ok := c.Points(); ok {
			n += p.N()
		}
	}
	return n
}

func (s *Simulation) NumPanels() int {
	n := 0
	for _, b := range s.bdry {
		n += b.NumPanels()
	}
	return n
}

func (s *Simulation) NumFieldPoints() int {
	n := 0
	for _, c := range s.fldpt {
		n += c.N()
	}
	return n
}

// SetParams replaces the flow parameters.
func (s *Simulation) SetParams(p Params) error {
	if s.IsStepping() {
		return ErrStepInProgress
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// SetReForIPS sets the Reynolds number that gives the requested particle
// spacing at the current time step.
func (s *Simulation) SetReForIPS(ips float64) error {
	return s.SetParams(s.params.WithReForIPS(ips))
}

// AddParticles appends active free particles given in the packed form (x, y,
// z, sx, sy, sz, r). Every radius is replaced by the current VDelta. The
// particles join the last vorticity collection when it is an active
// Lagrangian particle collection, and a new one otherwise.
func (s *Simulation) AddParticles(packed []float64) error {
	if s.IsStepping() {
		return ErrStepInProgress
	}
	if len(packed) == 0 {
		return nil
	}
	if len(packed)%elements.PackedStride != 0 {
		// let the collection report the shape error
		_, err := elements.NewPointsPacked(packed, elements.Active, elements.Lagrangian, nil)
		return err
	}

	vd := s.params.VDelta()
	recs := make([]float64, len(packed))
	copy(recs, packed)
	for i := elements.PackedStride - 1; i < len(recs); i += elements.PackedStride {
		recs[i] = vd
	}

	if n := len(s.vort); n > 0 {
		if p, ok := s.vort[n-1].Points(); ok && p.Category() == elements.Active && p.Movement() == elements.Lagrangian {
			return p.AddPacked(recs)
		}
	}
	p, err := elements.NewPointsPacked(recs, elements.Active, elements.Lagrangian, nil)
	if err != nil {
		return err
	}
	s.vort = append(s.vort, elements.FromPoints(p))
	return nil
}

// AddVortex adds a free vorticity collection.
func (s *Simulation) AddVortex(c elements.Collection) error {
	if s.IsStepping() {
		return ErrStepInProgress
	}
	s.vort = append(s.vort, c)
	return nil
}

// AddBoundary adds a boundary panel collection and moves it to the current
// time.
func (s *Simulation) AddBoundary(b *elements.Surfaces) error {
	if s.IsStepping() {
		return ErrStepInProgress
	}
	b.Transform(s.time)
	s.bdry = append(s.bdry, b)
	return nil
}

// AddFieldPoints adds a collection that is moved and measured but never
// acts as a source.
func (s *Simulation) AddFieldPoints(p *elements.Points) error {
	if s.IsStepping() {
		return ErrStepInProgress
	}
	s.fldpt = append(s.fldpt, elements.FromPoints(p))
	return nil
}

// Reset waits for any running step, then clears time, elements and metrics.
// Parameters and options are kept.
func (s *Simulation) Reset() {
	if err := s.Wait(); err != nil {
		s.logger.Warn("discarding failed step on reset", "err", err)
	}
	s.time = 0
	s.nstep = 0
	s.vort = nil
	s.bdry = nil
	s.fldpt = nil
	s.last = metrics.Record{}
	for _, m := range s.metrics {
		m.Reset()
	}
}
