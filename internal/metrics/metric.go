package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// Circulation reports the magnitude of the total circulation at the last
// observed step.
type Circulation struct {
	name  string
	value float64
}

func NewCirculation() *Circulation {
	return &Circulation{name: "circulation"}
}

func (c *Circulation) Name() string       { return c.name }
func (c *Circulation) Observe(rec Record) { c.value = r3.Norm(rec.Circulation()) }
func (c *Circulation) Value() float64     { return c.value }
func (c *Circulation) Reset()             { c.value = 0 }

// ImpulseDrift reports the relative change of the impulse magnitude since
// the first observed step.
type ImpulseDrift struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewImpulseDrift() *ImpulseDrift {
	return &ImpulseDrift{name: "impulse_drift"}
}

func (d *ImpulseDrift) Name() string { return d.name }

func (d *ImpulseDrift) Observe(rec Record) {
	mag := r3.Norm(rec.Impulse())
	if d.samples == 0 {
		d.initial = mag
	}
	d.current = mag
	d.samples++
}

func (d *ImpulseDrift) Value() float64 {
	if d.samples == 0 || d.initial == 0 {
		return 0
	}
	return math.Abs(d.current-d.initial) / d.initial
}

func (d *ImpulseDrift) Reset() {
	d.initial = 0
	d.current = 0
	d.samples = 0
}

// Stability reports the fraction of observed steps whose peak particle speed
// stayed below a threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(rec Record) {
	s.samples++
	if rec.MaxSpeed > s.threshold || math.IsNaN(rec.MaxSpeed) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Defaults returns the metrics every run records.
func Defaults() []Metric {
	return []Metric{
		NewCirculation(),
		NewImpulseDrift(),
		NewStability(1e3),
	}
}
