package metrics

import (
	"log/slog"
	"math"

	"github.com/san-kum/vortex/internal/elements"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record is a per-step summary of the flow. The csv tags are the column names
// of the diagnostics file.
type Record struct {
	Step        int     `csv:"step" json:"step"`
	Time        float64 `csv:"time" json:"time"`
	Particles   int     `csv:"particles" json:"particles"`
	Panels      int     `csv:"panels" json:"panels"`
	FieldPoints int     `csv:"field_points" json:"field_points"`
	CircX       float64 `csv:"circ_x" json:"circ_x"`
	CircY       float64 `csv:"circ_y" json:"circ_y"`
	CircZ       float64 `csv:"circ_z" json:"circ_z"`
	ImpulseX    float64 `csv:"impulse_x" json:"impulse_x"`
	ImpulseY    float64 `csv:"impulse_y" json:"impulse_y"`
	ImpulseZ    float64 `csv:"impulse_z" json:"impulse_z"`
	MaxStrength float64 `csv:"max_strength" json:"max_strength"`
	MaxSpeed    float64 `csv:"max_speed" json:"max_speed"`
}

func (r Record) Circulation() r3.Vec { return r3.Vec{X: r.CircX, Y: r.CircY, Z: r.CircZ} }
func (r Record) Impulse() r3.Vec     { return r3.Vec{X: r.ImpulseX, Y: r.ImpulseY, Z: r.ImpulseZ} }

func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", r.Step),
		slog.Float64("time", r.Time),
		slog.Int("particles", r.Particles),
		slog.Int("panels", r.Panels),
		slog.Float64("circulation", r3.Norm(r.Circulation())),
		slog.Float64("impulse", r3.Norm(r.Impulse())),
		slog.Float64("max_strength", r.MaxStrength),
		slog.Float64("max_speed", r.MaxSpeed),
	)
}

// Snapshot is the read-only view of a simulation that metrics observe.
type Snapshot struct {
	Step        int
	Time        float64
	Vorticity   []elements.Collection
	Boundaries  []*elements.Surfaces
	FieldPoints []elements.Collection
}

// Measure summarizes a snapshot. Circulation and impulse sum over vorticity
// and boundaries; strengths and speeds are taken over particles.
func Measure(s Snapshot) Record {
	rec := Record{Step: s.Step, Time: s.Time}

	var circ, imp r3.Vec
	var strengths, speeds []float64
	for _, c := range s.Vorticity {
		circ = r3.Add(circ, c.TotalCirculation())
		imp = r3.Add(imp, c.TotalImpulse())
		if p, ok := c.Points(); ok {
			rec.Particles += p.N()
			strengths = append(strengths, p.MaxStrength())
			for _, u := range p.Vels() {
				speeds = append(speeds, r3.Norm(u))
			}
		} else {
			rec.Panels += c.N()
		}
	}
	for _, b := range s.Boundaries {
		circ = r3.Add(circ, b.TotalCirculation())
		imp = r3.Add(imp, b.TotalImpulse())
		rec.Panels += b.NumPanels()
	}
	for _, f := range s.FieldPoints {
		rec.FieldPoints += f.N()
	}

	rec.CircX, rec.CircY, rec.CircZ = circ.X, circ.Y, circ.Z
	rec.ImpulseX, rec.ImpulseY, rec.ImpulseZ = imp.X, imp.Y, imp.Z
	if len(strengths) > 0 {
		rec.MaxStrength = floats.Max(strengths)
	}
	if len(speeds) > 0 {
		rec.MaxSpeed = floats.Max(speeds)
	}
	return rec
}

// Finite reports whether every velocity in the snapshot is finite.
func Finite(s Snapshot) bool {
	check := func(c elements.Collection) bool {
		return elements.Visit(c,
			func(p *elements.Points) bool { return finiteVecs(p.Vels()) },
			func(sf *elements.Surfaces) bool { return finiteVecs(sf.Vels()) })
	}
	for _, c := range s.Vorticity {
		if !check(c) {
			return false
		}
	}
	for _, c := range s.FieldPoints {
		if !check(c) {
			return false
		}
	}
	return true
}

func finiteVecs(vs []r3.Vec) bool {
	for _, v := range vs {
		if math.IsNaN(v.X+v.Y+v.Z) || math.IsInf(v.X+v.Y+v.Z, 0) {
			return false
		}
	}
	return true
}
