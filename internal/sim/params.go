package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ipsFactor relates the diffusion length to the particle spacing.
var ipsFactor = math.Sqrt(8)

// vdeltaFactor relates the particle spacing to the core radius.
const vdeltaFactor = 1.5

// Params holds the flow parameters of a simulation.
type Params struct {
	Re         float64
	Dt         float64
	Freestream r3.Vec
}

func DefaultParams() Params {
	return Params{Re: 100, Dt: 0.01}
}

func (p Params) Validate() error {
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	}
	if p.Re <= 0 {
		return fmt.Errorf("%w: Re must be positive, got %g", ErrInvalidParams, p.Re)
	}
	return nil
}

// HNu is the diffusion length per step, sqrt(dt/Re).
func (p Params) HNu() float64 { return math.Sqrt(p.Dt / p.Re) }

// IPS is the nominal inter-particle spacing.
func (p Params) IPS() float64 { return ipsFactor * p.HNu() }

// VDelta is the core radius given to new particles.
func (p Params) VDelta() float64 { return vdeltaFactor * p.IPS() }

// WithReForIPS returns p with Re chosen so that IPS equals ips.
func (p Params) WithReForIPS(ips float64) Params {
	p.Re = ipsFactor * ipsFactor * p.Dt / (ips * ips)
	return p
}
