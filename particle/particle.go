// Package particle defines the per-particle record the orthant tree and SPH
// kernels operate on.
package particle

import "github.com/s417-lama/sph-dambreaking/sphmath"

// Type distinguishes the two particle roles in a dam-break scene.
type Type int

const (
	// Fluid particles move under the SPH pair forces and gravity.
	Fluid Type = 1
	// Wall particles are static boundary particles: they take part in
	// density and hydro accumulation for their fluid neighbors but are
	// never integrated forward.
	Wall Type = 2
)

// DensResult is the output of a density pass (kernel.CalcDens) for one
// particle, applied back via ApplyDens.
type DensResult struct {
	Dens sphmath.Real
	Pres sphmath.Real
}

// HydroResult is the output of a hydro pass (kernel.CalcHydro) for one
// particle, applied back via ApplyHydro. F is only meaningful when the
// build uses CFL-based timestep selection; callers that don't can leave it
// at its zero value.
type HydroResult struct {
	Acc sphmath.Vec
	F   sphmath.Real
}

// Particle is one SPH particle. PrevPos and F are always present: PrevPos
// is only written/read when the tree is being reused across steps, and F
// only when the timestep is chosen by the CFL condition. Leaving them
// unconditional keeps Particle's shape the same across every build
// configuration, at the cost of a few always-unused bytes when those
// features are off.
type Particle struct {
	Mass    sphmath.Real
	Pos     sphmath.Vec
	PrevPos sphmath.Vec
	Vel     sphmath.Vec
	Acc     sphmath.Vec
	Dens    sphmath.Real
	Pres    sphmath.Real
	VelHalf sphmath.Vec
	F       sphmath.Real
	Type    Type
}

// ApplyDens writes a density-pass result back into the particle.
func (p *Particle) ApplyDens(r DensResult) {
	p.Dens = r.Dens
	p.Pres = r.Pres
}

// ApplyHydro writes a hydro-pass result back into the particle.
func (p *Particle) ApplyHydro(r HydroResult) {
	p.Acc = r.Acc
	p.F = r.F
}
