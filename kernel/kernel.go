// Package kernel implements the SPH cubic-spline pair kernels: the
// smoothing function W and its gradient, and the density/hydro-force
// accumulators built on top of them.
package kernel

import (
	"math"

	"github.com/s417-lama/sph-dambreaking/particle"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

// Params carries the physical constants the pair kernels need. Callers
// derive these once (see simconfig) and pass the same value into every
// kernel call for a run.
type Params struct {
	Slen    sphmath.Real // interaction cutoff radius
	Dens0   sphmath.Real // reference density
	CB      sphmath.Real // Tait EOS stiffness, rho0*c^2/7
	Visc    sphmath.Real // artificial viscosity coefficient
	Gravity sphmath.Vec
	CFLDT   bool // when set, HydroResult.F is populated
}

func (p Params) h() sphmath.Real     { return p.Slen / 2 }
func (p Params) slen2() sphmath.Real { return p.Slen * p.Slen }

// wCoef returns the normalization constant for W in the current build's
// dimension.
func wCoef(h sphmath.Real) sphmath.Real {
	if sphmath.Dim == 2 {
		return 10.0 / 7.0 / math.Pi / (h * h)
	}
	return 1.0 / math.Pi / (h * h * h)
}

// gradWCoef returns the normalization constant for gradW in the current
// build's dimension.
func gradWCoef(h sphmath.Real) sphmath.Real {
	if sphmath.Dim == 2 {
		return 45.0 / 14.0 / math.Pi / (h * h * h * h)
	}
	return 9.0 / 4.0 / math.Pi / (h * h * h * h * h)
}

// W evaluates the cubic-spline smoothing kernel for separation dr with
// precomputed squared length dr2, at smoothing length h.
func W(dr sphmath.Vec, dr2 sphmath.Real, h sphmath.Real) sphmath.Real {
	s := math.Sqrt(float64(dr2)) / float64(h)
	var v sphmath.Real
	switch {
	case s < 1:
		v = sphmath.Real(1 - 1.5*s*s + 0.75*s*s*s)
	case s < 2:
		v = sphmath.Real(0.25 * math.Pow(2-s, 3))
	default:
		return 0
	}
	return wCoef(h) * v
}

// GradW evaluates the gradient of the cubic-spline kernel with respect to
// dr, at smoothing length h.
func GradW(dr sphmath.Vec, dr2 sphmath.Real, h sphmath.Real) sphmath.Vec {
	s := math.Sqrt(float64(dr2)) / float64(h)
	switch {
	case s < 1:
		return dr.MulScalar(gradWCoef(h) * (sphmath.Real(s) - 4.0/3.0))
	case s < 2:
		c := -gradWCoef(h) * sphmath.Real(math.Pow(2-s, 2)) / (3 * sphmath.Real(s))
		return dr.MulScalar(c)
	default:
		return sphmath.ZeroVec()
	}
}

// Pressure applies the Tait equation of state to a density value.
func Pressure(dens sphmath.Real, p Params) sphmath.Real {
	ratio := dens / p.Dens0
	pres := p.CB * (sphmath.Real(math.Pow(float64(ratio), 7)) - 1)
	if pres < 0 {
		return 0
	}
	return pres
}

// CalcDens computes the density-pass result for each particle in targets,
// summing the contribution of every particle in sources within the
// interaction cutoff (self-contribution included when a target also
// appears among sources). It does not mutate targets or sources.
func CalcDens(targets, sources []particle.Particle, p Params) []particle.DensResult {
	h := p.h()
	slen2 := p.slen2()
	results := make([]particle.DensResult, len(targets))
	for i := range targets {
		var dens sphmath.Real
		for j := range sources {
			dr := targets[i].Pos.Sub(sources[j].Pos)
			dr2 := dr.Len2()
			if dr2 >= slen2 {
				continue
			}
			dens += sources[j].Mass * W(dr, dr2, h)
		}
		results[i] = particle.DensResult{Dens: dens, Pres: Pressure(dens, p)}
	}
	return results
}

// CalcHydro computes the hydro-force-pass result for each particle in
// targets, accumulating pressure-gradient and artificial-viscosity forces
// from sources, then adding gravity. It does not mutate targets or
// sources.
func CalcHydro(targets, sources []particle.Particle, p Params) []particle.HydroResult {
	h := p.h()
	slen2 := p.slen2()
	results := make([]particle.HydroResult, len(targets))
	for i := range targets {
		ti := &targets[i]
		qi := ti.Pres / (ti.Dens * ti.Dens)
		acc := sphmath.ZeroVec()
		for j := range sources {
			sj := &sources[j]
			dr := ti.Pos.Sub(sj.Pos)
			dr2 := dr.Len2()
			if dr2 >= slen2 {
				continue
			}
			qj := sj.Pres / (sj.Dens * sj.Dens)
			gradWij := GradW(dr, dr2, h)
			dv := ti.Vel.Sub(sj.Vel)
			vr := dv.Dot(dr)
			var av sphmath.Real
			if vr > 0 {
				av = 0
			} else {
				av = -p.Visc * vr / (dr2 + 0.01*slen2)
			}
			acc = acc.Sub(gradWij.MulScalar(sj.Mass * (qi + qj + av)))
		}
		acc = acc.Add(p.Gravity)

		var f sphmath.Real
		if p.CFLDT {
			f = ti.Mass * sphmath.Real(math.Sqrt(float64(acc.Len2())))
		}
		results[i] = particle.HydroResult{Acc: acc, F: f}
	}
	return results
}
