// Package integrator provides the thin leap-frog glue that drives the
// orthant tree and SPH kernels through one simulation step. It owns no
// numerics of its own beyond kick/drift/timestep bookkeeping; the tree
// and kernels do the actual physics.
package integrator

import (
	"math"
	"sync/atomic"

	"github.com/s417-lama/sph-dambreaking/kernel"
	"github.com/s417-lama/sph-dambreaking/orthtree"
	"github.com/s417-lama/sph-dambreaking/parallelfor"
	"github.com/s417-lama/sph-dambreaking/particle"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

// Config bundles everything a simulation run needs that isn't derived
// from current particle state.
type Config struct {
	Tree   orthtree.Config
	Kernel kernel.Params
	// MaxDT is the fixed leap-frog timestep; it is also the ceiling the
	// CFL timestep (when enabled) never exceeds.
	MaxDT sphmath.Real
	// CFLDT enables the max-force-based timestep reduction. When false,
	// every step uses MaxDT.
	CFLDT bool
	// ReuseTree enables tree reuse across steps via Tree.Skin. Chained
	// reuses (two reused steps back to back) are never attempted even
	// when this is set: a reused step is always followed by a rebuild,
	// since the SKIN margin baked into outer boxes is only proven
	// conservative across a single rebuild gap.
	ReuseTree bool
}

// InitialKick advances fluid particles' half-step velocity by half an
// acceleration-step, in place on the tree's own particle storage.
func InitialKick(tree *orthtree.Tree, dt sphmath.Real, pf parallelfor.Executor) {
	tree.ForEachParticle(pf, func(p *particle.Particle) {
		if p.Type != particle.Fluid {
			return
		}
		p.VelHalf = p.Vel.Add(p.Acc.MulScalar(dt * 0.5))
	})
}

// Drift advances fluid particle positions by one full step using the
// half-step velocity, in place. It reports whether every fluid particle
// moved less than Skin/2 since PrevPos was last set — the admissibility
// condition for reusing the tree instead of rebuilding it. When Skin is
// zero (reuse disabled), this is false for any particle that moved at
// all, which naturally forces a rebuild every step.
func Drift(tree *orthtree.Tree, dt, skin sphmath.Real, pf parallelfor.Executor) bool {
	var violations int32
	tree.ForEachParticle(pf, func(p *particle.Particle) {
		if p.Type != particle.Fluid {
			return
		}
		p.Pos = p.Pos.Add(p.VelHalf.MulScalar(dt))
		dp := p.Pos.Sub(p.PrevPos)
		if sphmath.Real(math.Sqrt(float64(dp.Len2()))) >= skin/2 {
			atomic.AddInt32(&violations, 1)
		}
	})
	return violations == 0
}

// FinalKick completes the leap-frog step, setting full-step velocity from
// the half-step velocity and the (just recomputed) acceleration.
func FinalKick(tree *orthtree.Tree, dt sphmath.Real, pf parallelfor.Executor) {
	tree.ForEachParticle(pf, func(p *particle.Particle) {
		if p.Type != particle.Fluid {
			return
		}
		p.Vel = p.VelHalf.Add(p.Acc.MulScalar(dt * 0.5))
	})
}

// SetPrevPos snapshots every particle's current position as the baseline
// Drift measures movement against. Called whenever the tree is rebuilt.
func SetPrevPos(tree *orthtree.Tree, pf parallelfor.Executor) {
	tree.ForEachParticle(pf, func(p *particle.Particle) {
		p.PrevPos = p.Pos
	})
}

// TimeStep picks the next step's dt. With CFL disabled it is always
// maxDT; with CFL enabled it is the smaller of maxDT and a bound derived
// from the largest force magnitude observed this step (a zero maximum
// force falls back to maxDT). The max-force reduction
// reads every particle sequentially: it's a single scalar reduction over
// a value already computed by the hydro pass, not worth forking out to
// pf for.
func TimeStep(tree *orthtree.Tree, slen, maxDT sphmath.Real, cflEnabled bool) sphmath.Real {
	if !cflEnabled {
		return maxDT
	}
	var fmax sphmath.Real
	tree.ForEachParticle(parallelfor.Sequential{}, func(p *particle.Particle) {
		if p.F > fmax {
			fmax = p.F
		}
	})
	if fmax == 0 {
		return maxDT
	}
	if cand := 0.25 * slen / fmax; cand < maxDT {
		return cand
	}
	return maxDT
}

// Simulation threads a Config through successive Step calls, owning the
// current tree and the step/time counters the outer driver (cmd/sph-dambreak)
// reports.
type Simulation struct {
	Config   Config
	Executor parallelfor.Executor

	Tree       *orthtree.Tree
	StepIndex  int
	Time       sphmath.Real
	DT         sphmath.Real
	Reused     bool
	prevReused bool
}

// NewSimulation builds the initial tree over particles and returns a
// Simulation ready for repeated Step calls.
func NewSimulation(particles []particle.Particle, cfg Config, pf parallelfor.Executor) *Simulation {
	tree := orthtree.Build(particles, cfg.Tree)
	sim := &Simulation{
		Config:   cfg,
		Executor: pf,
		Tree:     tree,
		DT:       cfg.MaxDT,
	}
	SetPrevPos(tree, pf)
	return sim
}

// Step advances the simulation by one leap-frog step, following the
// order: initial kick + drift (skipped on step 0, which has no prior
// acceleration to kick from), conditional rebuild, density pass, hydro
// pass, final kick (again skipped on step 0), then timestep selection.
func (s *Simulation) Step() {
	pf := s.Executor
	cfg := s.Config

	if s.StepIndex > 0 {
		InitialKick(s.Tree, s.DT, pf)
		admissible := Drift(s.Tree, s.DT, cfg.Tree.Skin, pf)
		s.Reused = cfg.ReuseTree && admissible && !s.prevReused
	} else {
		s.Reused = false
	}

	if !s.Reused {
		SetPrevPos(s.Tree, pf)
		s.Tree = orthtree.Build(s.Tree.Flatten(), cfg.Tree)
	}

	s.Tree.RunPairKernel(orthtree.Density, cfg.Kernel, pf)
	s.Tree.RunPairKernel(orthtree.Hydro, cfg.Kernel, pf)

	if s.StepIndex > 0 {
		FinalKick(s.Tree, s.DT, pf)
	}

	s.DT = TimeStep(s.Tree, cfg.Tree.Slen, cfg.MaxDT, cfg.CFLDT)
	s.Time += s.DT
	s.prevReused = s.Reused
	s.StepIndex++
}
