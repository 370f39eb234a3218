// Package simconfig loads the run-time-tunable parameters of a dam-break
// simulation (the ones spec.md lists as compile-time configuration besides
// DIM/DOUBLE, which are realized as Go build tags instead) and derives the
// physical constants everything else in the module is built from.
package simconfig

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/s417-lama/sph-dambreaking/kernel"
	"github.com/s417-lama/sph-dambreaking/orthtree"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the user-facing knobs. Field names mirror spec.md's
// compile-time configuration list.
type Config struct {
	CFLDT           bool         `yaml:"cfl_dt"`
	ReuseTree       bool         `yaml:"reuse_tree"`
	ParticlesCutoff int          `yaml:"particles_cutoff"`
	MaxStep         int          `yaml:"max_step"`
	OutputInterval  int          `yaml:"output_interval"`
	DataScale       sphmath.Real `yaml:"data_scale"`
	EndTime         sphmath.Real `yaml:"end_time"`

	Derived Derived `yaml:"-"`
}

// Derived holds the constants the original defines as a chain of
// compile-time expressions off DataScale: initial particle spacing L0,
// interaction radius SLEN, reuse-mode skin margin SKIN, Tait EOS
// stiffness C_B, artificial-viscosity coefficient VISC, and the fixed
// leap-frog timestep DT.
type Derived struct {
	L0    sphmath.Real
	Slen  sphmath.Real
	Skin  sphmath.Real
	Dens0 sphmath.Real
	Sound sphmath.Real
	CB    sphmath.Real
	Alpha sphmath.Real
	Visc  sphmath.Real
	DT    sphmath.Real
}

// Load reads embedded defaults, then overlays a user YAML file at path
// (path == "" skips the overlay and uses defaults as-is), then computes
// Derived.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	d := &c.Derived
	d.L0 = sphmath.Real(0.55) / 30 / c.DataScale
	d.Slen = d.L0 * 2.1
	if c.ReuseTree {
		d.Skin = d.Slen * 0.3
	} else {
		d.Skin = 0
	}
	d.Dens0 = 1000.0
	d.Sound = 31.3
	d.CB = d.Dens0 * d.Sound * d.Sound / 7
	d.Alpha = 0.1
	d.Visc = d.Alpha * d.Slen * d.Sound / d.Dens0
	d.DT = sphmath.Real(0.4) * d.Slen / d.Sound / (1 + 0.6*d.Alpha)
}

// TreeConfig builds the orthtree.Config this configuration implies.
func (c *Config) TreeConfig() orthtree.Config {
	return orthtree.Config{
		Cutoff: c.ParticlesCutoff,
		Slen:   c.Derived.Slen,
		Skin:   c.Derived.Skin,
	}
}

// KernelParams builds the kernel.Params this configuration implies,
// including the dimension-appropriate gravity vector.
func (c *Config) KernelParams() kernel.Params {
	return kernel.Params{
		Slen:    c.Derived.Slen,
		Dens0:   c.Derived.Dens0,
		CB:      c.Derived.CB,
		Visc:    c.Derived.Visc,
		Gravity: gravity(),
		CFLDT:   c.CFLDT,
	}
}

func gravity() sphmath.Vec {
	if sphmath.Dim == 2 {
		return sphmath.NewVec(0, -9.81)
	}
	return sphmath.NewVec(0, 0, -9.81)
}

// ParticleMass returns the per-particle mass the loader assigns every
// particle on setup: rho0 * L0^DIM.
func (c *Config) ParticleMass() sphmath.Real {
	return c.Derived.Dens0 * sphmath.Real(math.Pow(float64(c.Derived.L0), float64(sphmath.Dim)))
}

// InitialPressure returns the Tait-EOS pressure at the reference density,
// the pressure the loader assigns every particle on setup.
func (c *Config) InitialPressure() sphmath.Real {
	return kernel.Pressure(c.Derived.Dens0, c.KernelParams())
}
