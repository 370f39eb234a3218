package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s417-lama/sph-dambreaking/sphmath"
)

func TestApplyDens(t *testing.T) {
	var p Particle
	p.ApplyDens(DensResult{Dens: 1000, Pres: 50})
	assert.Equal(t, sphmath.Real(1000), p.Dens)
	assert.Equal(t, sphmath.Real(50), p.Pres)
}

func TestApplyHydro(t *testing.T) {
	var p Particle
	acc := sphmath.NewVec(0, -9.81)
	p.ApplyHydro(HydroResult{Acc: acc, F: 3.5})
	assert.Equal(t, acc, p.Acc)
	assert.Equal(t, sphmath.Real(3.5), p.F)
}

func TestTypeConstantsMatchFileFormatCodes(t *testing.T) {
	if Fluid != 1 {
		t.Errorf("Fluid = %d, want 1", Fluid)
	}
	if Wall != 2 {
		t.Errorf("Wall = %d, want 2", Wall)
	}
}
