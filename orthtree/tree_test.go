package orthtree

import (
	"testing"

	"github.com/s417-lama/sph-dambreaking/kernel"
	"github.com/s417-lama/sph-dambreaking/parallelfor"
	"github.com/s417-lama/sph-dambreaking/particle"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

func testConfig() Config {
	return Config{Cutoff: 64, Slen: 0.0385, Skin: 0}
}

func particlesAt(positions ...sphmath.Vec) []particle.Particle {
	ps := make([]particle.Particle, len(positions))
	for i, pos := range positions {
		ps[i] = particle.Particle{Mass: 1, Pos: pos, Type: particle.Fluid}
	}
	return ps
}

// S1 — trivial build.
func TestTrivialBuildSingleLeaf(t *testing.T) {
	ps := particlesAt(sphmath.NewVec(0, 0), sphmath.NewVec(1, 0), sphmath.NewVec(0, 1))
	tree := Build(ps, testConfig())

	if len(tree.Leaves) != 1 {
		t.Fatalf("len(Leaves) = %d, want 1", len(tree.Leaves))
	}
	leaf := tree.Leaves[0]
	if !leaf.IsLeaf {
		t.Fatal("root is not a leaf for 3 particles under cutoff 64")
	}
	if got, want := leaf.InnerBox.Min, sphmath.NewVec(0, 0); got != want {
		t.Errorf("InnerBox.Min = %v, want %v", got, want)
	}
	if got, want := leaf.InnerBox.Max, sphmath.NewVec(1, 1); got != want {
		t.Errorf("InnerBox.Max = %v, want %v", got, want)
	}
	if len(leaf.Neighbors) != 1 || leaf.Neighbors[0] != leaf.LeafIndex {
		t.Errorf("Neighbors = %v, want [self]", leaf.Neighbors)
	}
}

// Invariant 1: partition preservation.
func TestPartitionPreservesMultiset(t *testing.T) {
	var ps []particle.Particle
	for i := 0; i < 200; i++ {
		x := sphmath.Real(i % 10)
		y := sphmath.Real(i / 10)
		ps = append(ps, particle.Particle{Mass: sphmath.Real(i), Pos: sphmath.NewVec(x, y)})
	}
	tree := Build(ps, Config{Cutoff: 64, Slen: 0.0385})

	seen := map[sphmath.Real]int{}
	for _, leaf := range tree.Leaves {
		for _, p := range leaf.ParticlesI {
			seen[p.Mass]++
		}
	}
	if len(seen) != len(ps) {
		t.Fatalf("got %d distinct particles across leaves, want %d", len(seen), len(ps))
	}
	for mass, count := range seen {
		if count != 1 {
			t.Errorf("particle with mass %v appears %d times, want 1", mass, count)
		}
	}
}

// Invariant 2: containment.
func TestLeafParticlesContainedInInnerBox(t *testing.T) {
	var ps []particle.Particle
	for i := 0; i < 200; i++ {
		x := sphmath.Real(i % 10)
		y := sphmath.Real(i / 10)
		ps = append(ps, particle.Particle{Mass: 1, Pos: sphmath.NewVec(x, y)})
	}
	tree := Build(ps, Config{Cutoff: 64, Slen: 0.0385})

	for li, leaf := range tree.Leaves {
		for _, p := range leaf.ParticlesI {
			for k := 0; k < sphmath.Dim; k++ {
				if p.Pos[k] < leaf.InnerBox.Min[k] || p.Pos[k] > leaf.InnerBox.Max[k] {
					t.Errorf("leaf %d: particle %v outside inner box %v", li, p.Pos, leaf.InnerBox)
				}
			}
		}
	}
}

// S2 — orthant split: a 10x20 lattice under a cutoff that forces subdivision.
func TestOrthantSplitCoversAllParticles(t *testing.T) {
	var ps []particle.Particle
	for x := 0; x < 10; x++ {
		for y := 0; y < 20; y++ {
			ps = append(ps, particle.Particle{Mass: 1, Pos: sphmath.NewVec(sphmath.Real(x), sphmath.Real(y))})
		}
	}
	tree := Build(ps, Config{Cutoff: 64, Slen: 0.0385})

	if tree.Root.IsLeaf {
		t.Fatal("root is a leaf, want subdivision for 200 particles under cutoff 64")
	}

	total := 0
	for _, leaf := range tree.Leaves {
		total += leaf.NParticles()
	}
	if total != len(ps) {
		t.Errorf("total particles across leaves = %d, want %d", total, len(ps))
	}
}

// Invariant 3: inner-box tightness for internal nodes.
func TestInnerBoxIsUnionOfChildren(t *testing.T) {
	var ps []particle.Particle
	for x := 0; x < 10; x++ {
		for y := 0; y < 20; y++ {
			ps = append(ps, particle.Particle{Mass: 1, Pos: sphmath.NewVec(sphmath.Real(x), sphmath.Real(y))})
		}
	}
	tree := Build(ps, Config{Cutoff: 64, Slen: 0.0385})

	var check func(*Node)
	check = func(n *Node) {
		if n.IsLeaf {
			return
		}
		want := sphmath.NewEmptyBox()
		for _, c := range n.Children {
			if c == nil {
				continue
			}
			check(c)
			want = want.MergeBox(c.InnerBox)
		}
		if n.InnerBox != want {
			t.Errorf("internal node InnerBox = %v, want union of children %v", n.InnerBox, want)
		}
	}
	check(tree.Root)
}

// Invariant 4: neighbor conservatism.
func TestNeighborConservatism(t *testing.T) {
	var ps []particle.Particle
	for x := 0; x < 10; x++ {
		for y := 0; y < 20; y++ {
			ps = append(ps, particle.Particle{Mass: 1, Pos: sphmath.NewVec(sphmath.Real(x)*0.01, sphmath.Real(y)*0.01)})
		}
	}
	cfg := Config{Cutoff: 16, Slen: 0.0385}
	tree := Build(ps, cfg)

	leafOf := func(pos sphmath.Vec) *Node {
		for _, leaf := range tree.Leaves {
			for _, p := range leaf.ParticlesI {
				if p.Pos == pos {
					return leaf
				}
			}
		}
		return nil
	}

	checked := 0
	for i := range ps {
		for j := range ps {
			if i == j {
				continue
			}
			dr := ps[i].Pos.Sub(ps[j].Pos)
			if dr.Len2() >= cfg.Slen*cfg.Slen {
				continue
			}
			li := leafOf(ps[i].Pos)
			lj := leafOf(ps[j].Pos)
			found := false
			for _, ni := range li.Neighbors {
				if ni == lj.LeafIndex {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("leaf of %v does not list leaf of neighbor %v", ps[i].Pos, ps[j].Pos)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no close pairs were exercised by this test")
	}
}

// Failure mode: a degenerate coincident cluster terminates recursion.
func TestDegenerateClusterBecomesLeaf(t *testing.T) {
	var ps []particle.Particle
	for i := 0; i < 100; i++ {
		ps = append(ps, particle.Particle{Mass: 1, Pos: sphmath.NewVec(0, 0)})
	}
	tree := Build(ps, Config{Cutoff: 10, Slen: 0.0385})

	if !tree.Root.IsLeaf {
		t.Fatal("root did not terminate as a leaf for a fully coincident cluster")
	}
	if tree.Root.NParticles() != 100 {
		t.Errorf("leaf holds %d particles, want 100", tree.Root.NParticles())
	}
}

func TestEmptyParticleSetYieldsTrivialRoot(t *testing.T) {
	tree := Build(nil, testConfig())
	if !tree.Root.IsLeaf || tree.Root.NParticles() != 0 {
		t.Fatal("empty build did not yield a trivial empty leaf root")
	}
}

func TestRunPairKernelMatchesPackedFastPath(t *testing.T) {
	var ps []particle.Particle
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			ps = append(ps, particle.Particle{
				Mass: 1,
				Pos:  sphmath.NewVec(sphmath.Real(x)*0.01, sphmath.Real(y)*0.01),
				Dens: 1000,
			})
		}
	}
	cfg := Config{Cutoff: 8, Slen: 0.0385}

	params := kernel.Params{
		Slen:    cfg.Slen,
		Dens0:   1000,
		CB:      1000 * 31.3 * 31.3 / 7,
		Visc:    0.1 * cfg.Slen * 31.3 / 1000,
		Gravity: sphmath.NewVec(0, -9.81),
	}

	treeA := Build(ps, cfg)
	treeA.RunPairKernel(Density, params, parallelfor.Sequential{})

	treeB := Build(ps, cfg)
	ga := treeB.BuildGlobalArray()
	treeB.RunPairKernelPacked(Density, ga, params, parallelfor.Sequential{})

	densA := map[sphmath.Vec]sphmath.Real{}
	for _, leaf := range treeA.Leaves {
		for _, p := range leaf.ParticlesI {
			densA[p.Pos] = p.Dens
		}
	}
	for _, leaf := range treeB.Leaves {
		for _, p := range leaf.ParticlesI {
			want := densA[p.Pos]
			if diff := p.Dens - want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("packed density at %v = %v, per-leaf = %v", p.Pos, p.Dens, want)
			}
		}
	}
}
