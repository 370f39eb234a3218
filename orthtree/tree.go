// Package orthtree builds the orthant tree (quadtree in 2D, octree in 3D)
// over particle positions, maintains per-leaf neighbor lists, and drives
// the SPH pair kernels over the resulting leaves.
package orthtree

import (
	"github.com/s417-lama/sph-dambreaking/kernel"
	"github.com/s417-lama/sph-dambreaking/parallelfor"
	"github.com/s417-lama/sph-dambreaking/particle"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

// numOrthants is the number of children any node may have: 2^Dim.
const numOrthants = 1 << sphmath.Dim

// Config controls how the tree is built.
type Config struct {
	// Cutoff is the maximum number of particles a leaf may hold before
	// the builder subdivides it further.
	Cutoff int
	// Slen is the interaction cutoff radius; it sets the outer-box
	// expansion margin together with Skin.
	Slen sphmath.Real
	// Skin is the extra margin added in tree-reuse mode so neighbor
	// lists stay conservative while particles drift between rebuilds.
	// Zero when reuse is disabled.
	Skin sphmath.Real
}

// Node is one node of the orthant tree. For a leaf, ParticlesI is the
// canonical, up-to-date view of its owned particles and ParticlesJ is a
// mirrored copy in the other arena, kept only to preserve the
// double-buffered shape of the original partitioning algorithm. For an
// internal node, ParticlesI is the range the scatter read from and
// ParticlesJ the range it wrote to; kernel writes land only in the leaves'
// ParticlesI, so downstream code reads an internal node's slices for their
// length only.
type Node struct {
	ParticlesI []particle.Particle
	ParticlesJ []particle.Particle
	IsLeaf     bool
	InnerBox   sphmath.Box
	OuterBox   sphmath.Box
	Children   [numOrthants]*Node

	// LeafIndex is this node's rank in Tree.Leaves; only meaningful when
	// IsLeaf is true.
	LeafIndex int
	// Neighbors holds leaf-rank indices into Tree.Leaves, not raw node
	// pointers, per the back-reference discipline the tree uses for
	// non-owning lookups.
	Neighbors  []int
	NNeighbors int
}

// NParticles returns the number of particles this node owns.
func (n *Node) NParticles() int { return len(n.ParticlesI) }

// Tree is an orthant tree built over a snapshot of particle positions. It
// does not own the particle memory conceptually (the caller's slice is
// copied into two private arenas at Build time), but mutations made
// through RunPairKernel are visible by reading the leaves directly.
type Tree struct {
	Root   *Node
	Leaves []*Node

	arenaA, arenaB []particle.Particle
}

// ForEachParticle applies body, by reference, to every particle the tree
// owns, iterating over leaves via pf. Because each leaf's ParticlesI is a
// live slice into the tree's arena, writes through the pointer are visible
// to later reads of the same particle (including the next kernel
// dispatch) without any resync step — this is what lets the integrator
// advance positions/velocities in place across both fresh and reused
// trees.
func (t *Tree) ForEachParticle(pf parallelfor.Executor, body func(p *particle.Particle)) {
	pf.For(0, len(t.Leaves), func(i int) {
		leaf := t.Leaves[i]
		for j := range leaf.ParticlesI {
			body(&leaf.ParticlesI[j])
		}
	})
}

// Flatten copies every particle the tree owns into one slice, in
// leaf-rank order. It is used to hand the current particle state to a
// fresh Build call or to an output writer.
func (t *Tree) Flatten() []particle.Particle {
	n := 0
	for _, leaf := range t.Leaves {
		n += leaf.NParticles()
	}
	out := make([]particle.Particle, 0, n)
	for _, leaf := range t.Leaves {
		out = append(out, leaf.ParticlesI...)
	}
	return out
}

// Build partitions particles into a spatial hierarchy per cfg, computes
// inner/outer bounding boxes bottom-up, and runs the initial neighbor
// search. An empty particle slice yields a trivial empty-root tree whose
// kernels are no-ops.
func Build(particles []particle.Particle, cfg Config) *Tree {
	n := len(particles)
	t := &Tree{
		arenaA: make([]particle.Particle, n),
		arenaB: make([]particle.Particle, n),
	}
	copy(t.arenaA, particles)

	if n == 0 {
		leaf := &Node{IsLeaf: true, InnerBox: sphmath.NewEmptyBox(), OuterBox: sphmath.NewEmptyBox()}
		t.Root = leaf
		t.Leaves = []*Node{leaf}
		leaf.LeafIndex = 0
		return t
	}

	box := boundingBoxOf(t.arenaA).Square()
	t.Root = buildRecursive(t.arenaA, t.arenaB, box, cfg)
	refineBBox(t.Root, cfg)

	t.Leaves = collectLeaves(t.Root)
	for i, leaf := range t.Leaves {
		leaf.LeafIndex = i
	}
	t.SearchNeighbors(parallelfor.Sequential{})
	return t
}

func boundingBoxOf(ps []particle.Particle) sphmath.Box {
	box := sphmath.NewEmptyBox()
	for i := range ps {
		box = box.Merge(ps[i].Pos)
	}
	return box
}

// buildRecursive implements the double-buffered in-place partition: src
// holds the valid data on entry, dst is scratch space of the same length.
// At a leaf, dst is overwritten with a mirror of src. At an internal node,
// particles are scattered from src into dst by orthant, and children
// recurse with the roles of the two arenas swapped for their sub-range.
func buildRecursive(src, dst []particle.Particle, box sphmath.Box, cfg Config) *Node {
	n := len(src)
	node := &Node{}

	if n <= cfg.Cutoff {
		copy(dst, src)
		node.IsLeaf = true
		node.ParticlesI = src
		node.ParticlesJ = dst
		return node
	}

	center := box.Center()
	count := make([]int, numOrthants)
	for i := range src {
		count[src[i].Pos.Orthant(center)]++
	}

	// A degenerate coincident cluster (all particles fall in one orthant)
	// cannot be subdivided further; treat it as a leaf rather than
	// recursing forever.
	for _, c := range count {
		if c == n {
			copy(dst, src)
			node.IsLeaf = true
			node.ParticlesI = src
			node.ParticlesJ = dst
			return node
		}
	}

	offset := make([]int, numOrthants)
	acc := 0
	for i, c := range count {
		offset[i] = acc
		acc += c
	}

	cursor := make([]int, numOrthants)
	copy(cursor, offset)
	for i := range src {
		o := src[i].Pos.Orthant(center)
		dst[cursor[o]] = src[i]
		cursor[o]++
	}

	node.ParticlesI = src
	node.ParticlesJ = dst
	for i := 0; i < numOrthants; i++ {
		if count[i] == 0 {
			continue
		}
		lo, hi := offset[i], offset[i]+count[i]
		childSrc := dst[lo:hi]
		childDst := src[lo:hi]
		node.Children[i] = buildRecursive(childSrc, childDst, box.Orthant(i), cfg)
	}
	return node
}

func refineBBox(node *Node, cfg Config) {
	if node.IsLeaf {
		box := boundingBoxOf(node.ParticlesI)
		node.InnerBox = box
		node.OuterBox = box.Expand(cfg.Slen + cfg.Skin)
		return
	}
	inner := sphmath.NewEmptyBox()
	outer := sphmath.NewEmptyBox()
	for _, c := range node.Children {
		if c == nil {
			continue
		}
		refineBBox(c, cfg)
		inner = inner.MergeBox(c.InnerBox)
		outer = outer.MergeBox(c.OuterBox)
	}
	node.InnerBox = inner
	node.OuterBox = outer
}

func collectLeaves(root *Node) []*Node {
	var leaves []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsLeaf {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.Children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(root)
	return leaves
}

// SearchNeighbors refreshes every leaf's neighbor list by descending from
// the root, pruning subtrees whose inner box doesn't intersect the target
// leaf's outer box. Leaves are processed in parallel via pf; the descent
// itself is read-only.
func (t *Tree) SearchNeighbors(pf parallelfor.Executor) {
	pf.For(0, len(t.Leaves), func(i int) {
		leaf := t.Leaves[i]
		leaf.Neighbors = leaf.Neighbors[:0]
		leaf.NNeighbors = 0
		searchNeighborsImpl(t.Root, leaf)
	})
}

func searchNeighborsImpl(node, target *Node) {
	if node.IsLeaf {
		target.Neighbors = append(target.Neighbors, node.LeafIndex)
		target.NNeighbors += node.NParticles()
		return
	}
	for _, c := range node.Children {
		if c != nil && target.OuterBox.Intersect(c.InnerBox) {
			searchNeighborsImpl(c, target)
		}
	}
}

// KernelKind selects which SPH pair kernel RunPairKernel dispatches.
type KernelKind int

const (
	Density KernelKind = iota
	Hydro
)

// gatherSources copies every particle owned by leaf's neighbor leaves into
// one contiguous buffer, in neighbor-list order.
func (t *Tree) gatherSources(leaf *Node) []particle.Particle {
	buf := make([]particle.Particle, 0, leaf.NNeighbors)
	for _, ni := range leaf.Neighbors {
		buf = append(buf, t.Leaves[ni].ParticlesI...)
	}
	return buf
}

func dispatch(kind KernelKind, leaf *Node, sources []particle.Particle, params kernel.Params) {
	switch kind {
	case Density:
		results := kernel.CalcDens(leaf.ParticlesI, sources, params)
		for i := range leaf.ParticlesI {
			leaf.ParticlesI[i].ApplyDens(results[i])
		}
	case Hydro:
		results := kernel.CalcHydro(leaf.ParticlesI, sources, params)
		for i := range leaf.ParticlesI {
			leaf.ParticlesI[i].ApplyHydro(results[i])
		}
	}
}

// RunPairKernel runs the per-leaf interaction driver: for every leaf, it
// gathers neighbor particles into a fresh buffer, invokes the requested
// kernel with the leaf's own particles as targets, and releases the
// buffer. Leaves are processed in parallel via pf; no two leaves share
// target particles, so their writes never race.
func (t *Tree) RunPairKernel(kind KernelKind, params kernel.Params, pf parallelfor.Executor) {
	pf.For(0, len(t.Leaves), func(i int) {
		leaf := t.Leaves[i]
		sources := t.gatherSources(leaf)
		dispatch(kind, leaf, sources, params)
	})
}

// GlobalArray is the packed source-buffer layout RunPairKernelPacked uses
// as a fast path for vectorized/offloaded back-ends: one contiguous source
// buffer shared by every leaf, indexed by prefix-summed offsets rather
// than one allocation per leaf.
type GlobalArray struct {
	PiOffsets []int
	PjOffsets []int
	PjBuf     []particle.Particle
}

// BuildGlobalArray packs the current neighbor-gather work for every leaf
// into one buffer. It must be rebuilt whenever the tree or the particle
// positions it gathers from change.
func (t *Tree) BuildGlobalArray() *GlobalArray {
	n := len(t.Leaves)
	ga := &GlobalArray{
		PiOffsets: make([]int, n+1),
		PjOffsets: make([]int, n+1),
	}
	piAcc, pjAcc := 0, 0
	for i, leaf := range t.Leaves {
		piAcc += leaf.NParticles()
		ga.PiOffsets[i+1] = piAcc
		pjAcc += leaf.NNeighbors
		ga.PjOffsets[i+1] = pjAcc
	}
	ga.PjBuf = make([]particle.Particle, pjAcc)
	for i, leaf := range t.Leaves {
		c := ga.PjOffsets[i]
		for _, ni := range leaf.Neighbors {
			c += copy(ga.PjBuf[c:], t.Leaves[ni].ParticlesI)
		}
	}
	return ga
}

// RunPairKernelPacked runs the same kernel dispatch as RunPairKernel but
// reads source particles out of a prebuilt GlobalArray instead of
// gathering a fresh buffer per leaf. It is numerically equivalent to
// RunPairKernel modulo floating-point summation order.
func (t *Tree) RunPairKernelPacked(kind KernelKind, ga *GlobalArray, params kernel.Params, pf parallelfor.Executor) {
	pf.For(0, len(t.Leaves), func(i int) {
		leaf := t.Leaves[i]
		sources := ga.PjBuf[ga.PjOffsets[i]:ga.PjOffsets[i+1]]
		dispatch(kind, leaf, sources, params)
	})
}
