package sphmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyBoxMergeYieldsPoint(t *testing.T) {
	p := NewVec(3, -5)
	b := NewEmptyBox().Merge(p)
	assert.Equal(t, p, b.Min)
	assert.Equal(t, p, b.Max)
}

func TestBoxMergeGrows(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(2, 1)).Merge(NewVec(-1, 3))
	assert.Equal(t, NewVec(-1, 0), b.Min)
	assert.Equal(t, NewVec(2, 3), b.Max)
}

func TestBoxMergeBox(t *testing.T) {
	a := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(1, 1))
	b := NewEmptyBox().Merge(NewVec(2, -1)).Merge(NewVec(3, 0))
	got := a.MergeBox(b)
	assert.Equal(t, NewVec(0, -1), got.Min)
	assert.Equal(t, NewVec(3, 1), got.Max)
}

func TestBoxExpand(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(1, 1)).Expand(0.5)
	assert.Equal(t, NewVec(-0.5, -0.5), b.Min)
	assert.Equal(t, NewVec(1.5, 1.5), b.Max)
}

func TestBoxCenter(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(2, 4))
	assert.Equal(t, NewVec(1, 2), b.Center())
}

func TestBoxIntersect(t *testing.T) {
	a := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(1, 1))

	cases := []struct {
		name string
		b    Box
		want bool
	}{
		{"overlapping", NewEmptyBox().Merge(NewVec(0.5, 0.5)).Merge(NewVec(2, 2)), true},
		{"touching edge", NewEmptyBox().Merge(NewVec(1, 0)).Merge(NewVec(2, 1)), true},
		{"disjoint", NewEmptyBox().Merge(NewVec(2, 2)).Merge(NewVec(3, 3)), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := a.Intersect(c.b); got != c.want {
				t.Errorf("Intersect(%v, %v) = %v, want %v", a, c.b, got, c.want)
			}
			if got := c.b.Intersect(a); got != c.want {
				t.Errorf("Intersect symmetry failed for %v, %v", c.b, a)
			}
		})
	}
}

func TestBoxOrthantHalvesEachAxis(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(4, 4))

	n := 1 << Dim
	for i := 0; i < n; i++ {
		sub := b.Orthant(i)
		if !b.Intersect(sub) {
			t.Errorf("Orthant(%d) = %v does not intersect parent %v", i, sub, b)
		}
		for k := 0; k < Dim; k++ {
			half := (b.Max[k] - b.Min[k]) / 2
			if got := sub.Max[k] - sub.Min[k]; got != half {
				t.Errorf("Orthant(%d) axis %d extent = %v, want %v", i, k, got, half)
			}
		}
	}
}

func TestBoxOrthantDistinguishesSubBoxes(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(4, 4))
	c := b.Center()

	seen := map[Vec]bool{}
	n := 1 << Dim
	for i := 0; i < n; i++ {
		// a point strictly inside Orthant(i), away from the splitting planes,
		// must resolve back to orthant i under Vec.Orthant relative to c.
		sub := b.Orthant(i)
		probe := sub.Min.Add(sub.Max).MulScalar(0.5)
		if probe == c {
			continue
		}
		if got := probe.Orthant(c); got != i {
			t.Errorf("probe %v in Orthant(%d) resolved to orthant %d", probe, i, got)
		}
		seen[sub.Min] = true
	}
	if len(seen) != n {
		t.Errorf("Orthant produced %d distinct sub-boxes, want %d", len(seen), n)
	}
}

func TestBoxSquarePadsToEqualExtent(t *testing.T) {
	b := NewEmptyBox().Merge(NewVec(0, 0)).Merge(NewVec(10, 2))
	sq := b.Square()

	extent := sq.Max[0] - sq.Min[0]
	for k := 1; k < Dim; k++ {
		if got := sq.Max[k] - sq.Min[k]; got != extent {
			t.Errorf("Square axis %d extent = %v, want %v", k, got, extent)
		}
	}
	if got, want := sq.Center(), b.Center(); got != want {
		t.Errorf("Square changed center: got %v, want %v", got, want)
	}
}
