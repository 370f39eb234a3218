package sphmath

// Box is an axis-aligned bounding box. The zero value is not a valid empty
// box; use NewEmptyBox to get one that Merge can grow from any direction.
type Box struct {
	Min, Max Vec
}

// NewEmptyBox returns a box whose Merge with any point or box yields exactly
// that point or box: Min starts at +inf-ish (here, the largest finite value
// a Real can hold) and Max starts at the smallest, so the first Merge call
// pulls both in.
func NewEmptyBox() Box {
	var b Box
	for k := 0; k < Dim; k++ {
		b.Min[k] = maxReal
		b.Max[k] = -maxReal
	}
	return b
}

// Merge grows b to also contain v.
func (b Box) Merge(v Vec) Box {
	for k := 0; k < Dim; k++ {
		if v[k] < b.Min[k] {
			b.Min[k] = v[k]
		}
		if v[k] > b.Max[k] {
			b.Max[k] = v[k]
		}
	}
	return b
}

// MergeBox grows b to also contain o.
func (b Box) MergeBox(o Box) Box {
	return b.Merge(o.Min).Merge(o.Max)
}

// Expand grows b by margin on every side, along every axis.
func (b Box) Expand(margin Real) Box {
	for k := 0; k < Dim; k++ {
		b.Min[k] -= margin
		b.Max[k] += margin
	}
	return b
}

// Center returns the midpoint of b.
func (b Box) Center() Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Intersect reports whether b and o overlap, treating both as closed
// intervals on every axis (touching boxes count as intersecting).
func (b Box) Intersect(o Box) bool {
	for k := 0; k < Dim; k++ {
		if b.Max[k] < o.Min[k] || o.Max[k] < b.Min[k] {
			return false
		}
	}
	return true
}

// Orthant returns the sub-box occupying orthant i (in [0, 2^Dim)) of b,
// split at b's center: for each axis k, bit k of i selects whether the
// sub-box's extent on that axis runs from the center to Max (bit set) or
// from Min to the center (bit clear).
func (b Box) Orthant(i int) Box {
	c := b.Center()
	var lo, hi Vec
	for k := 0; k < Dim; k++ {
		if i&(1<<uint(k)) != 0 {
			lo[k], hi[k] = c[k], b.Max[k]
		} else {
			lo[k], hi[k] = b.Min[k], c[k]
		}
	}
	return Box{Min: lo, Max: hi}
}

// Square pads b so every axis has the same extent, the longest one present,
// growing the shorter axes symmetrically around their own center so the box
// keeps its original center.
func (b Box) Square() Box {
	var extent Real
	for k := 0; k < Dim; k++ {
		if e := b.Max[k] - b.Min[k]; e > extent {
			extent = e
		}
	}
	half := extent * 0.5
	c := b.Center()
	var lo, hi Vec
	for k := 0; k < Dim; k++ {
		lo[k] = c[k] - half
		hi[k] = c[k] + half
	}
	return Box{Min: lo, Max: hi}
}
