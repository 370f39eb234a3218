//go:build !dim3 && !float32

// Package sphmath provides the fixed-dimension vector and axis-aligned
// bounding-box algebra the orthant tree and SPH kernels are built on.
//
// The spatial dimension (2 or 3) and scalar precision (double or single)
// are both compile-time choices, realized as build tags rather than a
// runtime switch: dim3 selects 3D over the 2D default, float32 selects
// single precision over the double-precision default. Exactly one of the
// four files in this package (vec_2d64.go, vec_3d64.go, vec_2d32.go,
// vec_3d32.go) is compiled into any given build; all four define the same
// Vec/Real/Dim surface so the rest of the module never branches on it.
package sphmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Real is the scalar type used throughout the module.
type Real = float64

// Dim is the spatial dimension of this build.
const Dim = 2

const maxReal Real = math.MaxFloat64

// Vec is a D-dimensional vector. Its arithmetic delegates to mathgl's
// mgl64.Vec2, which already supplies the componentwise algebra this
// package does not redefine (Add, Sub, scalar Mul, Dot); Orthant and the
// other SPH-specific operations are added here.
type Vec mgl64.Vec2

// ZeroVec is the additive identity.
func ZeroVec() Vec { return Vec{} }

// NewVec builds a Vec from D components, in axis order.
func NewVec(comps ...Real) Vec {
	var v Vec
	for i := 0; i < Dim && i < len(comps); i++ {
		v[i] = comps[i]
	}
	return v
}

func (v Vec) mgl() mgl64.Vec2 { return mgl64.Vec2(v) }

// Add returns the componentwise sum.
func (v Vec) Add(o Vec) Vec { return Vec(v.mgl().Add(o.mgl())) }

// Sub returns the componentwise difference.
func (v Vec) Sub(o Vec) Vec { return Vec(v.mgl().Sub(o.mgl())) }

// MulScalar scales every component by s.
func (v Vec) MulScalar(s Real) Vec { return Vec(v.mgl().Mul(s)) }

// DivScalar divides every component by s.
func (v Vec) DivScalar(s Real) Vec { return v.MulScalar(1 / s) }

// Dot returns the inner product.
func (v Vec) Dot(o Vec) Real { return v.mgl().Dot(o.mgl()) }

// Neg returns the additive inverse.
func (v Vec) Neg() Vec { return Vec{-v[0], -v[1]} }

// Len2 returns the squared Euclidean length.
func (v Vec) Len2() Real { return v.Dot(v) }

// Orthant returns the integer in [0, 2^Dim) whose bit k is 1 iff v's
// k-th component strictly exceeds origin's k-th component.
func (v Vec) Orthant(origin Vec) int {
	o := 0
	for k := 0; k < Dim; k++ {
		if v[k] > origin[k] {
			o |= 1 << uint(k)
		}
	}
	return o
}
