//go:build dim3 && !float32

package sphmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Real = float64

const Dim = 3

const maxReal Real = math.MaxFloat64

// Vec is a D-dimensional vector wrapping mathgl's mgl64.Vec3.
type Vec mgl64.Vec3

func ZeroVec() Vec { return Vec{} }

func NewVec(comps ...Real) Vec {
	var v Vec
	for i := 0; i < Dim && i < len(comps); i++ {
		v[i] = comps[i]
	}
	return v
}

func (v Vec) mgl() mgl64.Vec3 { return mgl64.Vec3(v) }

func (v Vec) Add(o Vec) Vec { return Vec(v.mgl().Add(o.mgl())) }

func (v Vec) Sub(o Vec) Vec { return Vec(v.mgl().Sub(o.mgl())) }

func (v Vec) MulScalar(s Real) Vec { return Vec(v.mgl().Mul(s)) }

func (v Vec) DivScalar(s Real) Vec { return v.MulScalar(1 / s) }

func (v Vec) Dot(o Vec) Real { return v.mgl().Dot(o.mgl()) }

func (v Vec) Neg() Vec { return Vec{-v[0], -v[1], -v[2]} }

func (v Vec) Len2() Real { return v.Dot(v) }

func (v Vec) Orthant(origin Vec) int {
	o := 0
	for k := 0; k < Dim; k++ {
		if v[k] > origin[k] {
			o |= 1 << uint(k)
		}
	}
	return o
}
