package entry

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
	// zeroTol is the tolerance below which a vector is treated as degenerate.
	zeroTol = 1e-9
)

// Norm returns the norm of a given 3x1 vector.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of a given vector, or the zero vector if degenerate.
func Unit(a []float64) (b []float64) {
	n := Norm(a)
	if floats.EqualWithinAbs(n, 0, zeroTol) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// Dot performs the inner product via mat64/BLAS.
func Dot(a, b []float64) float64 {
	return mat64.Dot(mat64.NewVector(len(a), a), mat64.NewVector(len(b), b))
}

// Cross performs the cross product.
func Cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// scaled returns a copy of the vector scaled by f.
func scaled(a []float64, f float64) (b []float64) {
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val * f
	}
	return
}

// add returns the element-wise sum of the provided vectors.
func add(vecs ...[]float64) (s []float64) {
	s = make([]float64, 3)
	for _, v := range vecs {
		for i := 0; i < 3; i++ {
			s[i] += v[i]
		}
	}
	return
}

// sub returns a - b.
func sub(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// distance returns the Euclidean distance between two points.
func distance(a, b []float64) float64 {
	return Norm(sub(a, b))
}

// orthogonalTo returns a unit vector orthogonal to the provided unit vector.
// A single Gram-Schmidt pass against a default "up" candidate, falling back
// to the X axis when that candidate is parallel to u.
func orthogonalTo(u []float64) []float64 {
	for _, cand := range [][]float64{{0, 0, 1}, {1, 0, 0}} {
		p := sub(cand, scaled(u, Dot(cand, u)))
		if Norm(p) > zeroTol {
			return Unit(p)
		}
	}
	// u itself was degenerate.
	return []float64{1, 0, 0}
}

// Deg2rad converts degrees to radians, and enforces only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforces only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
