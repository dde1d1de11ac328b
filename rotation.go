package entry

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// AxisAngle returns the rotation matrix about the provided unit axis by angle θ
// (Rodrigues' formula, Schaub and Junkins eq. 3.72 transposed for active rotation).
func AxisAngle(axis []float64, θ float64) *mat64.Dense {
	s, c := math.Sincos(θ)
	x, y, z := axis[0], axis[1], axis[2]
	return mat64.NewDense(3, 3, []float64{
		c + x*x*(1-c), x*y*(1-c) - z*s, x*z*(1-c) + y*s,
		y*x*(1-c) + z*s, c + y*y*(1-c), y*z*(1-c) - x*s,
		z*x*(1-c) - y*s, z*y*(1-c) + x*s, c + z*z*(1-c)})
}

// RotAbout rotates vector v about the provided unit axis by angle θ.
func RotAbout(axis []float64, θ float64, v []float64) []float64 {
	return MxV33(AxisAngle(axis, θ), v)
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// ENU2Fixed returns the direction cosine matrix from the local East-North-Up
// frame at longitude θ and latitude φ to the body-fixed frame, as a 3-1
// principal rotation sequence.
func ENU2Fixed(θ, φ float64) *mat64.Dense {
	var m mat64.Dense
	m.Mul(R3(-θ-math.Pi/2), R1(φ-math.Pi/2))
	return &m
}

// EntryState holds a planetary entry state in spherical coordinates:
// radius from body center, longitude, latitude, velocity magnitude,
// flight path angle and heading. Angles in radians, distances in meters.
type EntryState struct {
	R, Longitude, Latitude float64
	V, FPA, Heading        float64
}

// Cartesian returns the inertial Cartesian position of this entry state
// via the co-latitude form.
func (s EntryState) Cartesian() []float64 {
	coLat := math.Pi/2 - s.Latitude
	sCo, cCo := math.Sincos(coLat)
	sθ, cθ := math.Sincos(s.Longitude)
	return []float64{s.R * sCo * cθ, s.R * sCo * sθ, s.R * cCo}
}

// CartesianVelocity returns the inertial velocity of this entry state: the
// velocity magnitude split between the local horizontal (rotated from East by
// the heading) and the local vertical by the flight path angle.
func (s EntryState) CartesianVelocity() []float64 {
	up := Unit(s.Cartesian())
	east := Unit(Cross([]float64{0, 0, 1}, up))
	if Norm(east) < zeroTol {
		// Polar entry point: local East is undefined.
		east = orthogonalTo(up)
	}
	north := Cross(up, east)
	sψ, cψ := math.Sincos(s.Heading)
	sγ, cγ := math.Sincos(s.FPA)
	horizontal := add(scaled(east, cψ), scaled(north, sψ))
	return scaled(add(scaled(horizontal, cγ), scaled(up, sγ)), s.V)
}

// Spherical converts an inertial Cartesian position and velocity to an
// EntryState. The flight path angle is measured from the local horizontal
// (negative descending) and the heading from local East toward North.
func Spherical(R, V []float64) EntryState {
	r := Norm(R)
	θ := math.Atan2(R[1], R[0])
	φ := math.Pi/2 - math.Acos(R[2]/r)
	vMag := Norm(V)
	rHat := Unit(R)
	vr := Dot(V, rHat)
	vθ := math.Sqrt(math.Max(0, vMag*vMag-vr*vr))
	γ := math.Atan2(vr, vθ)
	// Heading from the ENU components of the velocity.
	var enu mat64.Vector
	enu.MulVec(ENU2Fixed(θ, φ).T(), mat64.NewVector(3, V))
	ψ := math.Atan2(enu.At(1, 0), enu.At(0, 0))
	return EntryState{R: r, Longitude: θ, Latitude: φ, V: vMag, FPA: γ, Heading: ψ}
}
