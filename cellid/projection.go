package cellid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

var nextAfterOne = math.Nextafter(1, 2)

// Point is a point on the unit sphere represented as a unit-length vector.
type Point struct {
	r3.Vector
}

// PointFromCoords returns the normalized point for the given coordinates.
// The zero vector maps to (1,0,0).
func PointFromCoords(x, y, z float64) Point {
	if x == 0 && y == 0 && z == 0 {
		return Point{r3.Vector{X: 1}}
	}
	return Point{r3.Vector{X: x, Y: y, Z: z}.Normalize()}
}

// PointFromLatLng returns the point for the given latitude/longitude.
func PointFromLatLng(ll LatLng) Point {
	phi := ll.Lat.Radians()
	theta := ll.Lng.Radians()
	cosphi := math.Cos(phi)
	return Point{r3.Vector{X: math.Cos(theta) * cosphi, Y: math.Sin(theta) * cosphi, Z: math.Sin(phi)}}
}

// Distance returns the angle between p and op.
func (p Point) Distance(op Point) s1.Angle { return p.Vector.Angle(op.Vector) }

// LatLng is a latitude/longitude pair.
type LatLng struct {
	Lat, Lng s1.Angle
}

// LatLngFromDegrees returns a LatLng for the given coordinates in degrees.
func LatLngFromDegrees(lat, lng float64) LatLng {
	return LatLng{Lat: s1.Angle(lat) * s1.Degree, Lng: s1.Angle(lng) * s1.Degree}
}

// LatLngFromPoint returns the latitude/longitude of p.
func LatLngFromPoint(p Point) LatLng {
	return LatLng{
		Lat: s1.Angle(math.Atan2(p.Z, math.Sqrt(p.X*p.X+p.Y*p.Y))) * s1.Radian,
		Lng: s1.Angle(math.Atan2(p.Y, p.X)) * s1.Radian,
	}
}

// IsValid reports whether the latitude lies in [-90,90] and the longitude in
// [-180,180] degrees.
func (ll LatLng) IsValid() bool {
	return math.Abs(ll.Lat.Radians()) <= math.Pi/2 && math.Abs(ll.Lng.Radians()) <= math.Pi
}

// Normalized clamps the latitude and wraps the longitude into range.
func (ll LatLng) Normalized() LatLng {
	lat := math.Max(-math.Pi/2, math.Min(math.Pi/2, ll.Lat.Radians()))
	lng := math.Remainder(ll.Lng.Radians(), 2*math.Pi)
	return LatLng{Lat: s1.Angle(lat) * s1.Radian, Lng: s1.Angle(lng) * s1.Radian}
}

func (ll LatLng) String() string {
	return fmt.Sprintf("[%f, %f]", ll.Lat.Degrees(), ll.Lng.Degrees())
}

// FromPoint returns the leaf cell containing p.
func FromPoint(p Point) CellID {
	f, u, v := xyzToFaceUV(p.Vector)
	return FromFaceIJ(f, stToIJ(uvToST(u)), stToIJ(uvToST(v)))
}

// FromLatLng returns the leaf cell containing ll.
func FromLatLng(ll LatLng) CellID { return FromPoint(PointFromLatLng(ll)) }

// Point returns the center of the cell as a unit vector.
func (ci CellID) Point() Point {
	u, v := ci.CenterUV()
	return Point{faceUVToXYZ(ci.Face(), u, v).Normalize()}
}

// LatLng returns the center of the cell as a latitude/longitude.
func (ci CellID) LatLng() LatLng { return LatLngFromPoint(ci.Point()) }

// CenterUV returns the (u,v) coordinates of the cell center on its face.
func (ci CellID) CenterUV() (u, v float64) {
	_, i, j, _ := ci.faceIJOrientation()
	size := sizeIJ(ci.Level())
	i &= -size
	j &= -size
	// Center in half-leaf units over the (2*MaxSize) grid.
	si := 2*i + size
	ti := 2*j + size
	return stToUV(float64(si) / (2 * MaxSize)), stToUV(float64(ti) / (2 * MaxSize))
}

// BoundUV returns the (u,v) rectangle of the cell on its face.
func (ci CellID) BoundUV() (u0, u1, v0, v1 float64) {
	_, i, j, _ := ci.faceIJOrientation()
	size := sizeIJ(ci.Level())
	i &= -size
	j &= -size
	return ijToUV(i), ijToUV(i + size), ijToUV(j), ijToUV(j + size)
}

func ijToUV(i int) float64 { return stToUV(float64(i) / MaxSize) }

// stToUV applies the quadratic projection from cell-space s to face-space u.
func stToUV(s float64) float64 {
	if s >= 0.5 {
		return (1 / 3.) * (4*s*s - 1)
	}
	return (1 / 3.) * (1 - 4*(1-s)*(1-s))
}

// uvToST is the inverse of stToUV.
func uvToST(u float64) float64 {
	if u >= 0 {
		return 0.5 * math.Sqrt(1+3*u)
	}
	return 1 - 0.5*math.Sqrt(1-3*u)
}

func stToIJ(s float64) int {
	return clampInt(int(math.Floor(MaxSize*s)), 0, MaxSize-1)
}

// faceOf returns the face whose axis is the largest absolute component of r.
func faceOf(r r3.Vector) int {
	ax, ay, az := math.Abs(r.X), math.Abs(r.Y), math.Abs(r.Z)
	var f int
	var neg bool
	switch {
	case ax > ay && ax > az:
		f, neg = 0, r.X < 0
	case ay > az:
		f, neg = 1, r.Y < 0
	default:
		f, neg = 2, r.Z < 0
	}
	if neg {
		f += 3
	}
	return f
}

func validFaceXYZToUV(face int, r r3.Vector) (float64, float64) {
	switch face {
	case 0:
		return r.Y / r.X, r.Z / r.X
	case 1:
		return -r.X / r.Y, r.Z / r.Y
	case 2:
		return -r.X / r.Z, -r.Y / r.Z
	case 3:
		return r.Z / r.X, r.Y / r.X
	case 4:
		return r.Z / r.Y, -r.X / r.Y
	}
	return -r.Y / r.Z, -r.X / r.Z
}

func xyzToFaceUV(r r3.Vector) (face int, u, v float64) {
	face = faceOf(r)
	u, v = validFaceXYZToUV(face, r)
	return face, u, v
}

func faceUVToXYZ(face int, u, v float64) r3.Vector {
	switch face {
	case 0:
		return r3.Vector{X: 1, Y: u, Z: v}
	case 1:
		return r3.Vector{X: -u, Y: 1, Z: v}
	case 2:
		return r3.Vector{X: -u, Y: -v, Z: 1}
	case 3:
		return r3.Vector{X: -1, Y: -v, Z: -u}
	case 4:
		return r3.Vector{X: v, Y: -1, Z: -u}
	default:
		return r3.Vector{X: v, Y: u, Z: -1}
	}
}

// FaceUVToPoint returns the unit point for (u,v) coordinates on face.
func FaceUVToPoint(face int, u, v float64) Point {
	return Point{faceUVToXYZ(face, u, v).Normalize()}
}

// FaceUVToXYZ returns the unnormalized vector for (u,v) on face.
func FaceUVToXYZ(face int, u, v float64) r3.Vector { return faceUVToXYZ(face, u, v) }

// FaceXYZToUV projects p onto the given face. ok is false when p lies in the
// opposite hemisphere of the face axis.
func FaceXYZToUV(face int, p Point) (u, v float64, ok bool) {
	switch face {
	case 0:
		ok = p.X > 0
	case 1:
		ok = p.Y > 0
	case 2:
		ok = p.Z > 0
	case 3:
		ok = p.X < 0
	case 4:
		ok = p.Y < 0
	default:
		ok = p.Z < 0
	}
	if !ok {
		return 0, 0, false
	}
	u, v = validFaceXYZToUV(face, p.Vector)
	return u, v, true
}

// UNorm returns the normal (not unit length) of the plane through the origin
// containing the line u=const on face. Points of the face with a smaller u
// have a positive dot product with it.
func UNorm(face int, u float64) r3.Vector {
	switch face {
	case 0:
		return r3.Vector{X: u, Y: -1, Z: 0}
	case 1:
		return r3.Vector{X: 1, Y: u, Z: 0}
	case 2:
		return r3.Vector{X: 1, Y: 0, Z: u}
	case 3:
		return r3.Vector{X: -u, Y: 0, Z: 1}
	case 4:
		return r3.Vector{X: 0, Y: -u, Z: 1}
	default:
		return r3.Vector{X: 0, Y: -1, Z: -u}
	}
}

// VNorm is like UNorm for the line v=const; points with a larger v have a
// positive dot product with it.
func VNorm(face int, v float64) r3.Vector {
	switch face {
	case 0:
		return r3.Vector{X: -v, Y: 0, Z: 1}
	case 1:
		return r3.Vector{X: 0, Y: -v, Z: 1}
	case 2:
		return r3.Vector{X: 0, Y: -1, Z: -v}
	case 3:
		return r3.Vector{X: v, Y: -1, Z: 0}
	case 4:
		return r3.Vector{X: 1, Y: v, Z: 0}
	default:
		return r3.Vector{X: 1, Y: 0, Z: v}
	}
}
