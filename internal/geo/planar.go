package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Planar is an alias for the vector type used throughout the engine for
// any point in a metric (non-angular) frame: Web Mercator meters, UTM
// meters, or device pixels. Reusing gonum's r2.Vec gives every planar
// package (track, labelplace, mapview) the same vector arithmetic
// (Add/Sub/Scale/Norm) instead of three hand-rolled copies of it.
type Planar = r2.Vec

// Distance returns the Euclidean distance between two planar points.
func Distance(a, b Planar) float64 {
	d := r2.Sub(a, b)
	return math.Hypot(d.X, d.Y)
}

// Distance2 returns the squared Euclidean distance, useful when only
// relative ordering matters and the sqrt can be skipped.
func Distance2(a, b Planar) float64 {
	d := r2.Sub(a, b)
	return d.X*d.X + d.Y*d.Y
}

// Lerp returns the point a fraction t of the way from a to b.
func Lerp(a, b Planar, t float64) Planar {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// WebMercator is the default planar projector: pseudo-Mercator (EPSG:3857),
// the spherical approximation used by every common web map tile scheme.
// It is implemented directly rather than via a general PROJ binding: the
// example pack carries no Go PROJ-style library, and the forward/inverse
// spherical Mercator formulas are closed-form and exact to machine
// precision, so hand-rolling them is the documented exception to "prefer
// a third-party library" (see DESIGN.md).
type WebMercator struct{}

const webMercatorMaxLat = 85.05112878

// Project converts a geodetic point to Web Mercator meters.
func (WebMercator) Project(p WGS84) Planar {
	lat := clampLat(p.Lat, webMercatorMaxLat)
	x := p.Lon * math.Pi / 180 * earthRadiusMeters
	y := math.Log(math.Tan(math.Pi/4+(lat*math.Pi/180)/2)) * earthRadiusMeters
	return Planar{X: x, Y: y}
}

// Unproject converts Web Mercator meters back to a geodetic point
// (elevation is not carried; callers interpolate it separately).
func (WebMercator) Unproject(p Planar) WGS84 {
	lon := p.X / earthRadiusMeters * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(p.Y/earthRadiusMeters)) - math.Pi/2) * 180 / math.Pi
	return NewWGS84NoElevation(lon, lat)
}

func clampLat(lat, max float64) float64 {
	if lat > max {
		return max
	}
	if lat < -max {
		return -max
	}
	return lat
}

// UTMZone returns the standard 1-60 UTM zone number for a longitude,
// matching the source's `floor((lon+180)/6)+1` formula.
func UTMZone(lonDegrees float64) int {
	return int(math.Floor((lonDegrees+180)/6)) + 1
}

// UTM is a zone-pinned Transverse Mercator projector, used where aspect
// ratio matters (map view rendering) since Web Mercator distorts east-west
// distance away from the equator. Center determines the zone and
// hemisphere once, at construction, matching the source's "we take the
// first point of each segment ... we should wait until we have the user
// segments" comment: both are fixed for the life of one projector, so
// Project and Unproject round-trip consistently even for points near the
// equator where per-point hemisphere sign would be ambiguous to invert.
type UTM struct {
	zone            int
	centralMeridian float64
	southern        bool
}

const (
	utmScaleFactor = 0.9996
	utmFalseEasting = 500000.0
	// WGS84 ellipsoid parameters.
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
)

// NewUTM builds a UTM projector pinned to the zone and hemisphere
// containing center.
func NewUTM(center WGS84) UTM {
	zone := UTMZone(center.Lon)
	return UTM{zone: zone, centralMeridian: float64(zone)*6 - 183, southern: center.Lat < 0}
}

// Zone returns the UTM zone this projector is pinned to.
func (u UTM) Zone() int { return u.zone }

// Project converts a geodetic point to UTM meters (northern-hemisphere
// false northing of 0; southern tracks still get consistent relative
// coordinates, which is all the map view needs).
func (u UTM) Project(p WGS84) Planar {
	a := wgs84A
	f := wgs84F
	e2 := f * (2 - f)
	ePrime2 := e2 / (1 - e2)

	lat := p.Lat * math.Pi / 180
	lon := p.Lon * math.Pi / 180
	lon0 := u.centralMeridian * math.Pi / 180

	n := a / math.Sqrt(1-e2*math.Sin(lat)*math.Sin(lat))
	t := math.Tan(lat) * math.Tan(lat)
	c := ePrime2 * math.Cos(lat) * math.Cos(lat)
	aTerm := math.Cos(lat) * (lon - lon0)

	m := a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*lat -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*lat) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*lat) -
		(35*e2*e2*e2/3072)*math.Sin(6*lat))

	x := utmScaleFactor*n*(aTerm+(1-t+c)*aTerm*aTerm*aTerm/6+
		(5-18*t+t*t+72*c-58*ePrime2)*math.Pow(aTerm, 5)/120) + utmFalseEasting

	y := utmScaleFactor * (m + n*math.Tan(lat)*(aTerm*aTerm/2+
		(5-t+9*c+4*c*c)*math.Pow(aTerm, 4)/24+
		(61-58*t+t*t+600*c-330*ePrime2)*math.Pow(aTerm, 6)/720))

	if u.southern {
		y += 10000000.0
	}

	return Planar{X: x, Y: y}
}

// Unproject inverts Project using Snyder's closed-form inverse
// transverse Mercator series (the same formula family the original
// source's forward projection is transcribed from), using the
// hemisphere this projector was pinned to at construction rather than
// inferring it from y (ambiguous within a few hundred km of the
// equator).
func (u UTM) Unproject(p Planar) WGS84 {
	a := wgs84A
	f := wgs84F
	e2 := f * (2 - f)
	ePrime2 := e2 / (1 - e2)
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	x := p.X - utmFalseEasting
	y := p.Y
	if u.southern {
		y -= 10000000.0
	}

	m := y / utmScaleFactor
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	n1 := a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	t1 := tanPhi1 * tanPhi1
	c1 := ePrime2 * cosPhi1 * cosPhi1
	r1 := a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := x / (n1 * utmScaleFactor)

	lat := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ePrime2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ePrime2-3*c1*c1)*d*d*d*d*d*d/720)

	lon := u.centralMeridian*math.Pi/180 + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ePrime2+24*t1*t1)*d*d*d*d*d/120)/cosPhi1

	return NewWGS84NoElevation(lon*180/math.Pi, lat*180/math.Pi)
}
