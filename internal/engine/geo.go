package engine

import (
	"math"

	"github.com/wroge/wgs84"

	"flight-dynamics/internal/geometry/vector"
)

// GeoRef pins the local earth frame to a point on the globe. Local X is
// east, Y is altitude and -Z is north. Distances are taken on the Web
// Mercator plane and rescaled to ground meters at the origin latitude,
// which holds well within a few tens of kilometers of the origin.
type GeoRef struct {
	OriginLat float64
	OriginLon float64

	toMercator   transform
	fromMercator transform
	originX      float64
	originY      float64
	scale        float64
}

type transform = func(a, b, c float64) (float64, float64, float64)

// NewGeoRef anchors the local frame at lat/lon (degrees).
func NewGeoRef(lat, lon float64) GeoRef {
	epsg := wgs84.EPSG()
	g := GeoRef{
		OriginLat:    lat,
		OriginLon:    lon,
		toMercator:   epsg.Transform(4326, 3857),
		fromMercator: epsg.Transform(3857, 4326),
		scale:        math.Cos(lat * math.Pi / 180.0),
	}
	g.originX, g.originY, _ = g.toMercator(lon, lat, 0)
	return g
}

// GeoToLocal converts latitude, longitude (degrees) and altitude (m) into
// the local earth frame.
func (g GeoRef) GeoToLocal(lat, lon, alt float64) vector.Vec3 {
	x, y, _ := g.toMercator(lon, lat, 0)
	return vector.Vec3{
		X: (x - g.originX) * g.scale,  // east
		Y: alt,                        // up
		Z: -(y - g.originY) * g.scale, // south
	}
}

// LocalToGeo converts a local earth-frame position into latitude,
// longitude (degrees) and altitude (m).
func (g GeoRef) LocalToGeo(p vector.Vec3) (lat, lon, alt float64) {
	x := g.originX + p.X/g.scale
	y := g.originY - p.Z/g.scale
	lon, lat, _ = g.fromMercator(x, y, 0)
	return lat, lon, p.Y
}

// TrackDeg is the compass direction of an earth-frame velocity, 0=north,
// 90=east. A vertical or zero velocity has track 0.
func TrackDeg(v vector.Vec3) float64 {
	if math.Abs(v.X) < 1e-9 && math.Abs(v.Z) < 1e-9 {
		return 0
	}
	deg := math.Atan2(v.X, -v.Z) * 180.0 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
