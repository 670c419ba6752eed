// Package geoutil wraps coordinate math and timezone lookup. Coordinates
// are an optional signal everywhere in the engine, so callers must handle
// the zero results here.
package geoutil

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/ringsaturn/tzf"
)

// DistanceMeters returns the haversine distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}

var (
	finderOnce sync.Once
	finder     tzf.F
	finderErr  error
)

// TimezoneFor resolves an IANA timezone name from coordinates, or ""
// when the lookup data cannot be loaded. The finder is built lazily; it
// holds a compressed polygon index that is not worth paying for unless a
// caller actually needs timezones.
func TimezoneFor(lat, lng float64) string {
	finderOnce.Do(func() {
		finder, finderErr = tzf.NewDefaultFinder()
	})
	if finderErr != nil {
		return ""
	}
	return finder.GetTimezoneName(lng, lat)
}
