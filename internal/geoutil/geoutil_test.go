package geoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	// Lima city center to Jorge Chavez airport, roughly 11 km.
	d := DistanceMeters(-12.0464, -77.0428, -12.0219, -77.1143)
	assert.InDelta(t, 8300, d, 2000)

	assert.Zero(t, DistanceMeters(-12.0464, -77.0428, -12.0464, -77.0428))
}

func TestTimezoneFor(t *testing.T) {
	tz := TimezoneFor(-12.0464, -77.0428)
	if tz == "" {
		t.Skip("timezone data unavailable")
	}
	assert.Equal(t, "America/Lima", tz)
}
