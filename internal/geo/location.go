package geo

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidBoundingBox is returned by BoundingBox.Validate.
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// BoundingBox is a latitude/longitude rectangle in degrees. Points are drawn
// from [MinLat, MaxLat) x [MinLon, MaxLon).
type BoundingBox struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// Validate checks ordering and that the box lies inside the MGRS latitude band.
func (b BoundingBox) Validate() error {
	if b.MinLat >= b.MaxLat {
		return fmt.Errorf("%w: min_lat %g must be below max_lat %g", ErrInvalidBoundingBox, b.MinLat, b.MaxLat)
	}
	if b.MinLon >= b.MaxLon {
		return fmt.Errorf("%w: min_lon %g must be below max_lon %g", ErrInvalidBoundingBox, b.MinLon, b.MaxLon)
	}
	if b.MinLat < MinLatitude || b.MaxLat > MaxLatitude {
		return fmt.Errorf("%w: latitudes must lie in [%g, %g]", ErrInvalidBoundingBox, MinLatitude, MaxLatitude)
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("%w: longitudes must lie in [-180, 180]", ErrInvalidBoundingBox)
	}
	return nil
}

// RandomPoint draws a latitude then a longitude uniformly inside b.
func RandomPoint(b BoundingBox, rng *rand.Rand) (lat, lon float64) {
	lat = distuv.Uniform{Min: b.MinLat, Max: b.MaxLat, Src: rng}.Rand()
	lon = distuv.Uniform{Min: b.MinLon, Max: b.MaxLon, Src: rng}.Rand()
	return lat, lon
}

// RandomLocation draws a point in b and encodes it with encode.
func RandomLocation(b BoundingBox, precision int, encode EncodeFunc, rng *rand.Rand) (string, error) {
	if encode == nil {
		encode = Encode
	}
	lat, lon := RandomPoint(b, rng)
	code, err := encode(lat, lon, precision)
	if err != nil {
		return "", fmt.Errorf("encode (%.5f, %.5f): %w", lat, lon, err)
	}
	return code, nil
}
