// Package geo draws emitter locations and encodes them as MGRS grid
// references on the WGS84 ellipsoid.
package geo

import (
	"fmt"
	"math"

	utm "github.com/im7mortal/UTM"
)

const (
	// MGRS/UTM is defined between these latitudes; the polar regions use UPS.
	MinLatitude = -80.0
	MaxLatitude = 84.0

	// MaxPrecision is the number of digits per axis at 1 m resolution.
	MaxPrecision = 5
)

const rowLetters = "ABCDEFGHJKLMNPQRSTUV"

var columnSets = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}

// UTM is a projected position.
type UTM struct {
	Zone     int
	Band     byte
	Easting  float64
	Northing float64
}

// EncodeFunc converts a latitude/longitude pair to a grid reference with the
// given number of digits per axis.
type EncodeFunc func(lat, lon float64, precision int) (string, error)

// ToUTM projects lat/lon (degrees), including the Norway and Svalbard zone
// exceptions. Longitudes outside [-180, 180) are wrapped first.
func ToUTM(lat, lon float64) (UTM, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return UTM{}, fmt.Errorf("invalid coordinate (%v, %v)", lat, lon)
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return UTM{}, fmt.Errorf("latitude %.6f outside UTM range [%g, %g]", lat, MinLatitude, MaxLatitude)
	}
	lon = normaliseLongitude(lon)

	easting, northing, zone, letter, err := utm.FromLatLon(lat, lon, lat >= 0)
	if err != nil {
		return UTM{}, fmt.Errorf("project (%.6f, %.6f): %w", lat, lon, err)
	}
	if len(letter) != 1 {
		return UTM{}, fmt.Errorf("unexpected latitude band %q for %.6f", letter, lat)
	}
	return UTM{Zone: zone, Band: letter[0], Easting: easting, Northing: northing}, nil
}

// Encode returns the MGRS reference for lat/lon: two-digit zone, band
// letter, 100 km square letters, then precision digits each of easting and
// northing. Digits are truncated, not rounded, so "51RTG123456" at
// precision 3 names the 100 m square containing the point.
func Encode(lat, lon float64, precision int) (string, error) {
	if precision < 0 || precision > MaxPrecision {
		return "", fmt.Errorf("precision %d outside [0, %d]", precision, MaxPrecision)
	}
	u, err := ToUTM(lat, lon)
	if err != nil {
		return "", err
	}

	square := squareID(u)
	e := fmt.Sprintf("%05d", int64(math.Floor(u.Easting))%100000)
	n := fmt.Sprintf("%05d", int64(math.Floor(u.Northing))%100000)
	return fmt.Sprintf("%02d%c%s%s%s", u.Zone, u.Band, square, e[:precision], n[:precision]), nil
}

func normaliseLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// squareID computes the 100 km square letters using the AA lettering scheme.
func squareID(u UTM) string {
	set := (u.Zone - 1) % 3
	col := int(u.Easting/100000) - 1
	if col < 0 {
		col = 0
	}
	if col > 7 {
		col = 7
	}
	row := int(u.Northing/100000) % len(rowLetters)
	if u.Zone%2 == 0 {
		row = (row + 5) % len(rowLetters)
	}
	return string([]byte{columnSets[set][col], rowLetters[row]})
}
