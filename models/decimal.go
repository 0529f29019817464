package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Decimal is a float64 that decodes from either a JSON number or a decimal
// string. The backend serializes DecimalFields (prices, coordinates) as strings.
type Decimal float64

// Float64 returns the plain value.
func (d Decimal) Float64() float64 { return float64(d) }

// DecimalPtr is a helper for optional coordinates.
func DecimalPtr(v float64) *Decimal {
	d := Decimal(v)
	return &d
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

// MarshalJSON writes a plain JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}

// Point is a geographic coordinate in latitude/longitude order.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLng returns the point as a [lat, lng] pair, the order map layers expect.
func (p Point) LatLng() [2]float64 { return [2]float64{p.Lat, p.Lng} }

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
