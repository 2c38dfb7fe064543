// Package geo holds the spatial value written for every ingested record.
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidWKT = errors.New("invalid point well-known text")

// Point is a planar point. X carries the longitude and Y the latitude.
type Point struct {
	X float64
	Y float64
}

// FromLonLat builds a point from a longitude/latitude pair.
func FromLonLat(lon, lat float64) Point {
	return Point{X: lon, Y: lat}
}

func (p Point) Lon() float64 { return p.X }
func (p Point) Lat() float64 { return p.Y }

// WKT renders the point as POINT(x y), the form ST_GeomFromText expects.
func (p Point) WKT() string {
	var sb strings.Builder
	sb.Grow(32)
	sb.WriteString("POINT(")
	sb.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	sb.WriteByte(')')
	return sb.String()
}

func (p Point) String() string {
	return p.WKT()
}

// ParsePoint parses POINT(x y). Case, whitespace around the tag and
// parentheses, and the "POINT (x y)" spacing used by spatial databases are
// all accepted.
func ParsePoint(s string) (Point, error) {
	body := strings.TrimSpace(s)
	if len(body) < 5 || !strings.EqualFold(body[:5], "point") {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidWKT, s)
	}
	body = strings.TrimSpace(body[5:])
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidWKT, s)
	}
	coords := strings.Fields(body[1 : len(body)-1])
	if len(coords) != 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidWKT, s)
	}
	x, err := strconv.ParseFloat(coords[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidWKT, s)
	}
	y, err := strconv.ParseFloat(coords[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidWKT, s)
	}
	return Point{X: x, Y: y}, nil
}
