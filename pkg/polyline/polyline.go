// Package polyline encodes polygon rings with Google's polyline
// algorithm, the compact wire format mobile clients prefer over raw
// coordinate arrays. The algorithm is documented at
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"

	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// precision is the standard 5-decimal-place factor, roughly 1m on the
// ground.
const precision = 1e5

// EncodeRing encodes a ring as a polyline string. The ring is closed
// before encoding so decoders always see first == last.
func EncodeRing(ring geo.Ring) string {
	if len(ring) == 0 {
		return ""
	}
	closed := ring.Close()

	var out []byte
	prevLat, prevLng := 0, 0
	for _, p := range closed {
		lat := round(p.Lat * precision)
		lng := round(geo.WrapLng(p.Lng) * precision)
		out = appendValue(out, lat-prevLat)
		out = appendValue(out, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(out)
}

// DecodeRing decodes a polyline string into a ring. A trailing closing
// vertex is dropped, matching the implicit closure of geo.Ring.
func DecodeRing(encoded string) geo.Ring {
	if encoded == "" {
		return nil
	}

	var ring geo.Ring
	index := 0
	lat, lng := 0, 0
	for index < len(encoded) {
		latDelta, next := decodeValue(encoded, index)
		index = next
		lat += latDelta

		lngDelta, next := decodeValue(encoded, index)
		index = next
		lng += lngDelta

		ring = append(ring, geo.Position{
			Lat: float64(lat) / precision,
			Lng: float64(lng) / precision,
		})
	}

	if len(ring) > 1 && ring[0].Equal(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	return ring
}

// EncodeRings encodes each ring separately.
func EncodeRings(rings []geo.Ring) []string {
	out := make([]string, 0, len(rings))
	for _, ring := range rings {
		out = append(out, EncodeRing(ring))
	}
	return out
}

func round(v float64) int {
	return int(math.Round(v))
}

// appendValue appends one zigzag-encoded delta in 5-bit chunks.
func appendValue(out []byte, delta int) []byte {
	v := delta << 1
	if delta < 0 {
		v = ^v
	}
	for v >= 0x20 {
		out = append(out, byte((0x20|(v&0x1f))+63))
		v >>= 5
	}
	return append(out, byte(v+63))
}

// decodeValue decodes one delta starting at index, returning the delta
// and the index past it.
func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0
	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}
