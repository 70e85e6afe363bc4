// Package nearby annotates a roster of users with their distance from the
// caller. It performs no I/O and keeps no state between calls.
package nearby

import (
	"fmt"
	"math"

	"meetmap/pkg/location"
)

// LabelSuffix follows the formatted kilometers in every distance label.
const LabelSuffix = "km de distância"

// Entry is one user of an already fetched roster.
type Entry struct {
	UserID   uint
	Name     string
	Email    string
	PhotoURL string
	Location *location.GeoPoint
}

// Annotated is an Entry plus its distance from the caller.
// DistanceKm is nil when either location is absent.
type Annotated struct {
	Entry
	DistanceKm    *float64
	DistanceLabel string
}

// Known reports whether the distance can be rendered.
func (a Annotated) Known() bool {
	return a.DistanceKm != nil && !math.IsNaN(*a.DistanceKm) && !math.IsInf(*a.DistanceKm, 0)
}

// FormatDistance renders km with two fractional digits, e.g. "1.50 km de distância".
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.2f %s", km, LabelSuffix)
}

// Present returns one record per entry in input order. Entries are never
// dropped or reordered.
func Present(self *location.GeoPoint, others []Entry) []Annotated {
	out := make([]Annotated, len(others))
	for i, e := range others {
		out[i] = Annotated{Entry: e}
		if self == nil || e.Location == nil {
			continue
		}
		d := location.HaversineKm(*self, *e.Location)
		out[i].DistanceKm = &d
		if out[i].Known() {
			out[i].DistanceLabel = FormatDistance(d)
		}
	}
	return out
}
