package resizer

import "sart/netlistsvc"

// dbuToMeters / metersToDbu are the CORE's only unit boundary (spec.md
// §4.1): every public wire-length or separation input is meters, every
// internal geometry computation stays in integer DBU.
func (r *Resizer) dbuToMeters(d int64) float64 {
	return float64(d) / (float64(r.NL.GetDbUnitsPerMicron()) * 1e6)
}

func (r *Resizer) metersToDbu(m float64) int64 {
	return int64(m * float64(r.NL.GetDbUnitsPerMicron()) * 1e6)
}

func manhattan(a, b netlistsvc.Point) int64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// interpolate returns the point `dist` DBU along the straight line from a to
// b, where `total` is the Manhattan length of that line (x and y advance
// proportionally, matching how a rectilinear Steiner branch is walked one
// axis then the other in practice, approximated here as a single linear
// blend since C8 only ever needs a placement point, not a routed path).
func interpolate(a, b netlistsvc.Point, dist, total int64) netlistsvc.Point {
	if total <= 0 {
		return a
	}
	frac := float64(dist) / float64(total)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	x := a.X + int64(float64(b.X-a.X)*frac)
	y := a.Y + int64(float64(b.Y-a.Y)*frac)
	return netlistsvc.Point{X: x, Y: y}
}
