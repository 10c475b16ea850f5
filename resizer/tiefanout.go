package resizer

import (
	"log"
	"math"

	"sart/netlistsvc"
)

// tieBBox approximates an instance's placement footprint as a square
// centered on its location, sized from its master cell's area — the CORE
// has no LEF geometry of its own (spec.md §1: physical DB is out of scope),
// so this is the minimal concrete stand-in tieLocation needs to pick "the
// side of the load's bounding box nearest the load-pin location."
func (r *Resizer) tieBBox(inst netlistsvc.InstanceID) netlistsvc.Rect {
	cell := r.NL.Instance(inst).Master
	sideMicrons := math.Sqrt(cell.Area)
	half := r.metersToDbu(sideMicrons*1e-6) / 2
	loc := r.NL.Location(inst)
	return netlistsvc.Rect{
		MinX: loc.X - half, MaxX: loc.X + half,
		MinY: loc.Y - half, MaxY: loc.Y + half,
	}
}

// tieLocation implements spec.md §4.7 step 2: pick the side of the load's
// bounding box strictly nearest the load pin, offset outward by separation;
// if no side is a strict minimum, place the tie exactly at the load. Result
// is clamped into the core rectangle if one exists.
func (r *Resizer) tieLocation(loadPin netlistsvc.PinID, separationMeters float64) netlistsvc.Point {
	p := r.NL.Pin(loadPin)
	loc := r.NL.PinLocation(loadPin)
	if p.IsTopPort || p.Inst == netlistsvc.NoInstance {
		return r.clampToCore(loc)
	}
	box := r.tieBBox(p.Inst)
	sep := r.metersToDbu(separationMeters)

	left := loc.X - box.MinX
	right := box.MaxX - loc.X
	bottom := loc.Y - box.MinY
	top := box.MaxY - loc.Y

	dists := [4]int64{left, right, bottom, top}
	minI, tie := 0, false
	for i := 1; i < 4; i++ {
		if dists[i] < dists[minI] {
			minI, tie = i, false
		} else if dists[i] == dists[minI] {
			tie = true
		}
	}
	if tie {
		return r.clampToCore(loc)
	}

	var result netlistsvc.Point
	switch minI {
	case 0: // left
		result = netlistsvc.Point{X: box.MinX - sep, Y: loc.Y}
	case 1: // right
		result = netlistsvc.Point{X: box.MaxX + sep, Y: loc.Y}
	case 2: // bottom
		result = netlistsvc.Point{X: loc.X, Y: box.MinY - sep}
	default: // top
		result = netlistsvc.Point{X: loc.X, Y: box.MaxY + sep}
	}
	return r.clampToCore(result)
}

func (r *Resizer) clampToCore(p netlistsvc.Point) netlistsvc.Point {
	core := r.NL.GetCoreArea()
	if !core.Valid() {
		return p
	}
	return core.ClosestPoint(p)
}

// repairTieFanout is C7 / C11's repairTieFanout(separation, verbose): it
// takes no tie-port argument; every tie-hi and tie-lo instance in the design
// is duplicated once per load, each clone placed near its load (spec.md §4.7).
func (r *Resizer) repairTieFanout(separationMeters float64, verbose bool) int {
	repaired := 0
	for _, tieInst := range r.tieInstances() {
		tieCell := r.NL.Instance(tieInst).Master
		outPort, ok := tieCell.OutputPort()
		if !ok {
			continue
		}
		outPin, ok := r.NL.InstancePin(tieInst, outPort.Name)
		if !ok {
			continue
		}
		origNet := r.NL.PinNet(outPin)
		if origNet == netlistsvc.NoNet {
			continue
		}

		var loads []netlistsvc.PinID
		for _, pid := range r.NL.NetPins(origNet) {
			if pid != outPin && r.NL.IsLoad(pid) {
				loads = append(loads, pid)
			}
		}

		for _, load := range loads {
			loc := r.tieLocation(load, separationMeters)
			newInstName := r.makeUniqueInstName(tieCell.Name, false)
			newInst := r.NL.MakeInstance(newInstName, tieCell, loc)
			r.NL.SetLocation(newInst, loc)
			r.DesignArea += tieCell.Area

			newNetName := r.makeUniqueNetName()
			newNet := r.NL.MakeNet(newNetName)

			newOutPin, _ := r.NL.InstancePin(newInst, outPort.Name)
			r.NL.DisconnectPin(load)
			r.NL.ConnectPin(load, newNet)
			r.NL.ConnectPin(newOutPin, newNet)

			repaired++
			if verbose {
				log.Printf("repairTieFanout: cloned %s as %s for load %s", tieCell.Name, newInstName, r.NL.PinPath(load))
			}
		}

		r.NL.DeleteNet(origNet)
		r.NL.DeleteInstance(tieInst)
	}
	r.invalidateLevelDriverList()
	return repaired
}

func (r *Resizer) tieInstances() []netlistsvc.InstanceID {
	var out []netlistsvc.InstanceID
	for _, id := range r.NL.AllInstances() {
		cell := r.NL.Instance(id).Master
		if cell.IsTieHi || cell.IsTieLo {
			out = append(out, id)
		}
	}
	return out
}
