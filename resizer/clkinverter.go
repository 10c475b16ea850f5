package resizer

import (
	"sart/netlistsvc"
	"sart/queue"
	"sart/set"
)

// clockLeafDrivers returns the driver pin of every net TIMER marks as a
// clock net — the BFS seeds spec.md §4.10 starts from ("the driver vertices
// of every clock's leaf pins").
func (r *Resizer) clockLeafDrivers() []netlistsvc.PinID {
	var out []netlistsvc.PinID
	for _, nid := range r.NL.AllNets() {
		if !r.TM.IsClock(nid) {
			continue
		}
		out = append(out, r.NL.Drivers(nid)...)
	}
	return out
}

// findClockInverters BFS-forwards from the clock leaves, stopping at
// register clock pins, and collects every inverter instance encountered
// along the way (spec.md §4.10). A load pin belonging to a buffer or
// inverter instance is forwarded through (the clock tree continues); any
// other cell is treated as a register clock pin and the walk stops there.
func (r *Resizer) findClockInverters() []netlistsvc.InstanceID {
	visitedPins := set.New[netlistsvc.PinID]()
	inverters := set.New[netlistsvc.InstanceID]()

	frontier := queue.New()
	for _, drvr := range r.clockLeafDrivers() {
		frontier.Push(drvr)
	}
	for !frontier.Empty() {
		drvr := frontier.Pop().(netlistsvc.PinID)
		nid := r.NL.PinNet(drvr)
		if nid == netlistsvc.NoNet {
			continue
		}
		for _, loadPin := range r.NL.NetPins(nid) {
			if loadPin == drvr || !r.NL.IsLoad(loadPin) || visitedPins.Has(loadPin) {
				continue
			}
			visitedPins.Add(loadPin)
			p := r.NL.Pin(loadPin)
			if p.IsTopPort || p.Inst == netlistsvc.NoInstance {
				continue
			}
			cell := r.NL.Instance(p.Inst).Master
			if cell.IsInverter {
				inverters.Add(p.Inst)
			}
			if cell.IsInverter || cell.IsBuffer {
				if outPort, ok := cell.OutputPort(); ok {
					if outPin, ok := r.NL.InstancePin(p.Inst, outPort.Name); ok && !visitedPins.Has(outPin) {
						visitedPins.Add(outPin)
						frontier.Push(outPin)
					}
				}
			}
			// Any other cell is a register clock pin: the walk stops here.
		}
	}

	return inverters.List()
}

// repairClkInverters is C10 / C11's repairClkInverters entry point: clone
// every shared clock inverter once per load so clock-tree synthesis sees
// one inverter per sink (spec.md §4.10).
func (r *Resizer) repairClkInverters() int {
	cloned := 0
	for _, inv := range r.findClockInverters() {
		cell := r.NL.Instance(inv).Master
		inPort := cellFirstInputPort(cell)
		outPort, ok := cell.OutputPort()
		if inPort == nil || !ok {
			continue
		}
		inPin, _ := r.NL.InstancePin(inv, inPort.Name)
		outPin, _ := r.NL.InstancePin(inv, outPort.Name)
		inNet := r.NL.PinNet(inPin)
		outNet := r.NL.PinNet(outPin)
		if outNet == netlistsvc.NoNet {
			continue
		}

		var loads []netlistsvc.PinID
		for _, pid := range r.NL.NetPins(outNet) {
			if pid != outPin && r.NL.IsLoad(pid) {
				loads = append(loads, pid)
			}
		}

		for _, load := range loads {
			loc := r.NL.PinLocation(load)
			cloneName := r.makeUniqueInstName(cell.Name, false)
			clone := r.NL.MakeInstance(cloneName, cell, loc)
			r.NL.SetLocation(clone, loc)
			r.DesignArea += cell.Area

			cloneOutNetName := r.makeUniqueNetName()
			cloneOutNet := r.NL.MakeNet(cloneOutNetName)
			r.TM.MarkClock(cloneOutNet)

			cloneIn, _ := r.NL.InstancePin(clone, inPort.Name)
			cloneOut, _ := r.NL.InstancePin(clone, outPort.Name)
			if inNet != netlistsvc.NoNet {
				r.NL.ConnectPin(cloneIn, inNet)
			}
			r.NL.ConnectPin(cloneOut, cloneOutNet)

			r.NL.DisconnectPin(load)
			r.NL.ConnectPin(load, cloneOutNet)

			cloned++
		}

		r.NL.DeleteNet(outNet)
		r.NL.DeleteInstance(inv)
	}
	r.invalidateLevelDriverList()
	return cloned
}
