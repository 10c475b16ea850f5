package resizer

import (
	"sart/netlistsvc"
	"sart/timer"
)

// resizeDriverPin implements C5, spec.md §4.5: equivalent-cell selection to
// match target load, with a buffer/inverter delay tie-break. It is called
// both from resizeToTargetSlew's driver-ordered pass and, inline, after C8
// inserts or adjusts a repeater so its cell reflects its new downstream
// load.
func (r *Resizer) resizeDriverPin(drvr netlistsvc.PinID) {
	nid := r.NL.PinNet(drvr)
	if nid == netlistsvc.NoNet {
		return
	}
	if r.NL.IsSpecial(nid) || r.TM.IsClock(nid) {
		return
	}
	pin := r.NL.Pin(drvr)
	if pin.IsTopPort || pin.Inst == netlistsvc.NoInstance {
		return
	}
	inst := r.NL.Instance(pin.Inst)
	cell := inst.Master
	if cell.IsFuncOneZero {
		return
	}
	if len(r.NL.NetPins(nid)) <= 1 {
		return // no fanout
	}

	r.ensureWireParasitic(drvr)
	loadCap := r.TM.LoadCap(drvr, r.corner)
	if loadCap <= 0 {
		return
	}

	isBufOrInv := cell.IsBuffer || cell.IsInverter
	bestCell := cell
	bestT := r.targetLoadMap[cell.Name]
	bestRatio := ratio(bestT, loadCap)
	bestDelay := 0.0
	if isBufOrInv {
		bestDelay, _ = r.TM.GateDelay(cell, timer.PVT{}, 0, loadCap)
	}

	// Multi-output discipline (spec.md §4.5): if this instance was already
	// visited on another output pin this pass, only upsizing swaps (against
	// the current best target load) are allowed, to prevent oscillation
	// when two output pins disagree on the best size.
	alreadyVisited := r.resizedMultiOutput.Has(pin.Inst)

	for _, e := range r.TM.EquivCells(cell) {
		if r.dontUse.Has(e.Name) {
			continue
		}
		te := r.targetLoadMap[e.Name]
		re := ratio(te, loadCap)

		if alreadyVisited && te <= bestT {
			continue
		}

		if isBufOrInv {
			de, _ := r.TM.GateDelay(e, timer.PVT{}, 0, loadCap)
			if (de < bestDelay && re > 0.9*bestRatio) ||
				(re > bestRatio && de < 1.1*bestDelay) {
				bestCell, bestT, bestRatio, bestDelay = e, te, re, de
			}
		} else {
			if re > bestRatio {
				bestCell, bestT, bestRatio = e, te, re
			}
		}
	}

	if len(r.instanceOutputPins(pin.Inst)) > 1 {
		r.markMultiOutputVisited(pin.Inst)
	}

	if bestCell != cell {
		r.DesignArea += bestCell.Area - cell.Area
		r.NL.ReplaceCell(pin.Inst, bestCell)
		r.invalidateInstanceParasitics(pin.Inst)
		r.ResizeCount++
	}
}

// markMultiOutputVisited records that inst has been visited on one output
// pin this resize pass, per spec.md §3's ResizedMultiOutputSet.
func (r *Resizer) markMultiOutputVisited(inst netlistsvc.InstanceID) {
	r.resizedMultiOutput.Add(inst)
}

// resizeToTargetSlew is the C11 entry point driving C5 over every eligible
// net in reverse level order. Callers run resizePreamble first (spec.md
// §4.11 lists them as separate entry points); Resize (the convenience
// wrapper orchestrator.go exposes) does both.
func (r *Resizer) resizeToTargetSlew() error {
	r.ensureLevelDriverList()

	drivers := append([]netlistsvc.PinID(nil), r.levelDriverList...)
	for i, j := 0, len(drivers)-1; i < j; i, j = i+1, j-1 {
		drivers[i], drivers[j] = drivers[j], drivers[i]
	}

	for _, drvr := range drivers {
		if r.areaBudgetExceeded() {
			r.warnAreaExceeded()
			break
		}
		r.resizeDriverPin(drvr)
	}
	return nil
}
