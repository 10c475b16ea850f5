package resizer

import (
	"sart/netlistsvc"
	"sart/timer"
)

const (
	bisectStartCap = 1e-12 // 1 pF, spec.md §4.4
	bisectMinStep  = 1e-16 // 0.1 fF
)

// resizePreamble (C11) rebuilds TargetSlews and TargetLoadMap from scratch,
// per spec.md §3's lifecycle note: "(re)created at the start of each resize
// entry point."
func (r *Resizer) resizePreamble(libs [][]*netlistsvc.Cell) error {
	if !r.haveWireRC {
		return &ConfigurationError{Msg: "no wire RC block configured"}
	}
	if len(libs) == 0 {
		return &ConfigurationError{Msg: "no resize library configured"}
	}
	r.TM.Levelize()
	r.TM.EnsureGraph()
	r.resizeLibs = libs
	r.TM.MakeEquivCells(libs)
	r.computeTargetSlews(libs)
	r.computeTargetLoadMap(libs)
	r.resizedMultiOutput = r.resizedMultiOutput.Not(r.resizedMultiOutput) // clear
	return nil
}

// computeTargetSlews implements spec.md §4.4's buffer target slew: for every
// non-don't-use buffer cell across every library, drive each input->output
// arc twice (zero slew, then the resulting slew fed back once), and average
// the final output slew weighted by arc count.
func (r *Resizer) computeTargetSlews(libs [][]*netlistsvc.Cell) {
	var sumRise, sumFall float64
	var nRise, nFall int

	for _, lib := range libs {
		for _, cell := range lib {
			if !cell.IsBuffer || r.dontUse.Has(cell.Name) {
				continue
			}
			for _, in := range cell.InputPorts() {
				if !in.HasTimingArc {
					continue
				}
				loadCap := 10 * in.InputCap
				_, slew0 := r.TM.GateDelay(cell, timer.PVT{}, 0, loadCap)
				_, slew1 := r.TM.GateDelay(cell, timer.PVT{}, slew0, loadCap)
				sumRise += slew1
				nRise++
				sumFall += slew1
				nFall++
			}
		}
	}
	if nRise > 0 {
		r.targetSlewRise = sumRise / float64(nRise)
	}
	if nFall > 0 {
		r.targetSlewFall = sumFall / float64(nFall)
	}
}

// computeTargetLoadMap implements spec.md §4.4's per-cell target load
// bisection. Every cell in a resize library gets an entry, possibly 0 if it
// has no usable (non-check, non-tristate — modeled here as simply "has a
// timing arc") arcs, spec.md §7's missing-model case.
func (r *Resizer) computeTargetLoadMap(libs [][]*netlistsvc.Cell) {
	r.targetLoadMap = make(map[string]float64)
	for _, lib := range libs {
		for _, cell := range lib {
			r.targetLoadMap[cell.Name] = r.targetLoadForCell(cell)
		}
	}
}

func (r *Resizer) targetLoadForCell(cell *netlistsvc.Cell) float64 {
	var sums []float64
	targetSlew := (r.targetSlewRise + r.targetSlewFall) / 2

	for _, in := range cell.InputPorts() {
		if !in.HasTimingArc {
			continue
		}
		for range cell.OutputPorts() {
			load := r.bisectTargetLoad(cell, targetSlew)
			sums = append(sums, load)
		}
	}
	if len(sums) == 0 {
		return 0
	}
	min := sums[0]
	for _, s := range sums[1:] {
		if s < min {
			min = s
		}
	}
	return min
}

// bisectTargetLoad bisects load capacitance in [0, inf) starting at 1pF,
// halving the step on overshoot, stopping when the step shrinks below 0.1fF
// or the measured slew stops changing (spec.md §4.4).
func (r *Resizer) bisectTargetLoad(cell *netlistsvc.Cell, targetSlew float64) float64 {
	cap := bisectStartCap
	step := bisectStartCap
	_, prevSlew := r.TM.GateDelay(cell, timer.PVT{}, 0, cap)

	for step >= bisectMinStep {
		_, slew := r.TM.GateDelay(cell, timer.PVT{}, 0, cap)
		if fuzzyEqual(slew, prevSlew) && cap > bisectStartCap {
			break
		}
		if slew > targetSlew {
			// Overshot: back off and halve the step.
			cap -= step
			step /= 2
		} else {
			cap += step
		}
		if cap < 0 {
			cap = 0
		}
		prevSlew = slew
	}
	return cap
}
