package resizer

import (
	"math"
	"sort"

	"sart/netlistsvc"
	"sart/queue"
	"sart/set"
	"sart/timer"
)

// slackGap is min_over_rf(max_slack - min_slack): how much room there is to
// add delay for a hold fix before it eats into setup (spec.md §4.9).
func slackGap(m [2][2]float64) float64 {
	riseGap := m[timer.Rise][timer.Max] - m[timer.Rise][timer.Min]
	fallGap := m[timer.Fall][timer.Max] - m[timer.Fall][timer.Min]
	if riseGap < fallGap {
		return riseGap
	}
	return fallGap
}

func (r *Resizer) holdSlack(pin netlistsvc.PinID) float64 {
	return r.TM.VertexSlack(pin, timer.Min)
}

func (r *Resizer) setupSlack(pin netlistsvc.PinID) float64 {
	return r.TM.VertexSlack(pin, timer.Max)
}

// findHoldViolations returns every endpoint with negative hold slack
// (spec.md §4.9 step 1), ignoring clock pins.
func (r *Resizer) findHoldViolations(ends []netlistsvc.PinID) (worstSlack float64, failing []netlistsvc.PinID) {
	worstSlack = math.Inf(1)
	for _, end := range ends {
		nid := r.NL.PinNet(end)
		if nid != netlistsvc.NoNet && r.TM.IsClock(nid) {
			continue
		}
		slack := r.holdSlack(end)
		if slack < 0 {
			if slack < worstSlack {
				worstSlack = slack
			}
			failing = append(failing, end)
		}
	}
	return
}

// findHoldFanins walks backward from every failing endpoint collecting
// every non-clock driver vertex in the fanin cone (spec.md §4.9 step 2a).
// BFS is driven by the NETLIST's net->driver/load adjacency rather than a
// real timing-graph edge iterator, since that graph lives in the opaque
// TIMER; this walk is equivalent for the acyclic combinational fanin this
// CORE ever needs to visit. The frontier is an explicit queue.Queue FIFO
// rather than a recursive walk, the same flattened-BFS shape
// findClockInverters uses (clkinverter.go).
func (r *Resizer) findHoldFanins(ends []netlistsvc.PinID) []netlistsvc.PinID {
	visited := set.New[netlistsvc.PinID]()
	frontier := queue.New()
	for _, end := range ends {
		frontier.Push(end)
	}

	var fanins []netlistsvc.PinID
	for !frontier.Empty() {
		v := frontier.Pop().(netlistsvc.PinID)
		for _, fanin := range r.driverFaninsOf(v) {
			if visited.Has(fanin) {
				continue
			}
			visited.Add(fanin)
			nid := r.NL.PinNet(fanin)
			if nid != netlistsvc.NoNet && r.TM.IsClock(nid) {
				continue
			}
			fanins = append(fanins, fanin)
			frontier.Push(fanin)
		}
	}
	return fanins
}

// driverFaninsOf returns the driver pins of every net feeding an input pin
// of v's own instance (v is itself a driver pin; its instance's other,
// input-direction pins are the immediate fanin step).
func (r *Resizer) driverFaninsOf(v netlistsvc.PinID) []netlistsvc.PinID {
	p := r.NL.Pin(v)
	if p.IsTopPort || p.Inst == netlistsvc.NoInstance {
		return nil
	}
	var out []netlistsvc.PinID
	for _, inpin := range r.NL.InstancePins(p.Inst) {
		if r.NL.Direction(inpin) == netlistsvc.DirOutput {
			continue
		}
		nid := r.NL.PinNet(inpin)
		if nid == netlistsvc.NoNet {
			continue
		}
		out = append(out, r.NL.Drivers(nid)...)
	}
	return out
}

// sortHoldFanins orders the cone ascending by hold slack, tie-broken
// descending by slack gap, then descending by level (spec.md §4.9 step 2b).
func (r *Resizer) sortHoldFanins(fanins []netlistsvc.PinID) []netlistsvc.PinID {
	sorted := append([]netlistsvc.PinID(nil), fanins...)
	sort.Slice(sorted, func(i, j int) bool {
		s1, s2 := r.holdSlack(sorted[i]), r.holdSlack(sorted[j])
		if fuzzyEqual(s1, s2) {
			g1 := slackGap(r.TM.VertexSlacks(sorted[i]))
			g2 := slackGap(r.TM.VertexSlacks(sorted[j]))
			if fuzzyEqual(g1, g2) {
				return r.TM.Level(sorted[i]) > r.TM.Level(sorted[j])
			}
			return g1 > g2
		}
		return s1 < s2
	})
	return sorted
}

// repairHoldPass is spec.md §4.9 step 2: for up to max(10, 0.2*|failures|)
// worst fanins, insert a buffer-chain delay sized off the tightest
// surviving load; returns the number of buffers inserted this pass.
func (r *Resizer) repairHoldPass(failures []netlistsvc.PinID, bufferCell *netlistsvc.Cell, bufferSelfDelay float64, allowSetup bool) int {
	fanins := r.findHoldFanins(failures)
	sorted := r.sortHoldFanins(fanins)

	maxRepairCount := len(failures) / 5 // 0.2 * |failures|
	if maxRepairCount < 10 {
		maxRepairCount = 10
	}

	repairCount := 0
	for i := 0; i < len(sorted) && repairCount < maxRepairCount; i++ {
		vertex := sorted[i]
		nid := r.NL.PinNet(vertex)
		if nid == netlistsvc.NoNet || r.NL.IsSpecial(nid) {
			continue
		}
		if r.holdSlack(vertex) >= 0 {
			continue
		}

		var loadPins []netlistsvc.PinID
		minDelay := math.Inf(1)
		for _, loadPin := range r.NL.NetPins(nid) {
			if !r.NL.IsLoad(loadPin) {
				continue
			}
			hs := r.holdSlack(loadPin)
			if hs >= 0 {
				continue
			}
			var delay float64
			if allowSetup {
				delay = -hs
			} else {
				ss := r.setupSlack(loadPin)
				delay = -hs
				if ss < delay {
					delay = ss
				}
			}
			if delay <= 0 {
				continue
			}
			if delay < minDelay {
				minDelay = delay
			}
			loadPins = append(loadPins, loadPin)
		}
		if len(loadPins) == 0 {
			continue
		}

		// Open Question resolution (spec.md §9 / DESIGN.md): the outer
		// per-call buffer self-delay is the divisor, the inner per-load
		// minimum required delay is the dividend.
		bufferCount := ceilDiv(minDelay, bufferSelfDelay)
		if bufferCount < 1 {
			bufferCount = 1
		}

		r.makeHoldDelay(vertex, bufferCount, loadPins, bufferCell)
		repairCount += bufferCount

		if r.areaBudgetExceeded() {
			r.warnAreaExceeded()
			return repairCount
		}
	}
	return repairCount
}

// makeHoldDelay inserts bufferCount buffers in series between drvr and
// loadPins, spread at even intervals along the driver-to-load-centroid
// segment (spec.md §4.9 step 2c / makeHoldDelay).
func (r *Resizer) makeHoldDelay(drvr netlistsvc.PinID, bufferCount int, loadPins []netlistsvc.PinID, bufferCell *netlistsvc.Cell) {
	drvrNet := r.NL.PinNet(drvr)
	if drvrNet == netlistsvc.NoNet {
		return
	}
	drvrLoc := r.NL.PinLocation(drvr)
	center := centroid(r, loadPins)

	dx := (center.X - drvrLoc.X) / int64(bufferCount+1)
	dy := (center.Y - drvrLoc.Y) / int64(bufferCount+1)

	inPort := cellFirstInputPort(bufferCell)
	outPort, _ := bufferCell.OutputPort()

	inNet := drvrNet
	var outNet netlistsvc.NetID
	for i := 0; i < bufferCount; i++ {
		outNetName := r.makeUniqueNetName()
		outNet = r.NL.MakeNet(outNetName)

		instName := r.makeUniqueInstName("hold", false)
		loc := netlistsvc.Point{X: drvrLoc.X + dx*int64(i+1), Y: drvrLoc.Y + dy*int64(i+1)}
		buf := r.NL.MakeInstance(instName, bufferCell, loc)
		r.NL.SetLocation(buf, loc)
		r.DesignArea += bufferCell.Area
		r.InsertedBufferCount++

		bufIn, _ := r.NL.InstancePin(buf, inPort.Name)
		bufOut, _ := r.NL.InstancePin(buf, outPort.Name)
		r.NL.ConnectPin(bufIn, inNet)
		r.NL.ConnectPin(bufOut, outNet)

		inNet = outNet
	}

	for _, loadPin := range loadPins {
		r.NL.DisconnectPin(loadPin)
		r.NL.ConnectPin(loadPin, outNet)
	}

	if r.haveEstimatedParasitics {
		r.ensureWireParasiticForNet(drvrNet)
		r.ensureWireParasiticForNet(outNet)
	}
}

func centroid(r *Resizer, pins []netlistsvc.PinID) netlistsvc.Point {
	var sumX, sumY int64
	for _, p := range pins {
		loc := r.NL.PinLocation(p)
		sumX += loc.X
		sumY += loc.Y
	}
	n := int64(len(pins))
	if n == 0 {
		return netlistsvc.Point{}
	}
	return netlistsvc.Point{X: sumX / n, Y: sumY / n}
}

// repairHoldViolations is the C11 entry point: repeatedly find hold
// failures among ends and repair the worst fanins until the failing set is
// empty or a pass makes zero progress (spec.md §4.9 / testable property 3).
// It returns the number of buffers this call inserted; r.InsertedBufferCount
// itself is never reset here; Counters persist across entry points within a
// session (spec.md §3), so a prior BufferInputs/RepairDesign call's count
// must survive a subsequent hold repair.
func (r *Resizer) repairHoldViolations(ends []netlistsvc.PinID, bufferCell *netlistsvc.Cell, allowSetup bool) (int, error) {
	if bufferCell == nil {
		return 0, &ConfigurationError{Msg: "no hold buffer cell given"}
	}
	r.TM.FindRequireds()

	_, failures := r.findHoldViolations(ends)
	if len(failures) == 0 {
		return 0, nil
	}

	before := r.InsertedBufferCount
	bufferSelfDelay := r.TM.BufferSelfDelay()
	repairCount := 1
	for len(failures) > 0 && repairCount > 0 {
		repairCount = r.repairHoldPass(failures, bufferCell, bufferSelfDelay, allowSetup)
		r.TM.FindRequireds()
		_, failures = r.findHoldViolations(ends)
	}
	inserted := r.InsertedBufferCount - before
	if inserted > 0 {
		r.invalidateLevelDriverList()
	}
	return inserted, nil
}
