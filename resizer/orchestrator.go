package resizer

import (
	"fmt"
	"log"
	"sort"

	"sart/histogram"
	"sart/netlistsvc"
	"sart/timer"
)

// Resize is the convenience wrapper around the two entry points spec.md
// §4.11 lists separately (resizePreamble, resizeToTargetSlew), run together
// as "resize".
func (r *Resizer) Resize(libs [][]*netlistsvc.Cell) error {
	if err := r.resizePreamble(libs); err != nil {
		return err
	}
	if err := r.resizeToTargetSlew(); err != nil {
		return err
	}
	log.Printf("Resized %d instances.", r.ResizeCount)
	return nil
}

// BufferInputs is the bufferInputs(cell) entry point.
func (r *Resizer) BufferInputs(cell *netlistsvc.Cell) (int, error) {
	n, err := r.bufferInputs(cell)
	if err != nil {
		return 0, err
	}
	log.Printf("Inserted %d input buffers.", n)
	return n, nil
}

// BufferOutputs is the bufferOutputs(cell) entry point.
func (r *Resizer) BufferOutputs(cell *netlistsvc.Cell) (int, error) {
	n, err := r.bufferOutputs(cell)
	if err != nil {
		return 0, err
	}
	log.Printf("Inserted %d output buffers.", n)
	return n, nil
}

// RemoveBuffers deletes every buffer-cell instance in insts (non-buffer
// instances are skipped), reconnecting its input net directly to its loads.
// This is the one explicit garbage-collection entry point Design Notes §9 calls
// out ("the CORE never garbage-collects its own insertions except
// buffer-removal").
func (r *Resizer) RemoveBuffers(insts []netlistsvc.InstanceID) int {
	removed := 0
	for _, id := range insts {
		cell := r.NL.Instance(id).Master
		if !cell.IsBuffer {
			continue
		}
		inPort := cellFirstInputPort(cell)
		outPort, ok := cell.OutputPort()
		if inPort == nil || !ok {
			continue
		}
		inPin, _ := r.NL.InstancePin(id, inPort.Name)
		outPin, _ := r.NL.InstancePin(id, outPort.Name)
		inNet := r.NL.PinNet(inPin)
		outNet := r.NL.PinNet(outPin)
		if inNet == netlistsvc.NoNet {
			continue
		}

		if outNet != netlistsvc.NoNet {
			for _, pid := range r.NL.NetPins(outNet) {
				if pid == outPin {
					continue
				}
				r.NL.DisconnectPin(pid)
				r.NL.ConnectPin(pid, inNet)
			}
			r.NL.DeleteNet(outNet)
		}
		r.DesignArea -= cell.Area
		r.NL.DeleteInstance(id)
		r.TM.DeleteParasitics(inNet)
		removed++
	}
	if removed > 0 {
		r.invalidateLevelDriverList()
	}
	log.Printf("Removed %d buffers.", removed)
	return removed
}

// RepairTieFanout is the repairTieFanout(separation, verbose) entry point.
// It takes no tie-port argument and repairs every tie-hi and tie-lo
// instance in the design.
func (r *Resizer) RepairTieFanout(separationMeters float64, verbose bool) int {
	n := r.repairTieFanout(separationMeters, verbose)
	log.Printf("Inserted %d tie cells.", n)
	return n
}

// RepairDesign is the repairDesign(max_len, cell) entry point: walk every
// eligible driver in reverse level order and repair cap/slew/fanout/length
// violations (spec.md §4.8 steps 1-4).
func (r *Resizer) RepairDesign(maxWireLengthMeters float64, bufferCell *netlistsvc.Cell) (int, error) {
	return r.repairDriversInLevelOrder(maxWireLengthMeters, bufferCell, false)
}

// RepairClkNets is repairClkNets(max_len, cell): the same Steiner-guided
// walk restricted to clock nets (the inverse net filter of RepairDesign).
func (r *Resizer) RepairClkNets(maxWireLengthMeters float64, bufferCell *netlistsvc.Cell) (int, error) {
	return r.repairDriversInLevelOrder(maxWireLengthMeters, bufferCell, true)
}

func (r *Resizer) repairDriversInLevelOrder(maxWireLengthMeters float64, bufferCell *netlistsvc.Cell, clockOnly bool) (int, error) {
	if bufferCell == nil {
		return 0, &ConfigurationError{Msg: "no repeater cell given"}
	}
	r.TM.Levelize()
	r.TM.EnsureGraph()
	if clockOnly {
		r.TM.EnsureClkNetwork()
	}
	r.ensureLevelDriverList()

	drivers := append([]netlistsvc.PinID(nil), r.levelDriverList...)
	for i, j := 0, len(drivers)-1; i < j; i, j = i+1, j-1 {
		drivers[i], drivers[j] = drivers[j], drivers[i]
	}

	repaired := 0
	for _, drvr := range drivers {
		if r.areaBudgetExceeded() {
			r.warnAreaExceeded()
			break
		}
		nid := r.NL.PinNet(drvr)
		if nid == netlistsvc.NoNet || r.NL.IsSpecial(nid) {
			continue
		}
		isClk := r.TM.IsClock(nid)
		if clockOnly != isClk {
			continue
		}
		if cell := r.driverCell(drvr); cell != nil && cell.IsFuncOneZero {
			continue
		}
		if r.repairNetEntry(drvr, maxWireLengthMeters, bufferCell) {
			repaired++
		}
	}
	log.Printf("Inserted %d buffers in %d nets.", r.InsertedBufferCount, repaired)
	return repaired, nil
}

func (r *Resizer) driverCell(pin netlistsvc.PinID) *netlistsvc.Cell {
	p := r.NL.Pin(pin)
	if p.IsTopPort || p.Inst == netlistsvc.NoInstance {
		return nil
	}
	return r.NL.Instance(p.Inst).Master
}

// RepairNet is the single-net repairNet(net, max_len, cell) entry point.
func (r *Resizer) RepairNet(net netlistsvc.NetID, maxWireLengthMeters float64, bufferCell *netlistsvc.Cell) error {
	if bufferCell == nil {
		return &ConfigurationError{Msg: "no repeater cell given"}
	}
	drivers := r.NL.Drivers(net)
	if len(drivers) == 0 {
		return &InternalError{Site: "RepairNet: no driver"}
	}
	r.repairNetEntry(drivers[0], maxWireLengthMeters, bufferCell)
	return nil
}

// RepairHoldViolations is repairHoldViolations(buffers, allow_setup): runs
// over every search endpoint (every load pin that isn't itself a driver).
func (r *Resizer) RepairHoldViolations(bufferCell *netlistsvc.Cell, allowSetup bool) error {
	n, err := r.repairHoldViolations(r.allEndpoints(), bufferCell, allowSetup)
	if err == nil {
		log.Printf("Inserted %d hold buffers.", n)
	}
	return err
}

// RepairHoldViolationsAt is the explicit-endpoint debug/test variant.
func (r *Resizer) RepairHoldViolationsAt(end netlistsvc.PinID, bufferCell *netlistsvc.Cell, allowSetup bool) error {
	n, err := r.repairHoldViolations([]netlistsvc.PinID{end}, bufferCell, allowSetup)
	if err == nil {
		log.Printf("Inserted %d hold buffers.", n)
	}
	return err
}

func (r *Resizer) allEndpoints() []netlistsvc.PinID {
	var ends []netlistsvc.PinID
	for _, nid := range r.NL.AllNets() {
		for _, pid := range r.NL.NetPins(nid) {
			if r.NL.IsLoad(pid) {
				ends = append(ends, pid)
			}
		}
	}
	return ends
}

// RepairClkInverters is the repairClkInverters() entry point.
func (r *Resizer) RepairClkInverters() int {
	n := r.repairClkInverters()
	log.Printf("Cloned %d clock inverters.", n)
	return n
}

// EstimateWireParasitics is the estimateWireParasitics() entry point.
func (r *Resizer) EstimateWireParasitics() {
	r.estimateWireParasitics()
}

// ReportLongWires is reportLongWires(n, digits): prints the n longest nets
// by max driver-to-load Manhattan distance, plus a histogram of wire length
// order-of-magnitude buckets (grounded on histogram.Histogram).
func (r *Resizer) ReportLongWires(n, digits int) {
	type drvrDist struct {
		drvr netlistsvc.PinID
		dist int64
	}
	r.TM.EnsureGraph()
	r.TM.EnsureClkNetwork()

	var all []drvrDist
	h := histogram.New()
	for _, nid := range r.NL.AllNets() {
		drivers := r.NL.Drivers(nid)
		if len(drivers) == 0 {
			continue
		}
		drvr := drivers[0]
		if r.NL.IsTopLevelPort(drvr) {
			continue
		}
		maxDist := r.maxLoadManhattanDistance(nid, drvr)
		all = append(all, drvrDist{drvr, maxDist})
		h.Add(magnitudeBucket(maxDist))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].dist > all[j].dist })

	log.Println("Driver    length")
	for i, d := range all {
		if i == n {
			break
		}
		log.Printf("%s %s", r.NL.PinPath(d.drvr), formatMeters(r.dbuToMeters(d.dist), digits))
	}
	log.Println(h.String())
}

func (r *Resizer) maxLoadManhattanDistance(nid netlistsvc.NetID, drvr netlistsvc.PinID) int64 {
	drvrLoc := r.NL.PinLocation(drvr)
	var maxDist int64
	for _, pid := range r.NL.NetPins(nid) {
		if pid == drvr || !r.NL.IsLoad(pid) {
			continue
		}
		d := manhattan(drvrLoc, r.NL.PinLocation(pid))
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

func magnitudeBucket(dbu int64) int {
	if dbu <= 0 {
		return 0
	}
	mag := 0
	for dbu >= 10 {
		dbu /= 10
		mag++
	}
	return mag
}

func formatMeters(m float64, digits int) string {
	return fmt.Sprintf("%.*f", digits, m)
}

// findFloatingNets is the findFloatingNets() entry point: every non-special
// net with no driver pin at all.
func (r *Resizer) FindFloatingNets() []netlistsvc.NetID {
	var floating []netlistsvc.NetID
	for _, nid := range r.NL.AllNets() {
		if r.NL.IsSpecial(nid) {
			continue
		}
		if len(r.NL.Drivers(nid)) == 0 {
			floating = append(floating, nid)
		}
	}
	log.Printf("Found %d floating nets.", len(floating))
	return floating
}

// FindMaxWireLength binary-searches (1% tolerance, doubling the upper bound
// until the objective sign flips) the longest two-pin wire of bufferCell's
// drive strength can drive before violating its own output's slew limit
// (its capacitance limit is not checked) (spec.md §4.11).
func (r *Resizer) FindMaxWireLength(bufferCell *netlistsvc.Cell) float64 {
	outPort, ok := bufferCell.OutputPort()
	if !ok {
		return 0
	}
	objective := func(lengthMeters float64) float64 {
		wireCap := lengthMeters * r.wireRC.WireCap
		_, slew := r.TM.GateDelay(bufferCell, timer.PVT{}, 0, wireCap)
		return outPort.MaxSlew - slew
	}
	return bisectSignFlip(objective)
}

// FindMaxSlewWireLength is the same doubling/bisection search, but bounding
// the wire length at which drvrCell's output slew first exceeds the given
// maxSlew (rather than drvrCell's own slew limit). loadCell is not used.
func (r *Resizer) FindMaxSlewWireLength(drvrCell, loadCell *netlistsvc.Cell, maxSlew float64) float64 {
	objective := func(lengthMeters float64) float64 {
		wireCap := lengthMeters * r.wireRC.WireCap
		_, slew := r.TM.GateDelay(drvrCell, timer.PVT{}, 0, wireCap)
		return maxSlew - slew
	}
	return bisectSignFlip(objective)
}

// bisectSignFlip doubles hi until objective(hi) goes negative (or gives up),
// then bisects to 1% tolerance — the shared shape behind both binary
// searches spec.md §4.11 describes.
func bisectSignFlip(objective func(x float64) float64) float64 {
	lo, hi := 0.0, 1e-6
	for i := 0; i < 64 && objective(hi) > 0; i++ {
		hi *= 2
	}
	const tol = 0.01
	for hi-lo > (hi+lo)/2*tol+1e-12 {
		mid := (lo + hi) / 2
		if objective(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
