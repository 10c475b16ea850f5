package timer

import (
	"sart/netlistsvc"
)

// Fake is a deterministic STA stand-in. It derives levels, load
// capacitance, slew and delay from the wired netlistsvc.DB and the linear
// RC characterization carried on each netlistsvc.Cell; everything path-based
// (arrival/required propagation across multiple stages) is represented only
// as much as spec.md's local, single-stage queries need.
type Fake struct {
	nl *netlistsvc.DB

	corner Corner
	rc     WireRC

	graphValid      bool
	clkNetworkValid bool
	delaysValid     bool
	arrivalsValid   bool

	levels    map[netlistsvc.PinID]int
	levelized bool

	clockNets map[netlistsvc.NetID]bool
	parasitic map[netlistsvc.NetID]*parasitic

	// slacks[pin][rise/fall][min/max]; unset entries default to a large
	// positive slack (no violation).
	slacks map[netlistsvc.PinID][2][2]float64

	equivClasses map[string][]*netlistsvc.Cell

	defaultDriveRes       float64
	defaultIntrinsicDelay float64
	defaultIntrinsicSlew  float64
	defaultMaxSlew        float64
	defaultMaxCap         float64
	defaultMaxFanout      int

	bufferSelfDelay float64
}

func NewFake(nl *netlistsvc.DB) *Fake {
	return &Fake{
		nl:                    nl,
		clockNets:             make(map[netlistsvc.NetID]bool),
		parasitic:             make(map[netlistsvc.NetID]*parasitic),
		slacks:                make(map[netlistsvc.PinID][2][2]float64),
		equivClasses:          make(map[string][]*netlistsvc.Cell),
		defaultDriveRes:       200.0,
		defaultIntrinsicDelay: 10e-12,
		defaultIntrinsicSlew:  20e-12,
		defaultMaxSlew:        1.5e-9,
		defaultMaxCap:         2e-13,
		defaultMaxFanout:      16,
		bufferSelfDelay:       15e-12,
	}
}

// --- corner / wire RC -------------------------------------------------

func (f *Fake) SetWireRC(rc WireRC, corner Corner) {
	f.rc = rc
	f.corner = corner
	f.DelaysInvalid()
}

func (f *Fake) WireRC() WireRC { return f.rc }
func (f *Fake) ActiveCorner() Corner { return f.corner }

// --- invalidation / ensure-block ---------------------------------------

func (f *Fake) Levelize() {
	f.recomputeLevels()
	f.graphValid = true
}

func (f *Fake) EnsureGraph() {
	if !f.graphValid {
		f.Levelize()
	}
}

func (f *Fake) EnsureClkNetwork() {
	f.clkNetworkValid = true
}

func (f *Fake) DelaysInvalid()   { f.delaysValid = false }
func (f *Fake) ArrivalsInvalid() { f.arrivalsValid = false; f.graphValid = false }
func (f *Fake) FindDelays()      { f.delaysValid = true }
func (f *Fake) FindRequireds()   { f.arrivalsValid = true }

// DeleteParasitics drops the stored model for a net (spec.md §3 invariant
// 3: pin edits invalidate parasitics of every touched net).
func (f *Fake) DeleteParasitics(net netlistsvc.NetID) {
	delete(f.parasitic, net)
}

func (f *Fake) SetParasitic(net netlistsvc.NetID, wireCap, wireRes float64) {
	f.parasitic[net] = &parasitic{hasModel: true, wireCap: wireCap, wireRes: wireRes}
}

func (f *Fake) HasParasitic(net netlistsvc.NetID) bool {
	p, ok := f.parasitic[net]
	return ok && p.hasModel
}

// --- clock -------------------------------------------------------------

func (f *Fake) MarkClock(net netlistsvc.NetID) { f.clockNets[net] = true }
func (f *Fake) IsClock(net netlistsvc.NetID) bool {
	return f.clockNets[net]
}

// --- levels --------------------------------------------------------------

func (f *Fake) recomputeLevels() {
	f.levels = make(map[netlistsvc.PinID]int)

	// Seed primary input ports (and tie cells, constant drivers) at level 0,
	// then propagate forward along net -> load-pin's-instance -> output pin
	// edges. This is a fixed-point relaxation rather than a strict
	// topological sort so it tolerates the acyclic-but-unsorted graphs the
	// fake netlist builder produces; real designs are combinationally
	// acyclic so this converges in at most the number of instances passes.
	changed := true
	for pass := 0; changed && pass < len(f.nl.AllInstances())+2; pass++ {
		changed = false
		for _, nid := range f.nl.AllNets() {
			drivers := f.nl.Drivers(nid)
			for _, drv := range drivers {
				lvl := f.driverLevel(drv)
				if cur, ok := f.levels[drv]; !ok || lvl > cur {
					f.levels[drv] = lvl
					changed = true
				}
			}
		}
	}
}

func (f *Fake) driverLevel(drv netlistsvc.PinID) int {
	pin := f.nl.Pin(drv)
	if pin.IsTopPort {
		return 0
	}
	best := 0
	for _, inpin := range f.nl.InstancePins(pin.Inst) {
		p := f.nl.Pin(inpin)
		if p.Dir == netlistsvc.DirOutput {
			continue
		}
		if p.Net == netlistsvc.NoNet {
			continue
		}
		for _, otherDrv := range f.nl.Drivers(p.Net) {
			if otherDrv == drv {
				continue
			}
			if l, ok := f.levels[otherDrv]; ok && l+1 > best {
				best = l + 1
			}
		}
	}
	return best
}

func (f *Fake) Level(v netlistsvc.PinID) int {
	if f.levels == nil {
		f.recomputeLevels()
	}
	return f.levels[v]
}

// --- electrical queries --------------------------------------------------

func (f *Fake) driverCell(pin netlistsvc.PinID) (*netlistsvc.Cell, bool) {
	p := f.nl.Pin(pin)
	if p.IsTopPort {
		return nil, false
	}
	return f.nl.Instance(p.Inst).Master, true
}

// LoadCap sums the input-pin capacitance of every load on the driver pin's
// net, plus wire capacitance from the stored parasitic model if present.
func (f *Fake) LoadCap(pin netlistsvc.PinID, corner Corner) float64 {
	p := f.nl.Pin(pin)
	if p.Net == netlistsvc.NoNet {
		return 0
	}
	var total float64
	for _, loadpid := range f.nl.NetPins(p.Net) {
		if loadpid == pin {
			continue
		}
		if !f.nl.IsLoad(loadpid) {
			continue
		}
		if port := f.nl.LibertyPort(loadpid); port != nil {
			total += port.InputCap
		}
	}
	if par, ok := f.parasitic[p.Net]; ok && par.hasModel {
		total += par.wireCap
	}
	return total
}

func (f *Fake) cellElectricals(cell *netlistsvc.Cell) (driveRes, intrinsicDelay, intrinsicSlew float64) {
	if cell == nil {
		return f.defaultDriveRes, f.defaultIntrinsicDelay, f.defaultIntrinsicSlew
	}
	dr, id, is := cell.DriveRes, cell.IntrinsicDelay, cell.IntrinsicSlew
	if dr == 0 {
		dr = f.defaultDriveRes
	}
	return dr, id, is
}

// GateDelay is a one-stage linear RC delay model: every cell is
// characterized by an effective drive resistance and an intrinsic
// delay/slew, matching the glossary's definition of drive resistance. It is
// intentionally simple — the real characterization (liberty NLDM/CCS
// tables) is owned by the out-of-scope STA engine.
func (f *Fake) GateDelay(cell *netlistsvc.Cell, pvt PVT, inSlew, loadCap float64) (delay, slew float64) {
	dr, id, is := f.cellElectricals(cell)
	delay = id + dr*loadCap + 0.1*inSlew
	slew = is + 2.0*dr*loadCap + 0.2*inSlew
	return
}

// BufferSelfDelay is the intrinsic delay of a minimum buffer at zero load,
// used by hold repair (spec.md §4.9 / §9 Open Question) to size a
// buffer-chain length from a required delay.
func (f *Fake) BufferSelfDelay() float64 { return f.bufferSelfDelay }
func (f *Fake) SetBufferSelfDelay(d float64) { f.bufferSelfDelay = d }

// --- checks ----------------------------------------------------------------

func (f *Fake) limitsFor(pin netlistsvc.PinID) (maxCap float64, maxFanout int, maxSlew float64) {
	if port := f.nl.LibertyPort(pin); port != nil {
		maxCap, maxFanout, maxSlew = port.MaxCapacitance, port.MaxFanout, port.MaxSlew
	}
	if maxCap == 0 {
		maxCap = f.defaultMaxCap
	}
	if maxFanout == 0 {
		maxFanout = f.defaultMaxFanout
	}
	if maxSlew == 0 {
		maxSlew = f.defaultMaxSlew
	}
	return
}

func (f *Fake) CheckCapacitance(pin netlistsvc.PinID) (value, limit, slack float64) {
	value = f.LoadCap(pin, f.corner)
	limit, _, _ = f.limitsFor(pin)
	slack = limit - value
	return
}

func (f *Fake) CheckFanout(pin netlistsvc.PinID) (value float64, limit float64, slack float64) {
	p := f.nl.Pin(pin)
	count := 0
	if p.Net != netlistsvc.NoNet {
		for _, lp := range f.nl.NetPins(p.Net) {
			if lp != pin && f.nl.IsLoad(lp) {
				count++
			}
		}
	}
	_, maxFanout, _ := f.limitsFor(pin)
	value = float64(count)
	limit = float64(maxFanout)
	slack = limit - value
	return
}

func (f *Fake) CheckSlew(pin netlistsvc.PinID) (value, limit, slack float64) {
	cell, _ := f.driverCell(pin)
	loadCap := f.LoadCap(pin, f.corner)
	_, slew := f.GateDelay(cell, PVT{}, 0, loadCap)
	_, _, maxSlew := f.limitsFor(pin)
	return slew, maxSlew, maxSlew - slew
}

// --- slacks ----------------------------------------------------------------

// SetVertexSlacks lets tests (and the hold-repair end-to-end scenario)
// stage preconditions directly, since path-based arrival/required
// propagation is the out-of-scope STA engine's job.
func (f *Fake) SetVertexSlacks(v netlistsvc.PinID, m [2][2]float64) {
	f.slacks[v] = m
}

func (f *Fake) VertexSlacks(v netlistsvc.PinID) [2][2]float64 {
	if m, ok := f.slacks[v]; ok {
		return m
	}
	const big = 1e9
	return [2][2]float64{{big, big}, {big, big}}
}

func (f *Fake) VertexSlack(v netlistsvc.PinID, mm MinMax) float64 {
	m := f.VertexSlacks(v)
	rise := m[Rise][mm]
	fall := m[Fall][mm]
	if rise < fall {
		return rise
	}
	return fall
}

// --- equivalence classes -----------------------------------------------

// MakeEquivCells groups cells by their Function tag, mirroring how a real
// library characterizes swappable drive strengths of the same Boolean
// function.
func (f *Fake) MakeEquivCells(libs [][]*netlistsvc.Cell) {
	f.equivClasses = make(map[string][]*netlistsvc.Cell)
	for _, lib := range libs {
		for _, cell := range lib {
			f.equivClasses[cell.Function] = append(f.equivClasses[cell.Function], cell)
		}
	}
}

func (f *Fake) EquivCells(cell *netlistsvc.Cell) []*netlistsvc.Cell {
	return f.equivClasses[cell.Function]
}
