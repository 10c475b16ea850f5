package resizer

import (
	"log"
	"sort"

	"sart/derate"
	"sart/netlistsvc"
	"sart/set"
	"sart/timer"
)

// Counters is the CORE's public bookkeeping (spec.md §3), reset only where
// the spec says so: design_area/resize_count/inserted_buffer_count persist
// across entry points within a session.
type Counters struct {
	InsertedBufferCount int
	ResizeCount         int
	DesignArea          float64
	MaxArea             float64
}

// Resizer is the single CORE value every entry point mutates through
// (Design Notes §9: "avoid global mutable state... all counters, maps, and
// caches live on a single CORE value").
type Resizer struct {
	NL Netlist
	TM Timer
	ST Steiner

	Counters

	wireRC         timer.WireRC
	corner         timer.Corner
	haveWireRC     bool
	maxUtilization float64
	derating       derate.Table

	dontUse set.Set[string]

	separation              float64 // meters, tie-fanout repair
	maxWireLength           float64 // meters, 0 = unset
	allowSetup              bool
	haveEstimatedParasitics bool

	targetLoadMap                  map[string]float64
	targetSlewRise, targetSlewFall float64
	resizeLibs                     [][]*netlistsvc.Cell
	resizedMultiOutput             set.Set[netlistsvc.InstanceID]

	levelDriverList      []netlistsvc.PinID
	levelDriverListValid bool

	uniqueNetCounter  int
	uniqueInstCounter int
}

// New constructs a CORE wired to the given collaborators (Design Notes §9:
// "the CORE takes them as constructor parameters so a fake can drive
// tests").
func New(nl Netlist, tm Timer, st Steiner) *Resizer {
	return &Resizer{
		NL:                 nl,
		TM:                 tm,
		ST:                 st,
		maxUtilization:     1.0,
		dontUse:            set.New[string](),
		resizedMultiOutput: set.New[netlistsvc.InstanceID](),
		targetLoadMap:      make(map[string]float64),
	}
}

// SetWireRC sets the per-unit-length RC model and active corner, the
// precondition every preamble checks (spec.md §6 configuration surface).
func (r *Resizer) SetWireRC(rc timer.WireRC, corner timer.Corner) {
	r.wireRC = rc
	r.corner = corner
	r.haveWireRC = true
	r.TM.SetWireRC(rc, corner)
}

// SetWireDerating installs a per-net RC derating table (spec.md §4.3's flat
// wire_res/wire_cap, scaled per net by regex before the Elmore reduction).
// A nil/empty table is the default: every net gets factor (1, 1).
func (r *Resizer) SetWireDerating(t derate.Table) {
	r.derating = t
}

// SetMaxUtilization sets max_area = coreArea * max_utilization (spec.md §6).
// A zero-area core (Valid()==false) is the degenerate-geometry case spec.md
// §7 calls out: utilization is then always 1.0 and the area budget never
// backpressures.
func (r *Resizer) SetMaxUtilization(u float64) {
	r.maxUtilization = u
	core := r.NL.GetCoreArea()
	if !core.Valid() {
		r.MaxArea = 0
		return
	}
	width := float64(core.MaxX - core.MinX)
	height := float64(core.MaxY - core.MinY)
	dbuPerMicron := float64(r.NL.GetDbUnitsPerMicron())
	areaMicrons := (width / dbuPerMicron) * (height / dbuPerMicron)
	r.MaxArea = areaMicrons * u
}

func (r *Resizer) SetDontUse(names []string) {
	r.dontUse = set.New(names...)
}

func (r *Resizer) SetSeparation(meters float64)    { r.separation = meters }
func (r *Resizer) SetMaxWireLength(meters float64) { r.maxWireLength = meters }
func (r *Resizer) SetAllowSetupViolations(v bool)  { r.allowSetup = v }

// areaBudgetExceeded is spec.md §7's capacity-exceeded check: design_area >=
// max_area (fuzzy-greater-equal), only meaningful once a nonzero max_area
// has been configured.
func (r *Resizer) areaBudgetExceeded() bool {
	return r.MaxArea > 0 && fuzzyGE(r.DesignArea, r.MaxArea)
}

func (r *Resizer) warnAreaExceeded() {
	log.Println("Max utilization reached.")
}

func (r *Resizer) invalidateLevelDriverList() {
	r.levelDriverListValid = false
}

// ensureLevelDriverList rebuilds LevelDriverList, sorted ascending by
// (level, pin-path-name) as spec.md §3/§5 require, lazily whenever it was
// invalidated by an instance insert/remove/master-swap/move.
func (r *Resizer) ensureLevelDriverList() {
	if r.levelDriverListValid {
		return
	}
	r.TM.EnsureGraph()
	var drivers []netlistsvc.PinID
	for _, nid := range r.NL.AllNets() {
		drivers = append(drivers, r.NL.Drivers(nid)...)
	}
	sortPinsByLevelThenPath(drivers, r.TM, r.NL)
	r.levelDriverList = drivers
	r.levelDriverListValid = true
}

func sortPinsByLevelThenPath(pins []netlistsvc.PinID, tm Timer, nl Netlist) {
	sort.Slice(pins, func(i, j int) bool {
		li, lj := tm.Level(pins[i]), tm.Level(pins[j])
		if li != lj {
			return li < lj
		}
		return nl.PinPath(pins[i]) < nl.PinPath(pins[j])
	})
}

func (r *Resizer) instanceOutputPins(inst netlistsvc.InstanceID) (out []netlistsvc.PinID) {
	for _, pid := range r.NL.InstancePins(inst) {
		if r.NL.Direction(pid) == netlistsvc.DirOutput {
			out = append(out, pid)
		}
	}
	return
}

// invalidateInstanceParasitics deletes every parasitic model touching an
// instance's pins (spec.md §3 invariant 3), to be called on every edit that
// changes the instance's connections or master.
func (r *Resizer) invalidateInstanceParasitics(inst netlistsvc.InstanceID) {
	for _, pid := range r.NL.InstancePins(inst) {
		if n := r.NL.PinNet(pid); n != netlistsvc.NoNet {
			r.TM.DeleteParasitics(n)
		}
	}
}
