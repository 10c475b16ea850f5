// Package netlistsvc is a concrete, in-memory reference implementation of
// the NETLIST capability spec.md describes as an opaque collaborator: cells,
// instances, nets, pins, placement, and the handful of edit operations the
// resizer CORE drives. It exists so the CORE can be exercised by tests and
// by the CLI without a real physical database; it is not the CORE itself.
//
// Instances/nets/pins are arenas of integer handles (Design Notes §9):
// deleting an entry tombstones its slot rather than compacting the slice, so
// a handle captured mid-traversal never silently aliases a reused slot.
package netlistsvc

import "fmt"

type InstanceID int32
type NetID int32
type PinID int32

const (
	NoInstance InstanceID = -1
	NoNet      NetID      = -1
	NoPin      PinID      = -1
)

type Direction int

const (
	DirInput Direction = iota
	DirOutput
	DirInOut
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInOut:
		return "inout"
	}
	return "unknown"
}

// Point is an integer DBU coordinate. All netlistsvc geometry is DBU; the
// resizer package converts to/from meters at its boundary (C1).
type Point struct {
	X, Y int64
}

// Rect is an axis-aligned placement boundary (e.g. the design's core area).
type Rect struct {
	MinX, MinY, MaxX, MaxY int64
}

// Valid reports whether the rectangle has nonzero area; a zero-value Rect
// means "no core area known" (spec.md §7's degenerate-geometry case).
func (r Rect) Valid() bool {
	return r.MaxX > r.MinX && r.MaxY > r.MinY
}

// Contains reports whether p lies within the rectangle, inclusive of its
// boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// ClosestPoint clamps p into the rectangle, per spec.md §4.1.
func (r Rect) ClosestPoint(p Point) Point {
	clamp := func(v, lo, hi int64) int64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return Point{clamp(p.X, r.MinX, r.MaxX), clamp(p.Y, r.MinY, r.MaxY)}
}

// CellPort is one port of a library Cell.
type CellPort struct {
	Name           string
	Dir            Direction
	InputCap       float64 // input pin capacitance (F), meaningful for DirInput/DirInOut
	MaxCapacitance float64 // output port limit (F), 0 means "no limit"
	MaxFanout      int     // output port limit, 0 means "no limit"
	MaxSlew        float64 // output port limit (s), 0 means "no limit"
	HasTimingArc   bool    // false models "missing-model" (spec.md §7)
}

// Cell is a library cell: pins, area, and (since the real liberty timing
// arcs and SPICE characterization are explicitly out of the CORE's scope,
// spec.md §1) a linear RC characterization sufficient to drive a fake STA.
type Cell struct {
	Name     string
	Area     float64
	Function string // groups functionally-equivalent drive strengths, e.g. "AND2", "BUF", "INV"
	Ports    []CellPort

	// DriveRes and IntrinsicDelay/IntrinsicSlew characterize a one-stage
	// RC delay model for every input->output arc of this cell, matching
	// the glossary's "drive resistance: equivalent output resistance of a
	// cell driving a capacitive load."
	DriveRes       float64
	IntrinsicDelay float64
	IntrinsicSlew  float64

	IsBuffer      bool
	IsInverter    bool
	IsFuncOneZero bool // constant-output (tie) cell
	IsTieHi       bool
	IsTieLo       bool
}

func (c *Cell) Port(name string) (*CellPort, bool) {
	for i := range c.Ports {
		if c.Ports[i].Name == name {
			return &c.Ports[i], true
		}
	}
	return nil, false
}

func (c *Cell) OutputPort() (*CellPort, bool) {
	for i := range c.Ports {
		if c.Ports[i].Dir == DirOutput {
			return &c.Ports[i], true
		}
	}
	return nil, false
}

func (c *Cell) OutputPorts() (ports []*CellPort) {
	for i := range c.Ports {
		if c.Ports[i].Dir == DirOutput {
			ports = append(ports, &c.Ports[i])
		}
	}
	return
}

func (c *Cell) InputPorts() (ports []*CellPort) {
	for i := range c.Ports {
		if c.Ports[i].Dir == DirInput || c.Ports[i].Dir == DirInOut {
			ports = append(ports, &c.Ports[i])
		}
	}
	return
}

func (c Cell) String() string {
	return fmt.Sprintf("[CELL %s area:%.4g]", c.Name, c.Area)
}

type Instance struct {
	id     InstanceID
	Name   string
	Master *Cell
	Loc    Point
	Placed bool
	valid  bool
	pins   map[string]PinID // port name -> pin
}

func (i Instance) ID() InstanceID { return i.id }

func (i Instance) String() string {
	return fmt.Sprintf("[INST %s (%s)]", i.Name, i.Master.Name)
}

type Net struct {
	id        NetID
	Name      string
	IsSpecial bool
	IsPower   bool
	IsGround  bool
	valid     bool
	pins      map[PinID]struct{}
}

func (n Net) ID() NetID { return n.id }

func (n Net) String() string {
	return fmt.Sprintf("[NET %s pins:%d]", n.Name, len(n.pins))
}

type Pin struct {
	id        PinID
	Inst      InstanceID // NoInstance for a top-level port pin
	Port      string
	Dir       Direction
	Net       NetID
	Loc       Point
	IsTopPort bool
	valid     bool
}

func (p Pin) ID() PinID { return p.id }
