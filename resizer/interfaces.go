// Package resizer is the CORE: the set of algorithms that decide what to
// change and where in a placed gate-level netlist, plus the bookkeeping that
// keeps the netlist, placement, and estimated wire parasitics mutually
// consistent across thousands of incremental edits. TIMER, NETLIST, and
// STEINER are consumed only through the narrow interfaces below, never
// through a concrete type, so a fake can drive every test (Design Notes §9).
package resizer

import (
	"sart/netlistsvc"
	"sart/steiner"
	"sart/timer"
)

// Netlist is the physical-database capability the CORE edits through.
type Netlist interface {
	MakeInstance(name string, cell *netlistsvc.Cell, loc netlistsvc.Point) netlistsvc.InstanceID
	DeleteInstance(id netlistsvc.InstanceID)
	ReplaceCell(id netlistsvc.InstanceID, cell *netlistsvc.Cell)
	SetLocation(id netlistsvc.InstanceID, p netlistsvc.Point)
	Location(id netlistsvc.InstanceID) netlistsvc.Point
	FindInstance(name string) (netlistsvc.InstanceID, bool)
	Instance(id netlistsvc.InstanceID) *netlistsvc.Instance
	LibertyCell(id netlistsvc.InstanceID) *netlistsvc.Cell
	InstancePin(id netlistsvc.InstanceID, port string) (netlistsvc.PinID, bool)
	InstancePins(id netlistsvc.InstanceID) []netlistsvc.PinID
	AllInstances() []netlistsvc.InstanceID

	MakeNet(name string) netlistsvc.NetID
	DeleteNet(id netlistsvc.NetID)
	FindNet(name string) (netlistsvc.NetID, bool)
	IsSpecial(id netlistsvc.NetID) bool
	IsPower(id netlistsvc.NetID) bool
	IsGround(id netlistsvc.NetID) bool
	NetPins(id netlistsvc.NetID) []netlistsvc.PinID
	NetName(id netlistsvc.NetID) string
	AllNets() []netlistsvc.NetID
	Drivers(id netlistsvc.NetID) []netlistsvc.PinID

	AllTopLevelPorts() []netlistsvc.PinID
	Pin(id netlistsvc.PinID) *netlistsvc.Pin
	Direction(id netlistsvc.PinID) netlistsvc.Direction
	PinNet(id netlistsvc.PinID) netlistsvc.NetID
	PinLocation(id netlistsvc.PinID) netlistsvc.Point
	IsTopLevelPort(id netlistsvc.PinID) bool
	IsDriver(id netlistsvc.PinID) bool
	IsLoad(id netlistsvc.PinID) bool
	LibertyPort(id netlistsvc.PinID) *netlistsvc.CellPort
	ConnectPin(pid netlistsvc.PinID, nid netlistsvc.NetID)
	DisconnectPin(pid netlistsvc.PinID)
	PinPath(id netlistsvc.PinID) string

	GetCoreArea() netlistsvc.Rect
	GetDbUnitsPerMicron() int
}

// Timer is the opaque STA capability the CORE queries and invalidates.
type Timer interface {
	SetWireRC(rc timer.WireRC, corner timer.Corner)
	WireRC() timer.WireRC
	ActiveCorner() timer.Corner

	Levelize()
	EnsureGraph()
	EnsureClkNetwork()
	DelaysInvalid()
	ArrivalsInvalid()
	FindDelays()
	FindRequireds()

	DeleteParasitics(net netlistsvc.NetID)
	SetParasitic(net netlistsvc.NetID, wireCap, wireRes float64)
	HasParasitic(net netlistsvc.NetID) bool

	MarkClock(net netlistsvc.NetID)
	IsClock(net netlistsvc.NetID) bool

	Level(v netlistsvc.PinID) int
	LoadCap(pin netlistsvc.PinID, corner timer.Corner) float64
	GateDelay(cell *netlistsvc.Cell, pvt timer.PVT, inSlew, loadCap float64) (delay, slew float64)
	BufferSelfDelay() float64

	CheckCapacitance(pin netlistsvc.PinID) (value, limit, slack float64)
	CheckFanout(pin netlistsvc.PinID) (value, limit, slack float64)
	CheckSlew(pin netlistsvc.PinID) (value, limit, slack float64)

	VertexSlacks(v netlistsvc.PinID) [2][2]float64
	VertexSlack(v netlistsvc.PinID, mm timer.MinMax) float64

	MakeEquivCells(libs [][]*netlistsvc.Cell)
	EquivCells(cell *netlistsvc.Cell) []*netlistsvc.Cell
}

// Steiner is the opaque rectilinear-tree construction capability.
type Steiner interface {
	MakeSteinerTree(net netlistsvc.NetID, includeDriverLoad bool) (*steiner.Tree, error)
}
