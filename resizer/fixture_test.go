package resizer

import (
	"sart/netlistsvc"
	"sart/steiner"
	"sart/timer"
)

// bufCellX1/bufCellX2/invCellX1/andCell/tieHiCell are the small liberty
// stand-ins every test below wires together, matching netlist_test.go's
// bufCell shape.

func bufCellX1() *netlistsvc.Cell {
	return &netlistsvc.Cell{
		Name: "BUF_X1", Area: 1.0, Function: "BUF", IsBuffer: true,
		DriveRes: 1e4, IntrinsicDelay: 10e-12, IntrinsicSlew: 10e-12,
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 1e-15, HasTimingArc: true},
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 2e-13, MaxFanout: 16, MaxSlew: 1e-9},
		},
	}
}

func bufCellX2() *netlistsvc.Cell {
	return &netlistsvc.Cell{
		Name: "BUF_X2", Area: 2.0, Function: "BUF", IsBuffer: true,
		DriveRes: 5e3, IntrinsicDelay: 12e-12, IntrinsicSlew: 12e-12,
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 2e-15, HasTimingArc: true},
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 4e-13, MaxFanout: 24, MaxSlew: 1e-9},
		},
	}
}

func invCellX1() *netlistsvc.Cell {
	return &netlistsvc.Cell{
		Name: "INV_X1", Area: 0.8, Function: "INV", IsInverter: true,
		DriveRes: 1.2e4, IntrinsicDelay: 8e-12, IntrinsicSlew: 8e-12,
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 1e-15, HasTimingArc: true},
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 2e-13, MaxFanout: 16, MaxSlew: 1e-9},
		},
	}
}

func andCell() *netlistsvc.Cell {
	return &netlistsvc.Cell{
		Name: "AND2_X1", Area: 1.5, Function: "AND2",
		DriveRes: 1e4, IntrinsicDelay: 15e-12, IntrinsicSlew: 15e-12,
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 1e-15, HasTimingArc: true},
			{Name: "B", Dir: netlistsvc.DirInput, InputCap: 1e-15, HasTimingArc: true},
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 2e-13, MaxFanout: 16, MaxSlew: 1e-9},
		},
	}
}

func tieHiCell() *netlistsvc.Cell {
	return &netlistsvc.Cell{
		Name: "TIEHI_X1", Area: 0.5, Function: "TIEHI", IsTieHi: true, IsFuncOneZero: true,
		Ports: []netlistsvc.CellPort{
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 2e-13, MaxFanout: 64, MaxSlew: 1e-9},
		},
	}
}

// newFixtureNoWireRC is newFixture without the SetWireRC call, for tests
// exercising the missing-configuration error path.
func newFixtureNoWireRC() (*netlistsvc.DB, *timer.Fake, *steiner.Builder, *Resizer) {
	db := netlistsvc.New(1000)
	db.SetCoreArea(netlistsvc.Rect{MinX: 0, MinY: 0, MaxX: 2000000, MaxY: 2000000})
	tm := timer.NewFake(db)
	st := &steiner.Builder{NL: db}
	r := New(db, tm, st)
	return db, tm, st, r
}

// newFixture builds a db + fake timer + steiner builder + CORE wired
// together, with a default wire-RC and a 2x2-mm core rect.
func newFixture() (*netlistsvc.DB, *timer.Fake, *steiner.Builder, *Resizer) {
	db, tm, st, r := newFixtureNoWireRC()
	r.SetWireRC(timer.WireRC{WireRes: 0.0004, WireCap: 0.0002, WireClkRes: 0.0003, WireClkCap: 0.00015}, timer.Corner{Name: "typical"})
	return db, tm, st, r
}
