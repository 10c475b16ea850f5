package netlistsvc

import "testing"

func bufCell() *Cell {
	return &Cell{
		Name:     "BUF_X1",
		Area:     1.0,
		Function: "BUF",
		Ports: []CellPort{
			{Name: "A", Dir: DirInput, InputCap: 1e-15},
			{Name: "Z", Dir: DirOutput, MaxCapacitance: 2e-13, MaxFanout: 16, MaxSlew: 1e-9},
		},
	}
}

func TestMakeInstanceCreatesPins(t *testing.T) {
	db := New(1000)
	cell := bufCell()
	id := db.MakeInstance("u1", cell, Point{0, 0})

	a, ok := db.InstancePin(id, "A")
	if !ok {
		t.Fatalf("expected pin A to exist")
	}
	z, ok := db.InstancePin(id, "Z")
	if !ok {
		t.Fatalf("expected pin Z to exist")
	}
	if db.Direction(a) != DirInput {
		t.Errorf("expected A to be input")
	}
	if db.Direction(z) != DirOutput {
		t.Errorf("expected Z to be output")
	}
}

func TestConnectDisconnectPin(t *testing.T) {
	db := New(1000)
	cell := bufCell()
	id := db.MakeInstance("u1", cell, Point{0, 0})
	a, _ := db.InstancePin(id, "A")

	n := db.MakeNet("n1")
	db.ConnectPin(a, n)

	if db.PinNet(a) != n {
		t.Errorf("expected pin net n1")
	}
	pins := db.NetPins(n)
	if len(pins) != 1 || pins[0] != a {
		t.Errorf("expected net to contain pin a")
	}

	db.DisconnectPin(a)
	if db.PinNet(a) != NoNet {
		t.Errorf("expected pin net cleared after disconnect")
	}
	if len(db.NetPins(n)) != 0 {
		t.Errorf("expected net empty after disconnect")
	}
}

func TestDeleteInstanceTombstonesHandle(t *testing.T) {
	db := New(1000)
	cell := bufCell()
	id := db.MakeInstance("u1", cell, Point{0, 0})
	a, _ := db.InstancePin(id, "A")
	n := db.MakeNet("n1")
	db.ConnectPin(a, n)

	db.DeleteInstance(id)

	if _, ok := db.FindInstance("u1"); ok {
		t.Errorf("expected deleted instance to no longer resolve by name")
	}
	if len(db.NetPins(n)) != 0 {
		t.Errorf("expected net disconnected from deleted instance's pins")
	}
}

func TestReplaceCellPreservesMatchingPorts(t *testing.T) {
	db := New(1000)
	cell := bufCell()
	id := db.MakeInstance("u1", cell, Point{0, 0})
	a, _ := db.InstancePin(id, "A")
	n := db.MakeNet("a_net")
	db.ConnectPin(a, n)

	bigger := &Cell{
		Name:     "BUF_X4",
		Area:     4.0,
		Function: "BUF",
		Ports: []CellPort{
			{Name: "A", Dir: DirInput, InputCap: 4e-15},
			{Name: "Z", Dir: DirOutput, MaxCapacitance: 8e-13, MaxFanout: 32, MaxSlew: 1e-9},
		},
	}
	db.ReplaceCell(id, bigger)

	a2, ok := db.InstancePin(id, "A")
	if !ok || a2 != a {
		t.Fatalf("expected pin A handle to survive cell replacement")
	}
	if db.PinNet(a2) != n {
		t.Errorf("expected pin A to remain connected to a_net after replacement")
	}
}

func TestDriversAndLoads(t *testing.T) {
	db := New(1000)
	drv := db.MakeInstance("drv", bufCell(), Point{0, 0})
	ld := db.MakeInstance("ld", bufCell(), Point{100, 0})

	z, _ := db.InstancePin(drv, "Z")
	a, _ := db.InstancePin(ld, "A")

	n := db.MakeNet("n1")
	db.ConnectPin(z, n)
	db.ConnectPin(a, n)

	drivers := db.Drivers(n)
	if len(drivers) != 1 || drivers[0] != z {
		t.Fatalf("expected exactly one driver pin z, got %v", drivers)
	}
	if !db.IsDriver(z) || db.IsDriver(a) {
		t.Errorf("driver/load classification wrong for instance pins")
	}
}

func TestMakeTopPort(t *testing.T) {
	db := New(1000)
	pid, nid := db.MakeTopPort("A", DirInput, Point{0, 0})
	if !db.IsTopLevelPort(pid) {
		t.Errorf("expected top port pin")
	}
	if !db.IsDriver(pid) {
		t.Errorf("expected a primary input port to be a driver")
	}
	if db.PinNet(pid) != nid {
		t.Errorf("expected top port connected to its own net")
	}
}

func TestRectClosestPoint(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	got := r.ClosestPoint(Point{X: -10, Y: 200})
	want := Point{X: 0, Y: 100}
	if got != want {
		t.Errorf("expected clamp to %v, got %v", want, got)
	}
}
