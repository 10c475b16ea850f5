package timer

import (
	"testing"

	"sart/netlistsvc"
)

func buildDrvLoad(t *testing.T) (*netlistsvc.DB, netlistsvc.PinID, netlistsvc.PinID, netlistsvc.NetID) {
	t.Helper()
	db := netlistsvc.New(1000)
	drvCell := &netlistsvc.Cell{
		Name: "BUF_X1", Function: "BUF", DriveRes: 200, IntrinsicDelay: 10e-12, IntrinsicSlew: 20e-12,
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 1e-15},
			{Name: "Z", Dir: netlistsvc.DirOutput, MaxCapacitance: 2e-13, MaxFanout: 4, MaxSlew: 1e-9},
		},
	}
	loadCell := &netlistsvc.Cell{
		Name: "AND2_X1", Function: "AND2",
		Ports: []netlistsvc.CellPort{
			{Name: "A", Dir: netlistsvc.DirInput, InputCap: 2e-15},
			{Name: "B", Dir: netlistsvc.DirInput, InputCap: 2e-15},
			{Name: "Z", Dir: netlistsvc.DirOutput},
		},
	}
	drv := db.MakeInstance("drv", drvCell, netlistsvc.Point{})
	ld := db.MakeInstance("ld", loadCell, netlistsvc.Point{X: 100})

	z, _ := db.InstancePin(drv, "Z")
	a, _ := db.InstancePin(ld, "A")
	n := db.MakeNet("n1")
	db.ConnectPin(z, n)
	db.ConnectPin(a, n)

	return db, z, a, n
}

func TestLoadCapSumsLoadsAndWire(t *testing.T) {
	db, z, _, n := buildDrvLoad(t)
	f := NewFake(db)

	value := f.LoadCap(z, Corner{})
	if value != 2e-15 {
		t.Fatalf("expected loadCap 2e-15 with no wire model, got %v", value)
	}

	f.SetParasitic(n, 5e-15, 10.0)
	value = f.LoadCap(z, Corner{})
	if value != 7e-15 {
		t.Fatalf("expected loadCap 7e-15 with wire model, got %v", value)
	}

	f.DeleteParasitics(n)
	if f.HasParasitic(n) {
		t.Errorf("expected parasitic cleared after DeleteParasitics")
	}
}

func TestCheckCapacitanceUsesOutputPortLimit(t *testing.T) {
	db, z, _, _ := buildDrvLoad(t)
	f := NewFake(db)

	value, limit, slack := f.CheckCapacitance(z)
	if limit != 2e-13 {
		t.Errorf("expected limit 2e-13, got %v", limit)
	}
	if slack != limit-value {
		t.Errorf("expected slack = limit - value")
	}
}

func TestCheckFanoutCountsLoadsOnly(t *testing.T) {
	db, z, _, _ := buildDrvLoad(t)
	f := NewFake(db)
	value, limit, _ := f.CheckFanout(z)
	if value != 1 {
		t.Errorf("expected fanout 1, got %v", value)
	}
	if limit != 4 {
		t.Errorf("expected fanout limit 4, got %v", limit)
	}
}

func TestGateDelayMonotoneInLoadCap(t *testing.T) {
	cell := &netlistsvc.Cell{DriveRes: 200, IntrinsicDelay: 10e-12, IntrinsicSlew: 20e-12}
	f := NewFake(netlistsvc.New(1000))

	_, slewLow := f.GateDelay(cell, PVT{}, 0, 1e-15)
	_, slewHigh := f.GateDelay(cell, PVT{}, 0, 10e-15)
	if !(slewHigh > slewLow) {
		t.Errorf("expected slew to increase monotonically with load cap")
	}
}

func TestVertexSlackMinOverRiseFall(t *testing.T) {
	db := netlistsvc.New(1000)
	f := NewFake(db)
	pid := netlistsvc.PinID(0)
	f.SetVertexSlacks(pid, [2][2]float64{
		{5, -3}, // rise: min=5 max=-3 (whatever ordering; Min/Max indices)
		{2, 9},
	})
	got := f.VertexSlack(pid, Min)
	if got != 2 {
		t.Errorf("expected min-over-rise/fall at Min selector = 2, got %v", got)
	}
}

func TestDeleteParasiticsInvalidatesModel(t *testing.T) {
	db := netlistsvc.New(1000)
	f := NewFake(db)
	n := netlistsvc.NetID(0)
	f.SetParasitic(n, 1, 1)
	if !f.HasParasitic(n) {
		t.Fatalf("expected parasitic model present")
	}
	f.DeleteParasitics(n)
	if f.HasParasitic(n) {
		t.Errorf("expected parasitic model gone after invalidation")
	}
}

func TestEquivCellsGroupsByFunction(t *testing.T) {
	db := netlistsvc.New(1000)
	f := NewFake(db)
	x1 := &netlistsvc.Cell{Name: "BUF_X1", Function: "BUF"}
	x2 := &netlistsvc.Cell{Name: "BUF_X2", Function: "BUF"}
	inv := &netlistsvc.Cell{Name: "INV_X1", Function: "INV"}

	f.MakeEquivCells([][]*netlistsvc.Cell{{x1, x2, inv}})

	eq := f.EquivCells(x1)
	if len(eq) != 2 {
		t.Fatalf("expected 2 equivalent buffers, got %d", len(eq))
	}
}
