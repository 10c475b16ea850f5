package resizer

import (
	"testing"

	"sart/netlistsvc"
)

func TestFindClockInvertersStopsAtRegisterPins(t *testing.T) {
	db, tm, _, r := newFixture()
	inv := invCellX1()
	reg := andCell() // stand-in for a register clock pin: neither buffer nor inverter

	src := db.MakeInstance("clksrc", andCell(), netlistsvc.Point{X: 0, Y: 0})
	clkOut, _ := db.InstancePin(src, "Z")
	clkNet := db.MakeNet("clk")
	db.ConnectPin(clkOut, clkNet)
	tm.MarkClock(clkNet)

	invInst := db.MakeInstance("inv0", inv, netlistsvc.Point{X: 100, Y: 0})
	invIn, _ := db.InstancePin(invInst, "A")
	invOut, _ := db.InstancePin(invInst, "Z")
	db.ConnectPin(invIn, clkNet)

	invOutNet := db.MakeNet("clk_inv")
	tm.MarkClock(invOutNet)
	db.ConnectPin(invOut, invOutNet)

	regInst := db.MakeInstance("reg0", reg, netlistsvc.Point{X: 200, Y: 0})
	regClk, _ := db.InstancePin(regInst, "A")
	db.ConnectPin(regClk, invOutNet)

	found := r.findClockInverters()
	if len(found) != 1 || found[0] != invInst {
		t.Fatalf("expected to find exactly the one clock inverter, got %v", found)
	}
}

func TestRepairClkInvertersClonesOncePerLoad(t *testing.T) {
	db, tm, _, r := newFixture()
	inv := invCellX1()
	reg := andCell()

	src := db.MakeInstance("clksrc", andCell(), netlistsvc.Point{X: 0, Y: 0})
	clkOut, _ := db.InstancePin(src, "Z")
	clkNet := db.MakeNet("clk")
	db.ConnectPin(clkOut, clkNet)
	tm.MarkClock(clkNet)

	invInst := db.MakeInstance("inv0", inv, netlistsvc.Point{X: 100, Y: 0})
	invIn, _ := db.InstancePin(invInst, "A")
	invOut, _ := db.InstancePin(invInst, "Z")
	db.ConnectPin(invIn, clkNet)
	invOutNet := db.MakeNet("clk_inv")
	tm.MarkClock(invOutNet)
	db.ConnectPin(invOut, invOutNet)

	reg1 := db.MakeInstance("reg0", reg, netlistsvc.Point{X: 200, Y: 0})
	reg2 := db.MakeInstance("reg1", reg, netlistsvc.Point{X: 200, Y: 100})
	r1clk, _ := db.InstancePin(reg1, "A")
	r2clk, _ := db.InstancePin(reg2, "A")
	db.ConnectPin(r1clk, invOutNet)
	db.ConnectPin(r2clk, invOutNet)

	before := len(db.AllInstances())
	cloned := r.repairClkInverters()
	after := len(db.AllInstances())

	if cloned != 2 {
		t.Fatalf("expected 2 clones (one per register load), got %d", cloned)
	}
	if after != before+2-1 { // 2 new clones, minus the 1 deleted original
		t.Errorf("expected instance count to grow by 1 net of clones/deletion, %d -> %d", before, after)
	}
	if db.PinNet(r1clk) == db.PinNet(r2clk) {
		t.Errorf("expected each register to land on its own clone's net")
	}
}
