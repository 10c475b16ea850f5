package netlistsvc

import (
	"fmt"
	"log"
)

// DB is the concrete in-memory NETLIST. It implements every capability
// spec.md §6 lists for the NETLIST collaborator; the resizer package
// consumes it through the narrower interface it declares for itself
// (resizer.Netlist), never through this concrete type.
type DB struct {
	instances []Instance
	nets      []Net
	pins      []Pin

	byInstName map[string]InstanceID
	byNetName  map[string]NetID

	core         Rect
	dbuPerMicron int
}

func New(dbuPerMicron int) *DB {
	return &DB{
		byInstName:   make(map[string]InstanceID),
		byNetName:    make(map[string]NetID),
		dbuPerMicron: dbuPerMicron,
	}
}

func (db *DB) SetCoreArea(r Rect)         { db.core = r }
func (db *DB) GetCoreArea() Rect          { return db.core }
func (db *DB) GetDbUnitsPerMicron() int   { return db.dbuPerMicron }

// --- instances ---------------------------------------------------------

func (db *DB) MakeInstance(name string, cell *Cell, loc Point) InstanceID {
	if _, exists := db.byInstName[name]; exists {
		log.Panicf("netlistsvc: instance %q already exists", name)
	}
	id := InstanceID(len(db.instances))
	db.instances = append(db.instances, Instance{
		id:     id,
		Name:   name,
		Master: cell,
		Loc:    loc,
		valid:  true,
		pins:   make(map[string]PinID),
	})
	db.byInstName[name] = id

	for _, port := range cell.Ports {
		pid := db.newPin(id, port.Name, port.Dir, loc, false)
		db.instances[id].pins[port.Name] = pid
	}

	return id
}

func (db *DB) DeleteInstance(id InstanceID) {
	inst := &db.instances[id]
	if !inst.valid {
		return
	}
	for _, pid := range inst.pins {
		db.disconnectPinFromNet(pid)
		db.pins[pid].valid = false
	}
	delete(db.byInstName, inst.Name)
	inst.valid = false
}

func (db *DB) ReplaceCell(id InstanceID, cell *Cell) {
	inst := &db.instances[id]
	old := inst.Master
	inst.Master = cell

	// Port sets are matched by name; a repeater/buffer swap between
	// functionally-equivalent cells preserves port names (LEF match).
	newPins := make(map[string]PinID)
	for _, port := range cell.Ports {
		if pid, ok := inst.pins[port.Name]; ok {
			db.pins[pid].Dir = port.Dir
			newPins[port.Name] = pid
		} else {
			pid := db.newPin(id, port.Name, port.Dir, inst.Loc, false)
			newPins[port.Name] = pid
		}
	}
	for name, pid := range inst.pins {
		if _, ok := newPins[name]; !ok {
			db.disconnectPinFromNet(pid)
			db.pins[pid].valid = false
		}
	}
	inst.pins = newPins
	_ = old
}

func (db *DB) SetLocation(id InstanceID, p Point) {
	inst := &db.instances[id]
	inst.Loc = p
	for _, pid := range inst.pins {
		db.pins[pid].Loc = p
	}
}

func (db *DB) Location(id InstanceID) Point {
	return db.instances[id].Loc
}

func (db *DB) FindInstance(name string) (InstanceID, bool) {
	id, ok := db.byInstName[name]
	return id, ok
}

func (db *DB) Instance(id InstanceID) *Instance {
	return &db.instances[id]
}

func (db *DB) LibertyCell(id InstanceID) *Cell {
	return db.instances[id].Master
}

func (db *DB) InstancePin(id InstanceID, port string) (PinID, bool) {
	pid, ok := db.instances[id].pins[port]
	return pid, ok
}

func (db *DB) InstancePins(id InstanceID) (pins []PinID) {
	for _, pid := range db.instances[id].pins {
		pins = append(pins, pid)
	}
	return
}

func (db *DB) AllInstances() (ids []InstanceID) {
	for i := range db.instances {
		if db.instances[i].valid {
			ids = append(ids, db.instances[i].id)
		}
	}
	return
}

// AllTopLevelPorts returns every top-level port pin, used by the port buffer
// inserter (C6) to walk primary inputs/outputs without an instance owner.
func (db *DB) AllTopLevelPorts() (ids []PinID) {
	for i := range db.pins {
		if db.pins[i].valid && db.pins[i].IsTopPort {
			ids = append(ids, db.pins[i].id)
		}
	}
	return
}

// --- nets ----------------------------------------------------------------

func (db *DB) MakeNet(name string) NetID {
	if _, exists := db.byNetName[name]; exists {
		log.Panicf("netlistsvc: net %q already exists", name)
	}
	id := NetID(len(db.nets))
	db.nets = append(db.nets, Net{
		id:    id,
		Name:  name,
		valid: true,
		pins:  make(map[PinID]struct{}),
	})
	db.byNetName[name] = id
	return id
}

func (db *DB) DeleteNet(id NetID) {
	net := &db.nets[id]
	if !net.valid {
		return
	}
	for pid := range net.pins {
		db.pins[pid].Net = NoNet
	}
	delete(db.byNetName, net.Name)
	net.valid = false
}

func (db *DB) FindNet(name string) (NetID, bool) {
	id, ok := db.byNetName[name]
	return id, ok
}

func (db *DB) Net(id NetID) *Net {
	return &db.nets[id]
}

func (db *DB) NetName(id NetID) string { return db.nets[id].Name }

func (db *DB) IsSpecial(id NetID) bool { return db.nets[id].IsSpecial }
func (db *DB) IsPower(id NetID) bool   { return db.nets[id].IsPower }
func (db *DB) IsGround(id NetID) bool  { return db.nets[id].IsGround }

func (db *DB) NetPins(id NetID) (pins []PinID) {
	for pid := range db.nets[id].pins {
		pins = append(pins, pid)
	}
	return
}

func (db *DB) AllNets() (ids []NetID) {
	for i := range db.nets {
		if db.nets[i].valid {
			ids = append(ids, db.nets[i].id)
		}
	}
	return
}

// Drivers returns every pin on the net that IsDriver accepts (spec.md §6:
// drivers(net) -> pinset). A well-formed net has exactly one, but the
// capability itself makes no such assumption.
func (db *DB) Drivers(id NetID) (drivers []PinID) {
	for pid := range db.nets[id].pins {
		if db.IsDriver(pid) {
			drivers = append(drivers, pid)
		}
	}
	return
}

// --- pins ------------------------------------------------------------------

func (db *DB) newPin(inst InstanceID, port string, dir Direction, loc Point, isTop bool) PinID {
	id := PinID(len(db.pins))
	db.pins = append(db.pins, Pin{
		id:        id,
		Inst:      inst,
		Port:      port,
		Dir:       dir,
		Net:       NoNet,
		Loc:       loc,
		IsTopPort: isTop,
		valid:     true,
	})
	return id
}

// MakeTopPort creates a top-level port pin and its identically-named net,
// used to model primary inputs/outputs in tests and small designs.
func (db *DB) MakeTopPort(name string, dir Direction, loc Point) (PinID, NetID) {
	pid := db.newPin(NoInstance, name, dir, loc, true)
	nid := db.MakeNet(name)
	db.ConnectPin(pid, nid)
	return pid, nid
}

func (db *DB) Pin(id PinID) *Pin {
	return &db.pins[id]
}

func (db *DB) Direction(id PinID) Direction {
	return db.pins[id].Dir
}

func (db *DB) PinNet(id PinID) NetID {
	return db.pins[id].Net
}

func (db *DB) PinLocation(id PinID) Point {
	return db.pins[id].Loc
}

func (db *DB) IsTopLevelPort(id PinID) bool {
	return db.pins[id].IsTopPort
}

// IsDriver reports whether the pin drives its net: an output pin of an
// instance, or an input top-level port (signal flows in from outside).
func (db *DB) IsDriver(id PinID) bool {
	p := &db.pins[id]
	if p.IsTopPort {
		return p.Dir == DirInput
	}
	return p.Dir == DirOutput || p.Dir == DirInOut
}

// IsLoad reports whether the pin is a load on its net: an input pin of an
// instance, or an output top-level port. An inout instance pin is both a
// driver and a load.
func (db *DB) IsLoad(id PinID) bool {
	p := &db.pins[id]
	if p.IsTopPort {
		return p.Dir == DirOutput
	}
	return p.Dir == DirInput || p.Dir == DirInOut
}

func (db *DB) LibertyPort(id PinID) *CellPort {
	p := &db.pins[id]
	if p.IsTopPort || p.Inst == NoInstance {
		return nil
	}
	cell := db.instances[p.Inst].Master
	port, _ := cell.Port(p.Port)
	return port
}

func (db *DB) ConnectPin(pid PinID, nid NetID) {
	db.disconnectPinFromNet(pid)
	db.pins[pid].Net = nid
	db.nets[nid].pins[pid] = struct{}{}
}

func (db *DB) DisconnectPin(pid PinID) {
	db.disconnectPinFromNet(pid)
}

func (db *DB) disconnectPinFromNet(pid PinID) {
	p := &db.pins[pid]
	if p.Net == NoNet {
		return
	}
	delete(db.nets[p.Net].pins, pid)
	p.Net = NoNet
}

// PinPath returns the hierarchical path name used to break ties in
// LevelDriverList's (level, pin-path-name) ordering (spec.md §3).
func (db *DB) PinPath(id PinID) string {
	p := &db.pins[id]
	if p.IsTopPort {
		return p.Port
	}
	inst := &db.instances[p.Inst]
	return fmt.Sprintf("%s/%s", inst.Name, p.Port)
}
