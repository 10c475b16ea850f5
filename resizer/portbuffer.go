package resizer

import (
	"sart/netlistsvc"
)

// bufferPorts implements C6 (spec.md §4.6) for one direction: input ports
// via bufferInputs, output ports via bufferOutputs.
func (r *Resizer) bufferPorts(dir netlistsvc.Direction, cell *netlistsvc.Cell) (int, error) {
	if cell == nil {
		return 0, &ConfigurationError{Msg: "no buffer cell given"}
	}
	inPort, _ := cell.OutputPort()
	if inPort == nil {
		return 0, &ConfigurationError{Msg: "buffer cell has no output port"}
	}

	count := 0
	for _, pid := range r.NL.AllTopLevelPorts() {
		if r.NL.Direction(pid) != dir {
			continue
		}
		nid := r.NL.PinNet(pid)
		if nid == netlistsvc.NoNet || r.NL.IsSpecial(nid) {
			continue
		}
		if dir == netlistsvc.DirInput && r.TM.IsClock(nid) {
			continue
		}
		if r.insertPortBuffer(pid, nid, dir, cell) {
			count++
		}
	}
	r.InsertedBufferCount += count
	r.invalidateLevelDriverList()
	return count, nil
}

func (r *Resizer) insertPortBuffer(portPin netlistsvc.PinID, portNet netlistsvc.NetID, dir netlistsvc.Direction, cell *netlistsvc.Cell) bool {
	in, okIn := cell.Port("A")
	out, okOut := cell.OutputPort()
	if !okIn || !okOut {
		in = cellFirstInputPort(cell)
		out, _ = cell.OutputPort()
	}
	if in == nil || out == nil {
		return false
	}

	portLoc := r.NL.PinLocation(portPin)
	var loc netlistsvc.Point
	if dir == netlistsvc.DirInput {
		loc = r.NL.GetCoreArea().ClosestPoint(portLoc)
	} else {
		loc = portLoc
	}

	instName := r.makeUniqueInstName(cell.Name, false)
	instID := r.NL.MakeInstance(instName, cell, loc)
	r.NL.SetLocation(instID, loc)
	r.DesignArea += cell.Area

	newNetName := r.makeUniqueNetName()
	newNet := r.NL.MakeNet(newNetName)

	// Rewire every non-port connection off the original net and onto the
	// new net (spec.md §4.6).
	for _, pid := range r.NL.NetPins(portNet) {
		if pid == portPin {
			continue
		}
		r.NL.DisconnectPin(pid)
		r.NL.ConnectPin(pid, newNet)
	}

	bufIn, _ := r.NL.InstancePin(instID, in.Name)
	bufOut, _ := r.NL.InstancePin(instID, out.Name)

	if dir == netlistsvc.DirInput {
		r.NL.ConnectPin(bufIn, portNet)
		r.NL.ConnectPin(bufOut, newNet)
	} else {
		r.NL.ConnectPin(bufOut, portNet)
		r.NL.ConnectPin(bufIn, newNet)
	}

	r.TM.DeleteParasitics(portNet)
	r.TM.DeleteParasitics(newNet)
	return true
}

func cellFirstInputPort(cell *netlistsvc.Cell) *netlistsvc.CellPort {
	ports := cell.InputPorts()
	if len(ports) == 0 {
		return nil
	}
	return ports[0]
}

func (r *Resizer) bufferInputs(cell *netlistsvc.Cell) (int, error) {
	return r.bufferPorts(netlistsvc.DirInput, cell)
}

func (r *Resizer) bufferOutputs(cell *netlistsvc.Cell) (int, error) {
	return r.bufferPorts(netlistsvc.DirOutput, cell)
}
