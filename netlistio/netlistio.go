// Package netlistio loads a JSON design description (liberty-equivalent
// cell library plus a gate-level netlist) into a netlistsvc.DB, the same
// decode-from-reader idiom ace.Load uses for ACE structs. It exists because
// netlistsvc.DB has no file format of its own (spec.md treats NETLIST as an
// opaque collaborator); this is cmd/resize's on-disk design format.
package netlistio

import (
	"encoding/json"
	"fmt"
	"io"

	"sart/netlistsvc"
)

// Doc is the top-level JSON shape: one or more cell libraries (matching
// spec.md §4.11's entry points taking a library list; cmd/resize reads them
// all from the one -design file), plus instances/nets describing the design
// to resize.
type Doc struct {
	DbuPerMicron int         `json:"dbu_per_micron"`
	Core         *RectDoc    `json:"core,omitempty"`
	Libs         [][]CellDoc `json:"libs"`
	TopPorts     []PortDoc   `json:"top_ports"`
	Instances    []InstDoc   `json:"instances"`
	Nets         []NetDoc    `json:"nets"`
}

type RectDoc struct {
	MinX, MinY, MaxX, MaxY int64
}

type CellDoc struct {
	Name           string             `json:"name"`
	Area           float64            `json:"area"`
	Function       string             `json:"function"`
	Ports          []CellPortDoc      `json:"ports"`
	DriveRes       float64            `json:"drive_res"`
	IntrinsicDelay float64            `json:"intrinsic_delay"`
	IntrinsicSlew  float64            `json:"intrinsic_slew"`
	IsBuffer       bool               `json:"is_buffer"`
	IsInverter     bool               `json:"is_inverter"`
	IsFuncOneZero  bool               `json:"is_func_one_zero"`
	IsTieHi        bool               `json:"is_tie_hi"`
	IsTieLo        bool               `json:"is_tie_lo"`
}

type CellPortDoc struct {
	Name           string  `json:"name"`
	Dir            string  `json:"dir"` // "input" | "output" | "inout"
	InputCap       float64 `json:"input_cap"`
	MaxCapacitance float64 `json:"max_capacitance"`
	MaxFanout      int     `json:"max_fanout"`
	MaxSlew        float64 `json:"max_slew"`
	HasTimingArc   bool    `json:"has_timing_arc"`
}

type PortDoc struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	X    int64  `json:"x"`
	Y    int64  `json:"y"`
}

type InstDoc struct {
	Name string `json:"name"`
	Cell string `json:"cell"`
	X    int64  `json:"x"`
	Y    int64  `json:"y"`
	// Pins maps this instance's cell-port names to the net each connects
	// to; a port absent here is left unconnected.
	Pins map[string]string `json:"pins"`
}

// NetDoc declares a net so it exists even with zero pins at load time
// (e.g. a net every instance's Pins map will later connect into).
type NetDoc struct {
	Name     string `json:"name"`
	IsPower  bool   `json:"is_power"`
	IsGround bool   `json:"is_ground"`
}

func parseDir(s string) (netlistsvc.Direction, error) {
	switch s {
	case "input":
		return netlistsvc.DirInput, nil
	case "output":
		return netlistsvc.DirOutput, nil
	case "inout":
		return netlistsvc.DirInOut, nil
	}
	return 0, fmt.Errorf("netlistio: unknown port direction %q", s)
}

// Load decodes r into a *netlistsvc.DB plus the cell libraries it was
// loaded with, in the order Doc.Libs listed them (resizer.Resizer's public
// entry points take a [][]*netlistsvc.Cell in that same shape).
func Load(r io.Reader) (*netlistsvc.DB, [][]*netlistsvc.Cell, error) {
	var doc Doc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("netlistio: %w", err)
	}

	dbu := doc.DbuPerMicron
	if dbu == 0 {
		dbu = 1000
	}
	db := netlistsvc.New(dbu)
	if doc.Core != nil {
		db.SetCoreArea(netlistsvc.Rect{
			MinX: doc.Core.MinX, MinY: doc.Core.MinY,
			MaxX: doc.Core.MaxX, MaxY: doc.Core.MaxY,
		})
	}

	libs := make([][]*netlistsvc.Cell, len(doc.Libs))
	cellsByName := map[string]*netlistsvc.Cell{}
	for i, lib := range doc.Libs {
		cells := make([]*netlistsvc.Cell, len(lib))
		for j, cd := range lib {
			cell, err := cd.toCell()
			if err != nil {
				return nil, nil, err
			}
			cells[j] = cell
			cellsByName[cell.Name] = cell
		}
		libs[i] = cells
	}

	for _, pd := range doc.TopPorts {
		dir, err := parseDir(pd.Dir)
		if err != nil {
			return nil, nil, err
		}
		db.MakeTopPort(pd.Name, dir, netlistsvc.Point{X: pd.X, Y: pd.Y})
	}

	for _, nd := range doc.Nets {
		if _, ok := db.FindNet(nd.Name); ok {
			continue // top port already created it
		}
		nid := db.MakeNet(nd.Name)
		db.Net(nid).IsPower = nd.IsPower
		db.Net(nid).IsGround = nd.IsGround
	}

	for _, id := range doc.Instances {
		cell, ok := cellsByName[id.Cell]
		if !ok {
			return nil, nil, fmt.Errorf("netlistio: instance %q references unknown cell %q", id.Name, id.Cell)
		}
		inst := db.MakeInstance(id.Name, cell, netlistsvc.Point{X: id.X, Y: id.Y})
		for portName, netName := range id.Pins {
			nid, ok := db.FindNet(netName)
			if !ok {
				nid = db.MakeNet(netName)
			}
			pid, ok := db.InstancePin(inst, portName)
			if !ok {
				return nil, nil, fmt.Errorf("netlistio: instance %q has no port %q", id.Name, portName)
			}
			db.ConnectPin(pid, nid)
		}
	}

	return db, libs, nil
}

func (cd CellDoc) toCell() (*netlistsvc.Cell, error) {
	ports := make([]netlistsvc.CellPort, len(cd.Ports))
	for i, pd := range cd.Ports {
		dir, err := parseDir(pd.Dir)
		if err != nil {
			return nil, err
		}
		ports[i] = netlistsvc.CellPort{
			Name:           pd.Name,
			Dir:            dir,
			InputCap:       pd.InputCap,
			MaxCapacitance: pd.MaxCapacitance,
			MaxFanout:      pd.MaxFanout,
			MaxSlew:        pd.MaxSlew,
			HasTimingArc:   pd.HasTimingArc,
		}
	}
	return &netlistsvc.Cell{
		Name:           cd.Name,
		Area:           cd.Area,
		Function:       cd.Function,
		Ports:          ports,
		DriveRes:       cd.DriveRes,
		IntrinsicDelay: cd.IntrinsicDelay,
		IntrinsicSlew:  cd.IntrinsicSlew,
		IsBuffer:       cd.IsBuffer,
		IsInverter:     cd.IsInverter,
		IsFuncOneZero:  cd.IsFuncOneZero,
		IsTieHi:        cd.IsTieHi,
		IsTieLo:        cd.IsTieLo,
	}, nil
}
