package steiner

import (
	"fmt"
	"sort"

	"sart/netlistsvc"
)

// Builder implements the STEINER capability's makeSteinerTree entry point
// (spec.md §6) against a concrete netlistsvc.DB.
type Builder struct {
	NL *netlistsvc.DB
}

// MakeSteinerTree connects every pin on net through a Build call. When
// includeDriverLoad is false, a driver pin that also happens to be a load
// (a top-level inout-style port) is still only ever the tree's root — the
// flag exists for interface parity with spec.md §6 and is meaningful once a
// true Steiner engine distinguishes "route to the driver's own parasitic
// node" from "skip it".
func (b *Builder) MakeSteinerTree(net netlistsvc.NetID, includeDriverLoad bool) (*Tree, error) {
	pins := b.NL.NetPins(net)
	sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })
	if len(pins) < 2 {
		return nil, fmt.Errorf("steiner: net %d has fewer than 2 pins", net)
	}

	var terminals []Terminal
	driverSeen := false
	for _, pid := range pins {
		isDrv := b.NL.IsDriver(pid)
		if isDrv && driverSeen {
			// Multiple drivers on one net: keep the first by pin id order,
			// treat the rest as loads (a real design-rule violation the
			// physical DB, not STEINER, would normally reject upstream).
			isDrv = false
		}
		if isDrv {
			driverSeen = true
		}
		terminals = append(terminals, Terminal{
			Pin:      pid,
			Loc:      b.NL.PinLocation(pid),
			IsDriver: isDrv,
		})
	}
	if !driverSeen {
		return nil, fmt.Errorf("steiner: net %d has no driver pin", net)
	}

	return Build(terminals)
}
