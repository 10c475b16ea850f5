package resizer

import (
	"sart/netlistsvc"
	"sart/steiner"
)

// parasiticNode keys a point in the detailed pi-model network being built
// for one net: either an actual pin, or a synthesized Steiner branch point
// (net, steiner_pt_id), matching spec.md §4.3 step 3's "obtain parasitic
// nodes for each endpoint".
type parasiticNode struct {
	pin   netlistsvc.PinID
	pt    steiner.PtID
	isPin bool
}

// pnetwork is the scoped, throwaway detailed pi-model network spec.md §4.3
// builds per net and then reduces. Design Notes §9: "parasitic networks...
// are created and destroyed within a single entry point".
type pnetwork struct {
	capAt map[parasiticNode]float64
	// resAt accumulates series resistance contributed by each branch,
	// keyed by the branch's child node (the node farther from the driver).
	resAt map[parasiticNode]float64
}

func newPnetwork() *pnetwork {
	return &pnetwork{capAt: make(map[parasiticNode]float64), resAt: make(map[parasiticNode]float64)}
}

// estimateWireParasitics iterates every non-power/ground net and ensures a
// parasitic model, per spec.md §4.3.
func (r *Resizer) estimateWireParasitics() {
	for _, nid := range r.NL.AllNets() {
		if r.NL.IsPower(nid) || r.NL.IsGround(nid) {
			continue
		}
		r.ensureWireParasiticForNet(nid)
	}
	r.haveEstimatedParasitics = true
}

// ensureWireParasitic is the lazy, idempotent entry used by C8/C9/C5 before
// they read TIMER.LoadCap: spec.md §4.3, "triggered lazily when the TIMER
// reports no stored model for the net."
func (r *Resizer) ensureWireParasitic(drvrPin netlistsvc.PinID) {
	nid := r.NL.PinNet(drvrPin)
	if nid == netlistsvc.NoNet {
		return
	}
	r.ensureWireParasiticForNet(nid)
}

func (r *Resizer) ensureWireParasiticForNet(nid netlistsvc.NetID) {
	if r.TM.HasParasitic(nid) {
		return
	}
	if r.netHasTopLevelPortPin(nid) {
		// spec.md §4.3: "Nets with a top-level-port pin are skipped (pad
		// input caps would dominate Elmore)."
		return
	}
	pins := r.NL.NetPins(nid)
	if len(pins) < 2 {
		return
	}

	tree, err := r.ST.MakeSteinerTree(nid, false)
	if err != nil {
		return
	}

	pn := newPnetwork()
	isClk := r.TM.IsClock(nid)
	wireRes, wireCap := r.wireRC.WireRes, r.wireRC.WireCap
	if isClk {
		wireRes, wireCap = r.wireRC.WireClkRes, r.wireRC.WireClkCap
	}
	if rfactor, cfactor := r.derating.For(r.NL.NetName(nid)); rfactor != 1 || cfactor != 1 {
		wireRes *= rfactor
		wireCap *= cfactor
	}

	for _, b := range tree.Branches() {
		n1 := r.findParasiticNode(tree, b.P1)
		n2 := r.findParasiticNode(tree, b.P2)
		length := r.dbuToMeters(b.Len)

		if b.Len == 0 {
			if n1 != n2 {
				// 1 mOhm connectivity placeholder (spec.md §4.3 step 3).
				pn.resAt[n2] += 1e-3
			}
			continue
		}

		halfCap := wireCap * length / 2
		pn.capAt[n1] += halfCap
		pn.capAt[n2] += halfCap
		pn.resAt[n2] += wireRes * length
	}

	totalCap, totalRes := reducePiElmore(pn)
	r.TM.SetParasitic(nid, totalCap, totalRes)
}

// findParasiticNode resolves a Steiner point to a parasitic node: keyed by
// pin if the point coincides with one, else by (net, steiner point id). Per
// SPEC_FULL.md's resolution of spec.md §9's Open Question, a binarization
// alias with no canonical pin is treated the same as "no alias": key by the
// point itself.
func (r *Resizer) findParasiticNode(tree *steiner.Tree, pt steiner.PtID) parasiticNode {
	if pin, ok := tree.Pin(pt); ok {
		return parasiticNode{pin: pin, isPin: true}
	}
	return parasiticNode{pt: pt}
}

func (r *Resizer) netHasTopLevelPortPin(nid netlistsvc.NetID) bool {
	for _, pid := range r.NL.NetPins(nid) {
		if r.NL.IsTopLevelPort(pid) {
			return true
		}
	}
	return false
}

// reducePiElmore collapses the detailed pi-network into a single lumped
// {wireCap, wireRes} pair sufficient for the opaque TIMER's Elmore delay
// query, then the detailed network is discarded (spec.md §4.3 step 4).
func reducePiElmore(pn *pnetwork) (totalCap, totalRes float64) {
	for _, c := range pn.capAt {
		totalCap += c
	}
	var sumRes float64
	var n int
	for _, res := range pn.resAt {
		sumRes += res
		n++
	}
	if n > 0 {
		totalRes = sumRes / float64(n)
	}
	return
}
