package resizer

import (
	"math"

	"sart/netlistsvc"
	"sart/queue"
	"sart/steiner"
	"sart/timer"
)

// repairAccum is the (wire_length, pin_cap, fanout, load_pins) tuple
// spec.md §4.8's repairNet recursion merges on post-order pop.
type repairAccum struct {
	wireLength int64
	pinCap     float64
	fanout     float64
	loadPins   []netlistsvc.PinID
}

const lengthMargin = 0.05

// postOrder returns every point of tree in post-order (children before
// parents), built iteratively with an explicit stack (Design Notes §9:
// "implement iteratively with an explicit work stack to avoid stack
// overflow" — Steiner trees on large nets can be thousands of points deep).
func postOrder(tree *steiner.Tree) []steiner.PtID {
	s1 := queue.NewStack()
	s2 := queue.NewStack()
	s1.Push(tree.Root())
	for !s1.Empty() {
		pt := s1.Pop().(steiner.PtID)
		s2.Push(pt)
		if l := tree.Left(pt); l != steiner.NullPt {
			s1.Push(l)
		}
		if rgt := tree.Right(pt); rgt != steiner.NullPt {
			s1.Push(rgt)
		}
	}
	order := make([]steiner.PtID, 0, s2.Len())
	for !s2.Empty() {
		order = append(order, s2.Pop().(steiner.PtID))
	}
	return order
}

// repairNetTree walks tree's points post-order and inserts repeaters per
// spec.md §4.8, returning the driver point's final accumulated tuple
// (callers generally discard it, matching the C++ original's dummy
// out-params at the top-level call).
func (r *Resizer) repairNetTree(tree *steiner.Tree, net netlistsvc.NetID, maxCap float64, maxFanout float64, maxLengthDbu int64, bufferCell *netlistsvc.Cell) repairAccum {
	accum := make(map[steiner.PtID]repairAccum)

	for _, pt := range postOrder(tree) {
		var leftA, rightA repairAccum
		left, right := tree.Left(pt), tree.Right(pt)
		if left != steiner.NullPt {
			leftA = accum[left]
		}
		if right != steiner.NullPt {
			rightA = accum[right]
		}

		capLeft := leftA.pinCap + r.dbuToMeters(leftA.wireLength)*r.wireRC.WireCap
		capRight := rightA.pinCap + r.dbuToMeters(rightA.wireLength)*r.wireRC.WireCap

		capViolation := maxCap > 0 && (capLeft+capRight) > maxCap
		lengthViolation := maxLengthDbu > 0 && (leftA.wireLength+rightA.wireLength) > maxLengthDbu
		fanoutViolation := maxFanout > 0 && (leftA.fanout+rightA.fanout) > maxFanout

		var repeaterLeft, repeaterRight bool
		if capViolation {
			if capLeft > capRight {
				repeaterLeft = true
			} else {
				repeaterRight = true
			}
		}
		if lengthViolation {
			if leftA.wireLength > rightA.wireLength {
				repeaterLeft = true
			} else {
				repeaterRight = true
			}
		}
		if fanoutViolation {
			if leftA.fanout > rightA.fanout {
				repeaterLeft = true
			} else {
				repeaterRight = true
			}
		}

		loc := tree.Location(pt)
		if repeaterLeft {
			leftA = r.makeRepeater(loc, net, bufferCell, leftA)
		}
		if repeaterRight {
			rightA = r.makeRepeater(loc, net, bufferCell, rightA)
		}

		merged := repairAccum{
			wireLength: leftA.wireLength + rightA.wireLength,
			pinCap:     leftA.pinCap + rightA.pinCap,
			fanout:     leftA.fanout + rightA.fanout,
			loadPins:   append(append([]netlistsvc.PinID(nil), leftA.loadPins...), rightA.loadPins...),
		}

		if loadPin, ok := tree.Pin(pt); ok {
			if port := r.NL.LibertyPort(loadPin); port != nil {
				merged.pinCap += port.InputCap
				merged.fanout++
			} else {
				merged.fanout++
			}
			merged.loadPins = append(merged.loadPins, loadPin)
		}

		prevPt := tree.Parent(pt)
		if prevPt != steiner.NullPt {
			length := tree.EdgeLen(pt)
			merged.wireLength += length

			ptX, ptY := loc.X, loc.Y
			prevLoc := tree.Location(prevPt)

			for (maxLengthDbu > 0 && merged.wireLength > maxLengthDbu) ||
				(r.wireRC.WireCap > 0 && merged.pinCap < maxCap &&
					merged.pinCap+r.dbuToMeters(merged.wireLength)*r.wireRC.WireCap > maxCap) {

				var bufDist float64
				if maxLengthDbu > 0 && merged.wireLength > maxLengthDbu {
					bufDist = float64(length) - (float64(merged.wireLength) - float64(maxLengthDbu)*(1-lengthMargin))
				} else {
					capLengthDbu := r.metersToDbu((maxCap - merged.pinCap) / r.wireRC.WireCap)
					bufDist = float64(length) - (float64(merged.wireLength) - float64(capLengthDbu)*(1-lengthMargin))
				}
				if bufDist <= 0 || length <= 0 {
					break // degenerate segment; avoid an infinite loop (spec.md §7 internal-invariant guard)
				}

				bufLoc := interpolate(netlistsvc.Point{X: ptX, Y: ptY}, prevLoc, int64(bufDist), length)
				merged = r.makeRepeater(bufLoc, net, bufferCell, merged)

				length -= int64(bufDist)
				if length < 0 {
					length = 0
				}
				merged.wireLength = length
				ptX, ptY = bufLoc.X, bufLoc.Y
			}
		}

		accum[pt] = merged
	}

	return accum[tree.Root()]
}

// makeRepeater inserts a buffer at loc, tapping the upstream net and moving
// the accumulated downstream load pins onto a freshly minted net (spec.md
// §4.8). It is a no-op (returns acc unchanged) when loc falls outside the
// core rectangle, spec.md §7's degenerate-geometry placement-skip case.
func (r *Resizer) makeRepeater(loc netlistsvc.Point, net netlistsvc.NetID, bufferCell *netlistsvc.Cell, acc repairAccum) repairAccum {
	core := r.NL.GetCoreArea()
	if core.Valid() && !core.Contains(loc) {
		return acc
	}

	inPort := cellFirstInputPort(bufferCell)
	outPort, _ := bufferCell.OutputPort()
	if inPort == nil || outPort == nil {
		return acc
	}

	instName := r.makeUniqueInstName("repeater", false)
	bufInst := r.NL.MakeInstance(instName, bufferCell, loc)
	r.NL.SetLocation(bufInst, loc)
	r.DesignArea += bufferCell.Area
	r.InsertedBufferCount++

	outNetName := r.makeUniqueNetName()
	outNet := r.NL.MakeNet(outNetName)
	if r.TM.IsClock(net) {
		r.TM.MarkClock(outNet)
	}

	bufIn, _ := r.NL.InstancePin(bufInst, inPort.Name)
	bufOut, _ := r.NL.InstancePin(bufInst, outPort.Name)
	r.NL.ConnectPin(bufIn, net)
	r.NL.ConnectPin(bufOut, outNet)

	for _, load := range acc.loadPins {
		r.NL.DisconnectPin(load)
		r.NL.ConnectPin(load, outNet)
	}

	r.TM.DeleteParasitics(net)
	r.invalidateLevelDriverList()

	// Resize the new repeater to its own downstream load before reporting
	// it upward (spec.md §4.8: "immediately resized so that its cell
	// reflects its downstream load").
	r.resizeDriverPin(bufOut)

	cell := r.NL.LibertyCell(bufInst)
	newIn := cellFirstInputPort(cell)
	if newIn == nil {
		newIn = inPort
	}

	return repairAccum{
		wireLength: 0,
		pinCap:     newIn.InputCap,
		fanout:     1,
		loadPins:   []netlistsvc.PinID{bufIn},
	}
}

// findMaxSteinerDist is the longest cumulative path, along tree branches,
// from the root to any point (spec.md §4.8's "wire length > max_length"
// check input).
func findMaxSteinerDist(tree *steiner.Tree) int64 {
	var walk func(pt steiner.PtID, acc int64) int64
	walk = func(pt steiner.PtID, acc int64) int64 {
		acc += tree.EdgeLen(pt)
		best := acc
		if l := tree.Left(pt); l != steiner.NullPt {
			if d := walk(l, acc); d > best {
				best = d
			}
		}
		if rgt := tree.Right(pt); rgt != steiner.NullPt {
			if d := walk(rgt, acc); d > best {
				best = d
			}
		}
		return best
	}
	return walk(tree.Root(), 0)
}

// findSlewLoadCap binary-searches the output load capacitance at which the
// driver port's gate slew equals the given limit, doubling the upper bound
// until the objective's sign flips (spec.md §4.11 describes this doubling
// pattern for findMaxWireLength/findMaxSlewWireLength; repairNet's slew
// repair reuses the same shape to bound max_cap from a slew violation).
func (r *Resizer) findSlewLoadCap(drvrPin netlistsvc.PinID, slewLimit float64) float64 {
	pin := r.NL.Pin(drvrPin)
	if pin.IsTopPort || pin.Inst == netlistsvc.NoInstance {
		return math.Inf(1)
	}
	cell := r.NL.Instance(pin.Inst).Master

	slewAt := func(cap float64) float64 {
		_, slew := r.TM.GateDelay(cell, timer.PVT{}, 0, cap)
		return slew
	}

	lo, hi := 0.0, 1e-12
	for i := 0; i < 64 && slewAt(hi) < slewLimit; i++ {
		hi *= 2
	}
	const tol = 0.01
	for hi-lo > (hi+lo)/2*tol+1e-18 {
		mid := (lo + hi) / 2
		if slewAt(mid) < slewLimit {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// repairNetEntry is the per-net body shared by repairDesign/repairClkNets/
// the single-net repairNet entry point: build a tree, identify which limits
// are violated, run the Steiner walk if any are, then resize the driver
// (spec.md §4.8 steps 1-4).
func (r *Resizer) repairNetEntry(drvrPin netlistsvc.PinID, maxLengthMeters float64, bufferCell *netlistsvc.Cell) bool {
	nid := r.NL.PinNet(drvrPin)
	if nid == netlistsvc.NoNet {
		return false
	}
	tree, err := r.ST.MakeSteinerTree(nid, true)
	if err != nil {
		return false
	}

	r.ensureWireParasitic(drvrPin)
	r.TM.FindDelays()

	maxCap := math.Inf(1)
	if _, limit, slack := r.TM.CheckCapacitance(drvrPin); slack < 0 {
		maxCap = limit
	}
	maxFanout := math.Inf(1)
	if _, limit, slack := r.TM.CheckFanout(drvrPin); slack < 0 {
		maxFanout = limit
	}
	if _, limit, slack := r.TM.CheckSlew(drvrPin); slack < 0 {
		if capFromSlew := r.findSlewLoadCap(drvrPin, limit); capFromSlew < maxCap {
			maxCap = capFromSlew
		}
	}

	maxLengthDbu := int64(0)
	if maxLengthMeters > 0 {
		maxLengthDbu = r.metersToDbu(maxLengthMeters)
	}
	wireLengthDbu := findMaxSteinerDist(tree)
	repairWire := maxLengthDbu > 0 && wireLengthDbu > maxLengthDbu

	if maxCap < math.Inf(1) || maxFanout < math.Inf(1) || repairWire {
		r.repairNetTree(tree, nid, maxCap, maxFanout, maxLengthDbu, bufferCell)
	}
	r.resizeDriverPin(drvrPin)
	return maxCap < math.Inf(1) || maxFanout < math.Inf(1) || repairWire
}
