// Package steiner is a concrete, deterministic stand-in for the STEINER
// capability spec.md describes as an opaque collaborator ("Steiner-tree
// construction… out of scope"). It builds a rectilinear spanning tree over
// a net's pins using a Hanan-grid nearest-neighbor heuristic — not a true
// minimal Steiner tree, which is unnecessary here: the CORE only needs a
// concrete, already-solved rectilinear tree to walk.
package steiner

import (
	"fmt"
	"io"
	"sort"

	"sart/netlistsvc"
)

// PtID indexes a point in a Tree: either an original pin location or a
// synthesized Steiner (branch) point. NullPt is the sentinel "no such
// point" spec.md §6 calls null_pt.
type PtID int

const NullPt PtID = -1

// Branch is one rectilinear segment of the tree, spec.md §6's
// branch(i) -> (pt1, pt2, length_dbu) with pt1 always the parent (closer to
// the driver) and pt2 the child.
type Branch struct {
	P1, P2 PtID
	Len    int64
}

type Tree struct {
	pts     []netlistsvc.Point
	left    []PtID
	right   []PtID
	parent  []PtID
	edgeLen []int64
	alias   []PtID // alias[i] != NullPt iff i is a zero-length binarization clone of alias[i]

	pinAt   map[PtID]netlistsvc.PinID
	ptOfPin map[netlistsvc.PinID]PtID

	root PtID
}

func newTree() *Tree {
	return &Tree{
		pinAt:   make(map[PtID]netlistsvc.PinID),
		ptOfPin: make(map[netlistsvc.PinID]PtID),
		root:    NullPt,
	}
}

func (t *Tree) addPoint(p netlistsvc.Point) PtID {
	id := PtID(len(t.pts))
	t.pts = append(t.pts, p)
	t.left = append(t.left, NullPt)
	t.right = append(t.right, NullPt)
	t.parent = append(t.parent, NullPt)
	t.edgeLen = append(t.edgeLen, 0)
	t.alias = append(t.alias, NullPt)
	return id
}

func (t *Tree) clonePoint(p PtID) PtID {
	id := t.addPoint(t.pts[p])
	t.alias[id] = p
	return id
}

func manhattan(a, b netlistsvc.Point) int64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func (t *Tree) setParent(child, parent PtID) {
	t.parent[child] = parent
	t.edgeLen[child] = manhattan(t.pts[parent], t.pts[child])
}

// addChild attaches child under parent, binarizing (spec.md §4.8 treats the
// tree as strictly two-child per node) by pushing an overflow child down
// through a zero-length clone of parent. Zero-length edges are explicitly
// anticipated by spec.md §4.3's parasitic estimator ("if length_dbu==0 and
// nodes differ, insert a 1mOhm resistor placeholder"), so this binarization
// never introduces a case the rest of the design doesn't already handle.
func (t *Tree) addChild(parent, child PtID) {
	if t.left[parent] == NullPt {
		t.left[parent] = child
		t.setParent(child, parent)
		return
	}
	if t.right[parent] == NullPt {
		t.right[parent] = child
		t.setParent(child, parent)
		return
	}
	clone := t.clonePoint(parent)
	oldRight := t.right[parent]
	t.right[parent] = clone
	t.setParent(clone, parent)
	t.left[clone] = oldRight
	t.setParent(oldRight, clone)
	t.addChild(clone, child)
}

func (t *Tree) Left(pt PtID) PtID   { return t.left[pt] }
func (t *Tree) Right(pt PtID) PtID  { return t.right[pt] }
func (t *Tree) Parent(pt PtID) PtID { return t.parent[pt] }
func (t *Tree) Root() PtID          { return t.root }
func (t *Tree) NumPoints() int      { return len(t.pts) }

// EdgeLen is the length, in DBU, of the branch connecting pt to its parent
// (0 if pt is the root or a zero-length binarization clone).
func (t *Tree) EdgeLen(pt PtID) int64 { return t.edgeLen[pt] }

func (t *Tree) Location(pt PtID) netlistsvc.Point { return t.pts[pt] }

func (t *Tree) Pin(pt PtID) (netlistsvc.PinID, bool) {
	p, ok := t.pinAt[pt]
	return p, ok
}

func (t *Tree) SteinerPt(pin netlistsvc.PinID) (PtID, bool) {
	pt, ok := t.ptOfPin[pin]
	return pt, ok
}

// SteinerPtAlias reports the point a binarization clone stands in for. Per
// SPEC_FULL.md's resolution of spec.md §9's Open Question, "no alias" (the
// common case — every real branch point) is not an error; callers treat it
// as "this point has no canonical alias, key parasitic nodes by the point
// itself".
func (t *Tree) SteinerPtAlias(pt PtID) (PtID, bool) {
	a := t.alias[pt]
	return a, a != NullPt
}

// Branches enumerates every parent-child edge, each a Branch spec.md §6
// requires STEINER to expose: (pt1 parent, pt2 child, length_dbu).
func (t *Tree) Branches() (branches []Branch) {
	for i := range t.pts {
		pt := PtID(i)
		if t.parent[pt] == NullPt {
			continue
		}
		branches = append(branches, Branch{P1: t.parent[pt], P2: pt, Len: t.edgeLen[pt]})
	}
	return
}

// WriteSVG renders the tree for debugging, matching spec.md §6's mention of
// an "SVG export" capability on STEINER.
func (t *Tree) WriteSVG(w io.Writer) {
	fmt.Fprintln(w, `<svg xmlns="http://www.w3.org/2000/svg">`)
	for _, b := range t.Branches() {
		p1, p2 := t.pts[b.P1], t.pts[b.P2]
		fmt.Fprintf(w, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n", p1.X, p1.Y, p2.X, p2.Y)
	}
	for pt, pin := range t.pinAt {
		p := t.pts[pt]
		fmt.Fprintf(w, `<circle cx="%d" cy="%d" r="3"/><!-- pin %d -->`+"\n", p.X, p.Y, pin)
	}
	fmt.Fprintln(w, `</svg>`)
}

// Terminal is one pin STEINER must connect: the driver (exactly one) and
// every load.
type Terminal struct {
	Pin      netlistsvc.PinID
	Loc      netlistsvc.Point
	IsDriver bool
}

// Build constructs a rectilinear tree connecting every terminal, rooted at
// the driver, via the Hanan-grid nearest-neighbor heuristic described in
// SPEC_FULL.md §4 (A3). Deterministic: ties are broken first by Manhattan
// distance, then by the lower connected point index, then by the remaining
// terminal's (x, y, pin id) order, so repeated calls on an unchanged net
// produce an identical tree.
func Build(terminals []Terminal) (*Tree, error) {
	var driver *Terminal
	for i := range terminals {
		if terminals[i].IsDriver {
			driver = &terminals[i]
			break
		}
	}
	if driver == nil {
		return nil, fmt.Errorf("steiner: no driver terminal supplied")
	}

	t := newTree()
	root := t.addPoint(driver.Loc)
	t.root = root
	t.pinAt[root] = driver.Pin
	t.ptOfPin[driver.Pin] = root

	type pending struct {
		term Terminal
	}
	var remaining []pending
	for _, term := range terminals {
		if term.IsDriver {
			continue
		}
		remaining = append(remaining, pending{term})
	}
	sort.Slice(remaining, func(i, j int) bool {
		return terminalLess(remaining[i].term, remaining[j].term)
	})

	connected := []PtID{root}

	for len(remaining) > 0 {
		bestI, bestJ := -1, -1
		var bestDist int64 = -1
		for j, rem := range remaining {
			for i, cpt := range connected {
				d := manhattan(t.pts[cpt], rem.term.Loc)
				if bestDist < 0 || d < bestDist ||
					(d == bestDist && (bestI < 0 || connected[i] < connected[bestI])) {
					bestDist, bestI, bestJ = d, i, j
				}
			}
		}

		cidx := connected[bestI]
		term := remaining[bestJ].term
		remaining = append(remaining[:bestJ], remaining[bestJ+1:]...)

		c := t.pts[cidx]
		p := term.Loc

		if c.X == p.X || c.Y == p.Y {
			leaf := t.addPoint(p)
			t.addChild(cidx, leaf)
			t.pinAt[leaf] = term.Pin
			t.ptOfPin[term.Pin] = leaf
			connected = append(connected, leaf)
			continue
		}

		corner := netlistsvc.Point{X: c.X, Y: p.Y}
		cornerIdx := t.addPoint(corner)
		t.addChild(cidx, cornerIdx)

		leaf := t.addPoint(p)
		t.addChild(cornerIdx, leaf)
		t.pinAt[leaf] = term.Pin
		t.ptOfPin[term.Pin] = leaf

		connected = append(connected, cornerIdx, leaf)
	}

	return t, nil
}

func terminalLess(a, b Terminal) bool {
	if a.Loc.X != b.Loc.X {
		return a.Loc.X < b.Loc.X
	}
	if a.Loc.Y != b.Loc.Y {
		return a.Loc.Y < b.Loc.Y
	}
	return a.Pin < b.Pin
}
