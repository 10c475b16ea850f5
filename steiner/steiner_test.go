package steiner

import (
	"testing"

	"sart/netlistsvc"
)

func TestBuildTwoPinNetSingleBranch(t *testing.T) {
	terms := []Terminal{
		{Pin: 1, Loc: netlistsvc.Point{X: 0, Y: 0}, IsDriver: true},
		{Pin: 2, Loc: netlistsvc.Point{X: 100, Y: 0}},
	}
	tree, err := Build(terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	branches := tree.Branches()
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch for a 2-pin aligned net, got %d", len(branches))
	}
	if branches[0].Len != 100 {
		t.Errorf("expected branch length 100, got %d", branches[0].Len)
	}
}

func TestBuildLShapedIntroducesCorner(t *testing.T) {
	terms := []Terminal{
		{Pin: 1, Loc: netlistsvc.Point{X: 0, Y: 0}, IsDriver: true},
		{Pin: 2, Loc: netlistsvc.Point{X: 100, Y: 50}},
	}
	tree, err := Build(terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var total int64
	for _, b := range tree.Branches() {
		total += b.Len
	}
	if total != 150 {
		t.Fatalf("expected total rectilinear length 150, got %d", total)
	}
	if tree.NumPoints() != 3 {
		t.Errorf("expected 3 points (driver, corner, load), got %d", tree.NumPoints())
	}
}

func TestBuildBinarizesThirdChild(t *testing.T) {
	terms := []Terminal{
		{Pin: 1, Loc: netlistsvc.Point{X: 0, Y: 0}, IsDriver: true},
		{Pin: 2, Loc: netlistsvc.Point{X: 100, Y: 0}},
		{Pin: 3, Loc: netlistsvc.Point{X: -100, Y: 0}},
		{Pin: 4, Loc: netlistsvc.Point{X: 0, Y: 100}},
	}
	tree, err := Build(terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := tree.Root()
	if tree.Left(root) == NullPt || tree.Right(root) == NullPt {
		t.Fatalf("expected driver to have both children populated")
	}
	// Every point has at most two children by construction: a Tree point
	// has only the Left and Right slots.
	for i := 0; i < tree.NumPoints(); i++ {
		_ = tree.Left(PtID(i))
		_ = tree.Right(PtID(i))
	}
	found := 0
	for i := 0; i < tree.NumPoints(); i++ {
		if alias, ok := tree.SteinerPtAlias(PtID(i)); ok {
			if tree.Location(PtID(i)) != tree.Location(alias) {
				t.Errorf("expected clone point to share location with its alias")
			}
			found++
		}
	}
	if found == 0 {
		t.Errorf("expected at least one binarization clone for a 3-child driver")
	}
}

func TestSteinerPtRoundTrip(t *testing.T) {
	terms := []Terminal{
		{Pin: 1, Loc: netlistsvc.Point{X: 0, Y: 0}, IsDriver: true},
		{Pin: 2, Loc: netlistsvc.Point{X: 100, Y: 0}},
	}
	tree, _ := Build(terms)
	pt, ok := tree.SteinerPt(2)
	if !ok {
		t.Fatalf("expected to find steiner point for pin 2")
	}
	pin, ok := tree.Pin(pt)
	if !ok || pin != 2 {
		t.Errorf("expected round trip back to pin 2, got %v", pin)
	}
}

func TestBuildNoDriverErrors(t *testing.T) {
	terms := []Terminal{
		{Pin: 1, Loc: netlistsvc.Point{X: 0, Y: 0}},
	}
	if _, err := Build(terms); err == nil {
		t.Errorf("expected error when no terminal is marked as driver")
	}
}
