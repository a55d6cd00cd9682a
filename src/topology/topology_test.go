package topology

import (
	"testing"
)

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestFullTopology(t *testing.T) {
	n := 5

	adjacency, err := Build(n, Full)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for i := 0; i < n; i++ {
		if len(adjacency[i]) != n-1 {
			t.Fatalf("node %d should have %d neighbors, got %d", i, n-1, len(adjacency[i]))
		}

		if contains(adjacency[i], i) {
			t.Fatalf("node %d should not be its own neighbor", i)
		}

		for j := 0; j < n; j++ {
			if j != i && !contains(adjacency[i], j) {
				t.Fatalf("nodes %d and %d should be connected", i, j)
			}
		}
	}
}

func TestLineTopology(t *testing.T) {
	adjacency, err := Build(5, Line)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	expected := [][]int{
		{1},
		{0, 2},
		{1, 3},
		{2, 4},
		{3},
	}

	for i, exp := range expected {
		if len(adjacency[i]) != len(exp) {
			t.Fatalf("node %d: expected neighbors %v, got %v", i, exp, adjacency[i])
		}
		for _, j := range exp {
			if !contains(adjacency[i], j) {
				t.Fatalf("node %d: expected neighbors %v, got %v", i, exp, adjacency[i])
			}
		}
	}
}

func TestLineTopologySingleNode(t *testing.T) {
	adjacency, err := Build(1, Line)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(adjacency[0]) != 0 {
		t.Fatalf("single node should have no neighbors, got %v", adjacency[0])
	}
}

func TestGrid3DTopology(t *testing.T) {
	n := 10

	adjacency, err := Build(n, Grid3D)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	side := cubeSide(n)

	coords := func(i int) (int, int, int) {
		return i % side, (i / side) % side, i / (side * side)
	}

	abs := func(a int) int {
		if a < 0 {
			return -a
		}
		return a
	}

	for i := 0; i < n; i++ {
		for _, j := range adjacency[i] {
			if j < 0 || j >= n {
				t.Fatalf("node %d has out-of-range neighbor %d", i, j)
			}

			xi, yi, zi := coords(i)
			xj, yj, zj := coords(j)

			d := abs(xi-xj) + abs(yi-yj) + abs(zi-zj)
			if d != 1 {
				t.Fatalf("nodes %d and %d differ in %d coordinate steps, expected 1", i, j, d)
			}

			// grid edges are symmetric
			if !contains(adjacency[j], i) {
				t.Fatalf("grid edge %d->%d is not symmetric", i, j)
			}
		}
	}
}

func TestGrid3DInteriorNode(t *testing.T) {
	// 3x3x3 cube: the center node has all 6 axis neighbors
	adjacency, err := Build(27, Grid3D)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	center := 1 + 1*3 + 1*9
	if len(adjacency[center]) != 6 {
		t.Fatalf("center node should have 6 neighbors, got %v", adjacency[center])
	}
}

func TestCubeSide(t *testing.T) {
	cases := []struct {
		n    int
		side int
	}{
		{1, 1},
		{2, 2},
		{8, 2},
		{9, 3},
		{27, 3},
		{28, 4},
		{64, 4},
		{1000, 10},
	}

	for _, c := range cases {
		if got := cubeSide(c.n); got != c.side {
			t.Fatalf("cubeSide(%d): expected %d, got %d", c.n, c.side, got)
		}
	}
}

func TestImperfectGrid3DTopology(t *testing.T) {
	n := 10

	grid, err := Build(n, Grid3D)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	adjacency, err := Build(n, ImperfectGrid3D)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for i := 0; i < n; i++ {
		if len(adjacency[i]) != len(grid[i])+1 {
			t.Fatalf("node %d should have exactly one extra edge: grid %v, got %v",
				i, grid[i], adjacency[i])
		}

		// the grid edges come first, the random edge is appended
		for k, j := range grid[i] {
			if adjacency[i][k] != j {
				t.Fatalf("node %d: grid edges should be preserved: grid %v, got %v",
					i, grid[i], adjacency[i])
			}
		}

		extra := adjacency[i][len(adjacency[i])-1]
		if extra == i {
			t.Fatalf("node %d has a self-loop extra edge", i)
		}
		if extra < 0 || extra >= n {
			t.Fatalf("node %d has out-of-range extra edge %d", i, extra)
		}
	}
}

func TestImperfectGrid3DSingleNode(t *testing.T) {
	// with a single node there is no distinct target for the extra edge
	adjacency, err := Build(1, ImperfectGrid3D)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(adjacency[0]) != 0 {
		t.Fatalf("single node should have no neighbors, got %v", adjacency[0])
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(0, Full); err == nil {
		t.Fatal("expected error for n=0")
	}

	if _, err := Build(-3, Line); err == nil {
		t.Fatal("expected error for negative n")
	}

	if _, err := Build(5, Type(99)); err == nil {
		t.Fatal("expected error for unknown topology")
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"fullnetwork": Full,
		"line":        Line,
		"3d":          Grid3D,
		"imperfect3d": ImperfectGrid3D,
	}

	for name, expected := range cases {
		got, err := ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", name, err)
		}
		if got != expected {
			t.Fatalf("ParseType(%q): expected %v, got %v", name, expected, got)
		}
	}

	if _, err := ParseType("ring"); err == nil {
		t.Fatal("expected error for unknown topology name")
	}
}
