package topology

import (
	"fmt"
	"math"
	"math/rand"
)

// Type enumerates the supported network topologies.
type Type uint32

const (
	// Full connects every pair of distinct nodes.
	Full Type = iota

	// Line connects node i to i-1 and i+1, without wraparound.
	Line

	// Grid3D lays the nodes out in a cube and connects each node to its
	// axis-aligned neighbors.
	Grid3D

	// ImperfectGrid3D is Grid3D plus one extra random edge per node.
	ImperfectGrid3D
)

func (t Type) String() string {
	switch t {
	case Full:
		return "fullnetwork"
	case Line:
		return "line"
	case Grid3D:
		return "3d"
	case ImperfectGrid3D:
		return "imperfect3d"
	default:
		return "unknown"
	}
}

// ParseType parses a topology name as it appears on the command line.
func ParseType(name string) (Type, error) {
	switch name {
	case "fullnetwork":
		return Full, nil
	case "line":
		return Line, nil
	case "3d":
		return Grid3D, nil
	case "imperfect3d":
		return ImperfectGrid3D, nil
	default:
		return 0, fmt.Errorf("unknown topology %q (expected fullnetwork, line, 3d or imperfect3d)", name)
	}
}

// Build computes the neighbor-adjacency relation for n nodes. The result
// maps each node index to the ordered list of its neighbor indices. An
// unknown topology, or n < 1, is a configuration error; Build never returns
// a partially-wired relation.
func Build(n int, t Type) ([][]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("topology requires at least one node, got %d", n)
	}

	switch t {
	case Full:
		return buildFull(n), nil
	case Line:
		return buildLine(n), nil
	case Grid3D:
		return buildGrid3D(n), nil
	case ImperfectGrid3D:
		return buildImperfectGrid3D(n), nil
	default:
		return nil, fmt.Errorf("unknown topology %d", t)
	}
}

func buildFull(n int) [][]int {
	adjacency := make([][]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j != i {
				adjacency[i] = append(adjacency[i], j)
			}
		}
	}

	return adjacency
}

func buildLine(n int) [][]int {
	adjacency := make([][]int, n)

	for i := 0; i < n; i++ {
		if i > 0 {
			adjacency[i] = append(adjacency[i], i-1)
		}
		if i < n-1 {
			adjacency[i] = append(adjacency[i], i+1)
		}
	}

	return adjacency
}

// cubeSide returns the smallest side such that side^3 >= n. It avoids
// relying on math.Cbrt returning an exact value for perfect cubes.
func cubeSide(n int) int {
	side := int(math.Cbrt(float64(n)))

	for side > 1 && (side-1)*(side-1)*(side-1) >= n {
		side--
	}
	for side*side*side < n {
		side++
	}

	return side
}

// buildGrid3D maps node i to coordinates (i mod side, (i/side) mod side,
// i/side^2) and connects nodes differing by 1 in exactly one axis. Indices
// beyond n-1 fall outside the truncated cube and are skipped, so boundary
// nodes may have fewer than 6 neighbors.
func buildGrid3D(n int) [][]int {
	side := cubeSide(n)

	adjacency := make([][]int, n)

	offsets := [6][3]int{
		{-1, 0, 0}, {1, 0, 0},
		{0, -1, 0}, {0, 1, 0},
		{0, 0, -1}, {0, 0, 1},
	}

	for i := 0; i < n; i++ {
		x := i % side
		y := (i / side) % side
		z := i / (side * side)

		for _, off := range offsets {
			nx, ny, nz := x+off[0], y+off[1], z+off[2]

			if nx < 0 || nx >= side ||
				ny < 0 || ny >= side ||
				nz < 0 || nz >= side {
				continue
			}

			neighbor := nx + ny*side + nz*side*side
			if neighbor < n {
				adjacency[i] = append(adjacency[i], neighbor)
			}
		}
	}

	return adjacency
}

// buildImperfectGrid3D extends the 3D grid with exactly one extra edge per
// node, to a distinct other node chosen uniformly at random. The extra edge
// is drawn independently per node and is not required to be symmetric; it
// may duplicate an existing grid edge.
func buildImperfectGrid3D(n int) [][]int {
	adjacency := buildGrid3D(n)

	if n < 2 {
		return adjacency
	}

	for i := 0; i < n; i++ {
		extra := rand.Intn(n - 1)
		if extra >= i {
			extra++
		}

		adjacency[i] = append(adjacency[i], extra)
	}

	return adjacency
}
