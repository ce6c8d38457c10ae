package delaunay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/geom"
)

func randomBallPoints(n int, radius float64, seed int64) []geom.Vec {
	rnd := rand.New(rand.NewSource(seed))
	points := make([]geom.Vec, 0, n)
	for len(points) < n {
		p := geom.NewVec(
			(2*rnd.Float64()-1)*radius,
			(2*rnd.Float64()-1)*radius,
			(2*rnd.Float64()-1)*radius,
		)
		if p.SqrLength() <= radius*radius {
			points = append(points, p)
		}
	}
	return points
}

func randomCubePoints(n int, seed int64) []geom.Vec {
	rnd := rand.New(rand.NewSource(seed))
	points := make([]geom.Vec, n)
	for i := range points {
		points[i] = geom.NewVec(rnd.Float64(), rnd.Float64(), rnd.Float64())
	}
	return points
}

func TestBuildSingleTetrahedron(t *testing.T) {
	points := []geom.Vec{
		geom.NewVec(0, 0, 0),
		geom.NewVec(0, 0, 1),
		geom.NewVec(0, 1, 0),
		geom.NewVec(1, 0, 0),
	}
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	require.Equal(t, 1, tri.CellCnt())
	c := tri.Cells()[0]
	for f := 0; f < 4; f++ {
		assert.Nil(t, c.Neighbor(f))
	}

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		seen[c.Vertex(i)] = true
	}
	assert.Len(t, seen, 4)

	assert.InDelta(t, 1.0/6.0, tri.Tetrahedron(c).SignedVolume(), 1e-12)
}

func TestBuildTooFewPoints(t *testing.T) {
	points := []geom.Vec{
		geom.NewVec(0, 0, 0), geom.NewVec(1, 0, 0), geom.NewVec(0, 1, 0),
	}
	assert.Error(t, New().Build(points, 0))
}

func TestMirrorLinksAndOrientation(t *testing.T) {
	points := randomCubePoints(300, 5)
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	for _, c := range tri.Cells() {
		assert.Greater(t, tri.Tetrahedron(c).SignedVolume(), 0.0)
		for f := 0; f < 4; f++ {
			n := c.Neighbor(f)
			if n == nil {
				continue
			}
			require.Same(t, c, n.Neighbor(c.Mirror(f)))

			// The shared face vertices appear in both cells.
			nVerts := map[int32]bool{}
			for i := 0; i < 4; i++ {
				nVerts[int32(n.Vertex(i))] = true
			}
			for _, v := range c.Face(f) {
				assert.True(t, nVerts[v])
			}
		}
	}
}

func TestVolumeMatchesHull(t *testing.T) {
	points := randomCubePoints(500, 11)
	tri := New()
	require.NoError(t, tri.Build(points, SpatialSort))

	// The hull is closed and consistently wound, so the signed cone
	// volumes from the origin sum to the enclosed volume.
	hull := tri.ConvexHull()
	require.NotEmpty(t, hull)
	hullVol := 0.0
	for _, face := range hull {
		hullVol += geom.Dot(face[0], geom.Cross(face[1], face[2])) / 6
	}

	assert.InEpsilon(t, hullVol, tri.Volume(), 1e-9)
	assert.Less(t, tri.Volume(), 1.0)
	assert.Greater(t, tri.Volume(), 0.5)
}

func TestDelaunayProperty(t *testing.T) {
	points := randomCubePoints(60, 3)
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	for _, c := range tri.Cells() {
		sphere := c.Circumsphere()
		inCell := map[int]bool{}
		for i := 0; i < 4; i++ {
			inCell[c.Vertex(i)] = true
		}
		for i, p := range points {
			if inCell[i] {
				continue
			}
			d := p.Minus(sphere.Center).Length()
			assert.GreaterOrEqual(t, d, sphere.Radius*(1-1e-9),
				"vertex %d inside circumsphere", i)
		}
	}
}

func TestConvexHullWinding(t *testing.T) {
	points := randomCubePoints(200, 7)
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	centroid := geom.Vec{}
	for _, p := range points {
		centroid = centroid.Plus(p)
	}
	centroid = centroid.Scaled(1 / float64(len(points)))

	for _, face := range tri.ConvexHull() {
		out := face.Center().Minus(centroid)
		assert.Greater(t, geom.Dot(face.Normal(), out), 0.0)
	}
}

func TestLocate(t *testing.T) {
	points := randomCubePoints(400, 13)
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	rnd := rand.New(rand.NewSource(17))
	for i := 0; i < 100; i++ {
		// Interior queries stay away from the hull surface.
		q := geom.NewVec(
			0.25+0.5*rnd.Float64(),
			0.25+0.5*rnd.Float64(),
			0.25+0.5*rnd.Float64(),
		)
		c, ok := tri.Locate(q)
		require.True(t, ok)
		assert.True(t, tri.Tetrahedron(c).Contains(q))
	}

	_, ok := tri.Locate(geom.NewVec(50, 50, 50))
	assert.False(t, ok)
}

func TestDegenerateInputRecovered(t *testing.T) {
	// A flat grid only triangulates after jittering.
	var points []geom.Vec
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			points = append(points, geom.NewVec(float64(i), float64(j), 0))
		}
	}
	tri := New()
	require.NoError(t, tri.Build(points, 0))
	assert.Greater(t, tri.CellCnt(), 0)

	// Duplicated points likewise resolve through jitter.
	points = randomCubePoints(20, 19)
	points = append(points, points[0], points[5], points[5])
	require.NoError(t, tri.Build(points, 0))
	assert.Greater(t, tri.CellCnt(), 0)
}

func TestAlphaShape(t *testing.T) {
	var points []geom.Vec
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			for k := 0; k < 5; k++ {
				points = append(points,
					geom.NewVec(float64(i), float64(j), float64(k)))
			}
		}
	}
	tri := New()
	require.NoError(t, tri.Build(points, 0))

	_, err := tri.AlphaShape(0)
	assert.Error(t, err)
	_, err = tri.AlphaShape(-1)
	assert.Error(t, err)

	// Every cell of the unit grid has edges no longer than the cube
	// diagonal, so a generous alpha keeps them all.
	tris, err := tri.AlphaShape(2)
	require.NoError(t, err)
	assert.NotEmpty(t, tris)

	// An alpha below the grid spacing rejects every cell.
	tris, err = tri.AlphaShape(0.5)
	require.NoError(t, err)
	assert.Empty(t, tris)
}

func TestLargeBallTriangulation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 10k point triangulation")
	}
	points := randomBallPoints(10000, 500, 1234)
	tri := New()
	require.NoError(t, tri.Build(points, SpatialSort))

	// Uniform random points produce about 6.7 cells per point.
	assert.Greater(t, tri.CellCnt(), 55000)
	assert.Less(t, tri.CellCnt(), 78000)

	hull := tri.ConvexHull()
	require.NotEmpty(t, hull)
	for _, face := range hull {
		for _, v := range face {
			r := v.Length()
			assert.Greater(t, r, 480.0)
			assert.LessOrEqual(t, r, 500+1e-9)
		}
	}

	// All interior faces stay mutually linked after the super
	// tetrahedron is stripped.
	for _, c := range tri.Cells() {
		for f := 0; f < 4; f++ {
			if n := c.Neighbor(f); n != nil {
				require.Same(t, c, n.Neighbor(c.Mirror(f)))
			}
		}
	}
}
