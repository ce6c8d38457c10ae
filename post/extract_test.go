package post_test

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anovak/gosph/post"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
	"github.com/anovak/gosph/sphio"
)

// TestExtractLargestRemnant runs the full pipeline: parse a pkdgrav
// dump, find components with radius 1.5 h, extract the most massive one
// and re-center it on its center of mass.
func TestExtractLargestRemnant(t *testing.T) {
	// Two rubble piles: a heavy triple around +1e-5 AU and a light
	// pair around -1e-5 AU. Spacings stay within 1.5 smoothing
	// lengths so each pile is one component.
	rows := [][4]float64{
		{2e-20, 1e6, 1e-5, 0},
		{2e-20, 1e6, 1e-5 + 1.5e-9, 1e-9},
		{2e-20, 1e6, 1e-5 + 3e-9, 0},
		{1e-20, 1e6, -1e-5, 0},
		{1e-20, 1e6, -1e-5 - 1e-9, 5e-10},
	}
	text := ""
	for i, r := range rows {
		text += fmt.Sprintf(
			"%d %d %g %g %g %g 0 0 0 0 0 0 0 3\n",
			i, i, r[0], r[1], r[2], r[3])
	}
	path := filepath.Join(t.TempDir(), "dump.bt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0666))

	storage := quant.NewStorage()
	require.NoError(t, sphio.NewPkdgravInput().Load(path, storage))
	require.Equal(t, 5, storage.ParticleCnt())

	comp, err := post.FindComponents(
		sched.Serial{}, storage, 1.5, post.SortByMass)
	require.NoError(t, err)
	require.Equal(t, 2, comp.Cnt)

	remnant, err := post.ExtractComponent(storage, comp, 0)
	require.NoError(t, err)
	require.Equal(t, 3, remnant.ParticleCnt())

	quant.MoveToCenterOfMassFrame(remnant)
	com := quant.CenterOfMass(
		remnant.Scalars(quant.Mass), remnant.Vectors(quant.Position))
	for d := 0; d < 3; d++ {
		assert.Less(t, math.Abs(com[d]), 1e-6)
	}
}
