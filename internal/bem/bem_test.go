package bem

import (
	"testing"

	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/influence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitTri = []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}

func reactivePanel(t *testing.T, bc []float64) *elements.Surfaces {
	t.Helper()
	s, err := elements.NewSurfaces(unitTri, []int{0, 1, 2}, bc, elements.Reactive, elements.Fixed, nil)
	require.NoError(t, err)
	return s
}

func TestRHSProjections(t *testing.T) {
	u := r3.Vec{X: 1, Y: 2, Z: 3}

	tests := []struct {
		name string
		bc   []float64
		want []float64
	}{
		{"normal only", []float64{0.5}, []float64{-3.5}},
		{"tangential", []float64{0.1, 0.2}, []float64{-1.1, -2.2}},
		{"tangential then normal", []float64{0.1, 0.2, 0.3}, []float64{-1.1, -2.2, -3.3}},
		{"zero condition", []float64{0, 0}, []float64{-1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reactivePanel(t, tt.bc)
			s.Vels()[0] = u
			assert.InDeltaSlice(t, tt.want, RHS(s), 1e-12)
		})
	}
}

func TestRHSNoOp(t *testing.T) {
	active, err := elements.NewSurfaces(unitTri, []int{0, 1, 2}, []float64{1, 0}, elements.Active, elements.Fixed, nil)
	require.NoError(t, err)
	assert.Nil(t, RHS(active))

	empty, err := elements.NewSurfaces(nil, nil, nil, elements.Reactive, elements.Fixed, nil)
	require.NoError(t, err)
	assert.Nil(t, RHS(empty))
}

func TestAssembleSinglePanelTangential(t *testing.T) {
	s := reactivePanel(t, []float64{0, 0})
	sys := Assemble([]*elements.Surfaces{s}, compute.NewSerialBackend())

	require.False(t, sys.Empty())
	assert.Equal(t, 2, sys.Rows())
	assert.Equal(t, 2, sys.Cols())

	// a sheet along t1 slips toward -t2 on the fluid side, one along t2
	// toward +t1
	want := mat.NewDense(2, 2, []float64{
		0, 0.5,
		-0.5, 0,
	})
	assert.True(t, mat.EqualApprox(want, sys.A, 1e-12), "A = %v", mat.Formatted(sys.A))
}

func TestSolveCancelsSlip(t *testing.T) {
	s := reactivePanel(t, []float64{0, 0})
	s.Vels()[0] = r3.Vec{X: 1}

	sys := Assemble([]*elements.Surfaces{s}, nil)
	require.NoError(t, sys.Solve(DenseSolver{}))

	vs := s.VortexSheet()[0]
	assert.InDelta(t, 0.0, vs[0], 1e-12)
	assert.InDelta(t, -2.0, vs[1], 1e-12)
	assert.InDelta(t, -1.0, s.Strengths()[0].Y, 1e-12)

	// the solved sheet induces the opposite slip at its own centroid
	s.ZeroVels()
	c := elements.FromSurfaces(s)
	influence.Accumulate(c, c, compute.NewSerialBackend())
	s.FinalizeVels(r3.Vec{})
	assert.InDelta(t, -1.0, s.Vels()[0].X, 1e-12)
	assert.InDelta(t, 0.0, s.Vels()[0].Y, 1e-12)
}

func TestAssembleMultipleCollections(t *testing.T) {
	a := reactivePanel(t, []float64{0, 0})
	b, err := elements.NewSurfaces(
		[]float64{0, 0, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1},
		[]int{0, 1, 2, 1, 3, 2},
		[]float64{0, 0, 0, 0}, elements.Reactive, elements.Fixed, nil)
	require.NoError(t, err)
	active, err := elements.NewSurfaces(unitTri, []int{0, 1, 2}, []float64{1, 0}, elements.Active, elements.Fixed, nil)
	require.NoError(t, err)

	a.Vels()[0] = r3.Vec{X: 1}
	b.Vels()[0] = r3.Vec{Y: 1}
	b.Vels()[1] = r3.Vec{X: -1}

	sys := Assemble([]*elements.Surfaces{a, active, b}, compute.NewCPUBackendWorkers(2, 1))
	require.Len(t, sys.Blocks, 2)
	assert.Equal(t, 0, sys.Blocks[0].Row)
	assert.Equal(t, 2, sys.Blocks[1].Row)
	assert.Equal(t, 2, sys.Blocks[1].Col)
	assert.Equal(t, 6, sys.Rows())
	assert.Equal(t, 6, sys.Cols())

	r, c := sys.A.Dims()
	assert.Equal(t, 6, r)
	assert.Equal(t, 6, c)
	assert.InDeltaSlice(t, []float64{-1, 0, 0, -1, 0, -1}, sys.B.RawVector().Data, 1e-12)

	require.NoError(t, sys.Solve(nil))

	var res mat.VecDense
	x := mat.NewVecDense(6, []float64{
		a.VortexSheet()[0][0], a.VortexSheet()[0][1],
		b.VortexSheet()[0][0], b.VortexSheet()[0][1],
		b.VortexSheet()[1][0], b.VortexSheet()[1][1],
	})
	res.MulVec(sys.A, x)
	assert.InDeltaSlice(t, sys.B.RawVector().Data, res.RawVector().Data, 1e-9)
}

func TestAssembleNormalOnlyMinimumNorm(t *testing.T) {
	s := reactivePanel(t, []float64{0})
	s.Vels()[0] = r3.Vec{Z: 1}

	sys := Assemble([]*elements.Surfaces{s}, nil)
	assert.Equal(t, 1, sys.Rows())
	assert.Equal(t, 2, sys.Cols())
	require.NoError(t, sys.Solve(DenseSolver{}))
}

func TestAssembleEmpty(t *testing.T) {
	active, err := elements.NewSurfaces(unitTri, []int{0, 1, 2}, []float64{1, 0}, elements.Active, elements.Fixed, nil)
	require.NoError(t, err)

	sys := Assemble([]*elements.Surfaces{active}, nil)
	assert.True(t, sys.Empty())
	assert.NoError(t, sys.Solve(nil))
	assert.Equal(t, r3.Vec{X: 0.5}, active.Strengths()[0])
}

func TestDenseSolverSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	b := mat.NewVecDense(2, []float64{1, 1})

	_, err := DenseSolver{}.Solve(a, b)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestDistributeLengthMismatch(t *testing.T) {
	s := reactivePanel(t, []float64{0, 0})
	sys := Assemble([]*elements.Surfaces{s}, nil)
	assert.Error(t, sys.Distribute(mat.NewVecDense(3, nil)))
}
