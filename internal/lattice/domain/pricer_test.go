package domain

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func putInput(style OptionStyle) LatticeInput {
	return LatticeInput{
		Kind:         OptionTypePut,
		Style:        style,
		Strike:       100,
		S0:           100,
		Up:           1.2,
		Down:         0.8,
		RiskFreeRate: 0.05,
		Maturity:     2,
		Steps:        2,
	}
}

func assertLayers(t *testing.T, expect map[int][]float64, l *Lattice) {
	t.Helper()
	got := l.Layers()
	require.Len(t, got, len(expect))
	for i, layer := range expect {
		require.Len(t, got[i], len(layer), "layer %d", i)
		for j, v := range layer {
			assert.InDelta(t, v, got[i][j], tolerance, "node (%d,%d)", i, j)
		}
	}
}

func TestPriceEuropeanPut(t *testing.T) {
	res, err := PriceLattice(putInput(OptionStyleEuropean))
	require.NoError(t, err)

	assertLayers(t, map[int][]float64{
		0: {100},
		1: {120, 80},
		2: {144, 96, 64},
	}, res.Stock)
	assertLayers(t, map[int][]float64{
		0: {0},
		1: {0, 20},
		2: {0, 4, 36},
	}, res.Payoff)
	assertLayers(t, map[int][]float64{
		0: {6.194180597610661},
		1: {1.4147530940085673, 15.122942450071378},
		2: {0, 4, 36},
	}, res.Value)
	assert.InDelta(t, 6.1942, res.FairValue(), 1e-4)
}

func TestPriceAmericanPut(t *testing.T) {
	res, err := PriceLattice(putInput(OptionStyleAmerican))
	require.NoError(t, err)

	// (1,1) 处立即行权的 20 高于继续持有的 15.12
	assert.Equal(t, 20.0, res.Value.At(1, 1))
	assert.InDelta(t, 1.4147530940085673, res.Value.At(1, 0), tolerance)
	assert.InDelta(t, 7.919138662215509, res.FairValue(), tolerance)
	assert.GreaterOrEqual(t, res.FairValue(), 6.1942)
	assert.Equal(t, res.Payoff.Layer(2), res.Value.Layer(2))
}

func TestPriceEuropeanCall(t *testing.T) {
	in := putInput(OptionStyleEuropean)
	in.Kind = OptionTypeCall
	res, err := PriceLattice(in)
	require.NoError(t, err)
	assert.InDelta(t, 15.71043879401472, res.FairValue(), tolerance)
}

func TestPutCallParity(t *testing.T) {
	in := LatticeInput{
		Style:        OptionStyleEuropean,
		Strike:       95,
		S0:           100,
		Up:           1.05,
		Down:         0.96,
		RiskFreeRate: 0.03,
		Maturity:     1,
		Steps:        40,
	}
	in.Kind = OptionTypeCall
	call, err := PriceLattice(in)
	require.NoError(t, err)
	in.Kind = OptionTypePut
	put, err := PriceLattice(in)
	require.NoError(t, err)

	parity := in.S0 - in.Strike*math.Exp(-in.RiskFreeRate*in.Maturity)
	assert.InDelta(t, parity, call.FairValue()-put.FairValue(), 1e-8)
}

func TestLatticeInvariants(t *testing.T) {
	for _, kind := range []OptionType{OptionTypeCall, OptionTypePut} {
		base := LatticeInput{
			Kind:         kind,
			Strike:       100,
			S0:           100,
			Up:           1.1,
			Down:         0.9,
			RiskFreeRate: 0.05,
			Maturity:     1,
			Steps:        50,
		}
		eu := base
		eu.Style = OptionStyleEuropean
		am := base
		am.Style = OptionStyleAmerican

		euRes, err := PriceLattice(eu)
		require.NoError(t, err)
		amRes, err := PriceLattice(am)
		require.NoError(t, err)

		n := base.Steps
		for _, res := range []*LatticeResult{euRes, amRes} {
			assert.Equal(t, res.Payoff.Layer(n), res.Value.Layer(n), "terminal layer must equal payoff")
		}
		for i := 0; i <= n; i++ {
			for j := 0; j <= i; j++ {
				a, e := amRes.Value.At(i, j), euRes.Value.At(i, j)
				assert.GreaterOrEqual(t, a, e-tolerance, "%s node (%d,%d)", kind, i, j)
				assert.GreaterOrEqual(t, a, 0.0, "%s node (%d,%d)", kind, i, j)
			}
		}
	}
}

func TestPriceZeroSteps(t *testing.T) {
	in := putInput(OptionStyleAmerican)
	in.S0 = 90
	in.Steps = 0

	res, err := PriceLattice(in)
	require.NoError(t, err)
	assert.Equal(t, map[int][]float64{0: {90}}, res.Stock.Layers())
	assert.Equal(t, map[int][]float64{0: {10}}, res.Payoff.Layers())
	assert.Equal(t, map[int][]float64{0: {10}}, res.Value.Layers())
}

func TestPriceInvalidParameters(t *testing.T) {
	in := putInput(OptionStyleEuropean)
	in.Kind = OptionType("forward")
	res, err := PriceLattice(in)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidOptionKind)

	in = putInput(OptionStyleEuropean)
	in.Kind = OptionTypeCall
	in.Style = OptionStyle("bermudan")
	res, err = PriceLattice(in)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidOptionStyle)

	in = putInput(OptionStyleEuropean)
	in.Steps = -1
	_, err = PriceLattice(in)
	assert.ErrorIs(t, err, ErrInvalidSteps)
}

func TestParallelMatchesSequential(t *testing.T) {
	in := LatticeInput{
		Kind:         OptionTypePut,
		Style:        OptionStyleAmerican,
		Strike:       105,
		S0:           100,
		Up:           1.02,
		Down:         0.98,
		RiskFreeRate: 0.04,
		Maturity:     1.5,
		Steps:        300,
	}
	seq, err := NewBinomialPricer().Price(context.Background(), in)
	require.NoError(t, err)
	par, err := NewBinomialPricer(WithParallelism(16, 4)).Price(context.Background(), in)
	require.NoError(t, err)

	for i := 0; i <= in.Steps; i++ {
		require.Equal(t, seq.Value.Layer(i), par.Value.Layer(i), "layer %d", i)
	}
}

func TestPriceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := putInput(OptionStyleEuropean)
	in.Steps = 100
	res, err := NewBinomialPricer(WithParallelism(8, 2)).Price(ctx, in)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}
