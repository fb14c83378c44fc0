// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlippageBounds(t *testing.T) {
	tests := []struct {
		name   string
		quote  int64
		bips   uint64
		minOut int64
		maxIn  int64
	}{
		{name: "half percent", quote: 1_000_000, bips: 50, minOut: 995_000, maxIn: 1_005_000},
		{name: "rounds toward caller safety", quote: 999, bips: 30, minOut: 996, maxIn: 1_002},
		{name: "zero tolerance", quote: 12_345, bips: 0, minOut: 12_345, maxIn: 12_345},
		{name: "full tolerance", quote: 10, bips: MaxSlippageBips, minOut: 0, maxIn: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minOut, err := MinimumAmountOut(big.NewInt(tt.quote), tt.bips)
			require.NoError(t, err)
			require.Zero(t, minOut.Cmp(big.NewInt(tt.minOut)), "min out %s", minOut)

			maxIn, err := MaximumAmountIn(big.NewInt(tt.quote), tt.bips)
			require.NoError(t, err)
			require.Zero(t, maxIn.Cmp(big.NewInt(tt.maxIn)), "max in %s", maxIn)
		})
	}
}

func TestSlippageRejects(t *testing.T) {
	_, err := MinimumAmountOut(big.NewInt(1), MaxSlippageBips+1)
	require.ErrorIs(t, err, ErrInvalidSlippage)

	_, err = MaximumAmountIn(big.NewInt(-1), 10)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecutionPrice(t *testing.T) {
	// 2 units of an 18 decimal token for 3,000 units of a 6 decimal token
	in := new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	out := big.NewInt(3_000_000_000)

	price, err := ExecutionPrice(in, 18, out, 6, 2)
	require.NoError(t, err)
	require.Equal(t, "1500.00", price)

	_, err = ExecutionPrice(big.NewInt(0), 18, out, 6, 2)
	require.ErrorIs(t, err, ErrInvalidInput)
}
