// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxSlippageBips bounds slippage tolerances to 100%
const MaxSlippageBips = bipsDenominator

var ErrInvalidSlippage = errors.New("invalid slippage tolerance")

var bips = decimal.NewFromInt(bipsDenominator)

// MinimumAmountOut returns the amountOutMinimum that tolerates
// [slippageBips] below [quote], rounded down.
func MinimumAmountOut(quote *big.Int, slippageBips uint64) (*big.Int, error) {
	if err := validateSlippage(quote, slippageBips); err != nil {
		return nil, err
	}
	factor := decimal.NewFromInt(int64(bipsDenominator - slippageBips)).Div(bips)
	return decimal.NewFromBigInt(quote, 0).Mul(factor).Floor().BigInt(), nil
}

// MaximumAmountIn returns the amountInMaximum that tolerates
// [slippageBips] above [quote], rounded up.
func MaximumAmountIn(quote *big.Int, slippageBips uint64) (*big.Int, error) {
	if err := validateSlippage(quote, slippageBips); err != nil {
		return nil, err
	}
	factor := decimal.NewFromInt(int64(bipsDenominator + slippageBips)).Div(bips)
	return decimal.NewFromBigInt(quote, 0).Mul(factor).Ceil().BigInt(), nil
}

// ExecutionPrice returns amountOut per unit of amountIn, scaled by the
// token decimals, with [places] digits after the point.
func ExecutionPrice(amountIn *big.Int, decimalsIn int32, amountOut *big.Int, decimalsOut int32, places int32) (string, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount in %v", ErrInvalidInput, amountIn)
	}
	in := decimal.NewFromBigInt(amountIn, -decimalsIn)
	out := decimal.NewFromBigInt(bigOrZero(amountOut), -decimalsOut)
	return out.DivRound(in, places).StringFixed(places), nil
}

func validateSlippage(quote *big.Int, slippageBips uint64) error {
	if quote == nil || quote.Sign() < 0 {
		return fmt.Errorf("%w: quote %v", ErrInvalidInput, quote)
	}
	if slippageBips > MaxSlippageBips {
		return fmt.Errorf("%w: %d bips, maximum %d", ErrInvalidSlippage, slippageBips, MaxSlippageBips)
	}
	return nil
}
