// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router implements the LXRouter swap router precompile: exact
// input and exact output swaps routed through one or more pools, pool
// payment callbacks, wrapped native currency handling and atomic
// multicall batches.
package router

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
)

// LP-9012 LXRouter
const LXRouterAddress = "0x0000000000000000000000000000000000009012"

// Gas costs
const (
	GasMulticallBase   uint64 = 2_000  // Batch entry
	GasSwapHop         uint64 = 10_000 // One pool swap
	GasSwapCallback    uint64 = 8_000  // Settlement of a payment demand
	GasPayment         uint64 = 5_000  // Wrap, unwrap, sweep, refund, pull
	GasNativeTransfer  uint64 = 2_100  // Native transfer
	GasPerCalldataWord uint64 = 16     // Per 32 bytes of batch calldata
)

// Pool fee tiers (hundredths of a bip)
const (
	FeeLowest uint24 = 100   // 0.01%
	FeeLow    uint24 = 500   // 0.05%
	FeeMedium uint24 = 3000  // 0.30%
	FeeHigh   uint24 = 10000 // 1.00%

	// maxFee is the largest value a 3-byte fee field can carry
	maxFee uint24 = 1<<24 - 1
)

// Fee bounds for the *WithFee payment variants
const (
	maxFeeBips      = 100 // 1%
	bipsDenominator = 10_000
)

// uint24 type alias for fees
type uint24 = uint32

var (
	MinSqrtRatio    = new(big.Int).SetUint64(4295128739)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)
)

// ExactInputSingleParams swaps an exact amount of TokenIn for as much
// TokenOut as possible through one pool. Derive AmountOutMinimum from a
// quote with MinimumAmountOut.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint24
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// ExactInputParams swaps an exact amount of the first path token for as
// much of the last path token as possible. Derive AmountOutMinimum from a
// quote with MinimumAmountOut.
type ExactInputParams struct {
	Path             []byte
	Recipient        common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// ExactOutputSingleParams swaps as little TokenIn as possible for an exact
// amount of TokenOut through one pool. Derive AmountInMaximum from a quote
// with MaximumAmountIn.
type ExactOutputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint24
	Recipient         common.Address
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

// ExactOutputParams swaps as little input as possible for an exact amount
// of output. Path is encoded output first. Derive AmountInMaximum from a
// quote with MaximumAmountIn.
type ExactOutputParams struct {
	Path            []byte
	Recipient       common.Address
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// Errors - Routing
var (
	ErrMalformedPath        = errors.New("malformed path")
	ErrUnauthorizedCallback = errors.New("unauthorized callback")
	ErrZeroDeltaSwap        = errors.New("swap callback with no payment owed")
	ErrTooLittleReceived    = errors.New("too little received")
	ErrTooMuchRequested     = errors.New("too much requested")
	ErrUnexpectedOutput     = errors.New("output amount differs from requested")
	ErrPoolNotFound         = errors.New("pool not found")
	ErrAmountOverflow       = errors.New("amount overflows uint256")
)

// Errors - Payments
var (
	ErrInsufficientPayment        = errors.New("insufficient payment")
	ErrInsufficientWrappedBalance = errors.New("insufficient wrapped native balance")
	ErrInsufficientToken          = errors.New("insufficient token")
	ErrInsufficientNative         = errors.New("insufficient native balance")
	ErrInvalidFee                 = errors.New("invalid fee")
)

// Errors - Batch
var (
	ErrDeadlineExpired = errors.New("transaction too old")
	ErrUnknownSelector = errors.New("unknown method selector")
	ErrInvalidInput    = errors.New("invalid input")
	ErrReadOnly        = errors.New("cannot write in read-only mode")
	ErrNotConfigured   = errors.New("router not configured")
)
