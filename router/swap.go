// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/swaprouter/token"
)

// priceLimit returns the limit handed to the pool. A zero limit means no
// limit: one tick inside the bound of the swap direction.
func priceLimit(zeroForOne bool, sqrtPriceLimitX96 *big.Int) *big.Int {
	if sqrtPriceLimitX96 != nil && sqrtPriceLimitX96.Sign() != 0 {
		return sqrtPriceLimitX96
	}
	if zeroForOne {
		return new(big.Int).Add(MinSqrtRatio, big.NewInt(1))
	}
	return new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1))
}

// swapHop executes the first hop of [cb.Path] in one pool. For an exact
// input [amount] is what goes in and the hop path reads tokenIn first; for
// an exact output [amount] is what must come out and the hop path reads
// tokenOut first. It returns what the pool took and what it sent.
func (s *session) swapHop(exactInput bool, amount *big.Int, recipient Recipient, sqrtPriceLimitX96 *big.Int, cb callbackData) (amountIn, amountOut *big.Int, err error) {
	first, fee, second, _, err := DecodeFirstHop(cb.Path)
	if err != nil {
		return nil, nil, err
	}
	tokenIn, tokenOut := first, second
	if !exactInput {
		tokenIn, tokenOut = second, first
	}

	poolAddr := s.r.deriver.PoolAddress(tokenIn, tokenOut, fee)
	pool, ok := s.r.pools.Pool(poolAddr)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s/%s fee %d at %s",
			ErrPoolNotFound, tokenIn.Hex(), tokenOut.Hex(), fee, poolAddr.Hex())
	}

	data, err := encodeCallbackData(cb)
	if err != nil {
		return nil, nil, err
	}

	zeroForOne := bytes.Compare(tokenIn.Bytes(), tokenOut.Bytes()) < 0
	amountSpecified := new(big.Int).Set(amount)
	if !exactInput {
		amountSpecified.Neg(amountSpecified)
	}

	amount0, amount1, err := pool.Swap(
		s.state,
		s,
		s.resolve(recipient),
		zeroForOne,
		amountSpecified,
		priceLimit(zeroForOne, sqrtPriceLimitX96),
		data,
	)
	if err != nil {
		return nil, nil, err
	}

	if zeroForOne {
		return amount0, new(big.Int).Neg(amount1), nil
	}
	return amount1, new(big.Int).Neg(amount0), nil
}

// contractBalanceInput resolves an amountIn of zero to everything the
// router holds of [tokenIn], paid by the router itself.
func (s *session) contractBalanceInput(tokenIn common.Address, amountIn *big.Int) (*big.Int, common.Address) {
	if amountIn != nil && amountIn.Sign() != 0 {
		return amountIn, s.caller
	}
	return token.BalanceOf(s.state, tokenIn, s.this()).ToBig(), s.this()
}

func (s *session) exactInputSingle(params ExactInputSingleParams) (*big.Int, error) {
	amountIn, payer := s.contractBalanceInput(params.TokenIn, params.AmountIn)

	path, err := EncodePath([]Hop{{TokenIn: params.TokenIn, Fee: params.Fee, TokenOut: params.TokenOut}})
	if err != nil {
		return nil, err
	}
	_, amountOut, err := s.swapHop(true, amountIn, RecipientFromAddress(params.Recipient), params.SqrtPriceLimitX96,
		callbackData{Path: path, Payer: payer})
	if err != nil {
		return nil, err
	}

	if amountOut.Cmp(bigOrZero(params.AmountOutMinimum)) < 0 {
		return nil, fmt.Errorf("%w: got %s, minimum %s", ErrTooLittleReceived, amountOut, bigOrZero(params.AmountOutMinimum))
	}
	return amountOut, nil
}

func (s *session) exactInput(params ExactInputParams) (*big.Int, error) {
	tokenIn, _, _, _, err := DecodeFirstHop(params.Path)
	if err != nil {
		return nil, err
	}
	amountIn, payer := s.contractBalanceInput(tokenIn, params.AmountIn)
	recipient := RecipientFromAddress(params.Recipient)

	path := params.Path
	for hop := 0; ; hop++ {
		hasMultipleHops := HasMultipleHops(path)

		// intermediate outputs are custodied by the router
		hopRecipient := recipient
		if hasMultipleHops {
			hopRecipient = ThisContract()
		}

		_, amountOut, err := s.swapHop(true, amountIn, hopRecipient, nil,
			callbackData{Path: FirstHop(path), Payer: payer})
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", hop, err)
		}
		amountIn = amountOut

		if !hasMultipleHops {
			break
		}
		payer = s.this()
		path = SkipHop(path)
	}

	if amountIn.Cmp(bigOrZero(params.AmountOutMinimum)) < 0 {
		return nil, fmt.Errorf("%w: got %s, minimum %s", ErrTooLittleReceived, amountIn, bigOrZero(params.AmountOutMinimum))
	}
	return amountIn, nil
}

// exactOutputInternal swaps for exactly [amountOut] through the first hop
// of [cb.Path]. Remaining hops are driven from the callback.
func (s *session) exactOutputInternal(amountOut *big.Int, recipient Recipient, sqrtPriceLimitX96 *big.Int, cb callbackData) (*big.Int, error) {
	amountIn, amountOutReceived, err := s.swapHop(false, amountOut, recipient, sqrtPriceLimitX96, cb)
	if err != nil {
		return nil, err
	}
	// a price limit may legitimately stop the swap short
	if (sqrtPriceLimitX96 == nil || sqrtPriceLimitX96.Sign() == 0) && amountOutReceived.Cmp(amountOut) != 0 {
		return nil, fmt.Errorf("%w: received %s, requested %s", ErrUnexpectedOutput, amountOutReceived, amountOut)
	}
	return amountIn, nil
}

func (s *session) exactOutputSingle(params ExactOutputSingleParams) (*big.Int, error) {
	path, err := EncodePath([]Hop{{TokenIn: params.TokenOut, Fee: params.Fee, TokenOut: params.TokenIn}})
	if err != nil {
		return nil, err
	}
	amountIn, err := s.exactOutputInternal(bigOrZero(params.AmountOut), RecipientFromAddress(params.Recipient),
		params.SqrtPriceLimitX96, callbackData{Path: path, Payer: s.caller})
	if err != nil {
		return nil, err
	}

	if amountIn.Cmp(bigOrZero(params.AmountInMaximum)) > 0 {
		return nil, fmt.Errorf("%w: need %s, maximum %s", ErrTooMuchRequested, amountIn, bigOrZero(params.AmountInMaximum))
	}
	s.amountInCached = nil
	return amountIn, nil
}

func (s *session) exactOutput(params ExactOutputParams) (*big.Int, error) {
	if err := validatePath(params.Path); err != nil {
		return nil, err
	}
	s.amountInCached = nil
	defer func() { s.amountInCached = nil }()

	if _, err := s.exactOutputInternal(bigOrZero(params.AmountOut), RecipientFromAddress(params.Recipient),
		nil, callbackData{Path: params.Path, Payer: s.caller}); err != nil {
		return nil, err
	}

	amountIn := s.amountInCached
	if amountIn == nil {
		return nil, fmt.Errorf("%w: input token was never requested", ErrTooMuchRequested)
	}
	if amountIn.Cmp(bigOrZero(params.AmountInMaximum)) > 0 {
		return nil, fmt.Errorf("%w: need %s, maximum %s", ErrTooMuchRequested, amountIn, bigOrZero(params.AmountInMaximum))
	}
	return amountIn, nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
