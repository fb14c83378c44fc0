// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// callbackData travels through the pool and back into SwapCallback
type callbackData struct {
	Path  []byte
	Payer common.Address
}

var callbackArgs = func() abi.Arguments {
	bytesType, _ := abi.NewType("bytes", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	return abi.Arguments{
		{Name: "path", Type: bytesType},
		{Name: "payer", Type: addressType},
	}
}()

func encodeCallbackData(cb callbackData) ([]byte, error) {
	return callbackArgs.Pack(cb.Path, cb.Payer)
}

func decodeCallbackData(data []byte) (callbackData, error) {
	values, err := callbackArgs.Unpack(data)
	if err != nil {
		return callbackData{}, fmt.Errorf("%w: callback data: %v", ErrInvalidInput, err)
	}
	path, ok := values[0].([]byte)
	if !ok {
		return callbackData{}, fmt.Errorf("%w: callback path", ErrInvalidInput)
	}
	payer, ok := values[1].(common.Address)
	if !ok {
		return callbackData{}, fmt.Errorf("%w: callback payer", ErrInvalidInput)
	}
	return callbackData{Path: path, Payer: payer}, nil
}

// verifyCallback checks that [caller] is the canonical pool of the pair
func (s *session) verifyCallback(caller, tokenA, tokenB common.Address, fee uint24) error {
	if expected := s.r.deriver.PoolAddress(tokenA, tokenB, fee); caller != expected {
		return fmt.Errorf("%w: caller %s, pool %s", ErrUnauthorizedCallback, caller.Hex(), expected.Hex())
	}
	return nil
}

// SwapCallback pays [pool] what it is owed for the swap described by
// [data]. For multi-hop exact output swaps the payment is itself produced
// by swapping through the next pool of the path.
func (s *session) SwapCallback(pool common.Address, amount0Delta, amount1Delta *big.Int, data []byte) error {
	cb, err := decodeCallbackData(data)
	if err != nil {
		return err
	}
	tokenIn, fee, tokenOut, _, err := DecodeFirstHop(cb.Path)
	if err != nil {
		return err
	}
	if err := s.verifyCallback(pool, tokenIn, tokenOut, fee); err != nil {
		return err
	}

	amount0Delta, amount1Delta = bigOrZero(amount0Delta), bigOrZero(amount1Delta)
	// swaps entirely within 0-liquidity regions are not supported
	if amount0Delta.Sign() <= 0 && amount1Delta.Sign() <= 0 {
		return ErrZeroDeltaSwap
	}

	var (
		isExactInput bool
		amountToPay  *big.Int
	)
	if amount0Delta.Sign() > 0 {
		isExactInput = bytes.Compare(tokenIn.Bytes(), tokenOut.Bytes()) < 0
		amountToPay = amount0Delta
	} else {
		isExactInput = bytes.Compare(tokenOut.Bytes(), tokenIn.Bytes()) < 0
		amountToPay = amount1Delta
	}

	owed := pendingPayment{payer: cb.Payer, token: tokenIn, amount: amountToPay, pool: pool}
	if isExactInput {
		return s.settle(owed)
	}

	// exact output paths are reversed, so tokenOut is what the pool takes
	if HasMultipleHops(cb.Path) {
		cb.Path = SkipHop(cb.Path)
		_, err := s.exactOutputInternal(amountToPay, ExplicitRecipient(pool), nil, cb)
		return err
	}
	owed.token = tokenOut
	s.amountInCached = new(big.Int).Set(amountToPay)
	return s.settle(owed)
}

// pendingPayment is what a pool is owed during one callback
type pendingPayment struct {
	payer  common.Address
	token  common.Address
	amount *big.Int
	pool   common.Address
}

func (s *session) settle(p pendingPayment) error {
	return s.pay(p.token, p.payer, p.pool, p.amount)
}
