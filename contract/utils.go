// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"errors"
	"math/big"
)

// ErrOutOfGas is returned when the supplied gas does not cover an operation
var ErrOutOfGas = errors.New("out of gas")

// DeductGas checks if [suppliedGas] is sufficient against [requiredGas] and deducts [requiredGas] from [suppliedGas].
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, ErrOutOfGas
	}
	return suppliedGas - requiredGas, nil
}

// BlockTime is a fixed block context, used by environments that
// execute outside a live chain.
type BlockTime struct {
	BlockNumber *big.Int
	Time        uint64
}

func (b *BlockTime) Number() *big.Int {
	if b.BlockNumber == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.BlockNumber)
}

func (b *BlockTime) Timestamp() uint64 {
	return b.Time
}

type accessibleState struct {
	stateDB StateDB
	block   BlockContext
}

// NewAccessibleState pairs a state with the block it executes in.
func NewAccessibleState(stateDB StateDB, block BlockContext) AccessibleState {
	return &accessibleState{stateDB: stateDB, block: block}
}

func (a *accessibleState) GetStateDB() StateDB {
	return a.stateDB
}

func (a *accessibleState) GetBlockContext() BlockContext {
	return a.block
}
