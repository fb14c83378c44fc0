// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the execution environment seen by stateful
// precompiles: the state of the current unit of execution, the block it
// runs in, and the precompile entry point.
package contract

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"
)

// StatefulPrecompiledContract is the interface for executing a precompiled contract
type StatefulPrecompiledContract interface {
	// Run executes the precompiled contract.
	Run(
		accessibleState AccessibleState,
		caller common.Address,
		addr common.Address,
		input []byte,
		suppliedGas uint64,
		readOnly bool,
	) (ret []byte, remainingGas uint64, err error)
}

// StateDB is the state of one unit of execution.
// Native balances and token ledgers both live here so a single
// snapshot covers every asset movement of a transaction.
type StateDB interface {
	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason)
	SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason)

	// Token ledgers, keyed by token contract address
	GetTokenBalance(token common.Address, owner common.Address) *uint256.Int
	SetTokenBalance(token common.Address, owner common.Address, amount *uint256.Int)
	GetAllowance(token common.Address, owner common.Address, spender common.Address) *uint256.Int
	SetAllowance(token common.Address, owner common.Address, spender common.Address, amount *uint256.Int)

	AddLog(log *ethtypes.Log)
	Logs() []*ethtypes.Log

	Snapshot() int
	RevertToSnapshot(int)
}

// BlockContext exposes the block the current execution belongs to.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// AccessibleState is the state and block a precompile may read and mutate.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}
