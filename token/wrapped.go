// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/swaprouter/contract"
)

// Deposit converts [amount] of [account]'s native currency into the
// wrapped token at [wrapped], 1:1. The native currency is held by the
// wrapped token contract itself.
func Deposit(state contract.StateDB, wrapped, account common.Address, amount *uint256.Int) error {
	if balance := state.GetBalance(account); balance.Lt(amount) {
		return fmt.Errorf("%w: native balance of %s is %s, need %s",
			ErrInsufficientBalance, account.Hex(), balance, amount)
	}
	state.SubBalance(account, amount, tracing.BalanceChangeTransfer)
	state.AddBalance(wrapped, amount, tracing.BalanceChangeTransfer)
	if err := credit(state, wrapped, account, amount); err != nil {
		return err
	}
	state.AddLog(&ethtypes.Log{
		Address: wrapped,
		Topics:  []common.Hash{DepositTopic, addressTopic(account)},
		Data:    amountData(amount),
	})
	return nil
}

// Withdraw burns [amount] of [account]'s wrapped balance and releases the
// same amount of native currency to [account].
func Withdraw(state contract.StateDB, wrapped, account common.Address, amount *uint256.Int) error {
	if err := debit(state, wrapped, account, amount); err != nil {
		return err
	}
	if reserve := state.GetBalance(wrapped); reserve.Lt(amount) {
		return fmt.Errorf("%w: wrapped reserve %s below %s", ErrInsufficientBalance, reserve, amount)
	}
	state.SubBalance(wrapped, amount, tracing.BalanceChangeTransfer)
	state.AddBalance(account, amount, tracing.BalanceChangeTransfer)
	state.AddLog(&ethtypes.Log{
		Address: wrapped,
		Topics:  []common.Hash{WithdrawalTopic, addressTopic(account)},
		Data:    amountData(amount),
	})
	return nil
}

// TransferNative moves native currency between accounts
func TransferNative(state contract.StateDB, from, to common.Address, amount *uint256.Int) error {
	if balance := state.GetBalance(from); balance.Lt(amount) {
		return fmt.Errorf("%w: native balance of %s is %s, need %s",
			ErrInsufficientBalance, from.Hex(), balance, amount)
	}
	state.SubBalance(from, amount, tracing.BalanceChangeTransfer)
	state.AddBalance(to, amount, tracing.BalanceChangeTransfer)
	return nil
}
