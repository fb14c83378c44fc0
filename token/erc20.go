// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements fungible token ledgers and the wrapped native
// currency on top of contract.StateDB.
package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/swaprouter/contract"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrBalanceOverflow       = errors.New("balance overflow")
)

// Event topics
var (
	TransferTopic   = common.BytesToHash(crypto.Keccak256([]byte("Transfer(address,address,uint256)")))
	ApprovalTopic   = common.BytesToHash(crypto.Keccak256([]byte("Approval(address,address,uint256)")))
	DepositTopic    = common.BytesToHash(crypto.Keccak256([]byte("Deposit(address,uint256)")))
	WithdrawalTopic = common.BytesToHash(crypto.Keccak256([]byte("Withdrawal(address,uint256)")))
)

// MaxAllowance is an unlimited approval; it is never decremented.
var MaxAllowance = new(uint256.Int).SetAllOne()

// BalanceOf returns the token balance of [owner]
func BalanceOf(state contract.StateDB, token, owner common.Address) *uint256.Int {
	return state.GetTokenBalance(token, owner)
}

// Allowance returns how much [spender] may pull from [owner]
func Allowance(state contract.StateDB, token, owner, spender common.Address) *uint256.Int {
	return state.GetAllowance(token, owner, spender)
}

// Mint credits [amount] to [to] out of thin air
func Mint(state contract.StateDB, token, to common.Address, amount *uint256.Int) error {
	if err := credit(state, token, to, amount); err != nil {
		return err
	}
	emitTransfer(state, token, common.Address{}, to, amount)
	return nil
}

// Burn destroys [amount] held by [from]
func Burn(state contract.StateDB, token, from common.Address, amount *uint256.Int) error {
	if err := debit(state, token, from, amount); err != nil {
		return err
	}
	emitTransfer(state, token, from, common.Address{}, amount)
	return nil
}

// Transfer moves [amount] from [from] to [to]
func Transfer(state contract.StateDB, token, from, to common.Address, amount *uint256.Int) error {
	if err := debit(state, token, from, amount); err != nil {
		return err
	}
	if err := credit(state, token, to, amount); err != nil {
		return err
	}
	emitTransfer(state, token, from, to, amount)
	return nil
}

// TransferFrom moves [amount] from [from] to [to] on behalf of [spender],
// consuming allowance unless it is unlimited.
func TransferFrom(state contract.StateDB, token, spender, from, to common.Address, amount *uint256.Int) error {
	allowance := state.GetAllowance(token, from, spender)
	if allowance.Lt(amount) {
		return fmt.Errorf("%w: token=%s owner=%s spender=%s allowance=%s amount=%s",
			ErrInsufficientAllowance, token.Hex(), from.Hex(), spender.Hex(), allowance, amount)
	}
	if err := Transfer(state, token, from, to, amount); err != nil {
		return err
	}
	if !allowance.Eq(MaxAllowance) {
		state.SetAllowance(token, from, spender, new(uint256.Int).Sub(allowance, amount))
	}
	return nil
}

// Approve sets the allowance of [spender] over [owner]'s balance
func Approve(state contract.StateDB, token, owner, spender common.Address, amount *uint256.Int) {
	state.SetAllowance(token, owner, spender, amount)
	state.AddLog(&ethtypes.Log{
		Address: token,
		Topics:  []common.Hash{ApprovalTopic, addressTopic(owner), addressTopic(spender)},
		Data:    amountData(amount),
	})
}

func debit(state contract.StateDB, token, from common.Address, amount *uint256.Int) error {
	balance := state.GetTokenBalance(token, from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: token=%s owner=%s balance=%s amount=%s",
			ErrInsufficientBalance, token.Hex(), from.Hex(), balance, amount)
	}
	state.SetTokenBalance(token, from, new(uint256.Int).Sub(balance, amount))
	return nil
}

func credit(state contract.StateDB, token, to common.Address, amount *uint256.Int) error {
	sum, overflow := new(uint256.Int).AddOverflow(state.GetTokenBalance(token, to), amount)
	if overflow {
		return fmt.Errorf("%w: token=%s owner=%s", ErrBalanceOverflow, token.Hex(), to.Hex())
	}
	state.SetTokenBalance(token, to, sum)
	return nil
}

func emitTransfer(state contract.StateDB, token, from, to common.Address, amount *uint256.Int) {
	state.AddLog(&ethtypes.Log{
		Address: token,
		Topics:  []common.Hash{TransferTopic, addressTopic(from), addressTopic(to)},
		Data:    amountData(amount),
	})
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func amountData(amount *uint256.Int) []byte {
	b := amount.Bytes32()
	return b[:]
}

// TopicAddress recovers the address carried in an indexed log topic
func TopicAddress(topic common.Hash) common.Address {
	return common.BytesToAddress(topic.Bytes())
}
