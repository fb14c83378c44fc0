// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/swaprouter/token"
)

func toUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrAmountOverflow, v)
	}
	amount, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrAmountOverflow, v)
	}
	return amount, nil
}

// pay moves [value] of [tok] from [payer] to [recipient]. Wrapped native
// owed by anyone is first paid out of native currency the router holds.
func (s *session) pay(tok, payer, recipient common.Address, value *big.Int) error {
	amount, err := toUint256(value)
	if err != nil {
		return err
	}
	this := s.this()

	switch {
	case tok == s.r.wrappedNative && !s.state.GetBalance(this).Lt(amount):
		if err := token.Deposit(s.state, s.r.wrappedNative, this, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientPayment, err)
		}
		if err := token.Transfer(s.state, s.r.wrappedNative, this, recipient, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientPayment, err)
		}
	case payer == this:
		if err := token.Transfer(s.state, tok, this, recipient, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientPayment, err)
		}
	default:
		if err := token.TransferFrom(s.state, tok, this, payer, recipient, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientPayment, err)
		}
	}
	return nil
}

// wrapNative converts [value] of the router's native balance into wrapped
// native held by the router.
func (s *session) wrapNative(value *big.Int) error {
	amount, err := toUint256(value)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	if balance := s.state.GetBalance(s.this()); balance.Lt(amount) {
		return fmt.Errorf("%w: have %s, wrapping %s", ErrInsufficientNative, balance, amount)
	}
	return token.Deposit(s.state, s.r.wrappedNative, s.this(), amount)
}

// unwrapWrappedNative unwraps every wrapped native token the router holds
// and sends the native currency to [recipient].
func (s *session) unwrapWrappedNative(amountMinimum *big.Int, recipient Recipient) error {
	minimum, err := toUint256(amountMinimum)
	if err != nil {
		return err
	}
	balance := token.BalanceOf(s.state, s.r.wrappedNative, s.this())
	if balance.Lt(minimum) {
		return fmt.Errorf("%w: have %s, minimum %s", ErrInsufficientWrappedBalance, balance, minimum)
	}
	if balance.IsZero() {
		return nil
	}
	if err := token.Withdraw(s.state, s.r.wrappedNative, s.this(), balance); err != nil {
		return err
	}
	return token.TransferNative(s.state, s.this(), s.resolve(recipient), balance)
}

// unwrapWrappedNativeWithFee is unwrapWrappedNative that first skims
// [feeBips] of the balance to [feeRecipient].
func (s *session) unwrapWrappedNativeWithFee(amountMinimum *big.Int, recipient Recipient, feeBips uint64, feeRecipient common.Address) error {
	if err := validateFeeBips(feeBips); err != nil {
		return err
	}
	minimum, err := toUint256(amountMinimum)
	if err != nil {
		return err
	}
	balance := token.BalanceOf(s.state, s.r.wrappedNative, s.this())
	if balance.Lt(minimum) {
		return fmt.Errorf("%w: have %s, minimum %s", ErrInsufficientWrappedBalance, balance, minimum)
	}
	if balance.IsZero() {
		return nil
	}
	if err := token.Withdraw(s.state, s.r.wrappedNative, s.this(), balance); err != nil {
		return err
	}
	fee, rest := splitFee(balance, feeBips)
	if !fee.IsZero() {
		if err := token.TransferNative(s.state, s.this(), feeRecipient, fee); err != nil {
			return err
		}
	}
	return token.TransferNative(s.state, s.this(), s.resolve(recipient), rest)
}

// sweepToken sends every [tok] the router holds to [recipient]
func (s *session) sweepToken(tok common.Address, amountMinimum *big.Int, recipient Recipient) error {
	minimum, err := toUint256(amountMinimum)
	if err != nil {
		return err
	}
	balance := token.BalanceOf(s.state, tok, s.this())
	if balance.Lt(minimum) {
		return fmt.Errorf("%w: %s balance %s, minimum %s", ErrInsufficientToken, tok.Hex(), balance, minimum)
	}
	if balance.IsZero() {
		return nil
	}
	return token.Transfer(s.state, tok, s.this(), s.resolve(recipient), balance)
}

// sweepTokenWithFee is sweepToken that first skims [feeBips] of the
// balance to [feeRecipient].
func (s *session) sweepTokenWithFee(tok common.Address, amountMinimum *big.Int, recipient Recipient, feeBips uint64, feeRecipient common.Address) error {
	if err := validateFeeBips(feeBips); err != nil {
		return err
	}
	minimum, err := toUint256(amountMinimum)
	if err != nil {
		return err
	}
	balance := token.BalanceOf(s.state, tok, s.this())
	if balance.Lt(minimum) {
		return fmt.Errorf("%w: %s balance %s, minimum %s", ErrInsufficientToken, tok.Hex(), balance, minimum)
	}
	if balance.IsZero() {
		return nil
	}
	fee, rest := splitFee(balance, feeBips)
	if !fee.IsZero() {
		if err := token.Transfer(s.state, tok, s.this(), feeRecipient, fee); err != nil {
			return err
		}
	}
	return token.Transfer(s.state, tok, s.this(), s.resolve(recipient), rest)
}

// refundNative returns any native currency left in the router to the
// original caller.
func (s *session) refundNative() error {
	balance := s.state.GetBalance(s.this())
	if balance.IsZero() {
		return nil
	}
	return token.TransferNative(s.state, s.this(), s.caller, balance)
}

// pull moves [value] of [tok] from the caller into the router
func (s *session) pull(tok common.Address, value *big.Int) error {
	amount, err := toUint256(value)
	if err != nil {
		return err
	}
	if err := token.TransferFrom(s.state, tok, s.this(), s.caller, s.this(), amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInsufficientPayment, err)
	}
	return nil
}

func validateFeeBips(feeBips uint64) error {
	if feeBips == 0 || feeBips > maxFeeBips {
		return fmt.Errorf("%w: %d bips, want 1..%d", ErrInvalidFee, feeBips, maxFeeBips)
	}
	return nil
}

// splitFee returns the fee share of [balance] (rounded down) and the rest
func splitFee(balance *uint256.Int, feeBips uint64) (fee, rest *uint256.Int) {
	// feeBips <= maxFeeBips keeps the quotient below balance
	fee, _ = new(uint256.Int).MulDivOverflow(balance, uint256.NewInt(feeBips), uint256.NewInt(bipsDenominator))
	rest = new(uint256.Int).Sub(balance, fee)
	return fee, rest
}
