// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/luxfi/log/level"

	"github.com/luxfi/swaprouter/contract"
)

// Router routes swaps through pools and settles their payment demands.
// A Router holds no per-call state; every entry point runs in its own
// session so one Router can serve concurrent executions over distinct
// states.
type Router struct {
	address       common.Address
	wrappedNative common.Address
	deriver       PoolAddressDeriver
	pools         PoolLookup
	log           log.Logger
}

// Option configures a Router
type Option func(*Router)

// WithLogger replaces the default logger
func WithLogger(logger log.Logger) Option {
	return func(r *Router) {
		r.log = logger
	}
}

// New creates a router deployed at [address]
func New(address, wrappedNative common.Address, deriver PoolAddressDeriver, pools PoolLookup, opts ...Option) *Router {
	r := &Router{
		address:       address,
		wrappedNative: wrappedNative,
		deriver:       deriver,
		pools:         pools,
		log:           log.NewTestLogger(level.Info),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Address returns the router's own address
func (r *Router) Address() common.Address {
	return r.address
}

// WrappedNative returns the wrapped native token the router pays with
func (r *Router) WrappedNative() common.Address {
	return r.wrappedNative
}

// session is the mutable context of one router invocation: the state it
// runs against, the original caller and the exact output bookkeeping.
type session struct {
	r      *Router
	state  contract.StateDB
	block  contract.BlockContext
	caller common.Address

	// amountInCached carries the input of a multi-hop exact output swap out
	// of the innermost callback. nil outside such a swap.
	amountInCached *big.Int
}

func (r *Router) newSession(accessibleState contract.AccessibleState, caller common.Address) *session {
	return &session{
		r:      r,
		state:  accessibleState.GetStateDB(),
		block:  accessibleState.GetBlockContext(),
		caller: caller,
	}
}

// atomic runs [fn] in a fresh session and reverts every state change it
// made when it fails.
func (r *Router) atomic(accessibleState contract.AccessibleState, caller common.Address, fn func(s *session) error) error {
	s := r.newSession(accessibleState, caller)
	snapshot := s.state.Snapshot()
	if err := fn(s); err != nil {
		s.state.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}

// ExactInputSingle swaps an exact input through one pool
func (r *Router) ExactInputSingle(accessibleState contract.AccessibleState, caller common.Address, params ExactInputSingleParams) (*big.Int, error) {
	var amountOut *big.Int
	err := r.atomic(accessibleState, caller, func(s *session) (err error) {
		amountOut, err = s.exactInputSingle(params)
		return err
	})
	return amountOut, err
}

// ExactInput swaps an exact input along a multi-hop path
func (r *Router) ExactInput(accessibleState contract.AccessibleState, caller common.Address, params ExactInputParams) (*big.Int, error) {
	var amountOut *big.Int
	err := r.atomic(accessibleState, caller, func(s *session) (err error) {
		amountOut, err = s.exactInput(params)
		return err
	})
	return amountOut, err
}

// ExactOutputSingle swaps for an exact output through one pool
func (r *Router) ExactOutputSingle(accessibleState contract.AccessibleState, caller common.Address, params ExactOutputSingleParams) (*big.Int, error) {
	var amountIn *big.Int
	err := r.atomic(accessibleState, caller, func(s *session) (err error) {
		amountIn, err = s.exactOutputSingle(params)
		return err
	})
	return amountIn, err
}

// ExactOutput swaps for an exact output along a multi-hop path
func (r *Router) ExactOutput(accessibleState contract.AccessibleState, caller common.Address, params ExactOutputParams) (*big.Int, error) {
	var amountIn *big.Int
	err := r.atomic(accessibleState, caller, func(s *session) (err error) {
		amountIn, err = s.exactOutput(params)
		return err
	})
	return amountIn, err
}

// SwapCallback settles a payment demand made by [pool] outside of a swap
// this router initiated. The pool is still authenticated against the
// callback data, so only the canonical pool of the encoded pair can
// collect.
func (r *Router) SwapCallback(accessibleState contract.AccessibleState, pool common.Address, amount0Delta, amount1Delta *big.Int, data []byte) error {
	return r.atomic(accessibleState, pool, func(s *session) error {
		return s.SwapCallback(pool, amount0Delta, amount1Delta, data)
	})
}

// Multicall executes ABI encoded router calls in order, all or nothing.
// A non-nil [deadline] fails the batch once the block time is past it.
func (r *Router) Multicall(accessibleState contract.AccessibleState, caller common.Address, deadline *uint64, calls [][]byte) ([][]byte, error) {
	s := r.newSession(accessibleState, caller)
	return s.multicall(deadline, calls)
}

// Call decodes and executes one ABI encoded router call
func (r *Router) Call(accessibleState contract.AccessibleState, caller common.Address, input []byte) ([]byte, error) {
	var ret []byte
	err := r.atomic(accessibleState, caller, func(s *session) (err error) {
		ret, err = s.dispatch(input)
		return err
	})
	return ret, err
}

// WrapNative wraps [value] of the router's native balance
func (r *Router) WrapNative(accessibleState contract.AccessibleState, caller common.Address, value *big.Int) error {
	return r.atomic(accessibleState, caller, func(s *session) error {
		return s.wrapNative(value)
	})
}

// UnwrapWrappedNative unwraps the router's whole wrapped balance to [recipient]
func (r *Router) UnwrapWrappedNative(accessibleState contract.AccessibleState, caller common.Address, amountMinimum *big.Int, recipient Recipient) error {
	return r.atomic(accessibleState, caller, func(s *session) error {
		return s.unwrapWrappedNative(amountMinimum, recipient)
	})
}

// SweepToken sends the router's whole [token] balance to [recipient]
func (r *Router) SweepToken(accessibleState contract.AccessibleState, caller common.Address, token common.Address, amountMinimum *big.Int, recipient Recipient) error {
	return r.atomic(accessibleState, caller, func(s *session) error {
		return s.sweepToken(token, amountMinimum, recipient)
	})
}

// RefundNative returns the router's native balance to [caller]
func (r *Router) RefundNative(accessibleState contract.AccessibleState, caller common.Address) error {
	return r.atomic(accessibleState, caller, func(s *session) error {
		return s.refundNative()
	})
}

// Pull moves [value] of [token] from [caller] into the router
func (r *Router) Pull(accessibleState contract.AccessibleState, caller common.Address, token common.Address, value *big.Int) error {
	return r.atomic(accessibleState, caller, func(s *session) error {
		return s.pull(token, value)
	})
}

func (s *session) this() common.Address {
	return s.r.address
}

func (s *session) resolve(recipient Recipient) common.Address {
	return recipient.Resolve(s.r.address, s.caller)
}
