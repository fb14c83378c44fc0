// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// multicall executes [calls] in order against one snapshot. The first
// failure reverts everything the batch did.
func (s *session) multicall(deadline *uint64, calls [][]byte) ([][]byte, error) {
	if deadline != nil {
		if now := s.block.Timestamp(); now > *deadline {
			return nil, fmt.Errorf("%w: block time %d, deadline %d", ErrDeadlineExpired, now, *deadline)
		}
	}

	s.r.log.Debug("multicall started", "caller", s.caller, "calls", len(calls))
	snapshot := s.state.Snapshot()
	results := make([][]byte, len(calls))
	for i, call := range calls {
		ret, err := s.dispatch(call)
		if err != nil {
			s.state.RevertToSnapshot(snapshot)
			s.r.log.Warn("multicall reverted", "caller", s.caller, "index", i, "method", methodName(call), "err", err)
			return nil, fmt.Errorf("call %d (%s): %w", i, methodName(call), err)
		}
		results[i] = ret
	}
	s.r.log.Debug("multicall finished", "caller", s.caller, "calls", len(calls))
	return results, nil
}

// methodName names the method [input] calls, for error reporting
func methodName(input []byte) string {
	if len(input) < 4 {
		return "<short>"
	}
	method, err := RouterABI.MethodById(input[:4])
	if err != nil {
		return fmt.Sprintf("0x%x", input[:4])
	}
	return method.RawName
}

// deadlineFromWire maps a uint256 deadline onto block time. Values past
// uint64 never expire.
func deadlineFromWire(deadline *big.Int) *uint64 {
	if deadline == nil || !deadline.IsUint64() {
		return nil
	}
	d := deadline.Uint64()
	return &d
}

// dispatch decodes one ABI call and runs it in this session
func (s *session) dispatch(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: calldata of %d bytes", ErrInvalidInput, len(input))
	}
	method, err := RouterABI.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnknownSelector, input[:4])
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, method.RawName, err)
	}

	switch method.Sig {
	case SigExactInputSingle:
		wire := *abi.ConvertType(args[0], new(exactInputSingleArgs)).(*exactInputSingleArgs)
		params, err := wire.params()
		if err != nil {
			return nil, err
		}
		amountOut, err := s.exactInputSingle(params)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(amountOut)

	case SigExactInput:
		wire := *abi.ConvertType(args[0], new(exactInputArgs)).(*exactInputArgs)
		amountOut, err := s.exactInput(wire.params())
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(amountOut)

	case SigExactOutputSingle:
		wire := *abi.ConvertType(args[0], new(exactOutputSingleArgs)).(*exactOutputSingleArgs)
		params, err := wire.params()
		if err != nil {
			return nil, err
		}
		amountIn, err := s.exactOutputSingle(params)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(amountIn)

	case SigExactOutput:
		wire := *abi.ConvertType(args[0], new(exactOutputArgs)).(*exactOutputArgs)
		amountIn, err := s.exactOutput(wire.params())
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(amountIn)

	case SigSwapCallback:
		// the pool is whoever called in
		return nil, s.SwapCallback(s.caller, args[0].(*big.Int), args[1].(*big.Int), args[2].([]byte))

	case SigMulticallDeadline:
		results, err := s.multicall(deadlineFromWire(args[0].(*big.Int)), args[1].([][]byte))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(results)

	case SigMulticall:
		results, err := s.multicall(nil, args[0].([][]byte))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(results)

	case SigWrapNative:
		return nil, s.wrapNative(args[0].(*big.Int))

	case SigUnwrapWrappedNative:
		return nil, s.unwrapWrappedNative(args[0].(*big.Int), OriginalCaller())

	case SigUnwrapWrappedNativeTo:
		return nil, s.unwrapWrappedNative(args[0].(*big.Int), RecipientFromAddress(args[1].(common.Address)))

	case SigUnwrapWrappedNativeWithFee:
		feeBips, err := feeBipsFromWire(args[2].(*big.Int))
		if err != nil {
			return nil, err
		}
		return nil, s.unwrapWrappedNativeWithFee(args[0].(*big.Int), RecipientFromAddress(args[1].(common.Address)),
			feeBips, args[3].(common.Address))

	case SigRefundNative:
		return nil, s.refundNative()

	case SigSweepToken:
		return nil, s.sweepToken(args[0].(common.Address), args[1].(*big.Int), OriginalCaller())

	case SigSweepTokenTo:
		return nil, s.sweepToken(args[0].(common.Address), args[1].(*big.Int), RecipientFromAddress(args[2].(common.Address)))

	case SigSweepTokenWithFee:
		feeBips, err := feeBipsFromWire(args[3].(*big.Int))
		if err != nil {
			return nil, err
		}
		return nil, s.sweepTokenWithFee(args[0].(common.Address), args[1].(*big.Int),
			RecipientFromAddress(args[2].(common.Address)), feeBips, args[4].(common.Address))

	case SigPull:
		return nil, s.pull(args[0].(common.Address), args[1].(*big.Int))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSelector, method.Sig)
	}
}

func feeBipsFromWire(feeBips *big.Int) (uint64, error) {
	if feeBips == nil || !feeBips.IsUint64() {
		return 0, fmt.Errorf("%w: fee bips %v", ErrInvalidFee, feeBips)
	}
	return feeBips.Uint64(), nil
}
