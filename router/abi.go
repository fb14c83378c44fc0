// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

const routerABIJSON = `[
  {"type":"function","name":"exactInputSingle","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[
     {"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},
     {"name":"fee","type":"uint24"},{"name":"recipient","type":"address"},
     {"name":"amountIn","type":"uint256"},{"name":"amountOutMinimum","type":"uint256"},
     {"name":"sqrtPriceLimitX96","type":"uint160"}]}],
   "outputs":[{"name":"amountOut","type":"uint256"}]},
  {"type":"function","name":"exactInput","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[
     {"name":"path","type":"bytes"},{"name":"recipient","type":"address"},
     {"name":"amountIn","type":"uint256"},{"name":"amountOutMinimum","type":"uint256"}]}],
   "outputs":[{"name":"amountOut","type":"uint256"}]},
  {"type":"function","name":"exactOutputSingle","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[
     {"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},
     {"name":"fee","type":"uint24"},{"name":"recipient","type":"address"},
     {"name":"amountOut","type":"uint256"},{"name":"amountInMaximum","type":"uint256"},
     {"name":"sqrtPriceLimitX96","type":"uint160"}]}],
   "outputs":[{"name":"amountIn","type":"uint256"}]},
  {"type":"function","name":"exactOutput","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[
     {"name":"path","type":"bytes"},{"name":"recipient","type":"address"},
     {"name":"amountOut","type":"uint256"},{"name":"amountInMaximum","type":"uint256"}]}],
   "outputs":[{"name":"amountIn","type":"uint256"}]},
  {"type":"function","name":"uniswapV3SwapCallback","stateMutability":"nonpayable",
   "inputs":[{"name":"amount0Delta","type":"int256"},{"name":"amount1Delta","type":"int256"},
     {"name":"data","type":"bytes"}],
   "outputs":[]},
  {"type":"function","name":"multicall","stateMutability":"payable",
   "inputs":[{"name":"deadline","type":"uint256"},{"name":"data","type":"bytes[]"}],
   "outputs":[{"name":"results","type":"bytes[]"}]},
  {"type":"function","name":"multicall","stateMutability":"payable",
   "inputs":[{"name":"data","type":"bytes[]"}],
   "outputs":[{"name":"results","type":"bytes[]"}]},
  {"type":"function","name":"wrapNative","stateMutability":"payable",
   "inputs":[{"name":"value","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"unwrapWrappedNative","stateMutability":"payable",
   "inputs":[{"name":"amountMinimum","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"unwrapWrappedNative","stateMutability":"payable",
   "inputs":[{"name":"amountMinimum","type":"uint256"},{"name":"recipient","type":"address"}],"outputs":[]},
  {"type":"function","name":"unwrapWrappedNativeWithFee","stateMutability":"payable",
   "inputs":[{"name":"amountMinimum","type":"uint256"},{"name":"recipient","type":"address"},
     {"name":"feeBips","type":"uint256"},{"name":"feeRecipient","type":"address"}],"outputs":[]},
  {"type":"function","name":"refundNative","stateMutability":"payable",
   "inputs":[],"outputs":[]},
  {"type":"function","name":"sweepToken","stateMutability":"payable",
   "inputs":[{"name":"token","type":"address"},{"name":"amountMinimum","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"sweepToken","stateMutability":"payable",
   "inputs":[{"name":"token","type":"address"},{"name":"amountMinimum","type":"uint256"},
     {"name":"recipient","type":"address"}],"outputs":[]},
  {"type":"function","name":"sweepTokenWithFee","stateMutability":"payable",
   "inputs":[{"name":"token","type":"address"},{"name":"amountMinimum","type":"uint256"},
     {"name":"recipient","type":"address"},{"name":"feeBips","type":"uint256"},
     {"name":"feeRecipient","type":"address"}],"outputs":[]},
  {"type":"function","name":"pull","stateMutability":"payable",
   "inputs":[{"name":"token","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]}
]`

// Method signatures. Overloads share a name, so dispatch keys on these.
const (
	SigExactInputSingle           = "exactInputSingle((address,address,uint24,address,uint256,uint256,uint160))"
	SigExactInput                 = "exactInput((bytes,address,uint256,uint256))"
	SigExactOutputSingle          = "exactOutputSingle((address,address,uint24,address,uint256,uint256,uint160))"
	SigExactOutput                = "exactOutput((bytes,address,uint256,uint256))"
	SigSwapCallback               = "uniswapV3SwapCallback(int256,int256,bytes)"
	SigMulticallDeadline          = "multicall(uint256,bytes[])"
	SigMulticall                  = "multicall(bytes[])"
	SigWrapNative                 = "wrapNative(uint256)"
	SigUnwrapWrappedNative        = "unwrapWrappedNative(uint256)"
	SigUnwrapWrappedNativeTo      = "unwrapWrappedNative(uint256,address)"
	SigUnwrapWrappedNativeWithFee = "unwrapWrappedNativeWithFee(uint256,address,uint256,address)"
	SigRefundNative               = "refundNative()"
	SigSweepToken                 = "sweepToken(address,uint256)"
	SigSweepTokenTo               = "sweepToken(address,uint256,address)"
	SigSweepTokenWithFee          = "sweepTokenWithFee(address,uint256,address,uint256,address)"
	SigPull                       = "pull(address,uint256)"
)

// ExtendedABI indexes an ABI by method signature as well as by name
type ExtendedABI struct {
	abi.ABI
	bySig map[string]abi.Method
}

// ParseABI parses the raw ABI JSON and returns an ExtendedABI
func ParseABI(rawABI string) ExtendedABI {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	bySig := make(map[string]abi.Method, len(parsed.Methods))
	for _, method := range parsed.Methods {
		bySig[method.Sig] = method
	}
	return ExtendedABI{ABI: parsed, bySig: bySig}
}

// MethodBySig returns the method with signature [sig]
func (e ExtendedABI) MethodBySig(sig string) (abi.Method, error) {
	method, ok := e.bySig[sig]
	if !ok {
		return abi.Method{}, fmt.Errorf("method '%s' not found", sig)
	}
	return method, nil
}

// PackCall packs a call to [sig], method ID included
func (e ExtendedABI) PackCall(sig string, args ...interface{}) ([]byte, error) {
	method, err := e.MethodBySig(sig)
	if err != nil {
		return nil, err
	}
	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, method.ID...), packed...), nil
}

// PackOutput packs the given args as the output of [sig].
// This does not include method ID.
func (e ExtendedABI) PackOutput(sig string, args ...interface{}) ([]byte, error) {
	method, err := e.MethodBySig(sig)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(args...)
}

// UnpackOutput unpacks what [sig] returned
func (e ExtendedABI) UnpackOutput(sig string, data []byte) ([]interface{}, error) {
	method, err := e.MethodBySig(sig)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Unpack(data)
}

// RouterABI is the router's calldata interface
var RouterABI = ParseABI(routerABIJSON)

// Tuple layouts as the ABI package decodes them
type exactInputSingleArgs struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactInputArgs struct {
	Path             []byte
	Recipient        common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactOutputSingleArgs struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactOutputArgs struct {
	Path            []byte
	Recipient       common.Address
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// PackExactInputSingle encodes an exactInputSingle call
func PackExactInputSingle(p ExactInputSingleParams) ([]byte, error) {
	return RouterABI.PackCall(SigExactInputSingle, exactInputSingleArgs{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		AmountIn:          bigOrZero(p.AmountIn),
		AmountOutMinimum:  bigOrZero(p.AmountOutMinimum),
		SqrtPriceLimitX96: bigOrZero(p.SqrtPriceLimitX96),
	})
}

// PackExactInput encodes an exactInput call
func PackExactInput(p ExactInputParams) ([]byte, error) {
	return RouterABI.PackCall(SigExactInput, exactInputArgs{
		Path:             p.Path,
		Recipient:        p.Recipient,
		AmountIn:         bigOrZero(p.AmountIn),
		AmountOutMinimum: bigOrZero(p.AmountOutMinimum),
	})
}

// PackExactOutputSingle encodes an exactOutputSingle call
func PackExactOutputSingle(p ExactOutputSingleParams) ([]byte, error) {
	return RouterABI.PackCall(SigExactOutputSingle, exactOutputSingleArgs{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		AmountOut:         bigOrZero(p.AmountOut),
		AmountInMaximum:   bigOrZero(p.AmountInMaximum),
		SqrtPriceLimitX96: bigOrZero(p.SqrtPriceLimitX96),
	})
}

// PackExactOutput encodes an exactOutput call
func PackExactOutput(p ExactOutputParams) ([]byte, error) {
	return RouterABI.PackCall(SigExactOutput, exactOutputArgs{
		Path:            p.Path,
		Recipient:       p.Recipient,
		AmountOut:       bigOrZero(p.AmountOut),
		AmountInMaximum: bigOrZero(p.AmountInMaximum),
	})
}

// PackMulticall encodes a batch. A nil [deadline] selects the overload
// without one.
func PackMulticall(deadline *uint64, calls [][]byte) ([]byte, error) {
	if deadline == nil {
		return RouterABI.PackCall(SigMulticall, calls)
	}
	return RouterABI.PackCall(SigMulticallDeadline, new(big.Int).SetUint64(*deadline), calls)
}

func feeFromWire(fee *big.Int) (uint24, error) {
	if fee == nil || fee.Sign() < 0 || !fee.IsUint64() || fee.Uint64() > uint64(maxFee) {
		return 0, fmt.Errorf("%w: fee %v", ErrInvalidInput, fee)
	}
	return uint24(fee.Uint64()), nil
}

func (a exactInputSingleArgs) params() (ExactInputSingleParams, error) {
	fee, err := feeFromWire(a.Fee)
	if err != nil {
		return ExactInputSingleParams{}, err
	}
	return ExactInputSingleParams{
		TokenIn:           a.TokenIn,
		TokenOut:          a.TokenOut,
		Fee:               fee,
		Recipient:         a.Recipient,
		AmountIn:          a.AmountIn,
		AmountOutMinimum:  a.AmountOutMinimum,
		SqrtPriceLimitX96: a.SqrtPriceLimitX96,
	}, nil
}

func (a exactOutputSingleArgs) params() (ExactOutputSingleParams, error) {
	fee, err := feeFromWire(a.Fee)
	if err != nil {
		return ExactOutputSingleParams{}, err
	}
	return ExactOutputSingleParams{
		TokenIn:           a.TokenIn,
		TokenOut:          a.TokenOut,
		Fee:               fee,
		Recipient:         a.Recipient,
		AmountOut:         a.AmountOut,
		AmountInMaximum:   a.AmountInMaximum,
		SqrtPriceLimitX96: a.SqrtPriceLimitX96,
	}, nil
}

func (a exactInputArgs) params() ExactInputParams {
	return ExactInputParams(a)
}

func (a exactOutputArgs) params() ExactOutputParams {
	return ExactOutputParams(a)
}
