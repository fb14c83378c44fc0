// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/swaprouter/contract"
	"github.com/luxfi/swaprouter/modules"
	"github.com/luxfi/swaprouter/precompileconfig"
)

var _ modules.Configurator = (*configurator)(nil)
var _ contract.StatefulPrecompiledContract = (*RouterContract)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "swapRouterConfig"

// ContractAddress is where the router precompile lives
var ContractAddress = common.HexToAddress(LXRouterAddress)

// RouterPrecompile is the singleton instance
var RouterPrecompile = &RouterContract{pools: DefaultPoolRegistry}

// Module is the precompile module (LXRouter at 0x9012)
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     RouterPrecompile,
	Configurator: &configurator{},
}

var (
	errZeroWrappedNative = errors.New("wrapped native address must be set")
	errZeroPoolDeployer  = errors.New("pool deployer address must be set")
	errZeroInitCodeHash  = errors.New("pool init code hash must be set")
)

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

func (*configurator) Configure(
	chainConfig precompileconfig.ChainConfig,
	cfg precompileconfig.Config,
	state contract.StateDB,
	blockContext contract.BlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}
	if err := config.Verify(chainConfig); err != nil {
		return err
	}
	RouterPrecompile.Configure(config)
	return nil
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade          precompileconfig.Upgrade `json:"upgrade,omitempty"`
	WrappedNative    common.Address           `json:"wrappedNative"`
	PoolDeployer     common.Address           `json:"poolDeployer"`
	PoolInitCodeHash common.Hash              `json:"poolInitCodeHash"`
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade) &&
		c.WrappedNative == other.WrappedNative &&
		c.PoolDeployer == other.PoolDeployer &&
		c.PoolInitCodeHash == other.PoolInitCodeHash
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.IsDisabled() {
		return nil
	}
	switch {
	case c.WrappedNative == (common.Address{}):
		return errZeroWrappedNative
	case c.PoolDeployer == (common.Address{}):
		return errZeroPoolDeployer
	case c.PoolInitCodeHash == (common.Hash{}):
		return errZeroInitCodeHash
	}
	return nil
}

// Deriver returns the pool address derivation the config describes
func (c *Config) Deriver() Create2Deriver {
	return Create2Deriver{Deployer: c.PoolDeployer, InitCodeHash: c.PoolInitCodeHash}
}

// RouterContract implements the router precompile
type RouterContract struct {
	pools  PoolLookup
	router atomic.Pointer[Router]
}

// NewRouterContract creates an unconfigured precompile over [pools]
func NewRouterContract(pools PoolLookup) *RouterContract {
	return &RouterContract{pools: pools}
}

// Configure installs the router described by [config], replacing any
// previous one.
func (c *RouterContract) Configure(config *Config, opts ...Option) {
	c.router.Store(New(ContractAddress, config.WrappedNative, config.Deriver(), c.pools, opts...))
}

// Router returns the configured router, nil before Configure
func (c *RouterContract) Router() *Router {
	return c.router.Load()
}

// RequiredGas returns the gas [input] costs before execution: the cost of
// every operation it runs, batched calls included, plus its calldata.
func RequiredGas(input []byte) (uint64, error) {
	gas, err := operationGas(input)
	if err != nil {
		return 0, err
	}
	return gas + uint64(len(input)+31)/32*GasPerCalldataWord, nil
}

// operationGas prices the operations [input] runs, excluding calldata
func operationGas(input []byte) (uint64, error) {
	if len(input) < 4 {
		return 0, fmt.Errorf("%w: calldata of %d bytes", ErrInvalidInput, len(input))
	}
	method, err := RouterABI.MethodById(input[:4])
	if err != nil {
		return 0, fmt.Errorf("%w: 0x%x", ErrUnknownSelector, input[:4])
	}

	switch method.Sig {
	case SigExactInputSingle, SigExactOutputSingle:
		return GasSwapHop + GasSwapCallback, nil
	case SigExactInput, SigExactOutput:
		args, err := method.Inputs.Unpack(input[4:])
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidInput, method.RawName, err)
		}
		var path []byte
		if method.Sig == SigExactInput {
			path = abi.ConvertType(args[0], new(exactInputArgs)).(*exactInputArgs).Path
		} else {
			path = abi.ConvertType(args[0], new(exactOutputArgs)).(*exactOutputArgs).Path
		}
		hops := uint64(max(NumHops(path), 1))
		return hops * (GasSwapHop + GasSwapCallback), nil
	case SigSwapCallback:
		return GasSwapCallback, nil
	case SigMulticall, SigMulticallDeadline:
		args, err := method.Inputs.Unpack(input[4:])
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidInput, method.RawName, err)
		}
		gas := GasMulticallBase
		for i, call := range args[len(args)-1].([][]byte) {
			callGas, err := operationGas(call)
			if err != nil {
				return 0, fmt.Errorf("call %d: %w", i, err)
			}
			gas += callGas
		}
		return gas, nil
	case SigUnwrapWrappedNative, SigUnwrapWrappedNativeTo, SigUnwrapWrappedNativeWithFee, SigRefundNative:
		return GasPayment + GasNativeTransfer, nil
	default:
		return GasPayment, nil
	}
}

// Run executes the precompile
func (c *RouterContract) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) (ret []byte, remainingGas uint64, err error) {
	requiredGas, err := RequiredGas(input)
	if err != nil {
		return nil, suppliedGas, err
	}
	remainingGas, err = contract.DeductGas(suppliedGas, requiredGas)
	if err != nil {
		return nil, 0, err
	}
	// every router method moves funds
	if readOnly {
		return nil, remainingGas, ErrReadOnly
	}
	router := c.Router()
	if router == nil {
		return nil, remainingGas, ErrNotConfigured
	}

	ret, err = router.Call(accessibleState, caller, input)
	if err != nil {
		return nil, remainingGas, err
	}
	return ret, remainingGas, nil
}
