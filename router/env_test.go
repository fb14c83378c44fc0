// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/swaprouter/contract"
	"github.com/luxfi/swaprouter/ledger"
	"github.com/luxfi/swaprouter/token"
)

var (
	testDeployer     = common.HexToAddress("0x00000000000000000000000000000000000de910")
	testInitCodeHash = common.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")

	alice    = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	attacker = common.HexToAddress("0x000000000000000000000000000000000000bad0")
	feeTaker = common.HexToAddress("0x000000000000000000000000000000000000fee0")

	tokenA      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB      = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenC      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	tokenD      = common.HexToAddress("0x4000000000000000000000000000000000000004")
	testWrapped = common.HexToAddress("0x5000000000000000000000000000000000000005")
)

const feeDenominator = 1_000_000

var errPoolNotPaid = errors.New("pool not paid")

// constantProductPool is an x*y=k pool that settles through the router
// callback the same way a concentrated liquidity pool does: output first,
// then the callback, then a balance check.
type constantProductPool struct {
	address        common.Address
	token0, token1 common.Address
	fee            uint24
	swaps          int
}

func (p *constantProductPool) Swap(
	state contract.StateDB,
	callee SwapCallee,
	recipient common.Address,
	zeroForOne bool,
	amountSpecified *big.Int,
	sqrtPriceLimitX96 *big.Int,
	data []byte,
) (*big.Int, *big.Int, error) {
	if amountSpecified.Sign() == 0 {
		return nil, nil, errors.New("zero swap")
	}
	tokenIn, tokenOut := p.token0, p.token1
	if !zeroForOne {
		tokenIn, tokenOut = p.token1, p.token0
	}
	reserveIn := token.BalanceOf(state, tokenIn, p.address).ToBig()
	reserveOut := token.BalanceOf(state, tokenOut, p.address).ToBig()

	var amountIn, amountOut *big.Int
	if amountSpecified.Sign() > 0 {
		amountIn = new(big.Int).Set(amountSpecified)
		amountOut = quoteOut(amountIn, reserveIn, reserveOut, p.fee)
	} else {
		amountOut = new(big.Int).Neg(amountSpecified)
		if amountOut.Cmp(reserveOut) >= 0 {
			return nil, nil, fmt.Errorf("insufficient liquidity: want %s, reserve %s", amountOut, reserveOut)
		}
		amountIn = quoteIn(amountOut, reserveIn, reserveOut, p.fee)
	}

	if amountOut.Sign() > 0 {
		out, _ := uint256.FromBig(amountOut)
		if err := token.Transfer(state, tokenOut, p.address, recipient, out); err != nil {
			return nil, nil, err
		}
	}

	amount0, amount1 := amountIn, new(big.Int).Neg(amountOut)
	if !zeroForOne {
		amount0, amount1 = new(big.Int).Neg(amountOut), amountIn
	}

	before := token.BalanceOf(state, tokenIn, p.address).ToBig()
	if err := callee.SwapCallback(p.address, amount0, amount1, data); err != nil {
		return nil, nil, err
	}
	after := token.BalanceOf(state, tokenIn, p.address).ToBig()
	if after.Cmp(new(big.Int).Add(before, amountIn)) < 0 {
		return nil, nil, errPoolNotPaid
	}
	p.swaps++
	return amount0, amount1, nil
}

func quoteOut(amountIn, reserveIn, reserveOut *big.Int, fee uint24) *big.Int {
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(feeDenominator-int64(fee)))
	num := new(big.Int).Mul(inWithFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(feeDenominator))
	den.Add(den, inWithFee)
	return num.Div(num, den)
}

func quoteIn(amountOut, reserveIn, reserveOut *big.Int, fee uint24) *big.Int {
	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, big.NewInt(feeDenominator))
	den := new(big.Int).Sub(reserveOut, amountOut)
	den.Mul(den, big.NewInt(feeDenominator-int64(fee)))
	num.Div(num, den)
	return num.Add(num, big.NewInt(1))
}

type testEnv struct {
	t       *testing.T
	ledger  *ledger.Ledger
	block   *contract.BlockTime
	pools   *PoolRegistry
	deriver Create2Deriver
	router  *Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memdb.New()
	t.Cleanup(func() { _ = db.Close() })

	pools := NewPoolRegistry()
	deriver := Create2Deriver{Deployer: testDeployer, InitCodeHash: testInitCodeHash}
	return &testEnv{
		t:       t,
		ledger:  ledger.New(db),
		block:   &contract.BlockTime{BlockNumber: big.NewInt(1), Time: 1_000},
		pools:   pools,
		deriver: deriver,
		router:  New(ContractAddress, testWrapped, deriver, pools),
	}
}

// execute runs [fn] in one ledger transaction, committed if fn succeeds
func (e *testEnv) execute(fn func(tx *ledger.Tx, state contract.AccessibleState) error) error {
	return e.ledger.Execute(func(tx *ledger.Tx) error {
		return fn(tx, contract.NewAccessibleState(tx, e.block))
	})
}

func (e *testEnv) mustExecute(fn func(tx *ledger.Tx, state contract.AccessibleState) error) {
	e.t.Helper()
	require.NoError(e.t, e.execute(fn))
}

// credit gives [to] [amount] of [tok]. Wrapped native is backed by native
// currency so it can be withdrawn.
func credit(tx *ledger.Tx, tok, to common.Address, amount uint64) error {
	v := uint256.NewInt(amount)
	if tok != testWrapped {
		return token.Mint(tx, tok, to, v)
	}
	tx.AddBalance(to, v, tracing.BalanceChangeUnspecified)
	return token.Deposit(tx, testWrapped, to, v)
}

func (e *testEnv) mint(tok, to common.Address, amount uint64) {
	e.t.Helper()
	e.mustExecute(func(tx *ledger.Tx, _ contract.AccessibleState) error {
		return credit(tx, tok, to, amount)
	})
}

func (e *testEnv) fundNative(to common.Address, amount uint64) {
	e.t.Helper()
	e.mustExecute(func(tx *ledger.Tx, _ contract.AccessibleState) error {
		tx.AddBalance(to, uint256.NewInt(amount), tracing.BalanceChangeUnspecified)
		return nil
	})
}

// approveRouter grants the router an unlimited allowance over [owner]'s [tok]
func (e *testEnv) approveRouter(tok, owner common.Address) {
	e.t.Helper()
	e.mustExecute(func(tx *ledger.Tx, _ contract.AccessibleState) error {
		token.Approve(tx, tok, owner, ContractAddress, token.MaxAllowance)
		return nil
	})
}

func (e *testEnv) addPool(tokenX, tokenY common.Address, fee uint24, reserveX, reserveY uint64) *constantProductPool {
	e.t.Helper()
	token0, token1 := SortTokens(tokenX, tokenY)
	pool := &constantProductPool{
		address: e.deriver.PoolAddress(tokenX, tokenY, fee),
		token0:  token0,
		token1:  token1,
		fee:     fee,
	}
	e.mustExecute(func(tx *ledger.Tx, _ contract.AccessibleState) error {
		if err := credit(tx, tokenX, pool.address, reserveX); err != nil {
			return err
		}
		return credit(tx, tokenY, pool.address, reserveY)
	})
	e.pools.Register(pool.address, pool)
	return pool
}

// reserves returns the pool's current balances of [tokenIn] and [tokenOut]
func (e *testEnv) reserves(pool *constantProductPool, tokenIn, tokenOut common.Address) (*big.Int, *big.Int) {
	return e.balance(tokenIn, pool.address), e.balance(tokenOut, pool.address)
}

func (e *testEnv) balance(tok, owner common.Address) *big.Int {
	e.t.Helper()
	var balance *big.Int
	require.NoError(e.t, e.ledger.View(func(tx *ledger.Tx) error {
		balance = token.BalanceOf(tx, tok, owner).ToBig()
		return nil
	}))
	return balance
}

func (e *testEnv) native(owner common.Address) *big.Int {
	e.t.Helper()
	var balance *big.Int
	require.NoError(e.t, e.ledger.View(func(tx *ledger.Tx) error {
		balance = tx.GetBalance(owner).ToBig()
		return nil
	}))
	return balance
}

// sendValue moves native currency from [from] into the router, as the
// value of a call would
func sendValue(tx *ledger.Tx, from common.Address, value uint64) error {
	return token.TransferNative(tx, from, ContractAddress, uint256.NewInt(value))
}

func mustPath(t *testing.T, tokens []common.Address, fees []uint24) []byte {
	t.Helper()
	path, err := EncodeTokens(tokens, fees)
	require.NoError(t, err)
	return path
}

func mustPack(t *testing.T) func([]byte, error) []byte {
	return func(b []byte, err error) []byte {
		t.Helper()
		require.NoError(t, err)
		return b
	}
}
