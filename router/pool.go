// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"bytes"
	"math/big"
	"sync"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/swaprouter/contract"
)

// SwapCallee settles the amounts a pool demands during a swap. Positive
// deltas are owed to the pool, negative deltas were sent by it.
type SwapCallee interface {
	SwapCallback(pool common.Address, amount0Delta, amount1Delta *big.Int, data []byte) error
}

// Pool is a concentrated liquidity pool as the router drives it.
// A positive [amountSpecified] is an exact input, a negative one an exact
// output. The pool sends its output to [recipient], then calls back
// [callee] with [data] and verifies it was paid before returning.
type Pool interface {
	Swap(
		state contract.StateDB,
		callee SwapCallee,
		recipient common.Address,
		zeroForOne bool,
		amountSpecified *big.Int,
		sqrtPriceLimitX96 *big.Int,
		data []byte,
	) (amount0, amount1 *big.Int, err error)
}

// PoolLookup finds the pool deployed at an address
type PoolLookup interface {
	Pool(addr common.Address) (Pool, bool)
}

// PoolAddressDeriver computes the canonical address of the pool for a token
// pair and fee tier. The token order must not matter.
type PoolAddressDeriver interface {
	PoolAddress(tokenA, tokenB common.Address, fee uint24) common.Address
}

// SortTokens returns the pair in pool order (token0 < token1)
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) > 0 {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

// Create2Deriver derives pool addresses the way the pool deployer creates
// them: keccak256(0xff | deployer | keccak256(token0, token1, fee) | initCodeHash)
type Create2Deriver struct {
	Deployer     common.Address
	InitCodeHash common.Hash
}

func (d Create2Deriver) PoolAddress(tokenA, tokenB common.Address, fee uint24) common.Address {
	token0, token1 := SortTokens(tokenA, tokenB)

	// abi.encode(address, address, uint24): three 32-byte words
	var key [96]byte
	copy(key[12:32], token0.Bytes())
	copy(key[44:64], token1.Bytes())
	new(big.Int).SetUint64(uint64(fee)).FillBytes(key[64:96])
	salt := crypto.Keccak256(key[:])

	return common.BytesToAddress(crypto.Keccak256(
		[]byte{0xff},
		d.Deployer.Bytes(),
		salt,
		d.InitCodeHash.Bytes(),
	)[12:])
}

// PoolRegistry is an in-process PoolLookup. Pool precompiles register
// themselves here at their derived addresses.
type PoolRegistry struct {
	mu    sync.RWMutex
	pools map[common.Address]Pool
}

func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{pools: make(map[common.Address]Pool)}
}

// Register binds [pool] to [addr], replacing any previous binding
func (r *PoolRegistry) Register(addr common.Address, pool Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[addr] = pool
}

// Unregister removes the pool bound to [addr]
func (r *PoolRegistry) Unregister(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pools, addr)
}

func (r *PoolRegistry) Pool(addr common.Address) (Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[addr]
	return pool, ok
}

// Len returns the number of registered pools
func (r *PoolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// DefaultPoolRegistry backs the router precompile
var DefaultPoolRegistry = NewPoolRegistry()
