// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger persists native balances, token balances and allowances
// in a key-value database and hands out journaled transactions over them.
// A transaction is the unit of execution: every write it makes is either
// committed in one database batch or discarded.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Storage key prefixes
var (
	nativePrefix    = []byte("natv")
	tokenPrefix     = []byte("tokn")
	allowancePrefix = []byte("alwc")
)

var (
	ErrTxClosed    = errors.New("transaction already closed")
	ErrNegativeBal = errors.New("balance underflow")
)

// Ledger owns the database and serializes transactions against it.
type Ledger struct {
	mu sync.Mutex
	db database.Database
}

// New creates a ledger over [db]
func New(db database.Database) *Ledger {
	return &Ledger{db: db}
}

// Execute runs [fn] inside a fresh transaction. The transaction commits if
// [fn] returns nil and is discarded otherwise. Transactions run one at a
// time.
func (l *Ledger) Execute(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.begin()
	if err := fn(tx); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// View runs [fn] against a transaction that is always discarded.
func (l *Ledger) View(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.begin()
	defer tx.Discard()
	return fn(tx)
}

func (l *Ledger) begin() *Tx {
	return &Tx{
		db:    l.db,
		dirty: make(map[common.Hash][]byte),
	}
}

// makeStorageKey creates a storage key from prefix and identifiers
func makeStorageKey(prefix []byte, parts ...[]byte) common.Hash {
	h := blake3.New()
	h.Write(prefix)
	for _, p := range parts {
		h.Write(p)
	}
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

func nativeKey(addr common.Address) common.Hash {
	return makeStorageKey(nativePrefix, addr.Bytes())
}

func tokenKey(token, owner common.Address) common.Hash {
	return makeStorageKey(tokenPrefix, token.Bytes(), owner.Bytes())
}

func allowanceKey(token, owner, spender common.Address) common.Hash {
	return makeStorageKey(allowancePrefix, token.Bytes(), owner.Bytes(), spender.Bytes())
}

func encodeAmount(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func decodeAmount(b []byte) (*uint256.Int, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid stored amount length %d", len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}
