// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/swaprouter/contract"
)

var _ contract.StateDB = (*Tx)(nil)

// journalEntry records the value a key held before a write
type journalEntry struct {
	key     common.Hash
	prev    []byte
	present bool
}

type snapshot struct {
	journalLen int
	logsLen    int
}

// Tx is a journaled view over the ledger. Writes stay in memory until
// Commit; snapshots inside the transaction can be reverted.
type Tx struct {
	db database.Database

	dirty     map[common.Hash][]byte
	journal   []journalEntry
	snapshots []snapshot
	logs      []*ethtypes.Log

	// err holds the first database error seen; Commit reports it
	err    error
	closed bool
}

func (tx *Tx) setError(err error) {
	if tx.err == nil {
		tx.err = err
	}
}

func (tx *Tx) get(key common.Hash) *uint256.Int {
	if v, ok := tx.dirty[key]; ok {
		amount, err := decodeAmount(v)
		if err != nil {
			tx.setError(err)
			return uint256.NewInt(0)
		}
		return amount
	}

	v, err := tx.db.Get(key[:])
	if errors.Is(err, database.ErrNotFound) {
		return uint256.NewInt(0)
	}
	if err != nil {
		tx.setError(fmt.Errorf("ledger read %s: %w", key.Hex(), err))
		return uint256.NewInt(0)
	}
	amount, err := decodeAmount(v)
	if err != nil {
		tx.setError(err)
		return uint256.NewInt(0)
	}
	return amount
}

func (tx *Tx) set(key common.Hash, value *uint256.Int) {
	prev, present := tx.dirty[key]
	tx.journal = append(tx.journal, journalEntry{key: key, prev: prev, present: present})
	tx.dirty[key] = encodeAmount(value)
}

func (tx *Tx) GetBalance(addr common.Address) *uint256.Int {
	return tx.get(nativeKey(addr))
}

func (tx *Tx) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) {
	key := nativeKey(addr)
	sum, overflow := new(uint256.Int).AddOverflow(tx.get(key), amount)
	if overflow {
		tx.setError(fmt.Errorf("native balance overflow for %s", addr.Hex()))
		return
	}
	tx.set(key, sum)
}

func (tx *Tx) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) {
	key := nativeKey(addr)
	diff, underflow := new(uint256.Int).SubOverflow(tx.get(key), amount)
	if underflow {
		tx.setError(fmt.Errorf("%w: native balance of %s", ErrNegativeBal, addr.Hex()))
		return
	}
	tx.set(key, diff)
}

func (tx *Tx) GetTokenBalance(token common.Address, owner common.Address) *uint256.Int {
	return tx.get(tokenKey(token, owner))
}

func (tx *Tx) SetTokenBalance(token common.Address, owner common.Address, amount *uint256.Int) {
	tx.set(tokenKey(token, owner), amount)
}

func (tx *Tx) GetAllowance(token common.Address, owner common.Address, spender common.Address) *uint256.Int {
	return tx.get(allowanceKey(token, owner, spender))
}

func (tx *Tx) SetAllowance(token common.Address, owner common.Address, spender common.Address, amount *uint256.Int) {
	tx.set(allowanceKey(token, owner, spender), amount)
}

func (tx *Tx) AddLog(log *ethtypes.Log) {
	log.Index = uint(len(tx.logs))
	tx.logs = append(tx.logs, log)
}

func (tx *Tx) Logs() []*ethtypes.Log {
	return tx.logs
}

// Snapshot returns an identifier for the current revision of the state.
func (tx *Tx) Snapshot() int {
	tx.snapshots = append(tx.snapshots, snapshot{
		journalLen: len(tx.journal),
		logsLen:    len(tx.logs),
	})
	return len(tx.snapshots) - 1
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (tx *Tx) RevertToSnapshot(id int) {
	if id < 0 || id >= len(tx.snapshots) {
		tx.setError(fmt.Errorf("revision id %d cannot be reverted", id))
		return
	}
	snap := tx.snapshots[id]
	for i := len(tx.journal) - 1; i >= snap.journalLen; i-- {
		entry := tx.journal[i]
		if entry.present {
			tx.dirty[entry.key] = entry.prev
		} else {
			delete(tx.dirty, entry.key)
		}
	}
	tx.journal = tx.journal[:snap.journalLen]
	tx.logs = tx.logs[:snap.logsLen]
	tx.snapshots = tx.snapshots[:id]
}

// Commit writes every change in one database batch.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.closed = true
	if tx.err != nil {
		return tx.err
	}

	batch := tx.db.NewBatch()
	for key, value := range tx.dirty {
		var err error
		if new(uint256.Int).SetBytes(value).IsZero() {
			err = batch.Delete(key[:])
		} else {
			err = batch.Put(key[:], value)
		}
		if err != nil {
			return fmt.Errorf("ledger batch %s: %w", key.Hex(), err)
		}
	}
	return batch.Write()
}

// Discard drops every change made in the transaction.
func (tx *Tx) Discard() {
	tx.closed = true
	tx.dirty = nil
	tx.journal = nil
	tx.snapshots = nil
	tx.logs = nil
}

// Err returns the first internal error recorded by the transaction.
func (tx *Tx) Err() error {
	return tx.err
}
