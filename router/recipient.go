// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// Sentinel recipient addresses accepted on the wire
var (
	MsgSender   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	AddressThis = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

// RecipientKind tags how a recipient is resolved
type RecipientKind uint8

const (
	RecipientExplicit RecipientKind = iota
	RecipientOriginalCaller
	RecipientThisContract
)

// Recipient is a destination that may be a placeholder. It must be
// resolved where funds are dispatched, never earlier.
type Recipient struct {
	Kind    RecipientKind
	Address common.Address // only for RecipientExplicit
}

func ThisContract() Recipient {
	return Recipient{Kind: RecipientThisContract}
}

func OriginalCaller() Recipient {
	return Recipient{Kind: RecipientOriginalCaller}
}

func ExplicitRecipient(addr common.Address) Recipient {
	return Recipient{Kind: RecipientExplicit, Address: addr}
}

// RecipientFromAddress interprets a wire address, mapping the sentinels
func RecipientFromAddress(addr common.Address) Recipient {
	switch addr {
	case MsgSender:
		return OriginalCaller()
	case AddressThis:
		return ThisContract()
	default:
		return ExplicitRecipient(addr)
	}
}

// Resolve returns the concrete destination
func (r Recipient) Resolve(this, caller common.Address) common.Address {
	switch r.Kind {
	case RecipientThisContract:
		return this
	case RecipientOriginalCaller:
		return caller
	default:
		return r.Address
	}
}

func (r Recipient) String() string {
	switch r.Kind {
	case RecipientThisContract:
		return "this"
	case RecipientOriginalCaller:
		return "caller"
	default:
		return fmt.Sprintf("address(%s)", r.Address.Hex())
	}
}
