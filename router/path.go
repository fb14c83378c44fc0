// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// Path wire format: token(20) | (fee(3) | token(20))+
const (
	addrSize   = common.AddressLength
	feeSize    = 3
	nextOffset = addrSize + feeSize    // fee and next token
	popOffset  = nextOffset + addrSize // one full hop
)

// Hop is one pool-level exchange
type Hop struct {
	TokenIn  common.Address
	Fee      uint24
	TokenOut common.Address
}

// EncodePath packs a chain of hops. Consecutive hops must share their
// endpoints.
func EncodePath(hops []Hop) ([]byte, error) {
	if len(hops) == 0 {
		return nil, fmt.Errorf("%w: no hops", ErrMalformedPath)
	}

	path := make([]byte, 0, addrSize+nextOffset*len(hops))
	path = append(path, hops[0].TokenIn.Bytes()...)
	for i, hop := range hops {
		if i > 0 && hops[i-1].TokenOut != hop.TokenIn {
			return nil, fmt.Errorf("%w: hop %d starts at %s, previous ends at %s",
				ErrMalformedPath, i, hop.TokenIn.Hex(), hops[i-1].TokenOut.Hex())
		}
		if hop.Fee > maxFee {
			return nil, fmt.Errorf("%w: fee %d does not fit 3 bytes", ErrMalformedPath, hop.Fee)
		}
		path = append(path, byte(hop.Fee>>16), byte(hop.Fee>>8), byte(hop.Fee))
		path = append(path, hop.TokenOut.Bytes()...)
	}
	return path, nil
}

// EncodeTokens packs a path from its tokens and the fee of each hop
// between them.
func EncodeTokens(tokens []common.Address, fees []uint24) ([]byte, error) {
	if len(tokens) != len(fees)+1 {
		return nil, fmt.Errorf("%w: %d tokens need %d fees, got %d",
			ErrMalformedPath, len(tokens), len(tokens)-1, len(fees))
	}
	hops := make([]Hop, len(fees))
	for i, fee := range fees {
		hops[i] = Hop{TokenIn: tokens[i], Fee: fee, TokenOut: tokens[i+1]}
	}
	return EncodePath(hops)
}

// validatePath checks the length invariant 20 + 23n, n >= 1
func validatePath(path []byte) error {
	if len(path) < popOffset || (len(path)-addrSize)%nextOffset != 0 {
		return fmt.Errorf("%w: length %d", ErrMalformedPath, len(path))
	}
	return nil
}

// DecodeFirstHop returns the first hop of [path] and the path that
// remains once that hop is skipped.
func DecodeFirstHop(path []byte) (tokenIn common.Address, fee uint24, tokenOut common.Address, rest []byte, err error) {
	if err = validatePath(path); err != nil {
		return
	}
	tokenIn = common.BytesToAddress(path[:addrSize])
	fee = uint24(path[addrSize])<<16 | uint24(path[addrSize+1])<<8 | uint24(path[addrSize+2])
	tokenOut = common.BytesToAddress(path[nextOffset:popOffset])
	rest = path[nextOffset:]
	return
}

// HasMultipleHops reports whether [path] contains two or more hops
func HasMultipleHops(path []byte) bool {
	return len(path) > popOffset
}

// NumHops returns the number of hops in [path]
func NumHops(path []byte) int {
	if len(path) < addrSize {
		return 0
	}
	return (len(path) - addrSize) / nextOffset
}

// FirstHop returns the leading hop of [path] in wire form
func FirstHop(path []byte) []byte {
	if len(path) < popOffset {
		return nil
	}
	return path[:popOffset]
}

// SkipHop drops the leading token and fee
func SkipHop(path []byte) []byte {
	if len(path) < nextOffset {
		return nil
	}
	return path[nextOffset:]
}

// DecodePath unpacks every hop of [path]
func DecodePath(path []byte) ([]Hop, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	hops := make([]Hop, 0, NumHops(path))
	for {
		tokenIn, fee, tokenOut, rest, err := DecodeFirstHop(path)
		if err != nil {
			return nil, err
		}
		hops = append(hops, Hop{TokenIn: tokenIn, Fee: fee, TokenOut: tokenOut})
		if !HasMultipleHops(path) {
			return hops, nil
		}
		path = rest
	}
}

// ReversePath returns [path] traversed from its last token to its first.
// Exact output paths are encoded this way.
func ReversePath(path []byte) ([]byte, error) {
	hops, err := DecodePath(path)
	if err != nil {
		return nil, err
	}
	reversed := make([]Hop, len(hops))
	for i, hop := range hops {
		reversed[len(hops)-1-i] = Hop{TokenIn: hop.TokenOut, Fee: hop.Fee, TokenOut: hop.TokenIn}
	}
	return EncodePath(reversed)
}
