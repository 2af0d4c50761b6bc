// Package zobrist computes position fingerprints: the XOR of one random key
// per occupied (piece, square) pair plus keys for the side to move, each
// castling right and the en-passant file.
package zobrist

import (
	"github.com/hailam/venomchess/internal/board"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed uint64 = 0x98F107A2BEEF1234

// Keys holds one generated key set. A Keys value is immutable once built
// and is shared by reference between everything that hashes positions.
type Keys struct {
	pieces    [12][64]uint64
	castling  [4]uint64 // K, Q, k, q
	enPassant [8]uint64
	side      uint64 // XOR when black to move
}

// Simple PRNG for reproducible keys
type prng struct {
	state uint64
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// NewKeys generates a key set. Equal seeds give equal key sets; a zero seed
// selects DefaultSeed.
func NewKeys(seed uint64) *Keys {
	if seed == 0 {
		seed = DefaultSeed
	}
	rng := &prng{state: seed}

	k := &Keys{}
	for p := range k.pieces {
		for sq := range k.pieces[p] {
			k.pieces[p][sq] = rng.next()
		}
	}
	for i := range k.castling {
		k.castling[i] = rng.next()
	}
	for file := range k.enPassant {
		k.enPassant[file] = rng.next()
	}
	k.side = rng.next()
	return k
}

// Piece returns the key for piece p standing on sq.
func (k *Keys) Piece(p board.Piece, sq board.Square) uint64 {
	if p >= board.NoPiece {
		return 0
	}
	return k.pieces[p][sq]
}

// Flags returns the combined key of everything in pos except the pieces.
func (k *Keys) Flags(pos board.Position) uint64 {
	var h uint64
	if pos.SideToMove == board.Black {
		h ^= k.side
	}
	for i := range k.castling {
		if pos.Castling&(1<<i) != 0 {
			h ^= k.castling[i]
		}
	}
	if pos.EnPassant != board.NoEnPassant {
		h ^= k.enPassant[pos.EnPassant]
	}
	return h
}

// Hash computes the fingerprint of pos from scratch.
func (k *Keys) Hash(pos board.Position) uint64 {
	h := k.Flags(pos)
	for sq := board.A8; sq < board.NoSquare; sq++ {
		h ^= k.Piece(pos.PieceAt(sq), sq)
	}
	return h
}

// Tracker follows a fingerprint through the removals and placements
// reported by board.Position.Transition. Call Settle afterwards to swap
// the flag keys of the old position for those of the new one.
type Tracker struct {
	keys *Keys
	Hash uint64
}

// Track starts a tracker at the fingerprint of an already hashed position.
func (k *Keys) Track(h uint64) Tracker {
	return Tracker{keys: k, Hash: h}
}

// PieceRemoved implements board.Observer.
func (t *Tracker) PieceRemoved(p board.Piece, sq board.Square) {
	t.Hash ^= t.keys.Piece(p, sq)
}

// PieceAdded implements board.Observer.
func (t *Tracker) PieceAdded(p board.Piece, sq board.Square) {
	t.Hash ^= t.keys.Piece(p, sq)
}

// Settle folds the flag changes between before and after into the hash and
// returns it.
func (t *Tracker) Settle(before, after board.Position) uint64 {
	t.Hash ^= t.keys.Flags(before) ^ t.keys.Flags(after)
	return t.Hash
}

var _ board.Observer = (*Tracker)(nil)
