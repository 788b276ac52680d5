package matasano

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockSizeNotFound is returned when the oracle's ciphertext length
	// never grows.
	ErrBlockSizeNotFound = errors.New("could not determine block size")

	// ErrNotECB is returned by attacks that need an ECB oracle.
	ErrNotECB = errors.New("oracle does not use ECB mode")

	// ErrPrefixNotFound is returned when no alignment of attacker input
	// produces two identical ciphertext blocks.
	ErrPrefixNotFound = errors.New("could not determine prefix length")

	// ErrTableCollision means two guesses produced the same ciphertext block,
	// so the byte cannot be recovered uniquely.
	ErrTableCollision = errors.New("oracle table collision")

	// ErrNoTableMatch means the observed block is not in the oracle table.
	ErrNoTableMatch = errors.New("no oracle table entry matches")

	// ErrNoValidPadding means none of the 256 trial bytes produced valid
	// padding.
	ErrNoValidPadding = errors.New("unable to produce valid padding")

	// ErrNoGuess means no byte value reproduced the ciphertext.
	ErrNoGuess = errors.New("no byte value matches")

	// ErrFlipNeedsIV is returned when a CBC bit flip targets the first
	// plaintext block, which only the IV controls.
	ErrFlipNeedsIV = errors.New("first block can only be changed through the IV")

	// ErrFlipSpansBlocks is returned when the bytes to change do not fit in
	// a single block.
	ErrFlipSpansBlocks = errors.New("flip crosses a block boundary")

	// ErrFlipMismatch is returned when the current and desired text differ
	// in length.
	ErrFlipMismatch = errors.New("current and desired text differ in length")
)

// ByteError reports which byte an attack could not resolve.  The attack is
// aborted at that point; no partial output is returned.
type ByteError struct {
	Attack string
	Block  int // block index, counted from the start of the target
	Index  int // byte offset in the target
	Err    error
}

func (e *ByteError) Error() string {
	return fmt.Sprintf("%s: cannot recover byte %d (block %d): %v", e.Attack, e.Index, e.Block, e.Err)
}

func (e *ByteError) Unwrap() error {
	return e.Err
}
