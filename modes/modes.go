// Package modes implements the ECB, CBC and CTR chaining modes on top of a
// single AES-128 block primitive.  The implementations are written out block
// by block rather than delegated to crypto/cipher so that the chaining is
// visible and can be driven by the attacks in the parent package.
//
// Nothing here authenticates: corrupted ciphertext decrypts to garbage and is
// never reported as an error.
package modes // import "github.com/ciz/cryptopals/modes"

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/ciz/cryptopals/cryptodata"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = aes.BlockSize

	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// NonceSize is the CTR nonce size; the remaining 8 bytes of the counter
	// block hold the little-endian counter.
	NonceSize = BlockSize - 8
)

// ErrNotFullBlocks is returned when ciphertext for a block mode is empty or
// not a multiple of the block size.
var ErrNotFullBlocks = errors.New("modes: input is not a whole number of blocks")

// KeySizeError is returned for keys that are not KeySize bytes long.
type KeySizeError int

func (e KeySizeError) Error() string {
	return fmt.Sprintf("modes: invalid key size %d", int(e))
}

// IVSizeError is returned for initialization vectors that are not BlockSize
// bytes long.
type IVSizeError int

func (e IVSizeError) Error() string {
	return fmt.Sprintf("modes: invalid IV size %d", int(e))
}

// NonceSizeError is returned for CTR nonces that are not NonceSize bytes
// long.
type NonceSizeError int

func (e NonceSizeError) Error() string {
	return fmt.Sprintf("modes: invalid nonce size %d", int(e))
}

func newBlock(key cryptodata.Data) (cipher.Block, error) {
	if key.Len() != KeySize {
		return nil, KeySizeError(key.Len())
	}
	return aes.NewCipher(key)
}

func checkIV(iv cryptodata.Data) error {
	if iv.Len() != BlockSize {
		return IVSizeError(iv.Len())
	}
	return nil
}

func checkFullBlocks(ct cryptodata.Data) error {
	if ct.Len() == 0 || ct.Len()%BlockSize != 0 {
		return ErrNotFullBlocks
	}
	return nil
}

func xorBlock(dst, a, b []byte) {
	for i := 0; i < BlockSize; i++ {
		dst[i] = a[i] ^ b[i]
	}
}
