package modes

import (
	"encoding/binary"
	"fmt"

	"github.com/ciz/cryptopals/cryptodata"
)

// CTRKeystreamBlock returns the keystream block for counter: the encryption
// of nonce || little-endian uint64(counter).
func CTRKeystreamBlock(key, nonce cryptodata.Data, counter uint64) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if nonce.Len() != NonceSize {
		return nil, NonceSizeError(nonce.Len())
	}

	ks := make(cryptodata.Data, BlockSize)
	block.Encrypt(ks, counterBlock(nonce, counter))
	return ks, nil
}

func counterBlock(nonce cryptodata.Data, counter uint64) []byte {
	in := make([]byte, BlockSize)
	copy(in, nonce)
	binary.LittleEndian.PutUint64(in[NonceSize:], counter)
	return in
}

// CTRTransform XORs data with the keystream starting at counter; the counter
// advances by one per 16-byte block.  Encryption and decryption are the same
// operation, and the output always has the length of the input.
func CTRTransform(data, key, nonce cryptodata.Data, counter uint64) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if nonce.Len() != NonceSize {
		return nil, NonceSizeError(nonce.Len())
	}

	res := make(cryptodata.Data, data.Len())
	ks := make([]byte, BlockSize)
	for i := 0; i < data.Len(); i += BlockSize {
		block.Encrypt(ks, counterBlock(nonce, counter))
		counter++

		end := i + BlockSize
		if end > data.Len() {
			end = data.Len()
		}
		for j := i; j < end; j++ {
			res[j] = data[j] ^ ks[j-i]
		}
	}

	return res, nil
}

// CTR holds the parameters of a CTR stream.
type CTR struct {
	Key     cryptodata.Data
	Nonce   cryptodata.Data
	Counter uint64
}

// Encrypt encrypts pt.  No padding is added.
func (c CTR) Encrypt(pt cryptodata.Data) (cryptodata.Data, error) {
	return CTRTransform(pt, c.Key, c.Nonce, c.Counter)
}

// Decrypt decrypts ct.
func (c CTR) Decrypt(ct cryptodata.Data) (cryptodata.Data, error) {
	return CTRTransform(ct, c.Key, c.Nonce, c.Counter)
}

// Edit returns ct re-encrypted with the plaintext at offset replaced by
// newText.  The result may be longer than ct when newText runs past its end.
func (c CTR) Edit(ct cryptodata.Data, offset int, newText cryptodata.Data) (cryptodata.Data, error) {
	if offset < 0 || offset > ct.Len() {
		return nil, fmt.Errorf("modes: edit offset %d out of range for length %d", offset, ct.Len())
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		return nil, err
	}

	head, err := pt.Cut(offset)
	if err != nil {
		return nil, err
	}
	modified := head.Cat(newText)
	if end := offset + newText.Len(); end < pt.Len() {
		tail, err := pt.Slice(end, pt.Len())
		if err != nil {
			return nil, err
		}
		modified = modified.Cat(tail)
	}

	return c.Encrypt(modified)
}
