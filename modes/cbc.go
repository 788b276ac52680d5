package modes

import "github.com/ciz/cryptopals/cryptodata"

// CBCEncrypt pads the plaintext and encrypts it in CBC mode: each plaintext
// block is XORed with the previous ciphertext block (the IV for the first
// block) before encryption.
func CBCEncrypt(plain, key, iv cryptodata.Data) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if err := checkIV(iv); err != nil {
		return nil, err
	}

	padded := plain.Pad(BlockSize)
	ct := make(cryptodata.Data, padded.Len())
	chain := iv.Bytes()
	xored := make([]byte, BlockSize)

	for i := 0; i < padded.Len(); i += BlockSize {
		xorBlock(xored, padded[i:i+BlockSize], chain)
		block.Encrypt(ct[i:i+BlockSize], xored)
		chain = ct[i : i+BlockSize]
	}

	return ct, nil
}

// CBCDecrypt decrypts CBC ciphertext.  After each block the chaining value
// becomes that block's ciphertext, not the recovered plaintext.  Padding is
// not checked or removed, so invalid padding never makes decryption fail.
func CBCDecrypt(ct, key, iv cryptodata.Data) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	if err := checkFullBlocks(ct); err != nil {
		return nil, err
	}

	pt := make(cryptodata.Data, ct.Len())
	chain := iv.Bytes()
	preXor := make([]byte, BlockSize)

	for i := 0; i < ct.Len(); i += BlockSize {
		block.Decrypt(preXor, ct[i:i+BlockSize])
		xorBlock(pt[i:i+BlockSize], preXor, chain)
		chain = ct[i : i+BlockSize]
	}

	return pt, nil
}

// CBC holds a key and IV for repeated use.
type CBC struct {
	Key, IV cryptodata.Data
}

// Encrypt pads and encrypts pt under the receiver's key and IV.
func (c CBC) Encrypt(pt cryptodata.Data) (cryptodata.Data, error) {
	return CBCEncrypt(pt, c.Key, c.IV)
}

// Decrypt decrypts ct under the receiver's key and IV without unpadding.
func (c CBC) Decrypt(ct cryptodata.Data) (cryptodata.Data, error) {
	return CBCDecrypt(ct, c.Key, c.IV)
}
