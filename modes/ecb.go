package modes

import "github.com/ciz/cryptopals/cryptodata"

// ECBEncrypt pads the plaintext with PKCS#7 and encrypts every block
// independently under key.
func ECBEncrypt(plain, key cryptodata.Data) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	padded := plain.Pad(BlockSize)
	ct := make(cryptodata.Data, padded.Len())
	for i := 0; i < padded.Len(); i += BlockSize {
		block.Encrypt(ct[i:i+BlockSize], padded[i:i+BlockSize])
	}

	return ct, nil
}

// ECBDecrypt decrypts every block independently.  Padding is left in place;
// use PadStrip or Unpad on the result.
func ECBDecrypt(ct, key cryptodata.Data) (cryptodata.Data, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if err := checkFullBlocks(ct); err != nil {
		return nil, err
	}

	pt := make(cryptodata.Data, ct.Len())
	for i := 0; i < ct.Len(); i += BlockSize {
		block.Decrypt(pt[i:i+BlockSize], ct[i:i+BlockSize])
	}

	return pt, nil
}
