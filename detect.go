package matasano

import (
	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// DetectOracleMode returns the cipher block mode used by the oracle passed as
// an argument.  The only guessed modes are ECB and CBC.
func DetectOracleMode(encryptor EncryptionOracle) Mode {
	pt := cryptodata.Repeat('a', 256)
	return DetectMode(encryptor(pt), modes.BlockSize)
}

// DetectMode takes ciphertext as input, attempts to guess the block cipher
// mode used (ECB or CBC), and returns the appropriate mode flag.
//
// The implementation is simple: it looks for a repeated block of ciphertext. If
// it sees one, it assumes the ciphertext was encrypted under ECB.  Otherwise,
// it assumes CBC was used.  CBC therefore only means "probably CBC".
func DetectMode(ct cryptodata.Data, blockSize int) Mode {
	if ct.HasRepeatedBlock(blockSize) {
		return ECB
	}

	return CBC
}
