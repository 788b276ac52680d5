package matasano

import (
	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
	"github.com/ciz/cryptopals/modes"
)

// PaddingResult is the output of PaddingOracleAttack.
type PaddingResult struct {
	// Plaintext still carries its PKCS#7 padding.
	Plaintext cryptodata.Data

	// Stripped is Plaintext with the padding removed when it is valid, and
	// an unchanged copy otherwise.
	Stripped cryptodata.Data

	// Ambiguous lists the blocks whose last byte validated under more than
	// one trial.  The lowest trial was used, which may be wrong when the
	// block's real padding is longer than one byte.
	Ambiguous []int
}

// paddingOracleAttackSingleBlock recovers the plaintext of block, given the
// ciphertext block prev that precedes it (the IV for the first block).
func paddingOracleAttackSingleBlock(oracle PaddingOracle, prev, block cryptodata.Data, index int, opts *options) (pt cryptodata.Data, ambiguous bool, err error) {
	bs := modes.BlockSize
	pt = make(cryptodata.Data, bs)

	for i := 0; i < bs; i++ {
		targetIndex := bs - 1 - i
		paddingByte := byte(i + 1)

		// Keep the leading bytes of prev and re-mask the solved bytes so they
		// decrypt to the target padding value.
		tamperIv := cryptodata.New(prev)
		for j := targetIndex + 1; j < bs; j++ {
			tamperIv[j] = prev[j] ^ pt[j] ^ paddingByte
		}

		valid, _ := searchBytes(opts.workers, func(b byte) (bool, error) {
			forged := cryptodata.New(tamperIv)
			forged[targetIndex] = b
			return oracle(forged.Cat(block)), nil
		})

		count := 0
		first := -1
		for tamper, ok := range valid {
			if ok {
				if first < 0 {
					first = tamper
				}
				count++
			}
		}

		if first < 0 {
			return nil, false, &ByteError{Attack: "padding oracle", Block: index, Index: index*bs + targetIndex, Err: ErrNoValidPadding}
		}
		if i == 0 && count > 1 {
			log.Warnf("padding oracle: %d trials give valid padding for the last byte of block %d", count, index)
			ambiguous = true
		}

		pt[targetIndex] = prev[targetIndex] ^ paddingByte ^ byte(first)
	}

	return pt, ambiguous, nil
}

// PaddingOracleAttack performs the attack described at
// http://cryptopals.com/sets/3/challenges/17/.  It recovers the plaintext of
// the CBC ciphertext ct, encrypted under iv, using only an oracle that
// reports whether a ciphertext decrypts to validly padded plaintext.
//
// The oracle is called with 32 byte ciphertexts: a forged block followed by
// the target block.  Setting WithWorkers above 1 queries the oracle
// concurrently.
func PaddingOracleAttack(oracle PaddingOracle, iv, ct cryptodata.Data, opts ...Option) (*PaddingResult, error) {
	if err := iv.AssertSize(modes.BlockSize); err != nil {
		return nil, modes.IVSizeError(iv.Len())
	}
	if ct.Len() == 0 || ct.Len()%modes.BlockSize != 0 {
		return nil, modes.ErrNotFullBlocks
	}
	o := newOptions(opts)

	blocks := ct.Blocks(modes.BlockSize)
	res := &PaddingResult{Plaintext: make(cryptodata.Data, 0, ct.Len())}
	prev := iv
	for index, block := range blocks {
		ptBlock, ambiguous, err := paddingOracleAttackSingleBlock(oracle, prev, block, index, o)
		if err != nil {
			return nil, err
		}
		if ambiguous {
			res.Ambiguous = append(res.Ambiguous, index)
		}
		log.Debugf("padding oracle: recovered block %d of %d", index+1, len(blocks))

		res.Plaintext = append(res.Plaintext, ptBlock...)
		prev = block
	}

	res.Stripped = res.Plaintext.PadStrip(modes.BlockSize)
	return res, nil
}
