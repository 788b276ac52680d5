package matasano

import (
	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
)

// maxBlockSize bounds the block size search; PKCS#7 cannot describe larger
// blocks anyway.
const maxBlockSize = 255

// DiscoverBlockSize returns the block size of the
// encryption oracle passed as input.  It does this by passing increasingly
// longer plaintexts to the oracle, and observes when the length of the
// resulting ciphertext increases.
func DiscoverBlockSize(encryptor EncryptionOracle) (int, error) {
	baseSize := encryptor(cryptodata.Data{}).Len()

	for i := 1; i <= maxBlockSize; i++ {
		size := encryptor(cryptodata.Zero(i)).Len()
		if size > baseSize {
			return size - baseSize, nil
		}
	}

	return 0, ErrBlockSizeNotFound
}

// DetectPrefixLength returns the number of bytes an ECB oracle puts in front
// of the attacker's input.  It feeds 2*blockSize+i copies of a filler byte
// for growing i until two adjacent ciphertext blocks are equal; at that
// point the input starts i bytes before a block boundary.
//
// A prefix that ends in filler bytes, or a secret that starts with them, can
// produce a match at the wrong offset.  The search therefore runs with two
// fillers and only accepts a pair found at the same place by both.  The pair
// must also differ between the two fillers, otherwise it is a repeated block
// of the prefix itself.
func DetectPrefixLength(encryptor EncryptionOracle, blockSize int) (int, error) {
	for i := 0; i < blockSize; i++ {
		a := encryptor(cryptodata.Repeat('A', 2*blockSize+i)).Blocks(blockSize)
		b := encryptor(cryptodata.Repeat('B', 2*blockSize+i)).Blocks(blockSize)

		for j := 0; j+1 < len(a) && j+1 < len(b); j++ {
			if a[j].Equal(a[j+1]) && b[j].Equal(b[j+1]) && !a[j].Equal(b[j]) {
				return j*blockSize - i, nil
			}
		}
	}
	return 0, ErrPrefixNotFound
}

// DetectSecretLength returns the length of the data an ECB oracle appends to
// the attacker's input, given the block size and the prefix length.
func DetectSecretLength(encryptor EncryptionOracle, blockSize, prefixLength int) (int, error) {
	align := alignment(prefixLength, blockSize)
	base := encryptor(cryptodata.Repeat('A', align)).Len()

	// The ciphertext grows by a whole block once prefix, input and secret
	// fill the last block exactly.
	for n := 1; n <= blockSize; n++ {
		if encryptor(cryptodata.Repeat('A', align+n)).Len() > base {
			return base - prefixLength - align - n, nil
		}
	}

	return 0, ErrBlockSizeNotFound
}

// alignment returns how many bytes complete the block a prefix of length
// prefixLength ends in.
func alignment(prefixLength, blockSize int) int {
	return (blockSize - prefixLength%blockSize) % blockSize
}

// ecbBreaker contains the state for attacking a byte-at-a-time ECB oracle.
type ecbBreaker struct {
	oracle    EncryptionOracle
	opts      *options
	blockSize int
	prefixLen int
	secretLen int
}

// detectParams detects the block size, checks for ECB and finds the prefix
// and secret lengths.
func (x *ecbBreaker) detectParams() error {
	var err error
	if x.blockSize, err = DiscoverBlockSize(x.oracle); err != nil {
		return err
	}

	// Three blocks of filler guarantee two aligned identical blocks whatever
	// the prefix length is.
	probe := cryptodata.Repeat(x.opts.filler, 3*x.blockSize)
	if DetectMode(x.oracle(probe), x.blockSize) != ECB {
		return ErrNotECB
	}

	if x.opts.hasPrefix {
		x.prefixLen = x.opts.prefixLen
	} else if x.prefixLen, err = DetectPrefixLength(x.oracle, x.blockSize); err != nil {
		return err
	}

	if x.secretLen, err = DetectSecretLength(x.oracle, x.blockSize, x.prefixLen); err != nil {
		return err
	}

	log.Debugf("ecb oracle: block size %d, prefix %d bytes, secret %d bytes", x.blockSize, x.prefixLen, x.secretLen)
	return nil
}

// getDictionaryForNextByte builds the table mapping the encryption of
// align || window || b to b for every byte b.  window is the blockSize-1
// bytes that precede the unknown byte in its block.
func (x *ecbBreaker) getDictionaryForNextByte(window cryptodata.Data, index int) (map[string]byte, error) {
	align := cryptodata.Repeat(x.opts.filler, alignment(x.prefixLen, x.blockSize))
	target := (x.prefixLen + align.Len()) / x.blockSize

	blocks, err := searchBytes(x.opts.workers, func(b byte) (cryptodata.Data, error) {
		ct := x.oracle(align.Cat(window, cryptodata.FromByte(b)))
		return ct.Block(target, x.blockSize)
	})
	if err != nil {
		return nil, err
	}

	dict := make(map[string]byte, 256)
	for i, block := range blocks {
		if prev, ok := dict[string(block)]; ok {
			log.Warnf("ecb oracle: bytes %d and %d encrypt to the same block", prev, i)
			return nil, &ByteError{Attack: "ecb byte-at-a-time", Block: index / x.blockSize, Index: index, Err: ErrTableCollision}
		}
		dict[string(block)] = byte(i)
	}

	return dict, nil
}

// nextByte returns secret byte number len(known).
func (x *ecbBreaker) nextByte(known cryptodata.Data) (byte, error) {
	index := known.Len()
	align := cryptodata.Repeat(x.opts.filler, alignment(x.prefixLen, x.blockSize))

	// Shift the secret so its next byte is the last one of a block.
	padding := cryptodata.Repeat(x.opts.filler, x.blockSize-1-index%x.blockSize)
	window := padding.Cat(known)
	window = window[window.Len()-(x.blockSize-1):]

	dict, err := x.getDictionaryForNextByte(window, index)
	if err != nil {
		return 0, err
	}

	ct := x.oracle(align.Cat(padding))
	targetBlock := (x.prefixLen+align.Len())/x.blockSize + index/x.blockSize
	block, err := ct.Block(targetBlock, x.blockSize)
	if err != nil {
		return 0, &ByteError{Attack: "ecb byte-at-a-time", Block: index / x.blockSize, Index: index, Err: err}
	}

	b, ok := dict[string(block)]
	if !ok {
		return 0, &ByteError{Attack: "ecb byte-at-a-time", Block: index / x.blockSize, Index: index, Err: ErrNoTableMatch}
	}
	return b, nil
}

// breakOracle recovers the secret one byte at a time.
func (x *ecbBreaker) breakOracle() (cryptodata.Data, error) {
	known := make(cryptodata.Data, 0, x.secretLen)
	for known.Len() < x.secretLen {
		b, err := x.nextByte(known)
		if err != nil {
			return nil, err
		}
		known = append(known, b)

		if known.Len()%x.blockSize == 0 && log.Enabled(log.LevelDebug) {
			block := known[known.Len()-x.blockSize:]
			log.Debugf("ecb oracle: recovered block %d: %q", known.Len()/x.blockSize-1, block.Text())
		}
	}
	return known, nil
}

// ECBByteAtATime recovers the secret an ECB encryption oracle appends to the
// attacker's input, as in http://cryptopals.com/sets/2/challenges/12 and
// http://cryptopals.com/sets/2/challenges/14.  The oracle must use a fixed
// key for the whole attack and may put a fixed prefix in front of the input;
// its length is detected unless WithPrefixLength is given.
func ECBByteAtATime(encryptor EncryptionOracle, opts ...Option) (cryptodata.Data, error) {
	x := &ecbBreaker{oracle: encryptor, opts: newOptions(opts)}
	if err := x.detectParams(); err != nil {
		return nil, err
	}
	return x.breakOracle()
}
