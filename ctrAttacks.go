package matasano

import (
	"errors"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
)

// CTREditor re-encrypts ct with the plaintext at offset replaced by newText.
// modes.CTR.Edit has this shape.
type CTREditor func(ct cryptodata.Data, offset int, newText cryptodata.Data) (cryptodata.Data, error)

// RecoverCTRByEdit performs the attack described at
// http://cryptopals.com/sets/4/challenges/25/.  Editing zeros over the whole
// message makes the editor return the keystream itself.
func RecoverCTRByEdit(edit CTREditor, ct cryptodata.Data) (cryptodata.Data, error) {
	keystream, err := edit(ct, 0, cryptodata.Zero(ct.Len()))
	if err != nil {
		return nil, err
	}
	return ct.XorExact(keystream)
}

// RecoverCTRByteGuess recovers the plaintext of ct one byte at a time: the
// guess that leaves the ciphertext byte unchanged after an edit is the
// plaintext byte.  It needs up to 256 edits per byte, so WithWorkers is worth
// setting for long messages.
func RecoverCTRByteGuess(edit CTREditor, ct cryptodata.Data, opts ...Option) (cryptodata.Data, error) {
	o := newOptions(opts)
	pt := make(cryptodata.Data, ct.Len())

	for i := range ct {
		matches, err := searchBytes(o.workers, func(b byte) (bool, error) {
			edited, err := edit(ct, i, cryptodata.FromByte(b))
			if err != nil {
				return false, err
			}
			return edited[i] == ct[i], nil
		})
		if err != nil {
			return nil, err
		}

		found := false
		for b, ok := range matches {
			if ok {
				pt[i] = byte(b)
				found = true
				break
			}
		}
		if !found {
			return nil, &ByteError{Attack: "ctr edit", Block: i / 16, Index: i, Err: ErrNoGuess}
		}
	}

	return pt, nil
}

func truncateToShortest(input []cryptodata.Data) []cryptodata.Data {
	// First, we find the length of the shortest byte array in the input.
	minLength := input[0].Len()
	for _, element := range input {
		if element.Len() < minLength {
			minLength = element.Len()
		}
	}

	// Now, we return input, but with everything truncated to the length of the
	// smallest element in the input.
	result := make([]cryptodata.Data, len(input))
	for index, element := range input {
		result[index] = element[0:minLength]
	}

	return result
}

// BreakFixedNonceCTR performs the attack described at
// http://cryptopals.com/sets/3/challenges/20/.  Every ciphertext was
// encrypted with the same key and nonce, so the same keystream byte covers
// each column.  The ciphertexts are cut to the shortest one and every column
// is solved as a single-byte XOR.  It returns the recovered keystream and
// the truncated plaintexts.
func BreakFixedNonceCTR(cts []cryptodata.Data) (cryptodata.Data, []cryptodata.Data, error) {
	if len(cts) == 0 {
		return nil, nil, errors.New("no ciphertexts")
	}
	truncated := truncateToShortest(cts)
	n := truncated[0].Len()
	log.Debugf("fixed nonce ctr: %d ciphertexts truncated to %d bytes", len(cts), n)

	keystream := make(cryptodata.Data, n)
	column := make(cryptodata.Data, len(truncated))
	for i := 0; i < n; i++ {
		for j, ct := range truncated {
			column[j] = ct[i]
		}
		keystream[i] = FindSingleCharForXor(column)
	}

	pts := make([]cryptodata.Data, len(truncated))
	for i, ct := range truncated {
		pt, err := ct.XorExact(keystream)
		if err != nil {
			return nil, nil, err
		}
		pts[i] = pt
	}

	return keystream, pts, nil
}
