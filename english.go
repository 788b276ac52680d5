package matasano

import (
	"math"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
)

// copied from http://en.wikipedia.org/wiki/Letter_frequency on 3/11/2014,
// with a share for the space character
var expectedFreqs = map[rune]float64{
	' ': 0.13000,
	'a': 0.08167,
	'b': 0.01492,
	'c': 0.02782,
	'd': 0.04253,
	'e': 0.12702,
	'f': 0.02228,
	'g': 0.02015,
	'h': 0.06094,
	'i': 0.06966,
	'j': 0.00153,
	'k': 0.00772,
	'l': 0.04025,
	'm': 0.02406,
	'n': 0.06749,
	'o': 0.07507,
	'p': 0.01929,
	'q': 0.00095,
	'r': 0.05987,
	's': 0.06327,
	't': 0.09056,
	'u': 0.02758,
	'v': 0.00978,
	'w': 0.02360,
	'x': 0.00150,
	'y': 0.01974,
	'z': 0.00074,
}

// unprintablePenalty weighs bytes that never show up in text.
const unprintablePenalty = 5.0

// RuneFrequencies takes a byte array as input, and returns a map of runes to
// floats.  The keys in the map are all of the runes that appeared in the byte
// array, and the value for a rune is the relative frequency of that rune in
// the byte array.  Upper case ASCII letters are counted as lower case.
func RuneFrequencies(b cryptodata.Data) map[rune]float64 {
	counts := make(map[rune]int)
	for i := 0; i < len(b); i++ {
		ch := b[i]
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		counts[rune(ch)]++
	}

	freqs := make(map[rune]float64)
	for ch := range counts {
		freqs[ch] = float64(counts[ch]) / float64(len(b))
	}

	return freqs
}

func printable(ch rune) bool {
	return ch == '\n' || (ch >= 0x20 && ch < 0x7f)
}

// EnglishScore rates how far b is from English text.  Lower score means more
// likely to be English.
func EnglishScore(b cryptodata.Data) float64 {
	score := float64(0)
	freqs := RuneFrequencies(b)

	for ch := range freqs {
		switch expectedFreq, ok := expectedFreqs[ch]; {
		case ok:
			score += math.Pow(freqs[ch]-expectedFreq, 2.0)
		case printable(ch):
			score += freqs[ch]
		default:
			score += unprintablePenalty * freqs[ch]
		}
	}

	return score
}

// FindSingleCharForXor returns the byte that, XORed with every byte of b,
// gives the most English-looking result.
func FindSingleCharForXor(b cryptodata.Data) byte {
	bestScore := float64(-1)
	var bestChar byte

	for ch := 0; ch <= 255; ch++ {
		xored, _ := b.Xor(cryptodata.FromByte(byte(ch)))
		currentScore := EnglishScore(xored)
		if currentScore < bestScore || bestScore < 0 {
			bestScore = currentScore
			bestChar = byte(ch)
		}
	}

	return bestChar
}

// DetectSingleCharXor returns the index of the candidate that most looks like
// English text XORed with a single byte, along with that byte.  The index is
// -1 when every candidate is empty.
func DetectSingleCharXor(candidates []cryptodata.Data) (int, byte) {
	bestScore := float64(-1)
	bestIndex := -1
	var bestChar byte

	for i, c := range candidates {
		if c.Len() == 0 {
			continue
		}

		ch := FindSingleCharForXor(c)
		xored, _ := c.Xor(cryptodata.FromByte(ch))
		score := EnglishScore(xored)

		if score < bestScore || bestScore < 0 {
			bestScore = score
			bestIndex = i
			bestChar = ch
		}
	}

	return bestIndex, bestChar
}

// GuessRepeatingXorKeySize returns the key length between minSize and
// maxSize for which consecutive key-sized chunks of ct differ in the fewest
// bits per byte.
func GuessRepeatingXorKeySize(ct cryptodata.Data, minSize, maxSize int) (int, error) {
	if minSize < 1 {
		minSize = 1
	}

	best, bestDist := 0, math.MaxFloat64
	for size := minSize; size <= maxSize; size++ {
		pairs := ct.Len()/size - 1
		if pairs < 1 {
			break
		}

		sum := 0
		for i := 0; i < pairs; i++ {
			d, err := ct[i*size : (i+1)*size].HammingDistance(ct[(i+1)*size : (i+2)*size])
			if err != nil {
				return 0, err
			}
			sum += d
		}

		if dist := float64(sum) / float64(pairs*size); dist < bestDist {
			best, bestDist = size, dist
		}
	}

	if best == 0 {
		return 0, &cryptodata.LengthError{Want: 2 * minSize, Got: ct.Len()}
	}
	return best, nil
}

// shortestPeriod returns the shortest prefix of key that repeats to form
// all of it.  A multiple of the real key size scores as well as the size
// itself, so the guessed key may be the real one several times over.
func shortestPeriod(key cryptodata.Data) cryptodata.Data {
	for p := 1; p < key.Len(); p++ {
		if key.Len()%p != 0 {
			continue
		}
		periodic := true
		for i := p; i < key.Len(); i++ {
			if key[i] != key[i%p] {
				periodic = false
				break
			}
		}
		if periodic {
			return key[:p]
		}
	}
	return key
}

// BreakRepeatingKeyXor recovers the key of a repeating-key XOR ciphertext
// over English text, as in http://cryptopals.com/sets/1/challenges/6/.  Key
// sizes from 2 to maxKeySize are tried.  It returns the key and the
// plaintext.
func BreakRepeatingKeyXor(ct cryptodata.Data, maxKeySize int) (cryptodata.Data, cryptodata.Data, error) {
	size, err := GuessRepeatingXorKeySize(ct, 2, maxKeySize)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("repeating key xor: guessed key size %d", size)

	key := make(cryptodata.Data, size)
	column := make(cryptodata.Data, 0, ct.Len()/size+1)
	for i := 0; i < size; i++ {
		column = column[:0]
		for j := i; j < ct.Len(); j += size {
			column = append(column, ct[j])
		}
		key[i] = FindSingleCharForXor(column)
	}

	key = shortestPeriod(key)
	pt, err := ct.Xor(key)
	if err != nil {
		return nil, nil, err
	}
	return key, pt, nil
}
