package matasano

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"

	"github.com/ciz/cryptopals/cryptodata"
)

// DefaultRand is used by the oracle constructors when they are given a nil
// reader.
var DefaultRand io.Reader = cryptorand.Reader

func randReader(r io.Reader) io.Reader {
	if r == nil {
		return DefaultRand
	}
	return r
}

// randomBytes panics when the reader fails; oracles have no error return.
func randomBytes(r io.Reader, n int) cryptodata.Data {
	d, err := cryptodata.Random(randReader(r), n)
	if err != nil {
		panic(err)
	}
	return d
}

// randIntn returns a number in [0, n).  The modulo bias is irrelevant for
// picking pad lengths and coin tosses.
func randIntn(r io.Reader, n int) int {
	b := randomBytes(r, 8)
	return int(binary.LittleEndian.Uint64(b) % uint64(n))
}

// randRange returns a number in [lo, hi].
func randRange(r io.Reader, lo, hi int) int {
	return lo + randIntn(r, hi-lo+1)
}
