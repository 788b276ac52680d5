// Package cryptodata provides an immutable byte buffer type with the
// conversions and block helpers the cipher modes and attacks are written in.
// No method modifies its receiver; every transformation returns a new Data.
package cryptodata // import "github.com/ciz/cryptopals/cryptodata"

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LengthError is returned when data has the wrong size for an operation.
type LengthError struct {
	Want, Got int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("cryptodata: invalid data length %d, expected %d", e.Got, e.Want)
}

// RangeError is returned by Slice when the bounds fall outside the data.
type RangeError struct {
	Start, End, Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("cryptodata: slice [%d:%d] out of range for length %d", e.Start, e.End, e.Len)
}

// ErrEmptyKey is returned by Xor when the key has no bytes.
var ErrEmptyKey = errors.New("cryptodata: empty xor key")

// Data is an ordered byte sequence.
type Data []byte

// New copies raw into a new Data.
func New(raw []byte) Data {
	return append(Data{}, raw...)
}

// FromHex decodes a hexadecimal string.
func FromHex(s string) (Data, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptodata: %w", err)
	}
	return Data(raw), nil
}

// FromBase64 decodes standard, padded base64.  Line breaks are ignored so
// wrapped test vectors can be passed in directly.
func FromBase64(s string) (Data, error) {
	s = strings.Join(strings.Fields(s), "")
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptodata: %w", err)
	}
	return Data(raw), nil
}

// FromText returns the bytes of s.
func FromText(s string) Data {
	return Data(s)
}

// FromByte returns a single byte buffer.
func FromByte(b byte) Data {
	return Data{b}
}

// Zero returns n zero bytes.
func Zero(n int) Data {
	return make(Data, n)
}

// Repeat returns n copies of b.
func Repeat(b byte, n int) Data {
	return Data(bytes.Repeat([]byte{b}, n))
}

// Random reads n bytes from r.
func Random(r io.Reader, n int) (Data, error) {
	d := make(Data, n)
	if _, err := io.ReadFull(r, d); err != nil {
		return nil, fmt.Errorf("cryptodata: reading random bytes: %w", err)
	}
	return d, nil
}

// Bytes returns a copy of the raw bytes.
func (d Data) Bytes() []byte {
	return append([]byte{}, d...)
}

// Hex returns the lowercase hexadecimal representation of the data.
func (d Data) Hex() string {
	return hex.EncodeToString(d)
}

// Base64 returns the standard base64 representation of the data.
func (d Data) Base64() string {
	return base64.StdEncoding.EncodeToString(d)
}

// Text returns the data as a string, byte for byte.
func (d Data) Text() string {
	return string(d)
}

func (d Data) String() string {
	return d.Hex()
}

// Len returns the number of bytes.
func (d Data) Len() int {
	return len(d)
}

// Equal reports whether d and other hold the same bytes.
func (d Data) Equal(other Data) bool {
	return bytes.Equal(d, other)
}

// AssertSize checks if the data exactly matches a given length.
func (d Data) AssertSize(n int) error {
	if len(d) != n {
		return &LengthError{Want: n, Got: len(d)}
	}
	return nil
}

// Cat returns d followed by each of others.
func (d Data) Cat(others ...Data) Data {
	n := len(d)
	for _, o := range others {
		n += len(o)
	}
	res := make(Data, 0, n)
	res = append(res, d...)
	for _, o := range others {
		res = append(res, o...)
	}
	return res
}

// Slice returns a copy of d[start:end].
func (d Data) Slice(start, end int) (Data, error) {
	if start < 0 || start > end || end > len(d) {
		return nil, &RangeError{Start: start, End: end, Len: len(d)}
	}
	return New(d[start:end]), nil
}

// Cut returns the first n bytes.
func (d Data) Cut(n int) (Data, error) {
	return d.Slice(0, n)
}

// Block returns the i-th block of size bs.
func (d Data) Block(i, bs int) (Data, error) {
	return d.Slice(i*bs, (i+1)*bs)
}

// NumBlocks returns the number of (possibly partial) blocks of size bs.
func (d Data) NumBlocks(bs int) int {
	return (len(d) + bs - 1) / bs
}

// Blocks splits d into blocks of size bs.  The last block is shorter when
// len(d) is not a multiple of bs.
func (d Data) Blocks(bs int) []Data {
	var res []Data
	for i := 0; i < len(d); i += bs {
		end := i + bs
		if end > len(d) {
			end = len(d)
		}
		res = append(res, New(d[i:end]))
	}
	return res
}

// Xor combines d with key, repeating the key as often as needed.  The result
// has the length of d.
func (d Data) Xor(key Data) (Data, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	res := make(Data, len(d))
	for i := range d {
		res[i] = d[i] ^ key[i%len(key)]
	}
	return res, nil
}

// XorExact combines two buffers of equal length.
func (d Data) XorExact(other Data) (Data, error) {
	if len(d) != len(other) {
		return nil, &LengthError{Want: len(d), Got: len(other)}
	}
	return d.Xor(other)
}

// FlipBit returns a copy of d with bit `bit` of byte pos inverted.
func (d Data) FlipBit(pos int, bit uint) (Data, error) {
	if pos < 0 || pos >= len(d) || bit > 7 {
		return nil, &RangeError{Start: pos, End: pos + 1, Len: len(d)}
	}
	res := New(d)
	res[pos] ^= 1 << bit
	return res, nil
}

// HammingDistance counts the differing bits between two buffers of equal
// length.
func (d Data) HammingDistance(other Data) (int, error) {
	if len(d) != len(other) {
		return 0, &LengthError{Want: len(d), Got: len(other)}
	}
	hd := 0
	for i := range d {
		for x := d[i] ^ other[i]; x != 0; x &= x - 1 {
			hd++
		}
	}
	return hd, nil
}

// SHA1MAC returns the SHA-1 digest of key || d, a secret-prefix MAC.
func (d Data) SHA1MAC(key Data) Data {
	h := sha1.New()
	h.Write(key)
	h.Write(d)
	return h.Sum(nil)
}

// HasRepeatedBlock reports whether any full block of size bs appears more
// than once.
func (d Data) HasRepeatedBlock(bs int) bool {
	seen := make(map[string]bool)
	for i := 0; i+bs <= len(d); i += bs {
		k := string(d[i : i+bs])
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
