package matasano

import (
	"errors"
	"fmt"
	"io"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// InvalidASCIIError is returned by ValidateASCII.  It carries the offending
// plaintext, which is what the IV = key attack feeds on.
type InvalidASCIIError struct {
	Plaintext cryptodata.Data
	Index     int
}

func (e *InvalidASCIIError) Error() string {
	return fmt.Sprintf("plaintext byte %d is not ascii text: %x", e.Index, []byte(e.Plaintext))
}

// ValidateASCII returns an *InvalidASCIIError when pt has a control byte
// (below 0x20) or a byte of 0x80 or above.
func ValidateASCII(pt cryptodata.Data) error {
	for i, b := range pt {
		if b < 0x20 || b >= 0x80 {
			return &InvalidASCIIError{Plaintext: cryptodata.New(pt), Index: i}
		}
	}
	return nil
}

// IVKeyOracle is a CBC service that reuses its key as the IV.  Check
// decrypts a ciphertext and complains, plaintext included, when the result
// is not ASCII.
type IVKeyOracle interface {
	Encrypt(pt cryptodata.Data) (cryptodata.Data, error)
	Check(ct cryptodata.Data) error
}

// IVKeyService is the IVKeyOracle of
// http://cryptopals.com/sets/4/challenges/27.
type IVKeyService struct {
	cbc modes.CBC
}

// NewIVKeyService draws a random key, which also serves as the IV.
func NewIVKeyService(rnd io.Reader) *IVKeyService {
	key := randomBytes(rnd, modes.KeySize)
	return &IVKeyService{cbc: modes.CBC{Key: key, IV: key}}
}

// Key exposes the hidden key so results can be checked.
func (s *IVKeyService) Key() cryptodata.Data {
	return cryptodata.New(s.cbc.Key)
}

func (s *IVKeyService) Encrypt(pt cryptodata.Data) (cryptodata.Data, error) {
	return s.cbc.Encrypt(pt)
}

// Check validates the unpadded plaintext, or the raw one when its padding is
// bad.  The error always carries every decrypted byte.
func (s *IVKeyService) Check(ct cryptodata.Data) error {
	pt, err := s.cbc.Decrypt(ct)
	if err != nil {
		return err
	}
	if body, err := pt.Unpad(modes.BlockSize); err == nil && ValidateASCII(body) == nil {
		return nil
	}
	return ValidateASCII(pt)
}

// RecoverKeyFromIVEqualsKey performs the attack described at
// http://cryptopals.com/sets/4/challenges/27/.
// It assumes the oracle uses its key as the IV.
//
// C0 || 0 || C0 decrypts to P0 || garbage || P0^key, so the first and third
// plaintext blocks XOR to the key.
func RecoverKeyFromIVEqualsKey(oracle IVKeyOracle) (cryptodata.Data, error) {
	bs := modes.BlockSize
	ct, err := oracle.Encrypt(cryptodata.Repeat('A', 3*bs))
	if err != nil {
		return nil, err
	}

	firstCtBlock, err := ct.Block(0, bs)
	if err != nil {
		return nil, err
	}
	tamperedCt := firstCtBlock.Cat(cryptodata.Zero(bs), firstCtBlock)

	err = oracle.Check(tamperedCt)
	var asciiErr *InvalidASCIIError
	if !errors.As(err, &asciiErr) {
		return nil, fmt.Errorf("oracle did not disclose the plaintext: %v", err)
	}

	bogusPt := asciiErr.Plaintext
	if bogusPt.Len() < 3*bs {
		return nil, &cryptodata.LengthError{Want: 3 * bs, Got: bogusPt.Len()}
	}
	return bogusPt[0:bs].XorExact(bogusPt[2*bs : 3*bs])
}
