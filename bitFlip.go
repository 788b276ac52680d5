package matasano

import (
	"fmt"
	"io"
	"strings"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// flipMask returns have XOR want.
func flipMask(have, want cryptodata.Data) (cryptodata.Data, error) {
	if have.Len() != want.Len() {
		return nil, ErrFlipMismatch
	}
	return have.XorExact(want)
}

// xorAt returns a copy of data with mask XORed in at offset.
func xorAt(data cryptodata.Data, offset int, mask cryptodata.Data) (cryptodata.Data, error) {
	if offset < 0 || offset+mask.Len() > data.Len() {
		return nil, &cryptodata.RangeError{Start: offset, End: offset + mask.Len(), Len: data.Len()}
	}
	res := cryptodata.New(data)
	for i, m := range mask {
		res[offset+i] ^= m
	}
	return res, nil
}

// CBCBitFlip returns a copy of ct in which the plaintext bytes starting at
// pos, currently have, decrypt to want instead.  It does so by XORing
// have^want into the previous ciphertext block, which turns that block's
// plaintext into garbage.  The changed bytes must lie in one block after the
// first; use CBCFlipIV for the first block.
func CBCBitFlip(ct cryptodata.Data, bs, pos int, have, want cryptodata.Data) (cryptodata.Data, error) {
	mask, err := flipMask(have, want)
	if err != nil {
		return nil, err
	}
	if mask.Len() == 0 {
		return cryptodata.New(ct), nil
	}
	if pos < bs {
		return nil, ErrFlipNeedsIV
	}
	if pos/bs != (pos+mask.Len()-1)/bs {
		return nil, ErrFlipSpansBlocks
	}
	if pos+mask.Len() > ct.Len() {
		return nil, &cryptodata.RangeError{Start: pos, End: pos + mask.Len(), Len: ct.Len()}
	}

	return xorAt(ct, pos-bs, mask)
}

// CBCFlipIV returns a copy of iv that makes the first plaintext block's bytes
// at pos decrypt to want instead of have.  Unlike CBCBitFlip nothing is
// garbled.
func CBCFlipIV(iv cryptodata.Data, pos int, have, want cryptodata.Data) (cryptodata.Data, error) {
	mask, err := flipMask(have, want)
	if err != nil {
		return nil, err
	}
	return xorAt(iv, pos, mask)
}

// CTRBitFlip returns a copy of ct whose plaintext bytes at pos read want
// instead of have.  CTR has no chaining, so no other byte changes.
func CTRBitFlip(ct cryptodata.Data, pos int, have, want cryptodata.Data) (cryptodata.Data, error) {
	mask, err := flipMask(have, want)
	if err != nil {
		return nil, err
	}
	return xorAt(ct, pos, mask)
}

// FlipBits flips one bit in each of the given byte positions.
func FlipBits(ct cryptodata.Data, positions []int, bit uint) (cryptodata.Data, error) {
	res := cryptodata.New(ct)
	for _, pos := range positions {
		var err error
		if res, err = res.FlipBit(pos, bit); err != nil {
			return nil, err
		}
	}
	return res, nil
}

const (
	userDataPrefix = "comment1=cooking%20MCs;userdata="
	userDataSuffix = ";comment2=%20like%20a%20pound%20of%20bacon"
	adminToken     = ";admin=true;"
)

// quoteUserData escapes the characters that delimit fields in the comment
// string.
func quoteUserData(s string) string {
	return strings.NewReplacer(";", "%3B", "=", "%3D").Replace(s)
}

// streamMode is what CBC and CTR have in common for the comment service.
type streamMode interface {
	Encrypt(pt cryptodata.Data) (cryptodata.Data, error)
	Decrypt(ct cryptodata.Data) (cryptodata.Data, error)
}

// UserData is the comment-string service of
// http://cryptopals.com/sets/2/challenges/16 (CBC) and
// http://cryptopals.com/sets/4/challenges/26 (CTR).  It embeds user input in
// a fixed comment string and encrypts it under a hidden key.
type UserData struct {
	mode   streamMode
	padded bool
}

// NewCBCUserData returns a CBC comment service with a random key and IV.
func NewCBCUserData(rnd io.Reader) *UserData {
	return &UserData{
		mode: modes.CBC{
			Key: randomBytes(rnd, modes.KeySize),
			IV:  randomBytes(rnd, modes.BlockSize),
		},
		padded: true,
	}
}

// NewCTRUserData returns a CTR comment service with a random key and nonce.
func NewCTRUserData(rnd io.Reader) *UserData {
	return &UserData{
		mode: modes.CTR{
			Key:   randomBytes(rnd, modes.KeySize),
			Nonce: randomBytes(rnd, modes.NonceSize),
		},
	}
}

// Encrypt quotes userdata, wraps it in the comment string and encrypts the
// result.
func (u *UserData) Encrypt(userdata string) (cryptodata.Data, error) {
	pt := cryptodata.FromText(userDataPrefix + quoteUserData(userdata) + userDataSuffix)
	return u.mode.Encrypt(pt)
}

// IsAdmin decrypts ct and reports whether it contains ";admin=true;".
func (u *UserData) IsAdmin(ct cryptodata.Data) (bool, error) {
	pt, err := u.mode.Decrypt(ct)
	if err != nil {
		return false, err
	}
	if u.padded {
		if pt, err = pt.Unpad(modes.BlockSize); err != nil {
			return false, err
		}
	}
	return strings.Contains(pt.Text(), adminToken), nil
}

// UserDataEncryptor is the attacker's view of a UserData service.
type UserDataEncryptor func(userdata string) (cryptodata.Data, error)

// ForgeAdminCBC performs the cbc bit-flipping attack described at
// http://cryptopals.com/sets/2/challenges/16/ to generate ciphertext that will
// decrypt to a comment string with ";admin=true;" in it, without any knowledge
// of the key used to generate the ciphertext.
func ForgeAdminCBC(encrypt UserDataEncryptor) (cryptodata.Data, error) {
	// The prefix is exactly two blocks long, so the input starts a block.
	// The first input block is sacrificed; the second holds the payload.
	const payload = ":admin<true:"
	input := strings.Repeat("a", modes.BlockSize) + payload + "aaaa"

	ct, err := encrypt(input)
	if err != nil {
		return nil, err
	}

	pos := len(userDataPrefix) + modes.BlockSize
	forged, err := CBCBitFlip(ct, modes.BlockSize, pos, cryptodata.FromText(payload), cryptodata.FromText(adminToken))
	if err != nil {
		return nil, fmt.Errorf("forge cbc: %w", err)
	}
	return forged, nil
}

// ForgeAdminCTR performs the ctr bit-flipping attack described at
// http://cryptopals.com/sets/4/challenges/26/.  ':' and '<' are one bit away
// from ';' and '=', so flipping the low bit of three bytes is enough.
func ForgeAdminCTR(encrypt UserDataEncryptor) (cryptodata.Data, error) {
	ct, err := encrypt(":admin<true:")
	if err != nil {
		return nil, err
	}

	p := len(userDataPrefix)
	forged, err := FlipBits(ct, []int{p, p + 6, p + 11}, 0)
	if err != nil {
		return nil, fmt.Errorf("forge ctr: %w", err)
	}
	return forged, nil
}
