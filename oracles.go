package matasano

import (
	"errors"
	"io"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// EncryptionOracle encrypts attacker-chosen input under parameters the
// attacker cannot see.
type EncryptionOracle func(pt cryptodata.Data) (ct cryptodata.Data)

// PaddingOracle decrypts a CBC ciphertext with a hidden key and IV and
// reports only whether the plaintext has valid PKCS#7 padding.
type PaddingOracle func(ct cryptodata.Data) bool

// Mode is a block cipher mode an oracle may use.
type Mode int

// Block cipher mode flags.
const (
	ECB Mode = iota
	CBC
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	}
	return "unknown"
}

func mustEncrypt(ct cryptodata.Data, err error) cryptodata.Data {
	if err != nil {
		panic(err)
	}
	return ct
}

// EncryptWithMode surrounds pt with 5-10 random bytes on each side and
// encrypts it under a fresh random key, using a fresh random IV for CBC.
func EncryptWithMode(rnd io.Reader, mode Mode, pt cryptodata.Data) cryptodata.Data {
	key := randomBytes(rnd, modes.KeySize)
	prefix := randomBytes(rnd, randRange(rnd, 5, 10))
	suffix := randomBytes(rnd, randRange(rnd, 5, 10))
	plain := prefix.Cat(pt, suffix)

	if mode == ECB {
		return mustEncrypt(modes.ECBEncrypt(plain, key))
	}
	iv := randomBytes(rnd, modes.BlockSize)
	return mustEncrypt(modes.CBCEncrypt(plain, key, iv))
}

// EncryptionOracleCoinToss picks ECB or CBC at random and encrypts pt with
// EncryptWithMode.  The chosen mode is returned so callers can check a guess.
func EncryptionOracleCoinToss(rnd io.Reader, pt cryptodata.Data) (cryptodata.Data, Mode) {
	mode := Mode(randIntn(rnd, 2))
	return EncryptWithMode(rnd, mode, pt), mode
}

// NewModeOracle returns an oracle that always uses mode but draws a new key,
// IV and random padding on every call.
func NewModeOracle(rnd io.Reader, mode Mode) EncryptionOracle {
	return func(pt cryptodata.Data) cryptodata.Data {
		return EncryptWithMode(rnd, mode, pt)
	}
}

// NewECBAppendOracle returns the byte-at-a-time oracle: it ECB-encrypts
// prefix || input || secret under a key drawn once from rnd.
func NewECBAppendOracle(rnd io.Reader, prefix, secret cryptodata.Data) EncryptionOracle {
	key := randomBytes(rnd, modes.KeySize)
	prefix, secret = cryptodata.New(prefix), cryptodata.New(secret)

	return func(pt cryptodata.Data) cryptodata.Data {
		return mustEncrypt(modes.ECBEncrypt(prefix.Cat(pt, secret), key))
	}
}

// PaddingOracleTarget is a CBC ciphertext together with the padding oracle
// for the key it was made with.
type PaddingOracleTarget struct {
	Oracle     PaddingOracle
	IV         cryptodata.Data
	Ciphertext cryptodata.Data
}

// NewPaddingOracleTarget encrypts pt under a random key and IV and returns
// the ciphertext along with an oracle that checks the padding of any
// ciphertext under the same key and IV.
func NewPaddingOracleTarget(rnd io.Reader, pt cryptodata.Data) (*PaddingOracleTarget, error) {
	key, err := cryptodata.Random(randReader(rnd), modes.KeySize)
	if err != nil {
		return nil, err
	}
	iv, err := cryptodata.Random(randReader(rnd), modes.BlockSize)
	if err != nil {
		return nil, err
	}

	ct, err := modes.CBCEncrypt(pt, key, iv)
	if err != nil {
		return nil, err
	}

	oracle := func(ct cryptodata.Data) bool {
		pt, err := modes.CBCDecrypt(ct, key, iv)
		if err != nil {
			return false
		}
		return pt.PadVerify(modes.BlockSize)
	}

	return &PaddingOracleTarget{Oracle: oracle, IV: iv, Ciphertext: ct}, nil
}

// PaddingOracleEncryptRandomPlaintext picks one of plaintexts at random and
// builds a padding oracle target for it.
func PaddingOracleEncryptRandomPlaintext(rnd io.Reader, plaintexts []cryptodata.Data) (*PaddingOracleTarget, error) {
	if len(plaintexts) == 0 {
		return nil, errors.New("no plaintexts to choose from")
	}
	pt := plaintexts[randIntn(rnd, len(plaintexts))]
	return NewPaddingOracleTarget(rnd, pt)
}
