package main

import (
	"errors"
	"fmt"
	"os"

	matasano "github.com/ciz/cryptopals"
	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
	"github.com/ciz/cryptopals/modes"
)

const rollinSecret = "Um9sbGluJyBpbiBteSA1LjAKV2l0aCBteSByYWctdG9wIGRvd24gc28gbXkgaGFpciBjYW4gYmxvdwpUaGUgZ2lybGllcyBvbiBzdGFuZGJ5IHdhdmluZyBqdXN0IHRvIHNheSBoaQpEaWQgeW91IHN0b3A/IE5vLCBJIGp1c3QgZHJvdmUgYnkK"

var yellowSubmarine = cryptodata.FromText("YELLOW SUBMARINE")

var challenges = map[int]func(*env) error{
	9:  chal9,
	10: chal10,
	11: chal11,
	12: chal12,
	13: chal13,
	14: chal14,
	15: chal15,
	16: chal16,
	17: chal17,
	18: chal18,
	20: chal20,
	25: chal25,
	26: chal26,
	27: chal27,
	28: chal28,
}

// Implement PKCS#7 padding
func chal9(e *env) error {
	e.printf("%q\n", yellowSubmarine.Pad(20).Text())
	return nil
}

// Implement CBC mode
func chal10(e *env) error {
	ct, err := matasano.ReadB64File(e.path("10.txt"))
	if err != nil {
		return err
	}
	pt, err := modes.CBCDecrypt(ct, yellowSubmarine, cryptodata.Zero(modes.BlockSize))
	if err != nil {
		return err
	}
	pt, err = pt.Unpad(modes.BlockSize)
	if err != nil {
		return err
	}
	e.printf("%s", pt.Text())
	return nil
}

// An ECB/CBC detection oracle
func chal11(e *env) error {
	const trials = 100
	for i := 0; i < trials; i++ {
		ct, mode := matasano.EncryptionOracleCoinToss(e.rnd, cryptodata.Repeat('a', 256))
		if guess := matasano.DetectMode(ct, modes.BlockSize); guess != mode {
			return fmt.Errorf("trial %d: guessed %v, oracle used %v", i, guess, mode)
		}
	}
	e.printf("%d modes detected correctly\n", trials)
	return nil
}

func breakECB(e *env, prefix cryptodata.Data, opts ...matasano.Option) error {
	secret, err := cryptodata.FromBase64(rollinSecret)
	if err != nil {
		return err
	}
	oracle := matasano.NewECBAppendOracle(e.rnd, prefix, secret)

	got, err := matasano.ECBByteAtATime(oracle, append(opts, matasano.WithWorkers(e.workers))...)
	if err != nil {
		return err
	}
	if !got.Equal(secret) {
		return errors.New("recovered secret does not match")
	}
	e.printf("%s", got.Text())
	return nil
}

// Byte-at-a-time ECB decryption (Simple)
func chal12(e *env) error {
	return breakECB(e, nil, matasano.WithPrefixLength(0))
}

// ECB cut-and-paste
func chal13(e *env) error {
	oracle := matasano.NewProfileOracle(e.rnd)
	forged, err := matasano.ForgeAdminProfile(oracle.Encrypt)
	if err != nil {
		return err
	}
	u, err := oracle.Decrypt(forged)
	if err != nil {
		return err
	}
	if u.Role != "admin" {
		return fmt.Errorf("forged profile has role %q", u.Role)
	}
	e.printf("%s\n", u.Encode())
	return nil
}

// Byte-at-a-time ECB decryption (Harder)
func chal14(e *env) error {
	n, err := e.random(1)
	if err != nil {
		return err
	}
	prefix, err := e.random(1 + int(n[0])%48)
	if err != nil {
		return err
	}
	return breakECB(e, prefix)
}

// PKCS#7 padding validation
func chal15(e *env) error {
	for _, s := range []string{"ICE ICE BABY\x04\x04\x04\x04", "ICE ICE BABY\x05\x05\x05\x05", "ICE ICE BABY\x01\x02\x03\x04"} {
		pt, err := cryptodata.FromText(s).Unpad(modes.BlockSize)
		if err != nil {
			e.printf("%q: %v\n", s, err)
			continue
		}
		e.printf("%q: %q\n", s, pt.Text())
	}
	return nil
}

// CBC bitflipping attacks
func chal16(e *env) error {
	return forgeAdmin(e, matasano.NewCBCUserData(e.rnd), matasano.ForgeAdminCBC)
}

func forgeAdmin(e *env, svc *matasano.UserData, forge func(matasano.UserDataEncryptor) (cryptodata.Data, error)) error {
	ct, err := forge(svc.Encrypt)
	if err != nil {
		return err
	}
	admin, err := svc.IsAdmin(ct)
	if err != nil {
		return err
	}
	if !admin {
		return errors.New("forged ciphertext is not admin")
	}
	e.printf("admin=true\n")
	return nil
}

// The CBC padding oracle
func chal17(e *env) error {
	plaintexts, err := matasano.ReadB64Lines(e.path("17.txt"))
	if err != nil {
		return err
	}

	// Padding longer than one byte can trip the attack on the last block,
	// so try again with a fresh target.
	const attempts = 32
	for i := 0; i < attempts; i++ {
		target, err := matasano.PaddingOracleEncryptRandomPlaintext(e.rnd, plaintexts)
		if err != nil {
			return err
		}
		res, err := matasano.PaddingOracleAttack(target.Oracle, target.IV, target.Ciphertext, matasano.WithWorkers(e.workers))
		if err != nil {
			log.Warnf("attempt %d: %v", i+1, err)
			continue
		}
		if len(res.Ambiguous) > 0 {
			log.Infof("ambiguous blocks %v", res.Ambiguous)
		}
		e.printf("%s\n", res.Stripped.Text())
		return nil
	}
	return fmt.Errorf("padding oracle attack failed %d times", attempts)
}

// Implement CTR, the stream cipher mode
func chal18(e *env) error {
	ct, err := cryptodata.FromBase64("L77na/nrFsKvynd6HzOoG7GHTLXsTVu9qvY/2syLXzhPweyyMTJULu/6/kXX0KSvoOLSFQ==")
	if err != nil {
		return err
	}
	pt, err := modes.CTRTransform(ct, yellowSubmarine, cryptodata.Zero(modes.NonceSize), 0)
	if err != nil {
		return err
	}
	e.printf("%s\n", pt.Text())
	return nil
}

// Break fixed-nonce CTR statistically
func chal20(e *env) error {
	plaintexts, err := matasano.ReadB64Lines(e.path("20.txt"))
	if err != nil {
		return err
	}
	key, err := e.random(modes.KeySize)
	if err != nil {
		return err
	}

	cts := make([]cryptodata.Data, len(plaintexts))
	for i, pt := range plaintexts {
		if cts[i], err = modes.CTRTransform(pt, key, cryptodata.Zero(modes.NonceSize), 0); err != nil {
			return err
		}
	}

	_, pts, err := matasano.BreakFixedNonceCTR(cts)
	if err != nil {
		return err
	}
	for _, pt := range pts {
		e.printf("%s\n", pt.Text())
	}
	return nil
}

// Break "random access read/write" AES CTR
func chal25(e *env) error {
	raw, err := os.ReadFile(e.path("25.txt"))
	if err != nil {
		return err
	}
	key, err := e.random(modes.KeySize)
	if err != nil {
		return err
	}
	c := modes.CTR{Key: key, Nonce: cryptodata.Zero(modes.NonceSize)}

	ct, err := c.Encrypt(cryptodata.New(raw))
	if err != nil {
		return err
	}
	pt, err := matasano.RecoverCTRByEdit(c.Edit, ct)
	if err != nil {
		return err
	}
	e.printf("%s", pt.Text())
	return nil
}

// CTR bitflipping
func chal26(e *env) error {
	return forgeAdmin(e, matasano.NewCTRUserData(e.rnd), matasano.ForgeAdminCTR)
}

// Recover the key from CBC with IV=Key
func chal27(e *env) error {
	svc := matasano.NewIVKeyService(e.rnd)
	key, err := matasano.RecoverKeyFromIVEqualsKey(svc)
	if err != nil {
		return err
	}
	if !key.Equal(svc.Key()) {
		return errors.New("recovered key does not match")
	}
	e.printf("key %s\n", key.Hex())
	return nil
}

// Implement a SHA-1 keyed MAC
func chal28(e *env) error {
	key, err := e.random(modes.KeySize)
	if err != nil {
		return err
	}
	msg := cryptodata.FromText("comment1=cooking%20MCs;userdata=foo;comment2=%20like%20a%20pound%20of%20bacon")
	mac := msg.SHA1MAC(key)

	tampered := cryptodata.FromText("comment1=cooking%20MCs;userdata=foo;admin=true")
	if tampered.SHA1MAC(key).Equal(mac) {
		return errors.New("tampered message has the same mac")
	}
	if !msg.SHA1MAC(key).Equal(mac) {
		return errors.New("mac is not deterministic")
	}
	e.printf("mac %s\n", mac.Hex())
	return nil
}
