package matasano

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// User is an object used for http://cryptopals.com/sets/2/challenges/13/.
type User struct {
	Email string
	UID   int
	Role  string
}

// Encode returns a string representation of a User.  It's essentially just a
// URI param string.
func (u User) Encode() string {
	return "email=" + u.Email + "&uid=" + strconv.Itoa(u.UID) + "&role=" + u.Role
}

// ParseKV parses a string of the form "foo=bar&baz=qux" into a map.  Only the
// first '=' of each pair separates key from value.
func ParseKV(params string) (map[string]string, error) {
	kvMap := make(map[string]string)
	for _, kvPair := range strings.Split(params, "&") {
		k, v, ok := strings.Cut(kvPair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed pair %q", kvPair)
		}
		kvMap[k] = v
	}
	return kvMap, nil
}

func userFromParams(params string) (User, error) {
	kvMap, err := ParseKV(params)
	if err != nil {
		return User{}, err
	}
	uid, err := strconv.Atoi(kvMap["uid"])
	if err != nil {
		return User{}, fmt.Errorf("bad uid: %w", err)
	}
	return User{Email: kvMap["email"], UID: uid, Role: kvMap["role"]}, nil
}

// ProfileFor encodes a user profile for email with uid 10 and role "user".
// Metacharacters in the email are quoted so they cannot add fields.
func ProfileFor(email string) string {
	cleaned := strings.NewReplacer("&", "%26", "=", "%3D").Replace(email)
	return User{Email: cleaned, UID: 10, Role: "user"}.Encode()
}

// ProfileOracle encrypts and decrypts encoded profiles under a hidden ECB
// key.
type ProfileOracle struct {
	key cryptodata.Data
}

// NewProfileOracle draws a random key from rnd.
func NewProfileOracle(rnd io.Reader) *ProfileOracle {
	return &ProfileOracle{key: randomBytes(rnd, modes.KeySize)}
}

// Encrypt returns the encrypted profile for email.
func (p *ProfileOracle) Encrypt(email string) (cryptodata.Data, error) {
	return modes.ECBEncrypt(cryptodata.FromText(ProfileFor(email)), p.key)
}

// Decrypt takes ciphertext representing an encrypted user profile, decrypts
// it, parses the plaintext, and returns the corresponding User object.
func (p *ProfileOracle) Decrypt(ct cryptodata.Data) (User, error) {
	pt, err := modes.ECBDecrypt(ct, p.key)
	if err != nil {
		return User{}, err
	}
	if pt, err = pt.Unpad(modes.BlockSize); err != nil {
		return User{}, err
	}
	return userFromParams(pt.Text())
}

// ForgeAdminProfile performs the ecb cut-and-paste attack described at
// http://cryptopals.com/sets/2/challenges/13/ to generate ciphertext that
// will decrypt to a User profile with the admin role, without any knowledge of
// the key being used to generate the ciphertext.
func ForgeAdminProfile(encrypt func(email string) (cryptodata.Data, error)) (cryptodata.Data, error) {
	// "email=foo@bar12.com&uid=10&role=" is exactly two blocks.
	profile1, err := encrypt("foo@bar12.com")
	if err != nil {
		return nil, err
	}
	head, err := profile1.Cut(2 * modes.BlockSize)
	if err != nil {
		return nil, err
	}

	// "email=" plus ten bytes fills the first block, so the second block is
	// "admin" followed by valid padding.
	adminBlock := cryptodata.FromText("admin").Pad(modes.BlockSize)
	profile2, err := encrypt(strings.Repeat("x", modes.BlockSize-len("email=")) + adminBlock.Text())
	if err != nil {
		return nil, err
	}
	tail, err := profile2.Block(1, modes.BlockSize)
	if err != nil {
		return nil, err
	}

	return head.Cat(tail), nil
}
