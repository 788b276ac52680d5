package matasano

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
	"github.com/ciz/cryptopals/modes"
)

const rollinB64 = "Um9sbGluJyBpbiBteSA1LjAKV2l0aCBteSByYWctdG9wIGRvd24gc28gbXkgaGFpciBjYW4gYmxvdwpUaGUgZ2lybGllcyBvbiBzdGFuZGJ5IHdhdmluZyBqdXN0IHRvIHNheSBoaQpEaWQgeW91IHN0b3A/IE5vLCBJIGp1c3QgZHJvdmUgYnkK"

func rollinSecret(t *testing.T) cryptodata.Data {
	t.Helper()
	secret, err := cryptodata.FromBase64(rollinB64)
	require.NoError(t, err)
	require.Equal(t, 138, secret.Len())
	return secret
}

func TestDiscoverBlockSize(t *testing.T) {
	oracle := NewECBAppendOracle(NewMersenneReader(1), nil, rollinSecret(t))

	bs, err := DiscoverBlockSize(oracle)
	require.NoError(t, err)
	assert.Equal(t, 16, bs)
}

func TestDiscoverBlockSizeFixedLength(t *testing.T) {
	oracle := func(pt cryptodata.Data) cryptodata.Data {
		return cryptodata.Zero(32)
	}

	_, err := DiscoverBlockSize(oracle)
	assert.ErrorIs(t, err, ErrBlockSizeNotFound)
}

func TestDetectPrefixLength(t *testing.T) {
	rnd := NewMersenneReader(2)
	secret := rollinSecret(t)

	for n := 0; n <= 40; n++ {
		prefix := randomBytes(rnd, n)
		oracle := NewECBAppendOracle(rnd, prefix, secret)

		got, err := DetectPrefixLength(oracle, 16)
		require.NoError(t, err)
		assert.Equal(t, n, got, "prefix %x", []byte(prefix))
	}
}

func TestDetectPrefixLengthFillerLookalikes(t *testing.T) {
	cases := []struct {
		prefix string
		secret string
	}{
		// partial last block is all 'A'
		{"0123456789abcdefAAA", "Rollin'"},
		{"0123456789abcdeBB", "Rollin'"},
		// secret starts with filler bytes
		{"0123456789abcde", "A secret"},
		{"0123456789abcde", "BBB secret"},
		{"0123456789abcdefAAA", "BB"},
		// prefix holds two equal aligned blocks
		{"XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX", "Rollin'"},
		{"XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXabc", "Rollin'"},
	}
	for _, c := range cases {
		oracle := NewECBAppendOracle(NewMersenneReader(3), cryptodata.FromText(c.prefix), cryptodata.FromText(c.secret))

		got, err := DetectPrefixLength(oracle, 16)
		require.NoError(t, err)
		assert.Equal(t, len(c.prefix), got, "prefix %q secret %q", c.prefix, c.secret)
	}
}

func TestDetectSecretLength(t *testing.T) {
	rnd := NewMersenneReader(4)
	secret := rollinSecret(t)

	for _, n := range []int{0, 1, 5, 15, 16, 21, 32} {
		oracle := NewECBAppendOracle(rnd, randomBytes(rnd, n), secret)

		got, err := DetectSecretLength(oracle, 16, n)
		require.NoError(t, err)
		assert.Equal(t, secret.Len(), got, "prefix length %d", n)
	}
}

func TestECBByteAtATime(t *testing.T) {
	secret := rollinSecret(t)

	cases := []struct {
		name string
		opts []Option
	}{
		{"detected prefix", nil},
		{"known empty prefix", []Option{WithPrefixLength(0)}},
		{"concurrent", []Option{WithWorkers(16)}},
		{"other filler", []Option{WithFiller('z')}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			oracle := NewECBAppendOracle(NewMersenneReader(5), nil, secret)

			got, err := ECBByteAtATime(oracle, c.opts...)
			require.NoError(t, err)
			assert.Equal(t, secret.Text(), got.Text())
		})
	}
}

func TestECBByteAtATimeWithPrefix(t *testing.T) {
	rnd := NewMersenneReader(6)
	secret := rollinSecret(t)

	for i := 0; i < 4; i++ {
		prefix := randomBytes(rnd, randRange(rnd, 1, 40))
		oracle := NewECBAppendOracle(rnd, prefix, secret)

		got, err := ECBByteAtATime(oracle, WithWorkers(8))
		require.NoError(t, err, "prefix length %d", prefix.Len())
		assert.Equal(t, secret, got)
	}
}

func TestECBByteAtATimeShortSecrets(t *testing.T) {
	rnd := NewMersenneReader(7)

	for _, n := range []int{0, 1, 15, 16, 17, 31} {
		secret := randomBytes(rnd, n)
		oracle := NewECBAppendOracle(rnd, randomBytes(rnd, 7), secret)

		got, err := ECBByteAtATime(oracle)
		require.NoError(t, err)
		assert.Equal(t, secret.Hex(), got.Hex())
	}
}

func TestECBByteAtATimeRejectsCBC(t *testing.T) {
	rnd := NewMersenneReader(8)
	key := randomBytes(rnd, modes.KeySize)
	iv := randomBytes(rnd, modes.BlockSize)
	secret := rollinSecret(t)

	oracle := func(pt cryptodata.Data) cryptodata.Data {
		return mustEncrypt(modes.CBCEncrypt(pt.Cat(secret), key, iv))
	}

	_, err := ECBByteAtATime(oracle)
	assert.ErrorIs(t, err, ErrNotECB)
}

func TestECBByteAtATimeChangingKey(t *testing.T) {
	rnd := NewMersenneReader(9)
	secret := rollinSecret(t)

	// every query uses a new key, so no table entry can match
	oracle := func(pt cryptodata.Data) cryptodata.Data {
		return mustEncrypt(modes.ECBEncrypt(pt.Cat(secret), randomBytes(rnd, modes.KeySize)))
	}

	_, err := ECBByteAtATime(oracle, WithPrefixLength(0))
	require.ErrorIs(t, err, ErrNoTableMatch)

	var byteErr *ByteError
	require.True(t, errors.As(err, &byteErr))
	assert.Equal(t, 0, byteErr.Index)
	assert.Equal(t, 0, byteErr.Block)
}

func TestECBByteAtATimeRepeatedPrefix(t *testing.T) {
	secret := rollinSecret(t)
	prefix := cryptodata.Repeat('X', 35)
	oracle := NewECBAppendOracle(NewMersenneReader(10), prefix, secret)

	got, err := ECBByteAtATime(oracle)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestECBByteAtATimeTableCollision(t *testing.T) {
	rnd := NewMersenneReader(11)
	key := randomBytes(rnd, modes.KeySize)
	secret := rollinSecret(t)

	// the high bit of every byte is dropped, so b and b^0x80 encrypt alike
	oracle := func(pt cryptodata.Data) cryptodata.Data {
		masked := pt.Cat(secret)
		for i := range masked {
			masked[i] &= 0x7f
		}
		return mustEncrypt(modes.ECBEncrypt(masked, key))
	}

	_, err := ECBByteAtATime(oracle, WithPrefixLength(0))
	require.ErrorIs(t, err, ErrTableCollision)

	var byteErr *ByteError
	require.True(t, errors.As(err, &byteErr))
	assert.Equal(t, 0, byteErr.Index)
	assert.Equal(t, 0, byteErr.Block)
}

func TestECBByteAtATimeDebugLog(t *testing.T) {
	buf := new(bytes.Buffer)
	log.SetOutput(buf)
	log.SetLevel(log.LevelDebug)
	defer func() {
		log.SetLevel(log.LevelWarn)
		log.SetOutput(os.Stderr)
	}()

	oracle := NewECBAppendOracle(NewMersenneReader(12), nil, rollinSecret(t))
	_, err := ECBByteAtATime(oracle, WithPrefixLength(0))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "block size 16, prefix 0 bytes, secret 138 bytes")
	assert.Contains(t, buf.String(), "recovered block 0")
	assert.Contains(t, buf.String(), "Rollin")
}
