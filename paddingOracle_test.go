package matasano

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/modes"
)

// 47 bytes, so the last block carries a single byte of padding and no
// position is ambiguous.
const paddingOraclePlaintext = "Cooking MC's like a pound of bacon, quick&nimbl"

func TestPaddingOracleAttack(t *testing.T) {
	pt := cryptodata.FromText(paddingOraclePlaintext)
	require.Equal(t, 15, pt.Len()%16)

	for _, workers := range []int{1, 16} {
		target, err := NewPaddingOracleTarget(NewMersenneReader(17), pt)
		require.NoError(t, err)

		res, err := PaddingOracleAttack(target.Oracle, target.IV, target.Ciphertext, WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, pt.Pad(16), res.Plaintext)
		assert.Equal(t, paddingOraclePlaintext, res.Stripped.Text())
		assert.Empty(t, res.Ambiguous)
	}
}

func TestPaddingOracleAttackLongPadding(t *testing.T) {
	lines, err := ReadB64Lines("testdata/17.txt")
	require.NoError(t, err)

	rnd := NewMersenneReader(18)
	for _, pt := range lines {
		target, err := NewPaddingOracleTarget(rnd, pt)
		require.NoError(t, err)
		last := target.Ciphertext.Len()/16 - 1

		res, err := PaddingOracleAttack(target.Oracle, target.IV, target.Ciphertext)
		if pt.Len()%16 == 15 {
			require.NoError(t, err)
			assert.Equal(t, pt, res.Stripped)
			continue
		}

		// Padding longer than one byte validates under two trials for the
		// last byte.  Either the lowest one was right and the block is
		// flagged, or the attack stalls on the next byte.
		if err != nil {
			var byteErr *ByteError
			require.True(t, errors.As(err, &byteErr))
			assert.ErrorIs(t, err, ErrNoValidPadding)
			assert.Equal(t, last, byteErr.Block)
			continue
		}
		assert.Equal(t, []int{last}, res.Ambiguous)
		assert.Equal(t, pt, res.Stripped)
	}
}

func TestPaddingOracleAttackRandomPlaintext(t *testing.T) {
	plaintexts := []cryptodata.Data{
		cryptodata.FromText(paddingOraclePlaintext),
		cryptodata.FromText("I go crazy when I hear a cymbal, and a high hat!"[:31]),
	}
	target, err := PaddingOracleEncryptRandomPlaintext(NewMersenneReader(19), plaintexts)
	require.NoError(t, err)

	res, err := PaddingOracleAttack(target.Oracle, target.IV, target.Ciphertext, WithWorkers(4))
	require.NoError(t, err)
	assert.Contains(t, plaintexts, res.Stripped)

	_, err = PaddingOracleEncryptRandomPlaintext(nil, nil)
	assert.Error(t, err)
}

func TestPaddingOracleAttackNoValidPadding(t *testing.T) {
	never := func(ct cryptodata.Data) bool { return false }

	_, err := PaddingOracleAttack(never, cryptodata.Zero(16), cryptodata.Zero(32))
	require.ErrorIs(t, err, ErrNoValidPadding)

	var byteErr *ByteError
	require.True(t, errors.As(err, &byteErr))
	assert.Equal(t, "padding oracle", byteErr.Attack)
	assert.Equal(t, 0, byteErr.Block)
	assert.Equal(t, 15, byteErr.Index)
}

func TestPaddingOracleAttackPreconditions(t *testing.T) {
	always := func(ct cryptodata.Data) bool { return true }

	_, err := PaddingOracleAttack(always, cryptodata.Zero(8), cryptodata.Zero(16))
	assert.Equal(t, modes.IVSizeError(8), err)

	for _, n := range []int{0, 15, 17} {
		_, err = PaddingOracleAttack(always, cryptodata.Zero(16), cryptodata.Zero(n))
		assert.ErrorIs(t, err, modes.ErrNotFullBlocks, "length %d", n)
	}
}

func TestPaddingOracleTargetOracle(t *testing.T) {
	target, err := NewPaddingOracleTarget(NewMersenneReader(20), cryptodata.FromText("YELLOW SUBMARINE"))
	require.NoError(t, err)

	assert.True(t, target.Oracle(target.Ciphertext))
	assert.False(t, target.Oracle(target.Ciphertext[:16]))
	assert.False(t, target.Oracle(cryptodata.Zero(7)))
}
