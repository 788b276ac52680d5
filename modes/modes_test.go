package modes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciz/cryptopals/cryptodata"
)

var yellowSubmarine = cryptodata.FromText("YELLOW SUBMARINE")

func readB64File(t *testing.T, name string) cryptodata.Data {
	t.Helper()
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	d, err := cryptodata.FromBase64(string(raw))
	require.NoError(t, err)
	return d
}

func readTextFile(t *testing.T, name string) cryptodata.Data {
	t.Helper()
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	return cryptodata.New(raw)
}

func randomData(t *testing.T, n int) cryptodata.Data {
	t.Helper()
	d, err := cryptodata.Random(rand.Reader, n)
	require.NoError(t, err)
	return d
}

func TestCBCDecryptKnownVector(t *testing.T) {
	ct := readB64File(t, "testdata/10.txt")
	expected := readTextFile(t, "testdata/10_plain.txt")

	pt, err := CBCDecrypt(ct, yellowSubmarine, cryptodata.Zero(BlockSize))
	require.NoError(t, err)
	assert.True(t, pt.PadVerify(BlockSize))
	assert.Equal(t, expected.Text(), pt.PadStrip(BlockSize).Text())
}

func TestECBDecryptKnownVector(t *testing.T) {
	ct := readB64File(t, "testdata/7.txt")
	expected := readTextFile(t, "testdata/10_plain.txt")

	pt, err := ECBDecrypt(ct, yellowSubmarine)
	require.NoError(t, err)
	// padding is left in place
	assert.Equal(t, expected.Pad(BlockSize), pt)
	assert.Equal(t, expected.Text(), pt.PadStrip(BlockSize).Text())
}

func TestCTRKnownVector(t *testing.T) {
	ct, err := cryptodata.FromBase64("L77na/nrFsKvynd6HzOoG7GHTLXsTVu9qvY/2syLXzhPweyyMTJULu/6/kXX0KSvoOLSFQ==")
	require.NoError(t, err)

	pt, err := CTRTransform(ct, yellowSubmarine, cryptodata.Zero(NonceSize), 0)
	require.NoError(t, err)
	assert.Equal(t, "Yo, VIP Let's kick it Ice, Ice, baby Ice, Ice, baby ", pt.Text())
}

func TestCBCMatchesStandardLibrary(t *testing.T) {
	key := randomData(t, KeySize)
	iv := randomData(t, BlockSize)
	pt := cryptodata.FromText("Burning 'em, if you ain't quick and nimble")

	ct, err := CBCEncrypt(pt, key, iv)
	require.NoError(t, err)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	padded := pt.Pad(BlockSize)
	want := make([]byte, padded.Len())
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(want, padded)

	assert.Equal(t, cryptodata.Data(want), ct)
}

func TestECBRoundTrip(t *testing.T) {
	key := randomData(t, KeySize)
	for n := 0; n < 70; n++ {
		pt := randomData(t, n)
		ct, err := ECBEncrypt(pt, key)
		require.NoError(t, err)
		assert.Zero(t, ct.Len()%BlockSize)
		assert.True(t, ct.Len() > pt.Len())

		dec, err := ECBDecrypt(ct, key)
		require.NoError(t, err)
		assert.Equal(t, pt.Pad(BlockSize), dec)
	}
}

func TestECBStripRoundTrip(t *testing.T) {
	key := randomData(t, KeySize)
	pt := cryptodata.FromText("We all live in a yellow submarine")
	ct, err := ECBEncrypt(pt, key)
	require.NoError(t, err)
	dec, err := ECBDecrypt(ct, key)
	require.NoError(t, err)
	assert.Equal(t, pt, dec.PadStrip(BlockSize))
}

func TestECBIdenticalBlocks(t *testing.T) {
	ct, err := ECBEncrypt(cryptodata.Repeat('a', 3*BlockSize), yellowSubmarine)
	require.NoError(t, err)
	blocks := ct.Blocks(BlockSize)
	assert.Equal(t, blocks[0], blocks[1])
	assert.Equal(t, blocks[1], blocks[2])
	assert.True(t, ct.HasRepeatedBlock(BlockSize))
}

func TestCBCRoundTrip(t *testing.T) {
	key := randomData(t, KeySize)
	iv := randomData(t, BlockSize)
	for n := 0; n < 70; n++ {
		pt := randomData(t, n)
		ct, err := CBCEncrypt(pt, key, iv)
		require.NoError(t, err)

		dec, err := CBCDecrypt(ct, key, iv)
		require.NoError(t, err)
		stripped, err := dec.Unpad(BlockSize)
		require.NoError(t, err)
		assert.Equal(t, pt, stripped)
	}
}

func TestCBCHidesRepeatedBlocks(t *testing.T) {
	ct, err := CBCEncrypt(cryptodata.Repeat('a', 3*BlockSize), yellowSubmarine, cryptodata.Zero(BlockSize))
	require.NoError(t, err)
	assert.False(t, ct.HasRepeatedBlock(BlockSize))
}

func TestCBCDecryptChainsOnCiphertext(t *testing.T) {
	key := randomData(t, KeySize)
	iv := randomData(t, BlockSize)
	pt := cryptodata.Repeat('q', 4*BlockSize)
	ct, err := CBCEncrypt(pt, key, iv)
	require.NoError(t, err)

	// corrupting block 1 garbles block 1, flips one bit of block 2 and
	// leaves blocks 0 and 3 intact
	tampered, err := ct.FlipBit(BlockSize+3, 0)
	require.NoError(t, err)
	dec, err := CBCDecrypt(tampered, key, iv)
	require.NoError(t, err)

	assert.Equal(t, pt[:BlockSize], dec[:BlockSize])
	assert.NotEqual(t, pt[BlockSize:2*BlockSize], dec[BlockSize:2*BlockSize])
	want := pt.Bytes()
	want[2*BlockSize+3] ^= 1
	assert.Equal(t, want[2*BlockSize:4*BlockSize], dec.Bytes()[2*BlockSize:4*BlockSize])
}

func TestCTRRoundTrip(t *testing.T) {
	key := randomData(t, KeySize)
	nonce := randomData(t, NonceSize)
	for _, counter := range []uint64{0, 1, 100, 1<<64 - 2} {
		for n := 0; n < 50; n += 7 {
			pt := randomData(t, n)
			ct, err := CTRTransform(pt, key, nonce, counter)
			require.NoError(t, err)
			assert.Equal(t, pt.Len(), ct.Len())

			back, err := CTRTransform(ct, key, nonce, counter)
			require.NoError(t, err)
			assert.Equal(t, pt, back)
		}
	}
}

func TestCTRKeystreamLayout(t *testing.T) {
	nonce := cryptodata.FromText("nonce!!!")
	ks, err := CTRKeystreamBlock(yellowSubmarine, nonce, 0x0102)
	require.NoError(t, err)

	block, err := aes.NewCipher(yellowSubmarine)
	require.NoError(t, err)
	in := append(nonce.Bytes(), 0x02, 0x01, 0, 0, 0, 0, 0, 0)
	want := make([]byte, BlockSize)
	block.Encrypt(want, in)
	assert.Equal(t, cryptodata.Data(want), ks)

	// the second block of a transform uses counter+1
	zeros := cryptodata.Zero(2*BlockSize + 5)
	stream, err := CTRTransform(zeros, yellowSubmarine, nonce, 0x0102)
	require.NoError(t, err)
	next, err := CTRKeystreamBlock(yellowSubmarine, nonce, 0x0103)
	require.NoError(t, err)
	assert.Equal(t, ks, stream[:BlockSize])
	assert.Equal(t, next, stream[BlockSize:2*BlockSize])
}

func TestCTREdit(t *testing.T) {
	c := CTR{Key: randomData(t, KeySize), Nonce: randomData(t, NonceSize), Counter: 100}
	ct, err := c.Encrypt(cryptodata.FromText("abcdefghijklmnopqrstuvwxyz"))
	require.NoError(t, err)

	edited, err := c.Edit(ct, 3, cryptodata.FromText("XYZ"))
	require.NoError(t, err)
	pt, err := c.Decrypt(edited)
	require.NoError(t, err)
	assert.Equal(t, "abcXYZghijklmnopqrstuvwxyz", pt.Text())

	edited, err = c.Edit(ct, 24, cryptodata.FromText("!!!!"))
	require.NoError(t, err)
	pt, err = c.Decrypt(edited)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnopqrstuvwx!!!!", pt.Text())

	_, err = c.Edit(ct, 27, cryptodata.FromText("x"))
	assert.Error(t, err)
}

func TestPreconditions(t *testing.T) {
	short := cryptodata.FromText("too short")
	iv := cryptodata.Zero(BlockSize)

	_, err := ECBEncrypt(cryptodata.FromText("x"), short)
	assert.Equal(t, KeySizeError(9), err)
	_, err = ECBDecrypt(cryptodata.Zero(17), yellowSubmarine)
	assert.True(t, errors.Is(err, ErrNotFullBlocks))
	_, err = CBCDecrypt(cryptodata.Zero(0), yellowSubmarine, iv)
	assert.True(t, errors.Is(err, ErrNotFullBlocks))
	_, err = CBCEncrypt(cryptodata.FromText("x"), yellowSubmarine, cryptodata.Zero(8))
	assert.Equal(t, IVSizeError(8), err)
	_, err = CTRTransform(cryptodata.FromText("x"), yellowSubmarine, cryptodata.Zero(BlockSize), 0)
	assert.Equal(t, NonceSizeError(16), err)
	_, err = CTRKeystreamBlock(short, cryptodata.Zero(NonceSize), 0)
	assert.Equal(t, KeySizeError(9), err)
}
