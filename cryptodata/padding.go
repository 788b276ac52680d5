package cryptodata

import "errors"

// ErrInvalidPadding is returned by Unpad when the data does not end in valid
// PKCS#7 padding.
var ErrInvalidPadding = errors.New("cryptodata: invalid PKCS#7 padding")

func checkBlockSize(bs int) {
	if bs < 1 || bs > 0xff {
		panic("cryptodata: invalid block size")
	}
}

// Pad returns the data with PKCS#7 padding added.  Data that is already a
// multiple of the block size gets a full block of padding, so the padding can
// always be removed unambiguously.
func (d Data) Pad(bs int) Data {
	checkBlockSize(bs)
	n := bs - len(d)%bs
	return d.Cat(Repeat(byte(n), n))
}

// PadVerify reports whether the data ends in valid PKCS#7 padding for the
// block size bs.
func (d Data) PadVerify(bs int) bool {
	checkBlockSize(bs)
	if len(d) == 0 || len(d)%bs != 0 {
		return false
	}
	n := int(d[len(d)-1])
	if n == 0 || n > bs {
		return false
	}
	for i := len(d) - n; i < len(d); i++ {
		if d[i] != byte(n) {
			return false
		}
	}
	return true
}

// PadStrip removes trailing PKCS#7 padding when it looks plausible and
// returns an unchanged copy otherwise.  It is more forgiving
// than PadVerify: a zero pad byte just strips nothing.  Use Unpad when the
// caller needs to know whether the padding was valid.
func (d Data) PadStrip(bs int) Data {
	checkBlockSize(bs)
	if len(d) == 0 || len(d)%bs != 0 {
		return New(d)
	}
	n := int(d[len(d)-1])
	if n > bs || n > len(d) {
		return New(d)
	}
	for i := len(d) - n; i < len(d); i++ {
		if d[i] != byte(n) {
			return New(d)
		}
	}
	return New(d[:len(d)-n])
}

// Unpad removes PKCS#7 padding, failing with ErrInvalidPadding unless
// PadVerify holds.
func (d Data) Unpad(bs int) (Data, error) {
	if !d.PadVerify(bs) {
		return nil, ErrInvalidPadding
	}
	return New(d[:len(d)-int(d[len(d)-1])]), nil
}
