package protocol

import "strings"

// maxBits is the widest value a Bits can hold.
const maxBits = 64

// Bits is a fixed-width unsigned bit field. Fields are composed most
// significant bit first and converted to bytes with Bytes, which reverses the
// byte order for the little-endian wire format.
type Bits struct {
	value uint64
	width uint
}

// NewBits returns a field of the given width holding value.
// It fails if width is zero or larger than 64, or if value does not fit.
func NewBits(value uint64, width uint) (Bits, error) {
	if width == 0 || width > maxBits {
		return Bits{}, &EncodingError{Field: "bit field", Value: uint64(width), Reason: "width must be 1-64"}
	}
	if width < maxBits && value>>width != 0 {
		return Bits{}, &EncodingError{Field: "bit field", Value: value, Width: width}
	}
	return Bits{value: value, width: width}, nil
}

// Reserved returns a zero-filled field of the given width.
func Reserved(width uint) Bits {
	return Bits{width: width}
}

// Flag returns a single-bit field.
func Flag(b bool) Bits {
	if b {
		return Bits{value: 1, width: 1}
	}
	return Bits{width: 1}
}

// Value returns the field value.
func (b Bits) Value() uint64 { return b.value }

// Width returns the field width in bits.
func (b Bits) Width() uint { return b.width }

// String renders the field as '0'/'1' characters, left-padded to exactly Width characters.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(int(b.width))
	for i := int(b.width) - 1; i >= 0; i-- {
		if b.value>>uint(i)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Concat joins fields most significant first. The combined width must not exceed 64 bits.
func Concat(fields ...Bits) (Bits, error) {
	var out Bits
	for _, f := range fields {
		if out.width+f.width > maxBits {
			return Bits{}, &EncodingError{
				Field:  "bit field",
				Value:  uint64(out.width + f.width),
				Reason: "combined width exceeds 64 bits",
			}
		}
		if f.width == maxBits {
			out.value = f.value
		} else {
			out.value = out.value<<f.width | f.value
		}
		out.width += f.width
	}
	return out, nil
}

// Bytes left-pads the field to a whole number of bytes and splits it most
// significant byte first. If reverse is true the byte order is reversed.
func (b Bits) Bytes(reverse bool) []byte {
	n := int(b.width+7) / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = byte(b.value >> (8 * uint(i)))
	}
	if reverse {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// ToBitfield renders value as a '0'/'1' string of exactly width characters.
func ToBitfield(value uint64, width uint) (string, error) {
	b, err := NewBits(value, width)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// ToBytes converts a '0'/'1' string into bytes, left-padding to a multiple
// of 8 bits and reversing the byte order when reverse is true.
func ToBytes(bits string, reverse bool) ([]byte, error) {
	if len(bits) > maxBits {
		return nil, &EncodingError{Field: "bit string", Value: uint64(len(bits)), Reason: "longer than 64 bits"}
	}
	var b Bits
	for i := 0; i < len(bits); i++ {
		switch bits[i] {
		case '0':
			b.value <<= 1
		case '1':
			b.value = b.value<<1 | 1
		default:
			return nil, &EncodingError{Field: "bit string", Name: bits, Reason: "must contain only '0' and '1'"}
		}
		b.width++
	}
	return b.Bytes(reverse), nil
}

// packLE concatenates fields and returns them as little-endian bytes.
func packLE(fields ...Bits) ([]byte, error) {
	b, err := Concat(fields...)
	if err != nil {
		return nil, err
	}
	return b.Bytes(true), nil
}

// field is NewBits with the field name attached to any error.
func field(name string, value uint64, width uint) (Bits, error) {
	b, err := NewBits(value, width)
	if err != nil {
		if e, ok := err.(*EncodingError); ok {
			e.Field = name
		}
		return Bits{}, err
	}
	return b, nil
}
