package pack

import (
	"fmt"
	"math"
)

// Scheme identifies an encoding scheme.
type Scheme uint8

// Encoding schemes.
const (
	CountScheme Scheme = iota // (count, value) pairs
	HiLowScheme               // (hi, lo) pairs
)

func (s Scheme) String() string {
	switch s {
	case CountScheme:
		return "count"
	case HiLowScheme:
		return "hi/low"
	}
	return fmt.Sprintf("scheme(%d)", s)
}

// Unit bounds.
const (
	MaxUnit  = math.MaxUint16
	MaxCount = math.MaxUint16
)

// Packed is an encoded integer table. It describes itself: Unpack needs no
// information beyond the fields of Packed.
type Packed struct {
	Scheme      Scheme
	Translation int      // added to every value before storage (count scheme only)
	Length      int      // number of entries of the unpacked table
	Data        []uint16 // encoded units
}

// Unpack reconstructs the integer table.
func (p *Packed) Unpack() ([]int, error) {
	if p.Length < 0 {
		return nil, fmt.Errorf("%w: negative length", ErrCorrupt)
	}
	if len(p.Data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of units", ErrCorrupt)
	}
	x := make([]int, 0, p.Length)
	switch p.Scheme {
	case CountScheme:
		for i := 0; i < len(p.Data); i += 2 {
			count, value := int(p.Data[i]), int(p.Data[i+1])-p.Translation
			if count == 0 || len(x)+count > p.Length {
				return nil, fmt.Errorf("%w: bad run at unit %d", ErrCorrupt, i)
			}
			for ; count > 0; count-- {
				x = append(x, value)
			}
		}
	case HiLowScheme:
		for i := 0; i < len(p.Data); i += 2 {
			if len(x) == p.Length {
				return nil, fmt.Errorf("%w: excess units", ErrCorrupt)
			}
			x = append(x, int(uint32(p.Data[i])<<16|uint32(p.Data[i+1])))
		}
	default:
		return nil, fmt.Errorf("%w: unknown scheme %d", ErrCorrupt, p.Scheme)
	}
	if len(x) != p.Length {
		return nil, fmt.Errorf("%w: have %d entries, expected %d", ErrCorrupt, len(x), p.Length)
	}
	return x, nil
}

// MustUnpack is like Unpack, but panics on corrupt data. It is intended for
// tables compiled into a program.
func (p *Packed) MustUnpack() []int {
	x, err := p.Unpack()
	if err != nil {
		panic(err)
	}
	return x
}

// --- Count scheme ----------------------------------------------------------

// CountEncoder emits (count, value) pairs.
type CountEncoder struct {
	translation int
	length      int
	data        []uint16
	err         error
}

// NewCountEncoder creates an encoder which adds translation to every value.
func NewCountEncoder(translation int) *CountEncoder {
	return &CountEncoder{translation: translation}
}

// Emit appends count repetitions of value. Counts beyond the unit range are
// split into several pairs. After the first error, Emit is a no-op.
func (enc *CountEncoder) Emit(count int, value int) {
	if enc.err != nil {
		return
	}
	if count < 1 {
		enc.err = &EncodingError{Scheme: CountScheme, Index: enc.length, Value: count, Err: ErrCount}
		return
	}
	v := value + enc.translation
	if v < 0 || v > MaxUnit {
		enc.err = &EncodingError{Scheme: CountScheme, Index: enc.length, Value: value, Err: ErrValueRange}
		return
	}
	enc.length += count
	for count > MaxCount {
		enc.data = append(enc.data, MaxCount, uint16(v))
		count -= MaxCount
	}
	enc.data = append(enc.data, uint16(count), uint16(v))
}

// Packed returns the encoded table, or the first error encountered.
func (enc *CountEncoder) Packed() (*Packed, error) {
	if enc.err != nil {
		return nil, enc.err
	}
	return &Packed{
		Scheme:      CountScheme,
		Translation: enc.translation,
		Length:      enc.length,
		Data:        enc.data,
	}, nil
}

// EncodeCount encodes x with the count scheme, coalescing maximal runs of
// identical values.
func EncodeCount(x []int, translation int) (*Packed, error) {
	enc := NewCountEncoder(translation)
	for i := 0; i < len(x); {
		j := i + 1
		for j < len(x) && x[j] == x[i] {
			j++
		}
		enc.Emit(j-i, x[i])
		i = j
	}
	p, err := enc.Packed()
	if err == nil {
		tracer().Debugf("count-encoded %d entries into %d units", p.Length, len(p.Data))
	}
	return p, err
}

// --- Hi/low scheme ---------------------------------------------------------

// HiLowEncoder emits values as (hi, lo) pairs of 16-bit units.
type HiLowEncoder struct {
	data []uint16
	err  error
}

// NewHiLowEncoder creates an empty hi/low encoder.
func NewHiLowEncoder() *HiLowEncoder {
	return &HiLowEncoder{}
}

// Emit appends a single value, which has to be in [0…2^32-1].
func (enc *HiLowEncoder) Emit(value int) {
	if enc.err != nil {
		return
	}
	if value < 0 || int64(value) > math.MaxUint32 {
		enc.err = &EncodingError{Scheme: HiLowScheme, Index: len(enc.data) / 2, Value: value, Err: ErrValueRange}
		return
	}
	u := uint32(value)
	enc.data = append(enc.data, uint16(u>>16), uint16(u&0xFFFF))
}

// Packed returns the encoded table, or the first error encountered.
func (enc *HiLowEncoder) Packed() (*Packed, error) {
	if enc.err != nil {
		return nil, enc.err
	}
	return &Packed{
		Scheme: HiLowScheme,
		Length: len(enc.data) / 2,
		Data:   enc.data,
	}, nil
}

// EncodeHiLow encodes x with the hi/low scheme.
func EncodeHiLow(x []int) (*Packed, error) {
	enc := NewHiLowEncoder()
	for _, v := range x {
		enc.Emit(v)
	}
	p, err := enc.Packed()
	if err == nil {
		tracer().Debugf("hi/low-encoded %d entries into %d units", p.Length, len(p.Data))
	}
	return p, err
}

// Encode chooses a scheme for x. If the value range of x fits into a single
// unit, x is count-encoded, translated such that its minimum is stored as 0.
// Otherwise x is hi/low-encoded.
func Encode(x []int) (*Packed, error) {
	if len(x) == 0 {
		return EncodeCount(x, 0)
	}
	min, max := x[0], x[0]
	for _, v := range x {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max-min <= MaxUnit {
		translation := 0
		if min < 0 || max > MaxUnit {
			translation = -min
		}
		return EncodeCount(x, translation)
	}
	return EncodeHiLow(x)
}
