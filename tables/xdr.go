package tables

import (
	"errors"
	"fmt"
	"io"

	"github.com/calmh/xdr"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/pack"
	"github.com/pierrec/lz4/v4"
)

// Binary format of a table set: XDR, lz4-compressed.
const (
	Magic         = 0x4c584754 // "LXGT"
	FormatVersion = 1
)

// Limits applied when reading a table set.
const (
	maxStringLen = 1 << 20
	maxElements  = 1 << 24
)

// ErrFormat is returned for binary data which is not a table set.
var ErrFormat = errors.New("not a lexgen table set")

func sizeOfString(s string) int {
	return 4 + len(s) + xdr.Padding(len(s))
}

func sizeOfPacked(p *pack.Packed) int {
	n := 2 * len(p.Data)
	return 4 + 4 + 4 + 4 + n + xdr.Padding(n)
}

// XDRSize returns the size of the XDR representation of ts.
func (ts *TableSet) XDRSize() int {
	n := 4 + 4 + sizeOfString(ts.UnicodeVersion) + 4 + 4 + 4
	n += 4
	for _, name := range ts.LexStates {
		n += sizeOfString(name)
	}
	for _, p := range ts.packed() {
		n += sizeOfPacked(p)
	}
	n += 4
	for _, a := range ts.Actions {
		n += 4 + sizeOfString(a.Payload) + 4 + 4 + 4
	}
	n += 4 + 4*len(ts.EOF) + 4
	return n
}

// MarshalXDR returns the XDR representation of ts.
func (ts *TableSet) MarshalXDR() ([]byte, error) {
	for i, p := range ts.packed() {
		if p == nil {
			return nil, fmt.Errorf("table set: packed table #%d missing", i)
		}
	}
	buf := make([]byte, ts.XDRSize())
	m := &xdr.Marshaller{Data: buf}
	return buf, ts.MarshalXDRInto(m)
}

// MarshalXDRInto marshals ts into an XDR marshaller.
func (ts *TableSet) MarshalXDRInto(m *xdr.Marshaller) error {
	m.MarshalUint32(Magic)
	m.MarshalUint32(FormatVersion)
	m.MarshalString(ts.UnicodeVersion)
	m.MarshalUint32(uint32(ts.MaxCodepoint))
	m.MarshalUint32(uint32(ts.NumStates))
	m.MarshalUint32(uint32(ts.NumCols))
	m.MarshalUint32(uint32(len(ts.LexStates)))
	for _, name := range ts.LexStates {
		m.MarshalString(name)
	}
	for _, p := range ts.packed() {
		marshalPacked(m, p)
	}
	m.MarshalUint32(uint32(len(ts.Actions)))
	for _, a := range ts.Actions {
		m.MarshalUint32(uint32(a.Label))
		m.MarshalString(a.Payload)
		m.MarshalUint8(uint8(a.Kind))
		m.MarshalUint32(uint32(a.LookLength))
		m.MarshalUint32(uint32(a.Entry))
	}
	m.MarshalUint32(uint32(len(ts.EOF)))
	for _, l := range ts.EOF {
		m.MarshalUint32(uint32(l))
	}
	m.MarshalUint32(uint32(ts.DefaultEOF))
	return m.Error
}

func marshalPacked(m *xdr.Marshaller, p *pack.Packed) {
	m.MarshalUint8(uint8(p.Scheme))
	m.MarshalUint32(uint32(int32(p.Translation)))
	m.MarshalUint32(uint32(p.Length))
	bs := make([]byte, 2*len(p.Data))
	for i, u := range p.Data {
		bs[2*i], bs[2*i+1] = byte(u>>8), byte(u)
	}
	m.MarshalBytes(bs)
}

// UnmarshalXDR reads ts from its XDR representation.
func (ts *TableSet) UnmarshalXDR(bs []byte) error {
	u := &xdr.Unmarshaller{Data: bs}
	return ts.UnmarshalXDRFrom(u)
}

// UnmarshalXDRFrom reads ts from an XDR unmarshaller.
func (ts *TableSet) UnmarshalXDRFrom(u *xdr.Unmarshaller) error {
	if magic := u.UnmarshalUint32(); u.Error == nil && magic != Magic {
		return ErrFormat
	}
	if v := u.UnmarshalUint32(); u.Error == nil && v != FormatVersion {
		return fmt.Errorf("%w: format version %d, expected %d", ErrFormat, v, FormatVersion)
	}
	ts.UnicodeVersion = u.UnmarshalStringMax(maxStringLen)
	ts.MaxCodepoint = rune(u.UnmarshalUint32())
	ts.NumStates = int(u.UnmarshalUint32())
	ts.NumCols = int(u.UnmarshalUint32())
	l := int(u.UnmarshalUint32())
	if l > maxElements {
		return xdr.ElementSizeExceeded("lexical states", l, maxElements)
	}
	ts.LexStates = make([]string, l)
	for i := range ts.LexStates {
		ts.LexStates[i] = u.UnmarshalStringMax(maxStringLen)
	}
	packed := make([]*pack.Packed, 6)
	for i := range packed {
		packed[i] = unmarshalPacked(u)
	}
	ts.CMap, ts.Action, ts.RowMap = packed[0], packed[1], packed[2]
	ts.Trans, ts.Attribute, ts.LexState = packed[3], packed[4], packed[5]
	l = int(u.UnmarshalUint32())
	if l > maxElements {
		return xdr.ElementSizeExceeded("actions", l, maxElements)
	}
	ts.Actions = make([]ActionEntry, l)
	for i := range ts.Actions {
		ts.Actions[i].Label = int(u.UnmarshalUint32())
		ts.Actions[i].Payload = u.UnmarshalStringMax(maxStringLen)
		ts.Actions[i].Kind = automaton.LookaheadKind(u.UnmarshalUint8())
		ts.Actions[i].LookLength = int(u.UnmarshalUint32())
		ts.Actions[i].Entry = int(u.UnmarshalUint32())
	}
	l = int(u.UnmarshalUint32())
	if l > maxElements {
		return xdr.ElementSizeExceeded("end-of-file actions", l, maxElements)
	}
	ts.EOF = make([]int, l)
	for i := range ts.EOF {
		ts.EOF[i] = int(u.UnmarshalUint32())
	}
	ts.DefaultEOF = int(u.UnmarshalUint32())
	return u.Error
}

func unmarshalPacked(u *xdr.Unmarshaller) *pack.Packed {
	p := &pack.Packed{}
	p.Scheme = pack.Scheme(u.UnmarshalUint8())
	p.Translation = int(int32(u.UnmarshalUint32()))
	p.Length = int(u.UnmarshalUint32())
	bs := u.UnmarshalBytesMax(2 * maxElements)
	p.Data = make([]uint16, len(bs)/2)
	for i := range p.Data {
		p.Data[i] = uint16(bs[2*i])<<8 | uint16(bs[2*i+1])
	}
	return p
}

// --- Compressed I/O --------------------------------------------------------

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the lz4-compressed XDR representation of ts to w and
// returns the number of bytes written.
func (ts *TableSet) WriteTo(w io.Writer) (int64, error) {
	bs, err := ts.MarshalXDR()
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	zw := lz4.NewWriter(cw)
	if _, err = zw.Write(bs); err != nil {
		return cw.n, err
	}
	if err = zw.Close(); err != nil {
		return cw.n, err
	}
	tracer().Debugf("wrote table set: %d bytes XDR, %d bytes compressed", len(bs), cw.n)
	return cw.n, nil
}

// ReadTableSet reads a table set written by TableSet.WriteTo and validates it.
func ReadTableSet(r io.Reader) (*TableSet, error) {
	bs, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("reading table set: %w", err)
	}
	ts := &TableSet{}
	if err = ts.UnmarshalXDR(bs); err != nil {
		return nil, fmt.Errorf("decoding table set: %w", err)
	}
	if err = ts.Validate(); err != nil {
		return nil, err
	}
	return ts, nil
}
