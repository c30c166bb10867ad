package codec

import (
	"fmt"
	"slices"
	"strings"
)

// Stream markers shared by compress and decompress.
const (
	markerChar8  = 0
	markerChar16 = 1
	markerEnd    = 2
)

// bitWriter packs values least-significant bit first into alphabet symbols.
type bitWriter struct {
	out      strings.Builder
	val      int
	position int
}

func (w *bitWriter) writeBits(value, n int) {
	for i := 0; i < n; i++ {
		w.val = w.val<<1 | value&1
		if w.position == bitsPerChar-1 {
			w.position = 0
			w.out.WriteByte(uriAlphabet[w.val])
			w.val = 0
		} else {
			w.position++
		}
		value >>= 1
	}
}

// flush pads the pending symbol with zero bits and writes it.
func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.position == bitsPerChar-1 {
			w.out.WriteByte(uriAlphabet[w.val])
			return
		}
		w.position++
	}
}

// unitKey turns a code unit into a dictionary key. Two bytes per unit keep
// surrogate halves distinct, which a rune conversion would not.
func unitKey(u uint16) string {
	return string([]byte{byte(u >> 8), byte(u)})
}

func compress(units []uint16) string {
	var (
		w         bitWriter
		dict      = make(map[string]int)
		pending   = make(map[string]bool)
		enlargeIn = 2
		dictSize  = 3
		numBits   = 2
		cur       string
		curFirst  uint16
	)

	grow := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	emit := func() {
		if pending[cur] {
			if curFirst < 256 {
				w.writeBits(markerChar8, numBits)
				w.writeBits(int(curFirst), 8)
			} else {
				w.writeBits(markerChar16, numBits)
				w.writeBits(int(curFirst), 16)
			}
			grow()
			delete(pending, cur)
		} else {
			w.writeBits(dict[cur], numBits)
		}
		grow()
	}

	for _, u := range units {
		c := unitKey(u)
		if _, ok := dict[c]; !ok {
			dict[c] = dictSize
			dictSize++
			pending[c] = true
		}

		wc := cur + c
		if _, ok := dict[wc]; ok {
			if cur == "" {
				curFirst = u
			}
			cur = wc
			continue
		}

		emit()
		dict[wc] = dictSize
		dictSize++
		cur = c
		curFirst = u
	}

	if cur != "" {
		emit()
	}

	w.writeBits(markerEnd, numBits)
	w.flush()
	return w.out.String()
}

// bitReader reads alphabet values most-significant bit first. Reads past the
// end yield zero bits; callers detect truncation through index.
type bitReader struct {
	values   []int
	val      int
	position int
	index    int
}

const readerReset = 1 << (bitsPerChar - 1)

func newBitReader(values []int) *bitReader {
	return &bitReader{values: values, val: values[0], position: readerReset, index: 1}
}

func (r *bitReader) readBits(n int) int {
	bits := 0
	for power := 1; power != 1<<n; power <<= 1 {
		set := r.val&r.position > 0
		r.position >>= 1
		if r.position == 0 {
			r.position = readerReset
			r.val = 0
			if r.index < len(r.values) {
				r.val = r.values[r.index]
			}
			r.index++
		}
		if set {
			bits |= power
		}
	}
	return bits
}

func decompress(values []int) ([]uint16, error) {
	r := newBitReader(values)

	// Slots 0-2 are reserved for the stream markers.
	dict := make([][]uint16, 3, 64)
	enlargeIn, numBits := 4, 3

	var first []uint16
	switch r.readBits(2) {
	case markerChar8:
		first = []uint16{uint16(r.readBits(8))}
	case markerChar16:
		first = []uint16{uint16(r.readBits(16))}
	case markerEnd:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: bad leading marker", ErrCorruptToken)
	}
	dict = append(dict, first)
	w := first
	result := slices.Clone(first)

	for {
		if r.index > len(values) {
			return nil, fmt.Errorf("%w: truncated", ErrCorruptToken)
		}

		code := r.readBits(numBits)
		switch code {
		case markerChar8:
			dict = append(dict, []uint16{uint16(r.readBits(8))})
			code = len(dict) - 1
			enlargeIn--
		case markerChar16:
			dict = append(dict, []uint16{uint16(r.readBits(16))})
			code = len(dict) - 1
			enlargeIn--
		case markerEnd:
			return result, nil
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dict):
			entry = dict[code]
		case code == len(dict):
			entry = append(slices.Clone(w), w[0])
		default:
			return nil, fmt.Errorf("%w: reference %d beyond dictionary", ErrCorruptToken, code)
		}

		if len(result)+len(entry) > MaxDocumentLength {
			return nil, fmt.Errorf("%w: more than %d code units", ErrTooLong, MaxDocumentLength)
		}
		result = append(result, entry...)
		dict = append(dict, append(slices.Clone(w), entry[0]))
		enlargeIn--
		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
