// Package codec turns document text into a compact token that can live in a
// URL fragment, and back.
//
// The token format is LZ-string's URI-safe encoding. Compression runs over
// UTF-16 code units so tokens produced here are interchangeable with the ones
// produced by the lz-string JavaScript library in the browser.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

// uriAlphabet is the 64-symbol alphabet used for the token. None of the
// symbols needs escaping inside a URL fragment.
const uriAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"

const bitsPerChar = 6

var (
	// ErrInvalid is the parent of every decode failure.
	ErrInvalid = errors.New("invalid token")

	// ErrEmptyToken is returned when decoding an empty token.
	ErrEmptyToken = fmt.Errorf("%w: empty", ErrInvalid)

	// ErrInvalidToken is returned when the token holds a character outside
	// the URI-safe alphabet.
	ErrInvalidToken = fmt.Errorf("%w: unexpected character", ErrInvalid)

	// ErrCorruptToken is returned when the token is well formed but its bit
	// stream does not describe a valid document.
	ErrCorruptToken = fmt.Errorf("%w: corrupt stream", ErrInvalid)

	// ErrTooLong is returned when a token expands past MaxDocumentLength.
	ErrTooLong = fmt.Errorf("%w: document too long", ErrInvalid)
)

// MaxDocumentLength bounds the decoded document, in UTF-16 code units.
// Back-references let a short token describe a much longer document, so
// decoding stops once this is exceeded.
const MaxDocumentLength = 1 << 20

var alphabetIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(uriAlphabet); i++ {
		idx[uriAlphabet[i]] = int8(i)
	}
	return idx
}()

// Encode compresses text into a URL-safe token. It never fails; invalid
// UTF-8 sequences are replaced with U+FFFD before compression.
func Encode(text string) string {
	return compress(utf16.Encode([]rune(text)))
}

// Decode reverses Encode. A space in the token is read as '+', which undoes
// form-style decoding of the fragment. Failures are reported with one of the
// package sentinels, all of which match ErrInvalid.
func Decode(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	token = strings.ReplaceAll(token, " ", "+")

	values := make([]int, len(token))
	for i := 0; i < len(token); i++ {
		v := alphabetIndex[token[i]]
		if v < 0 {
			return "", fmt.Errorf("%w at offset %d", ErrInvalidToken, i)
		}
		values[i] = int(v)
	}

	units, err := decompress(values)
	if err != nil {
		return "", err
	}
	return fromUTF16(units)
}

// fromUTF16 rejects unpaired surrogates instead of silently replacing them,
// so a corrupt token cannot masquerade as a document.
func fromUTF16(units []uint16) (string, error) {
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if !utf16.IsSurrogate(r) {
			continue
		}
		if i+1 < len(units) && utf16.DecodeRune(r, rune(units[i+1])) != unicode.ReplacementChar {
			i++
			continue
		}
		return "", fmt.Errorf("%w: unpaired surrogate", ErrCorruptToken)
	}
	return string(utf16.Decode(units)), nil
}
