package codec

import (
	"errors"
	"strings"
	"testing"
)

// Tokens produced by lz-string's compressToEncodedURIComponent in a browser.
var referenceTokens = []struct {
	text  string
	token string
}{
	{"", "Q"},
	{"# Hi", "MQAgEglkA"},
	{"## Try writing here...", "MTAEBUCcE9Qd0gSwC6IHYHNQAsCmlcA6YoA"},
	{"Hello, world", "BIUwNmD2A0AEDukBOYAmQ"},
	{"héllo wörld 🎉", "BYS4NmD2AEDuBvAnMATageDcJH7Q"},
	{"a\nb\n\n- [ ] task", "IYKARiILQAQNowLowC7AM4Gsg"},
	{strings.Repeat("a", 30), "IY18ZJA"},
	{"日本語のテキスト", "qemhpzR5UYdgyGMMi1DInQyAmGIA"},
}

func TestEncodeMatchesReference(t *testing.T) {
	for _, tt := range referenceTokens {
		if got := Encode(tt.text); got != tt.token {
			t.Errorf("Encode(%q) = %q, want %q", tt.text, got, tt.token)
		}
	}
}

func TestDecodeReference(t *testing.T) {
	for _, tt := range referenceTokens {
		got, err := Decode(tt.token)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", tt.token, err)
			continue
		}
		if got != tt.text {
			t.Errorf("Decode(%q) = %q, want %q", tt.token, got, tt.text)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"x",
		"# Title\n\nSome *emphasis* and `code`.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
		"line one\r\nline two\ttabbed",
		"emoji 🎉🚀👩‍💻 and flags 🇳🇱",
		"mixed ascii ÄÖÜ ß 中文 русский עברית",
		strings.Repeat("abcabcabd", 500),
		strings.Repeat("🎉", 1000),
		"surrogates \U0001F600 next to BMP � and ÿĀ",
	}
	for _, in := range inputs {
		token := Encode(in)
		out, err := Decode(token)
		if err != nil {
			t.Errorf("Decode(Encode(%.20q)) error: %v", in, err)
			continue
		}
		if out != in {
			t.Errorf("round trip mismatch for %.20q: got %.20q", in, out)
		}
	}
}

func TestEncodeIsFragmentSafe(t *testing.T) {
	token := Encode("<script>&?#/ \"quotes\" and spaces\n🎉")
	for _, r := range token {
		if !strings.ContainsRune(uriAlphabet, r) {
			t.Fatalf("token %q contains %q outside the alphabet", token, r)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	text := "## notes\n- [x] done\n- [ ] todo"
	if a, b := Encode(text), Encode(text); a != b {
		t.Errorf("Encode not deterministic: %q vs %q", a, b)
	}
}

func TestEncodeInvalidUTF8(t *testing.T) {
	out, err := Decode(Encode("ok\xffok"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out != "ok�ok" {
		t.Errorf("got %q, want replacement character", out)
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode("")
	if !errors.Is(err, ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrEmptyToken to match ErrInvalid")
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, token := range []string{"!!!", "not a token?", "%20abc", "abc=="} {
		_, err := Decode(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	token := Encode("a reasonably long document that compresses into several symbols")
	_, err := Decode(token[:len(token)/2])
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected decode failure for truncated token, got %v", err)
	}
}

func TestDecodeSpaceAsPlus(t *testing.T) {
	var text, token string
	for i := 0; i < 200 && token == ""; i++ {
		candidate := strings.Repeat("z", i) + "~~ plus ~~"
		if tok := Encode(candidate); strings.Contains(tok, "+") {
			text, token = candidate, tok
		}
	}
	if token == "" {
		t.Skip("no token containing '+' found")
	}
	got, err := Decode(strings.ReplaceAll(token, "+", " "))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != text {
		t.Errorf("got %q, want %q", got, text)
	}
}

// selfReferenceToken builds a token of one 'a' followed by n references to
// the dictionary entry being defined. Each reference expands to one more
// unit than the last, so the document grows quadratically with n.
func selfReferenceToken(n int) string {
	var w bitWriter
	w.writeBits(markerChar8, 2)
	w.writeBits('a', 8)

	dictLen, enlargeIn, numBits := 4, 4, 3
	for i := 0; i < n; i++ {
		w.writeBits(dictLen, numBits)
		dictLen++
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
	w.writeBits(markerEnd, numBits)
	w.flush()
	return w.out.String()
}

func TestDecodeSelfReferences(t *testing.T) {
	got, err := Decode(selfReferenceToken(10))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	// 1 + 2 + 3 + ... + 11
	if want := strings.Repeat("a", 66); got != want {
		t.Errorf("got %d units, want %d", len(got), len(want))
	}
}

func TestDecodeRejectsExpansionBomb(t *testing.T) {
	token := selfReferenceToken(2000)
	if len(token) > 5000 {
		t.Fatalf("token unexpectedly long: %d", len(token))
	}
	_, err := Decode(token)
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrTooLong to match ErrInvalid")
	}
}

func TestDecodeAtLimit(t *testing.T) {
	b := make([]byte, MaxDocumentLength)
	seed := uint32(1)
	for i := range b {
		seed = seed*1664525 + 1013904223
		b[i] = 'a' + byte(seed>>24)%26
	}
	text := string(b)
	got, err := Decode(Encode(text))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got) != len(text) {
		t.Errorf("got %d bytes, want %d", len(got), len(text))
	}
}
