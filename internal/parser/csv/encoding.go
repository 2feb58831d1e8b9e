package csv

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the candidate order used when none is configured: UTF-8
// first, then the two single-byte Western encodings most exports use.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

var knownEncodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"utf-8-sig":    unicode.UTF8BOM,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// LookupEncoding resolves an encoding label. Common Python-style aliases are
// matched first, then IANA names.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if e, ok := knownEncodings[key]; ok {
		return e, nil
	}
	e, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if e == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return e, nil
}

// errUndecodable marks text that a candidate encoding cannot map.
var errUndecodable = errors.New("undecodable byte sequence")

var replacementChar = []byte("\uFFFD")

// decode converts raw into UTF-8 using enc and reports how many byte
// sequences were replaced with U+FFFD. Decoders in x/text substitute U+FFFD
// for bytes they cannot map. In strict mode the candidate is rejected unless
// the non-ASCII characters it decoded cleanly outnumber the substitutions, so
// a few stray bytes in valid UTF-8 are replaced in place while a file written
// in a single-byte encoding moves on to the next candidate.
func decode(raw []byte, enc encoding.Encoding, strict bool) ([]byte, int, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, 0, err
	}
	replaced := bytes.Count(out, replacementChar) - bytes.Count(raw, replacementChar)
	if replaced <= 0 {
		return out, 0, nil
	}
	if strict && replaced >= nonASCII(out)-replaced {
		return nil, replaced, fmt.Errorf("%w: %d replacements", errUndecodable, replaced)
	}
	return out, replaced, nil
}

// nonASCII counts the runes in text outside the ASCII range.
func nonASCII(text []byte) int {
	n := 0
	for len(text) > 0 {
		if text[0] < utf8.RuneSelf {
			text = text[1:]
			continue
		}
		_, size := utf8.DecodeRune(text)
		text = text[size:]
		n++
	}
	return n
}
