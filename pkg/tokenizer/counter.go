// Package tokenizer turns text into quantities for usage events.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// encodingForClass maps resource-class prefixes with a published encoding.
var encodingForClass = []struct {
	prefix   string
	encoding tokenizer.Encoding
}{
	{"gpt-4o", tokenizer.O200kBase},
	{"o1", tokenizer.O200kBase},
	{"o3", tokenizer.O200kBase},
	{"gpt-4", tokenizer.Cl100kBase},
	{"gpt-3.5", tokenizer.Cl100kBase},
}

// Encoding returns the encoding used to count text for class and whether it
// is exact for that class. Classes without a published encoding are
// approximated with cl100k_base.
func Encoding(class string) (tokenizer.Encoding, bool) {
	class = strings.ToLower(strings.TrimSpace(class))
	for _, e := range encodingForClass {
		if strings.HasPrefix(class, e.prefix) {
			return e.encoding, true
		}
	}
	return tokenizer.Cl100kBase, false
}

// CountTokens returns the number of units text consumes for class.
func CountTokens(text, class string) (int64, error) {
	if text == "" {
		return 0, nil
	}

	encName, _ := Encoding(class)
	enc, err := tokenizer.Get(encName)
	if err != nil {
		return 0, fmt.Errorf("load encoding %s: %w", encName, err)
	}

	ids, _, err := enc.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode text: %w", err)
	}

	return int64(len(ids)), nil
}

// Estimate approximates the unit count at four characters per unit.
func Estimate(text string) int64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}
	return int64((len(text) + 3) / 4)
}
