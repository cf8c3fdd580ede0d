package model

import (
	"fmt"
	"strings"
)

// Keyword is the Gherkin keyword a step was declared with.
type Keyword int

// Keyword constants.
const (
	KeywordNone Keyword = iota
	KeywordGiven
	KeywordWhen
	KeywordThen
	KeywordAnd
	KeywordBut
	KeywordWildCard
)

var keywordNames = map[Keyword]string{
	KeywordNone:     "",
	KeywordGiven:    "Given",
	KeywordWhen:     "When",
	KeywordThen:     "Then",
	KeywordAnd:      "And",
	KeywordBut:      "But",
	KeywordWildCard: "*",
}

// String returns the keyword as written in a feature file.
func (k Keyword) String() string {
	return keywordNames[k]
}

// ParseKeyword parses a Gherkin keyword, case insensitive.
func ParseKeyword(in string) (Keyword, error) {
	in = strings.TrimSpace(in)
	for k, name := range keywordNames {
		if strings.EqualFold(name, in) {
			return k, nil
		}
	}
	return KeywordNone, fmt.Errorf("unknown keyword %q", in)
}

// MarshalText implements encoding.TextMarshaler.
func (k Keyword) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Keyword) UnmarshalText(b []byte) error {
	parsed, err := ParseKeyword(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
