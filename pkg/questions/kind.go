package questions

import (
	"errors"
	"fmt"
)

// ErrUnknownGenerator is returned when content names a generator that does not exist.
var ErrUnknownGenerator = errors.New("unknown question generator")

// Kind identifies a question generator.
type Kind int

const (
	// KindDecToHex asks for the hexadecimal form of a decimal number.
	KindDecToHex Kind = iota + 1
	// KindSimpleMath asks for the sum of two small integers.
	KindSimpleMath
)

var kindNames = map[Kind]string{
	KindDecToHex:   "generate_dec_to_hex",
	KindSimpleMath: "generate_simple_math",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindDecToHex, KindSimpleMath}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a content-facing generator name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
}
