package questions

import (
	"fmt"
	"strconv"
)

// Question is a generated prompt and the answer it expects.
// Answer is always lowercase so it can be compared against normalized input.
type Question struct {
	Prompt string
	Answer string
}

// Generator builds a question from random draws.
type Generator func(src Source) Question

var generators = map[Kind]Generator{
	KindDecToHex:   decToHex,
	KindSimpleMath: simpleMath,
}

func decToHex(src Source) Question {
	n := between(src, 1, 65535)
	return Question{
		Prompt: strconv.Itoa(n),
		Answer: fmt.Sprintf("%04x", n),
	}
}

func simpleMath(src Source) Question {
	a := between(src, 5, 50)
	b := between(src, 5, 50)
	return Question{
		Prompt: fmt.Sprintf("%d + %d", a, b),
		Answer: strconv.Itoa(a + b),
	}
}

// Registry dispatches generator names to their generators.
// The set of generators is fixed; only the random source is configurable.
type Registry struct {
	src Source
}

// Option configures a Registry.
type Option func(*Registry)

// WithSource overrides the random source.
func WithSource(src Source) Option {
	return func(r *Registry) {
		if src != nil {
			r.src = src
		}
	}
}

// NewRegistry creates a registry backed by the process-wide random source unless overridden.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{src: globalSource{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Has reports whether name refers to a known generator.
func (r *Registry) Has(name string) bool {
	_, err := ParseKind(name)
	return err == nil
}

// Generate produces a question for the named generator.
// Unknown names yield an error wrapping ErrUnknownGenerator.
func (r *Registry) Generate(name string) (Question, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return Question{}, err
	}
	return r.GenerateKind(kind), nil
}

// GenerateKind produces a question for a known kind.
func (r *Registry) GenerateKind(kind Kind) Question {
	gen, ok := generators[kind]
	if !ok {
		return Question{}
	}
	return gen(r.src)
}

// Names returns the content-facing names of every generator.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(kindNames))
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	return names
}
