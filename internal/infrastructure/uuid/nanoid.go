package uuid

import gonanoid "github.com/matoous/go-nanoid"

// LowerAlphanumeric url and yaml friendly alphabet for authored content ids
const LowerAlphanumeric = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator UUID generator interface
type Generator interface {
	Generate() (string, error)
}

// NanoIDGenerator UUID implementation using NanoID
type NanoIDGenerator struct {
	Length   int
	Alphabet string // empty means the default nanoid alphabet
}

var _ Generator = &NanoIDGenerator{}

// NewNanoIDGenerator create a new `NanoIDGenerator` instance
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length < 1 {
		panic("length must be larger than 1")
	}
	return &NanoIDGenerator{Length: length}
}

// WithAlphabet returns a copy generating ids from alphabet
func (ns *NanoIDGenerator) WithAlphabet(alphabet string) *NanoIDGenerator {
	return &NanoIDGenerator{Length: ns.Length, Alphabet: alphabet}
}

// Generate generate UUID
func (ns *NanoIDGenerator) Generate() (string, error) {
	if ns.Alphabet != "" {
		return gonanoid.Generate(ns.Alphabet, ns.Length)
	}
	return gonanoid.Nanoid(ns.Length)
}
