// Package idgen produces short prefixed identifiers for portal records.
//
// Identifiers are random but not cryptographically strong, and nothing checks
// them for uniqueness against stored records.
package idgen

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is used when Generate is given an empty prefix
const DefaultPrefix = "ID"

// SuffixLength is the number of base-36 characters after the prefix
const SuffixLength = 9

// Generator builds identifiers from a source of random UUIDs
type Generator struct {
	source func() uuid.UUID
}

// New returns a Generator backed by random (version 4) UUIDs
func New() *Generator {
	return &Generator{source: uuid.New}
}

// NewWithSource returns a Generator that draws randomness from source
func NewWithSource(source func() uuid.UUID) *Generator {
	return &Generator{source: source}
}

// Generate returns prefix followed by SuffixLength uppercase base-36 characters
func (g *Generator) Generate(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id := g.source()
	n := binary.BigEndian.Uint64(id[8:])

	suffix := strconv.FormatUint(n, 36)
	if len(suffix) > SuffixLength {
		suffix = suffix[len(suffix)-SuffixLength:]
	} else if len(suffix) < SuffixLength {
		suffix = strings.Repeat("0", SuffixLength-len(suffix)) + suffix
	}
	return prefix + strings.ToUpper(suffix)
}
