// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

// Magic is a keystream generator state (seed) for one ciphered region.
// All arithmetic wraps modulo 2^32.
type Magic uint32

// Keystream seeds used by the format.
const (
	// LegacyMagic seeds the version 1/2 table cipher.
	LegacyMagic Magic = 0xDEADCAFE
	// DefaultEntryMagic is the payload seed assigned to every version 3 entry on pack.
	DefaultEntryMagic Magic = 0xDEADCAFE
)

// Next returns the state following m.
func (m Magic) Next() Magic {
	return m*7 + 3
}

// Advance moves generator one word forward and returns the word it was sitting on.
func (m *Magic) Advance() uint32 {
	old := *m
	*m = old.Next()
	return uint32(old)
}

// TableMagic derives the constant version 3 table mask from the stored seed.
func TableMagic(seed uint32) Magic {
	return Magic(seed*9 + 3)
}
