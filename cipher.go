// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"crypto/cipher"
	"encoding/binary"
)

// Cipher is the payload keystream. Byte i of a region is XORed with byte i%4
// (little-endian) of the generator state after i/4 advances from the region magic.
// Encoding and decoding are the same operation.
type Cipher struct {
	// key is generator word covering the current 4-byte group.
	key Magic
	// offset is number of bytes already processed.
	offset uint64
}

var _ cipher.Stream = (*Cipher)(nil)

// NewCipher returns keystream positioned at the first byte of a region seeded by magic.
func NewCipher(magic Magic) *Cipher {
	return &Cipher{key: magic}
}

// Magic returns generator state covering the next byte.
func (c *Cipher) Magic() Magic {
	return c.key
}

// Offset returns number of bytes processed so far.
func (c *Cipher) Offset() uint64 {
	return c.offset
}

// XORKeyStream XORs each byte of src with the keystream and writes result to dst.
// dst and src may overlap entirely. Calls may split the stream at any byte.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("rgssad: output smaller than input")
	}

	i := 0
	// Finish the word a previous call stopped inside.
	for ; i < len(src) && c.offset%4 != 0; i++ {
		dst[i] = src[i] ^ c.keyByte()
		c.step()
	}

	for ; i+4 <= len(src); i += 4 {
		w := binary.LittleEndian.Uint32(src[i:]) ^ c.key.Advance()
		binary.LittleEndian.PutUint32(dst[i:], w)
		c.offset += 4
	}

	for ; i < len(src); i++ {
		dst[i] = src[i] ^ c.keyByte()
		c.step()
	}
}

// keyByte returns keystream byte for current offset.
func (c *Cipher) keyByte() byte {
	return byte(c.key >> (8 * (c.offset % 4)))
}

// step moves one byte forward and advances generator at word boundary.
func (c *Cipher) step() {
	c.offset++
	if c.offset%4 == 0 {
		c.key.Advance()
	}
}

// xorLegacyName ciphers a version 1/2 name in place.
// The table generator advances once per byte and only its low byte is used.
func xorLegacyName(name []byte, m *Magic) {
	for i := range name {
		name[i] ^= byte(m.Advance())
	}
}

// xorModernName ciphers a version 3 name in place with the cycling 4-byte table mask.
func xorModernName(name []byte, m Magic) {
	for i := range name {
		name[i] ^= byte(m >> (8 * (i % 4)))
	}
}
