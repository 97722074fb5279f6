package dirauditor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint32
	}{
		{name: "empty", data: []byte{}, expected: 0},
		{name: "nil", data: nil, expected: 0},
		{name: "one word", data: []byte{0x01, 0x02}, expected: 0x00000102},
		{name: "single odd byte", data: []byte{0xFF}, expected: 0x0000FF00},
		{name: "odd length", data: []byte{0x01, 0x02, 0x03}, expected: 0x0202},
		{name: "words cancel", data: []byte{0xAB, 0xCD, 0xAB, 0xCD}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Checksum(tt.data))
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	first := Checksum(data)
	second := Checksum(append([]byte(nil), data...))
	assert.Equal(t, first, second)
	assert.LessOrEqual(t, first, uint32(0xFFFF), "only 16 bits are ever set")
}

func TestSignature_Boundaries(t *testing.T) {
	tenBytes := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name     string
		data     []byte
		length   int
		expected []byte
	}{
		{name: "empty file", data: []byte{}, length: 4, expected: []byte{}},
		{name: "clamped to file length", data: []byte{0xAA, 0xBB}, length: 4, expected: []byte{0xAA, 0xBB}},
		{name: "centred in ten bytes", data: tenBytes, length: 4, expected: []byte{3, 4, 5, 6}},
		{name: "default length", data: tenBytes, length: 0, expected: []byte{3, 4, 5, 6}},
		{name: "odd window", data: tenBytes, length: 3, expected: []byte{4, 5, 6}},
		{name: "whole file", data: tenBytes, length: 10, expected: tenBytes},
		{name: "five bytes", data: []byte{1, 2, 3, 4, 5}, length: 4, expected: []byte{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Signature(tt.data, tt.length))
		})
	}
}

func TestSignature_ReturnsCopy(t *testing.T) {
	data := []byte("abcdefgh")
	sig := Signature(data, 4)
	data[3] = 'X'
	assert.Equal(t, []byte("cdef"), sig)
}

func TestFileFingerprint_Comparison(t *testing.T) {
	a := NewFingerprint("a.txt", []byte("hello world"), DefaultSignatureLength)
	b := NewFingerprint("b.txt", []byte("hello world"), DefaultSignatureLength)
	c := NewFingerprint("a.txt", []byte("hello there"), DefaultSignatureLength)

	assert.True(t, a.SameContent(b))
	assert.False(t, a.SameContent(c))
	assert.Equal(t, a.contentKey(), b.contentKey())
	assert.NotEqual(t, a.contentKey(), c.contentKey())
}
