package dirauditor

import (
	"bytes"
	"fmt"
)

// FileFingerprint identifies one scanned file by path and cheap content fingerprint
type FileFingerprint struct {
	RelativePath string `json:"path"`
	Checksum     uint32 `json:"checksum"`
	Signature    []byte `json:"signature"`
}

// NewFingerprint computes the fingerprint of data stored under relPath.
// A signatureLength <= 0 selects DefaultSignatureLength.
func NewFingerprint(relPath string, data []byte, signatureLength int) FileFingerprint {
	return FileFingerprint{
		RelativePath: relPath,
		Checksum:     Checksum(data),
		Signature:    Signature(data, signatureLength),
	}
}

// Checksum folds data into a 32-bit value by XORing big-endian 16-bit words.
// An odd trailing byte forms the high half of a final word. This is a fast
// similarity hash, not an integrity check.
func Checksum(data []byte) uint32 {
	var sum uint32
	n := len(data)
	for i := 0; i < n; i += 2 {
		word := uint32(data[i]) << 8
		if i+1 < n {
			word |= uint32(data[i+1])
		}
		sum ^= word
	}
	return sum
}

// Signature returns a copy of up to length bytes centred on the middle of data
func Signature(data []byte, length int) []byte {
	if length <= 0 {
		length = DefaultSignatureLength
	}
	n := len(data)
	if n == 0 {
		return []byte{}
	}

	k := min(length, n)
	start := max(0, n/2-k/2)
	if start+k > n {
		start = n - k
	}

	sig := make([]byte, k)
	copy(sig, data[start:start+k])
	return sig
}

// SameContent reports whether both fingerprints have identical checksum and signature
func (f FileFingerprint) SameContent(other FileFingerprint) bool {
	return f.Checksum == other.Checksum && bytes.Equal(f.Signature, other.Signature)
}

// contentKey returns a map key for the checksum+signature pair
func (f FileFingerprint) contentKey() string {
	return fmt.Sprintf("%08x:%x", f.Checksum, f.Signature)
}

func (f FileFingerprint) String() string {
	return fmt.Sprintf("%s (checksum=%d signature=%x)", f.RelativePath, f.Checksum, f.Signature)
}
