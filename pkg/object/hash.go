package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashSize is the length in bytes of a raw object address.
const HashSize = sha1.Size

// ZeroHash is the all-zero address. No stored object has it.
const ZeroHash = Hash("0000000000000000000000000000000000000000")

// HashBytes computes the SHA-1 of data exactly as given. For a canonical
// object encoding this is the object's address.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "type len\0content",
// which is the address Git assigns the same object.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(envelopeHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashFromRaw converts a 20-byte raw digest into its hex form.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return "", fmt.Errorf("%w: raw length %d, want %d", ErrInvalidHash, len(raw), HashSize)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// ParseHash validates s as a full hex address. Upper-case input is accepted
// and normalized.
func ParseHash(s string) (Hash, error) {
	if len(s) != 2*HashSize {
		return "", fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidHash, s, len(s), 2*HashSize)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidHash, s, err)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Raw returns the 20-byte binary form of h.
func (h Hash) Raw() ([]byte, error) {
	if len(h) != 2*HashSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, string(h))
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidHash, string(h), err)
	}
	return raw, nil
}

// Short returns the first 7 characters of h, or h itself if shorter.
func (h Hash) Short() string {
	if len(h) > 7 {
		return string(h[:7])
	}
	return string(h)
}

func (h Hash) String() string {
	return string(h)
}
