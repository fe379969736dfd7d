// Package password turns plaintext passwords into stored digests and checks
// them back.
package password

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by New.
const (
	Bcrypt = "bcrypt"
	MD5    = "md5"
)

// Hasher is a one-way password digest function.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// New returns the hasher registered under name. A cost of zero selects
// bcrypt.DefaultCost.
func New(name string, cost int) (Hasher, error) {
	switch name {
	case "", Bcrypt:
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return BcryptHasher{Cost: cost}, nil
	case MD5:
		return MD5Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// BcryptHasher produces salted bcrypt digests. The plaintext is first reduced
// to a base64 SHA-256 sum, so passwords of any length fit bcrypt's 72 byte
// input limit and no two passwords share a truncated prefix.
type BcryptHasher struct {
	Cost int
}

func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), prehash(plaintext)) == nil
}

// MD5Hasher produces unsalted hex MD5 digests. It only exists to read
// accounts created by the legacy deployment and should not be used for new
// installs.
type MD5Hasher struct{}

func (MD5Hasher) Hash(plaintext string) (string, error) {
	sum := md5.Sum([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

func (h MD5Hasher) Verify(plaintext, digest string) bool {
	got, _ := h.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}
