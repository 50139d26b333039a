// Package identity resolves session tokens and credentials to user rows,
// fronted by the short-TTL session and login cache classes.
package identity

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"github.com/picshare/readpath/internal/models"
)

// Verifier compares a submitted password against a stored digest. The
// digest format is fixed by the existing user rows in the store of record,
// so it is pinned here and nowhere else.
type Verifier interface {
	Digest(accountName, password string) string
	Verify(user *models.User, password string) bool
}

// SHA512Verifier implements the salted digest the user rows were created
// with: hex(sha512(password + ":" + hex(sha512(accountName)))).
type SHA512Verifier struct{}

func NewSHA512Verifier() *SHA512Verifier {
	return &SHA512Verifier{}
}

func (v *SHA512Verifier) Digest(accountName, password string) string {
	salt := sha512.Sum512([]byte(accountName))
	sum := sha512.Sum512([]byte(password + ":" + hex.EncodeToString(salt[:])))
	return hex.EncodeToString(sum[:])
}

func (v *SHA512Verifier) Verify(user *models.User, password string) bool {
	digest := v.Digest(user.AccountName, password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(user.Passhash)) == 1
}
