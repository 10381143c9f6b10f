package referral

import (
	"strings"

	"maitree/apperr"
	"maitree/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	codePrefix   = "MM"
	codeAttempts = 10
)

// GenerateCode builds "MM" + the last four alphanumerics of identifier +
// four random characters, all upper case.
func GenerateCode(identifier string) string {
	var tail []rune
	for _, r := range strings.ToUpper(identifier) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			tail = append(tail, r)
		}
	}
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return codePrefix + string(tail) + randomSuffix(4)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomSuffix draws from the leading uuid bytes, which are all random; n must not exceed 6
func randomSuffix(n int) string {
	id := uuid.New()
	out := make([]byte, n)
	for i := range out {
		out[i] = codeAlphabet[int(id[i])%len(codeAlphabet)]
	}
	return string(out)
}

// NewUniqueCode generates codes until one is not taken
func NewUniqueCode(db *gorm.DB, identifier string) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := GenerateCode(identifier)
		exists, err := repository.ReferralCodeExists(db, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.InvalidState("Could not generate a unique referral code")
}
