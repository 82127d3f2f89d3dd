package service

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
)

// OTPGenerator issues boarding codes bound to a ride.
type OTPGenerator interface {
	Generate() (string, error)
}

// CryptoOTP generates 6-digit codes with a uniform distribution over
// [100000, 999999].
type CryptoOTP struct{}

// NewCryptoOTP creates a new CryptoOTP.
func NewCryptoOTP() *CryptoOTP {
	return &CryptoOTP{}
}

// Generate returns a fresh 6-digit code.
func (g *CryptoOTP) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// VerifyOTP compares a supplied code against the stored one without
// leaking the mismatch position through timing.
func VerifyOTP(supplied, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}
