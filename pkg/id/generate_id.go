// Package id generates the public identifiers handed out by the pipeline.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// LoanNumberPrefix is prepended to every generated loan number.
const LoanNumberPrefix = "LN-"

// loanNumberAlphabet drops 0/O and 1/I so numbers survive being read over the phone.
const loanNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const loanNumberLength = 8

// NewID32 returns exactly 32 lowercase hex characters.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewLoanNumber returns a human-readable reference such as "LN-7KQ2M9XD".
func NewLoanNumber() (string, error) {
	s, err := nanoid.Generate(loanNumberAlphabet, loanNumberLength)
	if err != nil {
		return "", fmt.Errorf("id: loan number: %w", err)
	}
	return LoanNumberPrefix + s, nil
}
