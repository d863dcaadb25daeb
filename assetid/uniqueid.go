package assetid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewUniqueID 8 lowercase hex characters from crypto/rand
func NewUniqueID() (string, error) {
	var b [UniqueIDLen / 2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("assetid: read random: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// New build an identifier with a fresh unique id
func New(params BuildParams) (string, error) {
	uid, err := NewUniqueID()
	if err != nil {
		return "", err
	}
	params.UniqueID = uid
	return Build(params)
}
