package models

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// NewID 產生 128 位元隨機 ID，以 base64url (無 padding) 編碼
func NewID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}

// DecodeID 驗證並還原 NewID 產生的字串
func DecodeID(id string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return u, nil
}
