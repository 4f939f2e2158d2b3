package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// AESGCMEncryption seals values with a key derived from the configured
// seed. Each ciphertext carries its own random nonce and binds the user id
// as additional data.
type AESGCMEncryption struct {
	aead cipher.AEAD
}

func NewAESGCMEncryption(seed string) (*AESGCMEncryption, error) {
	if seed == "" {
		return nil, errors.New("encryption seed is required")
	}
	key := sha256.Sum256([]byte(seed))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMEncryption{aead: aead}, nil
}

func (e *AESGCMEncryption) Encrypt(userID string, value string) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(userID))
	return []byte(base64.StdEncoding.EncodeToString(sealed)), nil
}

func (e *AESGCMEncryption) Decrypt(userID string, payload []byte) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	size := e.aead.NonceSize()
	if len(decoded) < size {
		return "", errors.New("ciphertext too short")
	}
	plain, err := e.aead.Open(nil, decoded[:size], decoded[size:], []byte(userID))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
