package ports

// Encryption seals contact fields at rest. The user id is bound as
// additional data so a ciphertext cannot be moved between profiles.
type Encryption interface {
	Encrypt(userID string, value string) ([]byte, error)
	Decrypt(userID string, payload []byte) (string, error)
}
