package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrDecryptionFailed is returned when a ciphertext cannot be authenticated
// against the current key: wrong key, truncation, or tampering. Callers must
// treat the field as unavailable; no partial plaintext is ever returned.
var ErrDecryptionFailed = errors.New("record decryption failed")

// IVSize is the length of the per-row initialization vector stored alongside
// ciphertext. The AES-GCM nonce is carried inside each ciphertext; this value
// exists for schema and audit parity and is not consumed during decryption.
const IVSize = 16

// RecordCipher performs authenticated encryption of JSON-serializable record
// payloads with AES-256-GCM. A single cipher, built once from the derived key
// at startup, serves the whole process lifetime; there is no key rotation and
// no version tag in the ciphertext format.
type RecordCipher struct {
	aead cipher.AEAD
}

// NewRecordCipher creates a RecordCipher from a 32-byte AES-256 key,
// typically the output of DeriveKey.
func NewRecordCipher(key []byte) (*RecordCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("record cipher: key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("record cipher: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("record cipher: create GCM: %w", err)
	}

	return &RecordCipher{aead: aead}, nil
}

// Encrypt serializes payload to JSON and seals it with a fresh random nonce
// prepended to the ciphertext. The second return value is an independently
// generated 16-byte IV stored next to the ciphertext for audit purposes; it
// plays no role in decryption.
func (c *RecordCipher) Encrypt(payload any) (ciphertext, iv []byte, err error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("record encrypt: marshal payload: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("record encrypt: generate nonce: %w", err)
	}

	iv = make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("record encrypt: generate iv: %w", err)
	}

	// Seal appends the ciphertext to nonce, so the result is nonce + ciphertext.
	return c.aead.Seal(nonce, nonce, data, nil), iv, nil
}

// Decrypt opens a ciphertext produced by Encrypt and unmarshals the JSON
// payload into out. Any authentication or framing failure yields
// ErrDecryptionFailed.
func (c *RecordCipher) Decrypt(ciphertext []byte, out any) error {
	nonceSize := c.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("record decrypt: unmarshal payload: %w", err)
	}
	return nil
}
