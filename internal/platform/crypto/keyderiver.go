package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// recordSalt is fixed so the same passphrase always derives the same key.
// Records encrypted in one process lifetime must remain readable in the next.
const recordSalt = "intake_record_salt_2025"

// kdfIterations is the PBKDF2 iteration count. Raising it invalidates nothing
// (the salt and passphrase fully determine the key), but both peers of a
// deployment must agree on the value.
const kdfIterations = 100_000

// KeySize is the AES-256 key length produced by DeriveKey and required by
// NewRecordCipher.
const KeySize = 32

// DeriveKey stretches a passphrase into a 32-byte AES-256 key using
// PBKDF2-HMAC-SHA256 with a fixed salt. Deterministic: equal passphrases
// yield equal keys. An empty passphrase is accepted and produces a valid
// (weak) key; rejecting it is the caller's policy decision, not this
// package's.
func DeriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(recordSalt), kdfIterations, KeySize, sha256.New)
}
