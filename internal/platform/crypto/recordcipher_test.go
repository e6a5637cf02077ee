package crypto

import (
	"crypto/rand"
	"errors"
	"reflect"
	"testing"
)

func newTestCipher(t *testing.T) *RecordCipher {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate test key: %v", err)
	}
	c, err := NewRecordCipher(key)
	if err != nil {
		t.Fatalf("create cipher: %v", err)
	}
	return c
}

func TestNewRecordCipher_KeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		if _, err := NewRecordCipher(make([]byte, n)); err == nil {
			t.Errorf("expected error for %d-byte key", n)
		}
	}
}

func TestRecordCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"symptoms", map[string]any{"fever": map[string]any{"severity": "high"}}},
		{"free text", map[string]any{"analysis": "Patient reports persistent dry cough for 3 days."}},
		{"qa pairs", map[string]any{"qa_pairs": []any{
			map[string]any{"question": "How long?", "answer": "3 days"},
			map[string]any{"question": "Severity 1-10?", "answer": "7"},
		}}},
		{"empty object", map[string]any{}},
		{"unicode", map[string]any{"note": "температура 39°C, सिरदर्द"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, iv, err := c.Encrypt(tc.payload)
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			if len(iv) != IVSize {
				t.Errorf("expected %d-byte iv, got %d", IVSize, len(iv))
			}

			var got map[string]any
			if err := c.Decrypt(ciphertext, &got); err != nil {
				t.Fatalf("decrypt: %v", err)
			}
			if !reflect.DeepEqual(got, tc.payload) {
				t.Errorf("roundtrip mismatch: got %v, want %v", got, tc.payload)
			}
		})
	}
}

func TestRecordCipher_IVIndependentOfNonce(t *testing.T) {
	c := newTestCipher(t)

	_, iv1, err := c.Encrypt(map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("encrypt 1: %v", err)
	}
	_, iv2, err := c.Encrypt(map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("encrypt 2: %v", err)
	}

	if string(iv1) == string(iv2) {
		t.Error("each encryption should generate a fresh iv")
	}
}

func TestRecordCipher_TamperEvidence(t *testing.T) {
	c := newTestCipher(t)

	ciphertext, _, err := c.Encrypt(map[string]string{"diagnosis": "viral URI"})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// Flipping any single byte must fail authentication, never decode to a
	// different-looking payload.
	for i := range ciphertext {
		corrupted := make([]byte, len(ciphertext))
		copy(corrupted, ciphertext)
		corrupted[i] ^= 0x01

		var out map[string]string
		if err := c.Decrypt(corrupted, &out); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("byte %d: expected ErrDecryptionFailed, got %v", i, err)
		}
	}
}

func TestRecordCipher_CrossKeyIsolation(t *testing.T) {
	c1 := newTestCipher(t)
	c2 := newTestCipher(t)

	ciphertext, _, err := c1.Encrypt(map[string]string{"treatment": "rest and fluids"})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	var out map[string]string
	if err := c2.Decrypt(ciphertext, &out); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed under a different key, got %v", err)
	}
}

func TestRecordCipher_TruncatedCiphertext(t *testing.T) {
	c := newTestCipher(t)

	var out map[string]string
	if err := c.Decrypt([]byte{0x01, 0x02, 0x03}, &out); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for truncated input, got %v", err)
	}
}

func TestRecordCipher_DerivedKeyRoundTrip(t *testing.T) {
	c, err := NewRecordCipher(DeriveKey("MedicalAssistant2025SecureKey!"))
	if err != nil {
		t.Fatalf("create cipher from derived key: %v", err)
	}

	payload := map[string]any{"chief_complaint": "fever and cough"}
	ciphertext, _, err := c.Encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// A cipher rebuilt from the same passphrase must read the record back.
	c2, err := NewRecordCipher(DeriveKey("MedicalAssistant2025SecureKey!"))
	if err != nil {
		t.Fatalf("rebuild cipher: %v", err)
	}
	var got map[string]any
	if err := c2.Decrypt(ciphertext, &got); err != nil {
		t.Fatalf("decrypt with rebuilt cipher: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("got %v, want %v", got, payload)
	}
}
