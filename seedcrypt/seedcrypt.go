// Package seedcrypt encrypts wallet seeds at rest with Argon2id key
// stretching and AES-256-GCM.
package seedcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/peakwallet/walletcore/internal/wipe"
)

var (
	ErrEncryption = errors.New("seedcrypt: encryption failed")
	ErrDecryption = errors.New("seedcrypt: decryption failed")
)

// Argon2id parameters: 3 passes over 64 MiB with 4 lanes.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4

	saltSize = 16
	keySize  = 32
)

// EncryptedSeed is a sealed seed. Ciphertext carries the GCM nonce as its
// first 12 bytes.
type EncryptedSeed struct {
	Ciphertext []byte `json:"ciphertext"`
	Salt       []byte `json:"salt"`
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// Encrypt seals the seed under a password with a fresh random salt and
// nonce. The derived key is wiped before returning.
func Encrypt(seed, password []byte) (*EncryptedSeed, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	key := deriveKey(password, salt)
	defer wipe.Bytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	ciphertext := aead.Seal(nonce, nonce, seed, nil)
	return &EncryptedSeed{Ciphertext: ciphertext, Salt: salt}, nil
}

// Decrypt opens a sealed seed. A wrong password surfaces as ErrDecryption
// from the GCM tag check.
func Decrypt(sealed *EncryptedSeed, password []byte) ([]byte, error) {
	key := deriveKey(password, sealed.Salt)
	defer wipe.Bytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	if len(sealed.Ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}
	nonce, ciphertext := sealed.Ciphertext[:aead.NonceSize()], sealed.Ciphertext[aead.NonceSize():]

	seed, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return seed, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
