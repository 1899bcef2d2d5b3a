package utils

import (
	"crypto/aes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrCipher is returned when a card number cannot be encrypted or decrypted.
var ErrCipher = errors.New("card number cipher failure")

// CardEncryptor encrypts and decrypts card numbers with a fixed AES key.
// Encryption is deterministic: the same plaintext always produces the same
// ciphertext, which lets the card store enforce number uniqueness directly
// on the encrypted column.
type CardEncryptor struct {
	key []byte
}

// NewCardEncryptor builds an encryptor from the configured key material.
// Keys that are not 16, 24, or 32 bytes are truncated or zero-padded to
// 16 bytes. This keeps old ciphertext readable and is not a recommendation;
// provide a proper AES key in production.
func NewCardEncryptor(encryptionKey string) *CardEncryptor {
	keyBytes := []byte(encryptionKey)
	if len(keyBytes) != 16 && len(keyBytes) != 24 && len(keyBytes) != 32 {
		adjusted := make([]byte, 16)
		copy(adjusted, keyBytes)
		keyBytes = adjusted
	}
	return &CardEncryptor{key: keyBytes}
}

// Encrypt encrypts a card number and returns it base64-encoded.
func (e *CardEncryptor) Encrypt(cardNumber string) (string, error) {
	if len(cardNumber) == 0 {
		return "", fmt.Errorf("%w: card number is empty", ErrCipher)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}

	// PKCS#7 padding
	data := []byte(cardNumber)
	padding := aes.BlockSize - len(data)%aes.BlockSize
	for i := 0; i < padding; i++ {
		data = append(data, byte(padding))
	}

	ciphertext := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Encrypt(ciphertext[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a base64-encoded card number produced by Encrypt.
func (e *CardEncryptor) Decrypt(encryptedCardNumber string) (string, error) {
	if len(encryptedCardNumber) == 0 {
		return "", fmt.Errorf("%w: encrypted card number is empty", ErrCipher)
	}

	data, err := base64.StdEncoding.DecodeString(encryptedCardNumber)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrCipher, err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext length %d", ErrCipher, len(data))
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}

	plaintext := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Decrypt(plaintext[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}

	// Strip PKCS#7 padding
	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(plaintext) {
		return "", fmt.Errorf("%w: invalid padding value %d", ErrCipher, padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("%w: corrupt padding", ErrCipher)
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}

// MaskCardNumber replaces all but the last four characters of a card number
// with asterisks, grouped in blocks of four: "**** **** **** 3456".
// Numbers shorter than four characters are returned unchanged.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return cardNumber
	}

	lastFour := cardNumber[len(cardNumber)-4:]
	var masked strings.Builder
	for i := 0; i < len(cardNumber)-4; i++ {
		if i > 0 && i%4 == 0 {
			masked.WriteByte(' ')
		}
		masked.WriteByte('*')
	}

	return masked.String() + " " + lastFour
}

// GenerateCardNumber generates a card number with the specified prefix and
// length. Used by the seeder and tests.
func GenerateCardNumber(prefix string, length int) (string, error) {
	if length < len(prefix) || length > 19 {
		return "", fmt.Errorf("invalid card number length: %d", length)
	}

	digits := make([]byte, length-len(prefix))
	if _, err := rand.Read(digits); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for _, b := range digits {
		builder.WriteByte(b%10 + '0')
	}

	return builder.String(), nil
}
