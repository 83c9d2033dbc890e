// Package crypto implements the symmetric packet encryption shared by server
// and clients: AES-256-GCM keyed by PBKDF2-HMAC-SHA256 over a shared password.
//
// Ciphertext layout:
//
//	iv (16) | salt (16) | encrypted data | GCM tag (16)
//
// Packet-level helpers additionally prefix the plaintext with an 8-byte
// big-endian unix timestamp in milliseconds and reject stale packets.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize    = 32
	ivSize     = 16
	saltSize   = 16
	tagSize    = 16
	iterations = 65535

	timestampSize = 8
)

// PacketTimeout is the maximum clock difference accepted by DecryptPacket.
const PacketTimeout = 2 * time.Minute

var (
	// ErrCiphertextTooShort is returned for input that cannot hold iv, salt and tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrDecrypt is returned when authentication fails (wrong key or tampered data).
	ErrDecrypt = errors.New("decryption failed")
	// ErrInvalidTimestamp is returned for packets outside PacketTimeout.
	ErrInvalidTimestamp = errors.New("invalid packet timestamp")
)

// Encrypt seals data with a key derived from password and a fresh random salt.
func Encrypt(data []byte, password string) ([]byte, error) {
	out := make([]byte, ivSize+saltSize, ivSize+saltSize+len(data)+tagSize)
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, fmt.Errorf("rand.Read(): %w", err)
	}
	iv, salt := out[:ivSize], out[ivSize:ivSize+saltSize]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	return gcm.Seal(out, iv, data, nil), nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < ivSize+saltSize+tagSize {
		return nil, ErrCiphertextTooShort
	}
	iv, salt := data[:ivSize], data[ivSize:ivSize+saltSize]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, iv, data[ivSize+saltSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	return plain, nil
}

// EncryptPacket timestamps data with the current time and encrypts it.
func EncryptPacket(data []byte, password string) ([]byte, error) {
	return EncryptPacketAt(data, password, time.Now())
}

// EncryptPacketAt is EncryptPacket with an explicit clock.
func EncryptPacketAt(data []byte, password string, now time.Time) ([]byte, error) {
	buf := make([]byte, timestampSize+len(data))
	binary.BigEndian.PutUint64(buf, uint64(now.UnixMilli()))
	copy(buf[timestampSize:], data)

	return Encrypt(buf, password)
}

// DecryptPacket decrypts data produced by EncryptPacket and checks its timestamp.
func DecryptPacket(data []byte, password string) ([]byte, error) {
	return DecryptPacketAt(data, password, time.Now())
}

// DecryptPacketAt is DecryptPacket with an explicit clock.
func DecryptPacketAt(data []byte, password string, now time.Time) ([]byte, error) {
	plain, err := Decrypt(data, password)
	if err != nil {
		return nil, err
	}
	if len(plain) < timestampSize {
		return nil, ErrCiphertextTooShort
	}

	sent := time.UnixMilli(int64(binary.BigEndian.Uint64(plain)))
	if diff := now.Sub(sent); diff > PacketTimeout || diff < -PacketTimeout {
		return nil, fmt.Errorf("%w: off by %s", ErrInvalidTimestamp, diff.Round(time.Millisecond))
	}

	return plain[timestampSize:], nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher(): %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCMWithNonceSize(): %w", err)
	}

	return gcm, nil
}
