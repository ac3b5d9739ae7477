package lake

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

var errBadKeyLength = errors.New("key must be 32 bytes of hex")

// GenerateKeyPair returns a fresh recipient/identity pair, hex-encoded.
// Records are encrypted to the recipient key and decrypted with the
// identity key.
func GenerateKeyPair() (recipient string, identity string, err error) {
	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate keypair: %w", err)
	}
	return hex.EncodeToString(publicKey[:]), hex.EncodeToString(privateKey[:]), nil
}

func parseKey(value string) (*[32]byte, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errBadKeyLength
	}
	key := new([32]byte)
	copy(key[:], raw)
	return key, nil
}

func publicFromIdentity(identity *[32]byte) (*[32]byte, error) {
	raw, err := curve25519.X25519(identity[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	key := new([32]byte)
	copy(key[:], raw)
	return key, nil
}
