package lake

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/terraincognita07/integra/internal/models"
)

var errDecryptFailed = errors.New("decrypt failed")

// EncryptRecord serializes a record and seals it to the recipient public key.
func EncryptRecord(record models.Record, recipient string) ([]byte, error) {
	recipientKey, err := parseKey(recipient)
	if err != nil {
		return nil, fmt.Errorf("recipient key: %w", err)
	}

	plaintext, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	ciphertext, err := box.SealAnonymous(nil, plaintext, recipientKey, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal record: %w", err)
	}
	return ciphertext, nil
}

// DecryptRecord opens a sealed record with the identity private key.
func DecryptRecord(ciphertext []byte, identity string) (models.Record, error) {
	identityKey, err := parseKey(identity)
	if err != nil {
		return nil, fmt.Errorf("identity key: %w", err)
	}
	publicKey, err := publicFromIdentity(identityKey)
	if err != nil {
		return nil, err
	}

	plaintext, ok := box.OpenAnonymous(nil, ciphertext, publicKey, identityKey)
	if !ok {
		return nil, errDecryptFailed
	}

	record := models.Record{}
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return record, nil
}
