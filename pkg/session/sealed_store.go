package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrUnsealable = errors.New("stored token cannot be opened with this key")

var sealSalt = []byte("courseadmin/token-store/v1")

// SealedStore encrypts values before they reach the wrapped store.
type SealedStore struct {
	next Store
	key  [32]byte
}

func NewSealedStore(next Store, passphrase string) *SealedStore {
	s := &SealedStore{next: next}
	copy(s.key[:], argon2.IDKey([]byte(passphrase), sealSalt, 1, 64*1024, 2, 32))
	return s
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	stored, err := s.next.Get(ctx, key)
	if err != nil || stored == "" {
		return stored, err
	}

	box, err := base64.RawStdEncoding.DecodeString(stored)
	if err != nil || len(box) < nonceSize {
		return "", ErrUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealable
	}
	return string(plain), nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.next.Set(ctx, key, base64.RawStdEncoding.EncodeToString(box))
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
