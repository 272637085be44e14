package storage

import (
	"context"
	"errors"
	"time"
)

// ErrStorageDisabled indica que no hay object storage configurado.
var ErrStorageDisabled = errors.New("object storage not configured")

// DisabledStore implementa ObjectStore cuando no hay bucket configurado.
// Put es un no-op para que los flujos que archivan no fallen; los presign
// sí devuelven error porque el cliente los necesita utilizables.
type DisabledStore struct{}

func NewDisabledStore() *DisabledStore {
	return &DisabledStore{}
}

func (*DisabledStore) Put(_ context.Context, _ string, _ []byte, _ string) error {
	return nil
}

func (*DisabledStore) PresignPut(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", ErrStorageDisabled
}
