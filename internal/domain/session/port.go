package session

import (
	"context"
	"errors"
)

var (
	// ErrNoEntry is returned by Storage.Get when nothing is stored under the key.
	ErrNoEntry = errors.New("session entry not found")
	// ErrInvalidCredential means the identity credential could not be decoded or verified.
	ErrInvalidCredential = errors.New("invalid identity credential")
)

// Storage is a namespaced key-value store; one namespace per browser.
type Storage interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// IdentityProvider turns a sign-in credential into a profile.
type IdentityProvider interface {
	Identify(ctx context.Context, credential string) (UserSession, error)
	Logout(ctx context.Context, namespace string) error
}
