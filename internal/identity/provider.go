// Package identity acquires bearer tokens for database access.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

var ErrAuthentication = errors.New("token acquisition failed")

// TokenProvider returns a bearer token for the given resource URI.
type TokenProvider interface {
	Token(ctx context.Context, resource string) (string, error)
}

// Scope turns a resource URI into the v2 scope form. The Azure SQL resource
// keeps its trailing slash, so "https://database.windows.net/" becomes
// "https://database.windows.net//.default".
func Scope(resource string) string {
	return resource + "/.default"
}

type ManagedIdentity struct {
	cred azcore.TokenCredential
}

// NewManagedIdentity uses the system-assigned identity unless clientID names a
// user-assigned one.
func NewManagedIdentity(clientID string) (*ManagedIdentity, error) {
	opts := &azidentity.ManagedIdentityCredentialOptions{}
	if id := strings.TrimSpace(clientID); id != "" {
		opts.ID = azidentity.ClientID(id)
	}

	cred, err := azidentity.NewManagedIdentityCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return &ManagedIdentity{cred: cred}, nil
}

func (m *ManagedIdentity) Token(ctx context.Context, resource string) (string, error) {
	if strings.TrimSpace(resource) == "" {
		return "", fmt.Errorf("%w: resource is required", ErrAuthentication)
	}

	tok, err := m.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{Scope(resource)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrAuthentication)
	}
	return tok.Token, nil
}

// Lazy defers creating the managed identity credential until the first token
// request, so hosts without an identity still start.
type Lazy struct {
	ClientID string

	mu   sync.Mutex
	impl *ManagedIdentity
}

func (l *Lazy) Token(ctx context.Context, resource string) (string, error) {
	l.mu.Lock()
	if l.impl == nil {
		impl, err := NewManagedIdentity(l.ClientID)
		if err != nil {
			l.mu.Unlock()
			return "", err
		}
		l.impl = impl
	}
	impl := l.impl
	l.mu.Unlock()

	return impl.Token(ctx, resource)
}

// Static always returns the same token.
type Static string

func (s Static) Token(ctx context.Context, resource string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty token", ErrAuthentication)
	}
	return string(s), nil
}

// Func adapts a function to TokenProvider.
type Func func(ctx context.Context, resource string) (string, error)

func (f Func) Token(ctx context.Context, resource string) (string, error) {
	return f(ctx, resource)
}
