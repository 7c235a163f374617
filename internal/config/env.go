package config

import (
	"errors"
	"net"
	"os"
	"strings"
)

// Environment variable names read on every invocation.
const (
	EnvConnectionString   = "SQLAZURECONNSTR_AdventureWorks"
	EnvUseManagedIdentity = "UseManagedIdentity"
	EnvManagedIdentityID  = "ManagedIdentityClientId"
	EnvCustomHandlerPort  = "FUNCTIONS_CUSTOMHANDLER_PORT"
)

var ErrConnectionString = errors.New("connection string is not configured")

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Settings are the per-invocation database settings.
type Settings struct {
	ConnectionString   string
	UseManagedIdentity bool
}

// ResolveSettings reads the invocation settings. Managed identity is enabled
// only by the exact value "true".
func ResolveSettings(lookup LookupFunc) (Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	connStr, _ := lookup(EnvConnectionString)
	flag, _ := lookup(EnvUseManagedIdentity)

	s := Settings{
		ConnectionString:   connStr,
		UseManagedIdentity: flag == "true",
	}
	if strings.TrimSpace(s.ConnectionString) == "" {
		return s, ErrConnectionString
	}
	return s, nil
}

// ListenAddr returns the address the server binds to. The Functions host
// passes the port it expects through FUNCTIONS_CUSTOMHANDLER_PORT.
func (c Config) ListenAddr(lookup LookupFunc) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if port, ok := lookup(EnvCustomHandlerPort); ok && strings.TrimSpace(port) != "" {
		return net.JoinHostPort("", strings.TrimSpace(port))
	}
	return strings.TrimSpace(c.APIListen)
}
