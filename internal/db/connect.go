package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"topproducts/internal/config"
	"topproducts/internal/identity"

	mssql "github.com/microsoft/go-mssqldb"
)

var (
	ErrConfiguration = errors.New("invalid database configuration")
	ErrConnection    = errors.New("database connection failed")
)

// ConnectorFunc builds a driver connector for dsn. token is nil unless the
// connection authenticates with an access token.
type ConnectorFunc func(dsn string, token func() (string, error)) (driver.Connector, error)

type Options struct {
	PingTimeout time.Duration
	Resource    string
	Connector   ConnectorFunc
}

func DefaultOptions() Options {
	return Options{
		PingTimeout: config.DefaultPingTimeout,
		Resource:    config.DefaultResource,
		Connector:   MSSQLConnector,
	}
}

func OptionsFromConfig(cfg config.Config) Options {
	opt := DefaultOptions()
	if cfg.DB.PingTimeout > 0 {
		opt.PingTimeout = cfg.DB.PingTimeout
	}
	if r := strings.TrimSpace(cfg.Identity.Resource); r != "" {
		opt.Resource = r
	}
	return opt
}

func MSSQLConnector(dsn string, token func() (string, error)) (driver.Connector, error) {
	if token != nil {
		return mssql.NewAccessTokenConnector(dsn, token)
	}
	c, err := mssql.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Open returns a handle holding at most one connection, already pinged.
// With managed identity the token is fetched before anything is dialed.
// On error nothing is left open; on success the caller must Close.
func Open(ctx context.Context, s config.Settings, tokens identity.TokenProvider, opt Options) (*sql.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(s.ConnectionString) == "" {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, config.ErrConnectionString)
	}
	if opt.Connector == nil {
		opt.Connector = MSSQLConnector
	}
	if opt.PingTimeout <= 0 {
		opt.PingTimeout = config.DefaultPingTimeout
	}
	if opt.Resource == "" {
		opt.Resource = config.DefaultResource
	}

	var tokenFn func() (string, error)
	if s.UseManagedIdentity {
		token, err := acquireToken(ctx, tokens, opt.Resource)
		if err != nil {
			return nil, err
		}
		tokenFn = func() (string, error) { return token, nil }
	}

	connector, err := opt.Connector(s.ConnectionString, tokenFn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, opt.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return db, nil
}

func acquireToken(ctx context.Context, tokens identity.TokenProvider, resource string) (string, error) {
	if tokens == nil {
		return "", fmt.Errorf("%w: no token provider", identity.ErrAuthentication)
	}
	token, err := tokens.Token(ctx, resource)
	if err != nil {
		if errors.Is(err, identity.ErrAuthentication) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", identity.ErrAuthentication, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty token", identity.ErrAuthentication)
	}
	return token, nil
}

func TestConnection(ctx context.Context, s config.Settings, tokens identity.TokenProvider, opt Options) error {
	db, err := Open(ctx, s, tokens, opt)
	if err != nil {
		return err
	}
	return db.Close()
}
