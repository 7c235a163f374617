package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/db/dbtest"
	"topproducts/internal/identity"

	"github.com/stretchr/testify/require"
)

const testDSN = "server=example.database.windows.net;port=1433;database=AdventureWorks;"

func fakeOptions(c *dbtest.Connector) db.Options {
	opt := db.DefaultOptions()
	opt.PingTimeout = time.Second
	opt.Connector = c.Func()
	return opt
}

type countingProvider struct {
	calls    int
	resource string
	token    string
	err      error
}

func (p *countingProvider) Token(ctx context.Context, resource string) (string, error) {
	p.calls++
	p.resource = resource
	return p.token, p.err
}

func TestOpenWithoutManagedIdentity(t *testing.T) {
	c := &dbtest.Connector{}
	tokens := &countingProvider{token: "unused"}

	conn, err := db.Open(context.Background(), config.Settings{ConnectionString: testDSN}, tokens, fakeOptions(c))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Zero(t, tokens.calls)
	require.Empty(t, c.Tokens())
	require.Equal(t, []string{testDSN}, c.DSNs())
	require.Equal(t, 1, c.Opened())
	require.Equal(t, 1, c.Closed())
}

func TestOpenWithManagedIdentityAttachesToken(t *testing.T) {
	c := &dbtest.Connector{}
	tokens := &countingProvider{token: "eyJ0eXAi"}

	s := config.Settings{ConnectionString: testDSN, UseManagedIdentity: true}
	conn, err := db.Open(context.Background(), s, tokens, fakeOptions(c))
	require.NoError(t, err)
	defer conn.Close()

	require.Equal(t, 1, tokens.calls)
	require.Equal(t, config.DefaultResource, tokens.resource)
	require.Equal(t, []string{"eyJ0eXAi"}, c.Tokens())
}

func TestOpenTokenFailureDialsNothing(t *testing.T) {
	c := &dbtest.Connector{}
	tokens := &countingProvider{err: errors.New("no managed identity assigned")}

	s := config.Settings{ConnectionString: testDSN, UseManagedIdentity: true}
	conn, err := db.Open(context.Background(), s, tokens, fakeOptions(c))
	require.Nil(t, conn)
	require.ErrorIs(t, err, identity.ErrAuthentication)
	require.Empty(t, c.DSNs())
	require.Zero(t, c.Opened())
}

func TestOpenNilProviderWithManagedIdentity(t *testing.T) {
	c := &dbtest.Connector{}
	s := config.Settings{ConnectionString: testDSN, UseManagedIdentity: true}
	_, err := db.Open(context.Background(), s, nil, fakeOptions(c))
	require.ErrorIs(t, err, identity.ErrAuthentication)
}

func TestOpenMissingConnectionString(t *testing.T) {
	c := &dbtest.Connector{}
	tokens := &countingProvider{token: "tok"}

	_, err := db.Open(context.Background(), config.Settings{UseManagedIdentity: true}, tokens, fakeOptions(c))
	require.ErrorIs(t, err, db.ErrConfiguration)
	require.ErrorIs(t, err, config.ErrConnectionString)
	require.Zero(t, tokens.calls)
	require.Empty(t, c.DSNs())
}

func TestOpenMalformedConnectionString(t *testing.T) {
	c := &dbtest.Connector{BuildErr: errors.New("invalid dsn")}
	_, err := db.Open(context.Background(), config.Settings{ConnectionString: "???"}, nil, fakeOptions(c))
	require.ErrorIs(t, err, db.ErrConfiguration)
	require.Zero(t, c.Opened())
}

func TestOpenPingFailureReleasesConnection(t *testing.T) {
	c := &dbtest.Connector{PingErr: errors.New("login failed for user")}

	conn, err := db.Open(context.Background(), config.Settings{ConnectionString: testDSN}, nil, fakeOptions(c))
	require.Nil(t, conn)
	require.ErrorIs(t, err, db.ErrConnection)
	require.Equal(t, 1, c.Opened())
	require.Equal(t, 1, c.Closed())
}

func TestOpenConnectFailure(t *testing.T) {
	c := &dbtest.Connector{ConnectErr: errors.New("dial tcp: i/o timeout")}

	_, err := db.Open(context.Background(), config.Settings{ConnectionString: testDSN}, nil, fakeOptions(c))
	require.ErrorIs(t, err, db.ErrConnection)
	require.Zero(t, c.Opened())
}

func TestMSSQLConnectorParsesADOString(t *testing.T) {
	conn, err := db.MSSQLConnector(testDSN+"user id=app;password=secret;", nil)
	require.NoError(t, err)
	require.NotNil(t, conn)

	conn, err = db.MSSQLConnector(testDSN, func() (string, error) { return "tok", nil })
	require.NoError(t, err)
	require.NotNil(t, conn)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DB.PingTimeout = 2 * time.Second
	cfg.Identity.Resource = "https://example.invalid/"

	opt := db.OptionsFromConfig(cfg)
	require.Equal(t, 2*time.Second, opt.PingTimeout)
	require.Equal(t, "https://example.invalid/", opt.Resource)
	require.NotNil(t, opt.Connector)
}
