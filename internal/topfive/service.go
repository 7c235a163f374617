// Package topfive runs one TopFiveProducts invocation.
package topfive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
	"topproducts/internal/logger"
	"topproducts/internal/products"

	"github.com/google/uuid"
)

const FunctionName = "TopFiveProducts"

// ResolveFunc post-processes settings before connecting, for example to
// expand a secret reference in the connection string.
type ResolveFunc func(ctx context.Context, s config.Settings) (config.Settings, error)

type Deps struct {
	Lookup       config.LookupFunc
	Resolve      ResolveFunc
	Tokens       identity.TokenProvider
	DB           db.Options
	QueryTimeout time.Duration
	Logger       logger.LoggerService
}

// Service holds no per-request state and is safe for concurrent use.
type Service struct {
	deps Deps
}

func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.QueryTimeout <= 0 {
		deps.QueryTimeout = config.DefaultQueryTimeout
	}
	return &Service{deps: deps}
}

// Run resolves settings, opens a dedicated connection, runs the query and
// releases the connection before returning on every path. Failures are
// logged with their cause before being returned.
func (s *Service) Run(ctx context.Context) (products.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	invocation := uuid.NewString()
	s.deps.Logger.Info(fmt.Sprintf("%s function started processing a request (invocation %s).", FunctionName, invocation))

	result, err := s.run(ctx, invocation)
	if err != nil {
		s.deps.Logger.Error(fmt.Sprintf("%s invocation %s failed (%s)", FunctionName, invocation, Classify(err)), err)
		return nil, err
	}

	s.deps.Logger.Info(fmt.Sprintf("%s function finished processing a request (invocation %s, %d rows).", FunctionName, invocation, len(result)))
	return result, nil
}

func (s *Service) run(ctx context.Context, invocation string) (products.Result, error) {
	settings, err := config.ResolveSettings(s.deps.Lookup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrConfiguration, err)
	}
	if s.deps.Resolve != nil {
		settings, err = s.deps.Resolve(ctx, settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrConfiguration, err)
		}
	}

	conn, err := db.Open(ctx, settings, s.deps.Tokens, s.deps.DB)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.deps.Logger.Warn(fmt.Sprintf("invocation %s: close connection: %v", invocation, cerr))
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, s.deps.QueryTimeout)
	defer cancel()

	return products.TopFive(queryCtx, conn)
}

type FailureClass string

const (
	ClassConfiguration  FailureClass = "configuration"
	ClassAuthentication FailureClass = "authentication"
	ClassConnection     FailureClass = "connection"
	ClassQuery          FailureClass = "query"
	ClassTimeout        FailureClass = "timeout"
	ClassInternal       FailureClass = "internal"
)

// Classify names the failure class of an error returned by Run.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ClassTimeout
	case errors.Is(err, identity.ErrAuthentication):
		return ClassAuthentication
	case errors.Is(err, db.ErrConfiguration), errors.Is(err, config.ErrConnectionString):
		return ClassConfiguration
	case errors.Is(err, db.ErrConnection):
		return ClassConnection
	case errors.Is(err, products.ErrQuery):
		return ClassQuery
	default:
		return ClassInternal
	}
}
