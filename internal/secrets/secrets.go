// Package secrets expands secret references in connection settings.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"topproducts/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMPrefix marks a connection string stored in SSM Parameter Store.
const SSMPrefix = "ssm:"

var ErrNotFound = errors.New("secret not found")

// ParameterGetter is the part of *ssm.Client the resolver uses.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Resolver struct {
	client ParameterGetter
}

func NewResolver(client ParameterGetter) *Resolver {
	return &Resolver{client: client}
}

// NewSSMResolver uses the default AWS credential chain (the Lambda execution
// role when deployed).
func NewSSMResolver(ctx context.Context) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(ssm.NewFromConfig(cfg)), nil
}

// IsReference reports whether v names a parameter rather than holding the
// secret itself.
func IsReference(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), SSMPrefix)
}

// Get returns the decrypted value of the named parameter.
func (r *Resolver) Get(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty parameter name", ErrNotFound)
	}

	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %q: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// ResolveSettings replaces an ssm: connection string with the parameter
// value. Plain connection strings pass through untouched.
func (r *Resolver) ResolveSettings(ctx context.Context, s config.Settings) (config.Settings, error) {
	if !IsReference(s.ConnectionString) {
		return s, nil
	}
	name := strings.TrimPrefix(strings.TrimSpace(s.ConnectionString), SSMPrefix)
	v, err := r.Get(ctx, name)
	if err != nil {
		return s, err
	}
	s.ConnectionString = v
	return s, nil
}
