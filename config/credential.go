package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrMissingCredential is returned when no model API key can be found.
var ErrMissingCredential = errors.New("missing credential")

const ssmTimeout = 5 * time.Second

// ParameterFetcher reads a single decrypted value from a secret store.
type ParameterFetcher func(ctx context.Context, name string) (string, error)

// Credentials resolves the model API key. The environment variable always
// wins; the SSM parameter is consulted only when one is configured.
type Credentials struct {
	EnvVar       string
	SSMParameter string

	// Getenv and Fetch are swappable for tests.
	Getenv func(string) string
	Fetch  ParameterFetcher
}

func NewCredentials(cfg CredentialConfig) *Credentials {
	return &Credentials{
		EnvVar:       cfg.EnvVar,
		SSMParameter: cfg.SSMParameter,
		Getenv:       os.Getenv,
		Fetch:        getParameterStoreValue,
	}
}

// APIKey returns the configured key or ErrMissingCredential.
func (c *Credentials) APIKey(ctx context.Context) (string, error) {
	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := strings.TrimSpace(getenv(c.EnvVar)); key != "" {
		return key, nil
	}

	if c.SSMParameter == "" || c.Fetch == nil {
		return "", fmt.Errorf("%w: %s is not set in the environment", ErrMissingCredential, c.EnvVar)
	}

	key, err := c.Fetch(ctx, c.SSMParameter)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not set and ssm parameter %s failed: %v",
			ErrMissingCredential, c.EnvVar, c.SSMParameter, err)
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", fmt.Errorf("%w: ssm parameter %s is empty", ErrMissingCredential, c.SSMParameter)
	}
	return key, nil
}

func getParameterStoreValue(ctx context.Context, parameterName string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, ssmTimeout)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	result, err := client.GetParameter(ctxWithTimeout, &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter: %w", err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", nil
	}

	return *result.Parameter.Value, nil
}
