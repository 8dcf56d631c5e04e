package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	api "github.com/hashicorp/vault/api"
)

// Custodian is the key-custody abstraction the file pipeline depends on.
// All calls may fail independently of the primary database.
type Custodian interface {
	// Store upserts key material at the given path.
	Store(ctx context.Context, path string, key []byte) error
	// Fetch returns the key stored at path, ErrKeyNotFound if absent.
	Fetch(ctx context.Context, path string) ([]byte, error)
	// Delete removes the key at path. Missing keys are not an error.
	Delete(ctx context.Context, path string) error
}

// Client is a Custodian backed by HashiCorp Vault KV v2.
type Client struct {
	kv  *api.KVv2
	sys *api.Sys
}

// New connects to Vault with the static token credential from cfg.
// The connection itself is lazy; the first call surfaces auth failures.
func New(cfg Config) (*Client, error) {
	if cfg.Address == "" || cfg.Token == "" {
		return nil, ErrInvalidConfig
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	client.SetToken(cfg.Token)

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}

	return &Client{
		kv:  client.KVv2(mount),
		sys: client.Sys(),
	}, nil
}

func (c *Client) Store(ctx context.Context, path string, key []byte) error {
	_, err := c.kv.Put(ctx, path, map[string]any{
		"key": base64.StdEncoding.EncodeToString(key),
	})
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	secret, err := c.kv.Get(ctx, path)
	if err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Join(ErrUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, ErrKeyNotFound
	}

	encoded, ok := secret.Data["key"].(string)
	if !ok || encoded == "" {
		return nil, fmt.Errorf("%w: no key field at %s", ErrMalformedKey, path)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrMalformedKey, err)
	}
	return key, nil
}

// Delete removes the key and all its versions. Callers treat failures as
// best-effort cleanup; the error is returned for logging only.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.kv.DeleteMetadata(ctx, path); err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return nil
		}
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Healthcheck verifies the Vault server is reachable and unsealed.
func (c *Client) Healthcheck(ctx context.Context) error {
	resp, err := c.sys.HealthWithContext(ctx)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if resp.Sealed {
		return fmt.Errorf("%w: vault is sealed", ErrUnavailable)
	}
	return nil
}
