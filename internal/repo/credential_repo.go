package repo

import (
	"context"
	"strings"
)

// CredentialRepo holds the opaque bearer key used for remote suggestions.
type CredentialRepo struct {
	kv  KV
	key string
}

func NewCredentialRepo(kv KV) *CredentialRepo {
	return &CredentialRepo{kv: kv, key: KeyCredential}
}

// APIKey returns the stored key, or "" when none is set.
func (r *CredentialRepo) APIKey(ctx context.Context) (string, error) {
	v, ok, err := r.kv.Get(ctx, r.key)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func (r *CredentialRepo) SetAPIKey(ctx context.Context, key string) error {
	return r.kv.Set(ctx, r.key, strings.TrimSpace(key))
}

func (r *CredentialRepo) ClearAPIKey(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key)
}
