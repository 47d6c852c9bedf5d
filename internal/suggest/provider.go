// Package suggest turns a task title into a short list of actionable suggestions.
package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/Weskio/ai-task-whisperer/internal/cache"
	"golang.org/x/sync/singleflight"
)

// CredentialSource yields the bearer key for the remote API. "" means none.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// Completer fetches remote suggestions.
type Completer interface {
	Complete(ctx context.Context, apiKey, title string) ([]string, error)
}

// Cache stores remote results per title.
type Cache interface {
	Get(ctx context.Context, title string) ([]string, error)
	Set(ctx context.Context, title string, list []string) error
}

// flightTimeout bounds a shared remote call once it is detached from the
// caller that started it.
const flightTimeout = 30 * time.Second

// Provider returns remote suggestions when a key is configured and the call works,
// and the keyword fallback otherwise. It never returns an error.
type Provider struct {
	creds  CredentialSource
	remote Completer
	cache  Cache
	sf     singleflight.Group
}

func NewProvider(creds CredentialSource, remote Completer) *Provider {
	return &Provider{creds: creds, remote: remote}
}

// WithCache enables result caching. Passing nil keeps caching off.
func (p *Provider) WithCache(c Cache) *Provider {
	p.cache = c
	return p
}

// Suggest returns suggestions for title, using the cache when enabled.
func (p *Provider) Suggest(ctx context.Context, title string) []string {
	return p.get(ctx, title, true)
}

// Refresh is Suggest without the cache read; a successful result replaces the cached one.
func (p *Provider) Refresh(ctx context.Context, title string) []string {
	return p.get(ctx, title, false)
}

func (p *Provider) get(ctx context.Context, title string, useCache bool) []string {
	apiKey, err := p.creds.APIKey(ctx)
	if err != nil {
		log.Printf("suggest: read api key: %v", err)
		return Fallback(title)
	}
	if apiKey == "" || p.remote == nil {
		return Fallback(title)
	}

	if useCache && p.cache != nil {
		if list, err := p.cache.Get(ctx, title); err != nil {
			log.Printf("suggest: cache get: %v", err)
		} else if len(list) > 0 {
			return list
		}
	}

	// Concurrent calls for the same title and key share one request. The
	// request runs detached so a caller that goes away does not fail the others.
	sfKey := keyTag(apiKey) + ":" + cache.NormalizeTitle(title)
	if !useCache {
		sfKey = "refresh:" + sfKey
	}
	ch := p.sf.DoChan(sfKey, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		list, err := p.remote.Complete(fctx, apiKey, title)
		if err != nil {
			return nil, err
		}
		if p.cache != nil {
			if err := p.cache.Set(fctx, title, list); err != nil {
				log.Printf("suggest: cache set: %v", err)
			}
		}
		return list, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		log.Printf("suggest: %v, using fallback", ctx.Err())
		return Fallback(title)
	}
	if res.Err != nil {
		log.Printf("suggest: remote completion failed, using fallback: %v", res.Err)
		return Fallback(title)
	}
	return append([]string(nil), res.Val.([]string)...)
}

// keyTag is a short digest of the API key, so a key change never joins a flight
// started with the old key.
func keyTag(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}
