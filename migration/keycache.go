// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/cml-tools/teammigrate/diagnostic"
)

// delegatedKeyLifetime is the expiry the source identity provider
// stamps on freshly minted credentials.
const delegatedKeyLifetime = 7 * 24 * time.Hour

// KeyProvider obtains scoped credentials from the source identity
// provider.
type KeyProvider interface {
	GetAPIKey(ctx context.Context, username string) (string, error)
	CreateAPIKey(ctx context.Context, username string, expiry time.Time) (string, error)
}

// KeyCache resolves the credential to act as a given user. Team
// mutations must run under the owner's identity, but owners are not
// always pre-provisioned with a credential, so one is fetched or
// minted on first use and cached for the rest of the run. Credentials
// never leave the process and are discarded at exit.
type KeyCache struct {
	provider    KeyProvider
	clock       clock.Clock
	sink        *diagnostic.Sink
	primaryUser string
	primaryKey  string
	cache       map[string]string
}

// NewKeyCache returns a cache resolving against the given provider.
func NewKeyCache(provider KeyProvider, clk clock.Clock, sink *diagnostic.Sink, primaryUser, primaryKey string) *KeyCache {
	return &KeyCache{
		provider:    provider,
		clock:       clk,
		sink:        sink,
		primaryUser: primaryUser,
		primaryKey:  primaryKey,
		cache:       make(map[string]string),
	}
}

// KeyFor returns a credential acting as username. The primary identity
// resolves without a network call. Delegation failures degrade to an
// empty credential rather than an error: the subsequent platform call
// fails with an auth error and only the affected team's replay is
// lost, not the whole run.
func (k *KeyCache) KeyFor(ctx context.Context, username string) string {
	if username == "" || username == k.primaryUser {
		return k.primaryKey
	}
	if key, ok := k.cache[username]; ok {
		return key
	}
	key, err := k.provider.GetAPIKey(ctx, username)
	if err != nil {
		key, err = k.provider.CreateAPIKey(ctx, username, k.clock.Now().Add(delegatedKeyLifetime))
	}
	if err != nil {
		k.sink.Warningf("could not obtain a delegated credential for user %q: %v", username, err)
		return ""
	}
	k.cache[username] = key
	return key
}
