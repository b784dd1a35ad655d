// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juju/errors"
	"gopkg.in/httprequest.v1"

	"github.com/cml-tools/teammigrate/core/metadata"
)

// Client issues calls against one platform instance. Reads and
// deletes act as the configured primary identity; team mutations take
// an explicit credential so the call is attributed to the right user.
// The credential is sent verbatim: an empty delegated credential makes
// the call unauthenticated and the platform rejects it with a 401.
type Client struct {
	host      string
	key       string
	transport Transport
}

// NewClient returns a client for the instance at host, authenticating
// as the primary identity's credential by default.
func NewClient(host, key string, transport Transport) *Client {
	return &Client{
		host:      strings.TrimSuffix(host, "/"),
		key:       key,
		transport: transport,
	}
}

// Host returns the instance base URL the client talks to.
func (c *Client) Host() string {
	return c.host
}

// ListPage fetches one page of the identity list. A team is an
// organization-typed record on the platform.
func (c *Client) ListPage(ctx context.Context, kind Kind, offset, limit int) ([]metadata.Attrs, error) {
	var page []metadata.Attrs
	if err := c.do(ctx, "GET", listPath(kind, offset, limit), c.key, nil, &page); err != nil {
		return nil, errors.Trace(err)
	}
	return page, nil
}

// GetUser fetches one user record.
func (c *Client) GetUser(ctx context.Context, username string) (metadata.User, error) {
	var user metadata.User
	if err := c.do(ctx, "GET", userPath(username), c.key, nil, &user); err != nil {
		return nil, errors.Trace(err)
	}
	return user, nil
}

// GetAPIKey fetches the existing scoped credential of a user.
func (c *Client) GetAPIKey(ctx context.Context, username string) (string, error) {
	var resp struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.do(ctx, "GET", apiKeyPath(username), c.key, nil, &resp); err != nil {
		return "", errors.Trace(err)
	}
	return resp.APIKey, nil
}

// CreateAPIKey mints a new scoped credential for a user, expiring at
// the given instant.
func (c *Client) CreateAPIKey(ctx context.Context, username string, expiry time.Time) (string, error) {
	body := map[string]interface{}{
		"expiryDate": expiry.UTC().Format(time.RFC3339),
	}
	var resp struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.do(ctx, "POST", apiKeyPath(username), c.key, body, &resp); err != nil {
		return "", errors.Trace(err)
	}
	return resp.APIKey, nil
}

// CreateTeam creates a team, acting as the identity behind key.
func (c *Client) CreateTeam(ctx context.Context, key string, team metadata.Attrs) error {
	return errors.Trace(c.do(ctx, "POST", teamsPath, key, team, nil))
}

// DeleteTeam deletes a team as the primary identity.
func (c *Client) DeleteTeam(ctx context.Context, team string) error {
	return errors.Trace(c.do(ctx, "DELETE", teamPath(team), c.key, nil, nil))
}

// AddTeamMember adds a membership entry to a team, acting as the
// identity behind key.
func (c *Client) AddTeamMember(ctx context.Context, key, team string, member metadata.Attrs) error {
	return errors.Trace(c.do(ctx, "POST", teamMembersPath(team), key, member, nil))
}

func (c *Client) do(ctx context.Context, method, path, key string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		buffer := new(bytes.Buffer)
		if err := json.NewEncoder(buffer).Encode(body); err != nil {
			return errors.Trace(err)
		}
		reader = buffer
	}

	url := c.host + apiV1Prefix + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Annotate(err, "can not make new request")
	}
	req.Header.Set("Accept", JSON)
	if body != nil {
		req.Header.Set("Content-Type", JSON)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.transport.Do(req)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > http.StatusNoContent {
		return errors.Trace(newAPIError(method, path, resp))
	}
	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := httprequest.UnmarshalJSONResponse(resp, result); err != nil {
		return errors.Annotatef(err, "%s %s", method, path)
	}
	return nil
}

// newAPIError builds the typed error for a non-2xx response, parsing
// the JSON error body when there is one.
func newAPIError(method, path string, resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err == nil {
		apiErr.Body = parsed
		if msg, ok := parsed["message"].(string); ok {
			apiErr.Message = msg
		}
	}
	return apiErr
}
