// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package api implements the client for the workspace platform's v1
// REST API. One call type is supported: an authenticated JSON request
// to an endpoint path, returning a parsed JSON response or a typed
// *APIError carrying the status code and error body.
package api

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/juju/errors"
	jujuhttp "github.com/juju/http/v2"
	"github.com/juju/loggo"
)

// MIME represents a MIME type for identifying request and response
// bodies.
type MIME = string

const (
	// JSON represents the MIME type for JSON request and response types.
	JSON MIME = "application/json"
)

// Transport defines a type for making the actual request.
type Transport interface {
	// Do performs the *http.Request and returns a *http.Response or an
	// error if it fails to construct the transport.
	Do(*http.Request) (*http.Response, error)
}

// NewHTTPTransport returns the production transport. caPath optionally
// names a PEM bundle used to verify the platform's TLS certificate.
func NewHTTPTransport(logger loggo.Logger, caPath string) (Transport, error) {
	options := []jujuhttp.Option{
		jujuhttp.WithLogger(logger),
	}
	if caPath != "" {
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, errors.Annotatef(err, "reading CA bundle %q", caPath)
		}
		options = append(options, jujuhttp.WithCACertificates(string(pem)))
	}
	return jujuhttp.NewClient(options...), nil
}

// APIRequester wraps a transport to add trace logging of the raw
// requests and responses.
type APIRequester struct {
	transport Transport
	logger    loggo.Logger
}

// NewAPIRequester creates a requester wrapping the given transport.
func NewAPIRequester(transport Transport, logger loggo.Logger) *APIRequester {
	return &APIRequester{
		transport: transport,
		logger:    logger,
	}
}

// Do performs the *http.Request and returns a *http.Response or an
// error if it fails to construct the transport.
func (t *APIRequester) Do(req *http.Request) (*http.Response, error) {
	if t.logger.IsTraceEnabled() {
		if data, err := httputil.DumpRequest(req, true); err == nil {
			t.logger.Tracef("%s request %s", req.Method, data)
		} else {
			t.logger.Tracef("%s request DumpRequest error %s", req.Method, err.Error())
		}
	}

	resp, err := t.transport.Do(req)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if t.logger.IsTraceEnabled() {
		if data, err := httputil.DumpResponse(resp, true); err == nil {
			t.logger.Tracef("%s response %s", req.Method, data)
		} else {
			t.logger.Tracef("%s response DumpResponse error %s", req.Method, err.Error())
		}
	}
	return resp, nil
}
