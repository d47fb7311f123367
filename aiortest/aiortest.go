// Package aiortest provides typed test helpers for aior routers.
package aiortest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dephin/aior"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
	Header http.Header
}

// NewClient starts a test server for r and closes it when the test ends.
func NewClient(t testing.TB, r *aior.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Client{Server: srv, Header: http.Header{}}
}

// Response holds a decoded response. Body is set for 2xx JSON replies;
// Errors is set when the router answered with a validation failure.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Errors  aior.ValidationErrors
	Raw     []byte
}

// Get sends a typed GET request. query may be nil.
func Get[Resp any](t testing.TB, c *Client, path string, query url.Values) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodGet, withQuery(path, query), nil)
}

// Post sends a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPost, path, body)
}

// Put sends a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPut, path, body)
}

// Patch sends a typed PATCH request with a JSON body.
func Patch[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPatch, path, body)
}

// Delete sends a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodDelete, path, nil)
}

// Do sends a request with an optional JSON body. A []byte or string body is
// sent as is, so malformed payloads can be tested.
func Do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reqBody = bytes.NewReader(b)
	case string:
		reqBody = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("aiortest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("aiortest: create request: %v", err)
	}
	for k, vals := range c.Header {
		req.Header[k] = vals
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("aiortest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("aiortest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("aiortest: read body: %v", err)
	}

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     raw,
	}
	if len(raw) == 0 {
		return result
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var verrs aior.ValidationErrors
		if json.Unmarshal(raw, &verrs) == nil {
			result.Errors = verrs
		}
	case resp.StatusCode < http.StatusMultipleChoices:
		var decoded Resp
		if decErr := json.Unmarshal(raw, &decoded); decErr != nil && !errors.Is(decErr, io.EOF) {
			return result
		}
		result.Body = &decoded
	}
	return result
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
