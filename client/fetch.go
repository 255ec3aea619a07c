package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/localstore"
)

var (
	// ErrEndpointNotFound is returned for 404 responses and triggers the
	// local fallback.
	ErrEndpointNotFound = errors.New("endpoint not found")
	// ErrNetwork wraps transport failures and triggers the local fallback.
	ErrNetwork = errors.New("network error")
	// ErrUnexpectedResponse is returned when a response body is not JSON.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// StatusError is a non-2xx response not covered by a sentinel.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap lets callers match the domain errors the API maps to these codes.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrInvalid
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return nil
}

type apiError struct {
	Error string `json:"error"`
}

// fetch sends one JSON request to the API and decodes the response into out
// when out is non-nil.
func (c *Client) fetch(ctx context.Context, method, endpoint string, body, out any, headers ...string) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, err := localstore.LoadToken(ctx, c.Tokens); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	c.Logger.WithField("url", req.URL.String()).Debug("calling API")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, endpoint)
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrForbidden)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return statusError(resp)
	case resp.StatusCode == http.StatusNoContent:
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if out == nil {
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return fmt.Errorf("%w: content type %q", ErrUnexpectedResponse, ct)
		}
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body apiError
	if sonic.Unmarshal(data, &body) == nil {
		se.Message = body.Error
	}
	return se
}
