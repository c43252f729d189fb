// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/holocron-dev/holocron/internal/query"
	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// ErrServerNotRunning indicates the server refused the connection.
var ErrServerNotRunning = errors.New("holocron server is not running (connection refused)")

// defaultHTTPClient is shared by commands that talk to a running server.
// Tests swap it for an httptest client.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// apiClient reads from the REST API of a running holocron server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// health returns the status string reported by /health.
func (c *apiClient) health(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// films lists the films the server holds, with their relationship counts.
func (c *apiClient) films(ctx context.Context) ([]*query.FilmDetail, error) {
	var body struct {
		Films []*query.FilmDetail `json:"films"`
	}
	if err := c.getJSON(ctx, "/api/v1/films", &body); err != nil {
		return nil, err
	}
	return body.Films, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return holoerr.Wrapf(err, holoerr.CodeCLIRequestFailure, "building request for %s", path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return ErrServerNotRunning
		}
		return holoerr.Wrapf(err, holoerr.CodeCLIRequestFailure, "requesting %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return responseError(path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return holoerr.Wrapf(err, holoerr.CodeCLIRequestFailure, "decoding %s response", path)
	}
	return nil
}

// responseError turns a non-200 reply into a coded error. Problem bodies
// written by the API contribute their detail and the underlying error
// messages; anything else is reported by status alone.
func responseError(path string, resp *http.Response) error {
	fields := []holoerr.Attr{holoerr.Field("path", path), holoerr.Field("status", resp.StatusCode)}

	var model huma.ErrorModel
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &model); err != nil || model.Detail == "" {
		return holoerr.New(holoerr.CodeCLIRequestFailure,
			fmt.Sprintf("%s: server returned %s", path, resp.Status), fields...)
	}

	msg := model.Detail
	if len(model.Errors) > 0 {
		causes := make([]string, 0, len(model.Errors))
		for _, d := range model.Errors {
			causes = append(causes, d.Message)
		}
		msg += ": " + strings.Join(causes, "; ")
	}
	return holoerr.New(holoerr.CodeCLIRequestFailure,
		fmt.Sprintf("%s: server returned %d: %s", path, resp.StatusCode, msg), fields...)
}

func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
