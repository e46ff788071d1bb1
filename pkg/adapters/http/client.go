package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Client implements ports.WorkspaceStore against a remote Server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTP: hc}
}

func (c *Client) url(name string) string {
	if name == "" {
		return c.BaseURL + "/workspaces/"
	}
	return c.BaseURL + "/workspaces/" + url.PathEscape(name)
}

func (c *Client) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot(name)
	if err := c.do(ctx, http.MethodGet, c.url(name), nil, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) Commit(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	var resp commitResponse
	if err := c.do(ctx, http.MethodPut, c.url(snap.Name), snap, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.url(name), nil, nil)
}

func (c *Client) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, c.url(""), nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("workspace service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrWorkspaceNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	}

	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	if e.Error == "" {
		e.Error = resp.Status
	}
	return fmt.Errorf("%s %s: %s", method, target, e.Error)
}
