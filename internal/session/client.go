package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client wraps an HTTP client with automatic bearer attachment and a
// single-flight refresh on 401. When several requests hit a 401 at once,
// exactly one performs the refresh; the rest park in a FIFO queue and retry
// with the new token once the refresh settles. A request that still gets a
// 401 after a successful refresh fails for good.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      CredentialStore
	logger     *slog.Logger

	// onInvalidated fires once per terminal refresh failure, after the
	// store has been cleared.
	onInvalidated func()

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

type ClientConfig struct {
	BaseURL       string
	Store         CredentialStore
	Timeout       time.Duration
	OnInvalidated func()
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		store:         store,
		logger:        logger,
		onInvalidated: cfg.OnInvalidated,
	}
}

// Login authenticates and stores the returned pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result Tokens
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	return c.store.SetTokens(result)
}

// Do sends the request with the current access token, transparently
// refreshing once on 401. The request body must be rewindable via GetBody
// for the retry to carry it again; requests built with bytes.Reader bodies
// get that for free.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	used, resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// The access token is stale. Drain and close before retrying.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := c.refresh(req.Context(), used); err != nil {
		return nil, err
	}

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	_, resp, err = c.send(retry)
	return resp, err
}

func (c *Client) send(req *http.Request) (string, *http.Response, error) {
	var used string
	tokens, err := c.store.Tokens()
	if err == nil && tokens.AccessToken != "" {
		used = tokens.AccessToken
		req.Header.Set("Authorization", "Bearer "+used)
	}
	resp, err := c.httpClient.Do(req)
	return used, resp, err
}

// refresh coordinates the single-flight rotation. The first caller becomes
// the leader and performs the HTTP refresh; everyone else parks until the
// leader settles, then observes the same outcome in arrival order. A caller
// whose rejected token has already been replaced skips the refresh and just
// retries.
func (c *Client) refresh(ctx context.Context, usedAccess string) error {
	c.mu.Lock()
	if tokens, err := c.store.Tokens(); err == nil &&
		usedAccess != "" && tokens.AccessToken != usedAccess {
		c.mu.Unlock()
		return nil
	}
	if c.refreshing {
		wait := make(chan error, 1)
		c.waiters = append(c.waiters, wait)
		c.mu.Unlock()

		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	return c.lead(ctx)
}

// lead performs the refresh as the elected leader. Settlement runs in a
// defer so that a panicking CredentialStore still clears the refreshing flag
// and releases the parked waiters instead of wedging the coordinator.
func (c *Client) lead(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
			defer panic(r)
		}

		c.mu.Lock()
		waiters := c.waiters
		c.waiters = nil
		c.refreshing = false
		c.mu.Unlock()

		for _, w := range waiters {
			w <- err
		}

		if err != nil {
			c.logger.Warn("session refresh failed", "error", err)
			if clearErr := c.store.Clear(); clearErr != nil {
				c.logger.Error("failed to clear credentials", "error", clearErr)
			}
			if c.onInvalidated != nil {
				c.onInvalidated()
			}
		}
	}()

	return c.doRefresh(ctx)
}

func (c *Client) doRefresh(ctx context.Context) error {
	tokens, err := c.store.Tokens()
	if err != nil {
		return fmt.Errorf("no refresh token available: %w", err)
	}

	payload, _ := json.Marshal(map[string]string{"refreshToken": tokens.RefreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var rotated Tokens
	if err := json.NewDecoder(resp.Body).Decode(&rotated); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	return c.store.SetTokens(rotated)
}

// rewind produces a retryable copy of the request.
func rewind(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry request without GetBody")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	retry.Body = body
	return retry, nil
}
