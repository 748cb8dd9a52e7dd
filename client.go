package teller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the remote ledger service. It reads the session store before
// every request and attaches the credential as a bearer authorization header;
// with no stored session the request goes out unauthenticated and the service
// rejects protected endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	store      *Store
}

// NewClient returns a client for the service at baseURL. The default HTTP
// timeout is 30s; replace HTTPClient to change it.
func NewClient(baseURL string, store *Store) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
	}
}

// Store exposes the session store so callers share the client's view of the
// session lifecycle.
func (c *Client) Store() *Store { return c.store }

// request performs one round trip. It returns a *TransportError when no
// response was received, and a *ServerError for any non-2xx response, carrying
// the service's structured {message} body when present. A 401 on a protected
// endpoint additionally clears the stored session, so the next command routes
// back through login instead of retrying a dead credential.
func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cannot encode request body for %s: %w", path, err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("cannot create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session, err := c.store.Load(); err == nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	if method != http.MethodGet {
		// idempotency hint for the service
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("cannot read response body: %w", err)}
	}
	if resp.StatusCode >= 300 {
		serr := &ServerError{Status: resp.StatusCode, Message: serverMessage(data)}
		if serr.Unauthorized() && strings.HasPrefix(path, "/api/account/") {
			serr.SessionExpired = true
			if err := c.store.Clear(); err != nil {
				log.Printf("could not clear stale session: %v", err)
			}
		}
		return serr
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("cannot decode response from %s: %w", path, err)
		}
	}
	return nil
}

// serverMessage extracts the structured error message the service puts in
// rejection bodies, or "" when the body carries none.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}

// Login authenticates against the service and stores the returned session
// credential, overwriting any prior session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return &ValidationError{Reason: "please enter both username and password"}
	}
	var out struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.request(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("login succeeded but the response carried no token")
	}
	return c.store.Save(Session{Token: out.Token, RefreshToken: out.RefreshToken})
}

// Register creates a new account. It does not log the user in.
func (c *Client) Register(ctx context.Context, username, password, confirm string) error {
	if username == "" || password == "" || confirm == "" {
		return &ValidationError{Reason: "please fill in all fields"}
	}
	if password != confirm {
		return &ValidationError{Reason: "passwords do not match"}
	}
	body := map[string]string{"username": username, "password": password}
	return c.request(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

// Balance fetches the authoritative account balance. The service returns a
// bare JSON number.
func (c *Client) Balance(ctx context.Context) (Money, error) {
	var balance Money
	if err := c.request(ctx, http.MethodGet, "/api/account/balance", nil, &balance); err != nil {
		return Money{}, err
	}
	return balance, nil
}

// Deposit credits the account by amount. The response body is ignored: the new
// balance is only ever learned through Balance.
func (c *Client) Deposit(ctx context.Context, amount Money) error {
	body := map[string]Money{"amount": amount}
	return c.request(ctx, http.MethodPost, "/api/account/deposit", body, nil)
}

// Withdraw debits the account by amount. Insufficient funds is the service's
// call: the last-known local balance may be stale, so there is no pre-check.
func (c *Client) Withdraw(ctx context.Context, amount Money) error {
	body := map[string]Money{"amount": amount}
	return c.request(ctx, http.MethodPost, "/api/account/withdraw", body, nil)
}

// Transfer debits the account by amount and credits the named recipient.
func (c *Client) Transfer(ctx context.Context, to string, amount Money) error {
	body := map[string]any{"toUsername": to, "amount": amount}
	return c.request(ctx, http.MethodPost, "/api/account/transfer", body, nil)
}

// Transactions fetches the account's recorded movements, oldest first as the
// service reports them.
func (c *Client) Transactions(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.request(ctx, http.MethodGet, "/api/account/transactions", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
