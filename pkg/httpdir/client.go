package httpdir

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// ErrCreateNotSupported is returned by CreateUser: the remote directory is
// read/validate-only in this deployment profile and rejects every create.
var ErrCreateNotSupported = errors.New("creating a user in the remote directory is not supported")

// Client is a client for the remote directory API. It expects the following
// endpoints on the backend:
//
//   - GET  /user                      - list of users (offset, limit, search, group and attribute filters)
//   - GET  /user/{username}           - user with the given username or external id
//   - GET  /user/mail/{mail}          - user with the given mail address
//   - POST /user/validate/{username}  - with password as body, returns 200 OK if the password is valid
//
// Write and delete operations are not supported by the backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	auth      string
	probeSize int
}

// NewClient creates a new remote directory client from a validated config.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.URL, "/"),
		HTTPClient: &http.Client{
			Timeout: time.Minute,
		},
		auth:      basicAuth(cfg.Username, cfg.Password),
		probeSize: cfg.BatchSize(),
	}, nil
}

// --- Lookup Methods ---

// UserByExternalID fetches a single user by the identifier the directory
// assigned to it. It returns (nil, nil) if the user is not found.
func (c *Client) UserByExternalID(ctx context.Context, realm, externalID string) (*models.RemoteUser, error) {
	slog.Debug("UserByExternalID", "realm", realm, "external_id", externalID)
	return c.getUser(ctx, fmt.Sprintf("%s/user/%s", c.BaseURL, url.PathEscape(externalID)))
}

// UserByUsername fetches a single user by its exact username.
// It returns (nil, nil) if the user is not found.
func (c *Client) UserByUsername(ctx context.Context, realm, username string) (*models.RemoteUser, error) {
	slog.Debug("UserByUsername", "realm", realm, "username", username)
	return c.getUser(ctx, fmt.Sprintf("%s/user/%s", c.BaseURL, url.PathEscape(username)))
}

// UserByEmail fetches a single user by its mail address.
// It returns (nil, nil) if the user is not found.
func (c *Client) UserByEmail(ctx context.Context, realm, email string) (*models.RemoteUser, error) {
	slog.Debug("UserByEmail", "realm", realm, "email", email)
	return c.getUser(ctx, fmt.Sprintf("%s/user/mail/%s", c.BaseURL, url.PathEscape(email)))
}

// getUser performs a single-user GET. Success requires a 200 with a body;
// any other status is treated as "not found", not as an error.
func (c *Client) getUser(ctx context.Context, endpoint string) (*models.RemoteUser, error) {
	status, body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || len(body) == 0 {
		return nil, nil
	}
	var user models.RemoteUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("error unmarshaling user response: %w", err)
	}
	return &user, nil
}

// --- Listing and Search Methods ---

// Users fetches a page of users.
func (c *Client) Users(ctx context.Context, realm string, offset, limit int) ([]models.RemoteUser, error) {
	slog.Debug("Users", "realm", realm, "offset", offset, "limit", limit)
	return c.listUsers(ctx, offset, limit, nil)
}

// SearchForUser fetches users matching a free-text search.
func (c *Client) SearchForUser(ctx context.Context, realm, search string, offset, limit int) ([]models.RemoteUser, error) {
	slog.Debug("SearchForUser", "realm", realm, "search", search, "offset", offset, "limit", limit)
	params := url.Values{}
	params.Set("search", search)
	return c.listUsers(ctx, offset, limit, params)
}

// SearchForUserByParams fetches users matching the given attribute filters,
// passed through as query parameters (e.g. group=admins).
func (c *Client) SearchForUserByParams(ctx context.Context, realm string, filters map[string]string, offset, limit int) ([]models.RemoteUser, error) {
	slog.Debug("SearchForUserByParams", "realm", realm, "filters", filters, "offset", offset, "limit", limit)
	params := url.Values{}
	for name, value := range filters {
		params.Set(name, value)
	}
	return c.listUsers(ctx, offset, limit, params)
}

// UsersCount derives the user count from a bounded list call; the backend has
// no dedicated count endpoint, so the result is not authoritative above the
// probe size.
func (c *Client) UsersCount(ctx context.Context, realm string) (int, error) {
	slog.Debug("UsersCount", "realm", realm)
	users, err := c.listUsers(ctx, 0, c.probeSize, nil)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// listUsers is the shared template for every listing method. A 200 with a
// body yields the decoded list. A 400 is surfaced as a hard error carrying
// the remote error body (malformed filter). Any other status yields an empty
// list.
func (c *Client) listUsers(ctx context.Context, offset, limit int, extra url.Values) ([]models.RemoteUser, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	for name, values := range extra {
		for _, value := range values {
			params.Add(name, value)
		}
	}

	endpoint := fmt.Sprintf("%s/user?%s", c.BaseURL, params.Encode())
	status, body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK && len(body) > 0:
		var users []models.RemoteUser
		if err := json.Unmarshal(body, &users); err != nil {
			return nil, fmt.Errorf("error unmarshaling user list response: %w", err)
		}
		return users, nil
	case status == http.StatusBadRequest:
		return nil, fmt.Errorf("user listing rejected by the remote directory: %s", string(body))
	default:
		slog.Error("User listing returned an unexpected response", "status_code", status, "url", endpoint)
		return nil, nil
	}
}

// --- Credential Methods ---

// VerifyPassword checks a password against the remote directory. An empty
// password short-circuits to false without a remote call, and any error on
// the remote call is converted to false: authentication fails closed and
// never raises.
func (c *Client) VerifyPassword(ctx context.Context, realm, externalID, password string) bool {
	if password == "" {
		slog.Debug("VerifyPassword with empty password", "realm", realm, "external_id", externalID)
		return false
	}

	endpoint := fmt.Sprintf("%s/user/validate/%s", c.BaseURL, url.PathEscape(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(password))
	if err != nil {
		slog.Error("Could not build password validation request", "error", err)
		return false
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Error("Could not validate password", "error", err)
		return false
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	slog.Debug("VerifyPassword response", "status_code", res.StatusCode)
	return res.StatusCode == http.StatusOK
}

// IsPasswordConfigured reports whether the user has a password set. The
// backend exposes no endpoint for this yet, so it answers true
// unconditionally. Known gap, not a designed behavior.
func (c *Client) IsPasswordConfigured(ctx context.Context, realm, externalID string) (bool, error) {
	slog.Debug("IsPasswordConfigured", "realm", realm, "external_id", externalID)
	return true, nil
}

// --- Write Methods ---

// CreateUser would create a user in the remote directory. The directory does
// not accept creates, so this always fails; callers must treat the error as
// permanent.
func (c *Client) CreateUser(ctx context.Context, realm string, user models.RemoteUser) (*models.RemoteUser, error) {
	slog.Info("CreateUser", "realm", realm, "username", user.Username)
	return nil, ErrCreateNotSupported
}

// UpdateUser pushes an updated user to the remote directory. The backend has
// no write endpoint, so the update is best-effort: it is logged and reported
// as successful.
func (c *Client) UpdateUser(ctx context.Context, realm string, user models.RemoteUser) error {
	slog.Info("UpdateUser", "realm", realm, "username", user.Username, "external_id", user.ID)
	return nil
}

// RemoveUserByExternalID removes a user in the remote directory. Deletion is
// unsupported; this always reports false.
func (c *Client) RemoveUserByExternalID(ctx context.Context, realm, externalID string) (bool, error) {
	slog.Debug("RemoveUserByExternalID", "realm", realm, "external_id", externalID)
	return false, nil
}

// --- Private Helpers ---

// doGet issues an authenticated GET and returns the status code and body.
// Only transport-level failures are returned as errors; status handling is
// left to the caller.
func (c *Client) doGet(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Making directory request", "method", req.Method, "url", req.URL.String())

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return res.StatusCode, body, nil
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
