package httpdir

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the connection settings for the remote directory.
type Config struct {
	// URL is the base URL of the remote directory API.
	URL string
	// Username and Password are the HTTP Basic credentials.
	Username string
	Password string
}

// Validate checks the configuration the same way the admin console would
// before accepting it: the URL must parse as an absolute URI and the basic
// auth credentials must not be blank.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("directory url is not valid: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("directory url %q is not absolute", c.URL)
	}
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("directory username is not set")
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("directory password is not set")
	}
	return nil
}

// Pagination reports whether paged sync is enabled. For later - can be
// configurable; this revision always syncs full batches.
func (c Config) Pagination() bool {
	return false
}

// BatchSize is the page size used for paged sync. Unused while Pagination
// is off.
func (c Config) BatchSize() int {
	return 100
}

// String renders the config without the password so it can be logged safely.
func (c Config) String() string {
	return fmt.Sprintf("Config(url=%s, username=%s)", c.URL, c.Username)
}
