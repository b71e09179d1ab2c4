package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// RemoteDirectory is the boundary to the remote identity store. It is
// satisfied by httpdir.Client; tests substitute fakes.
type RemoteDirectory interface {
	UserByExternalID(ctx context.Context, realm, externalID string) (*models.RemoteUser, error)
	UserByUsername(ctx context.Context, realm, username string) (*models.RemoteUser, error)
	UserByEmail(ctx context.Context, realm, email string) (*models.RemoteUser, error)
	Users(ctx context.Context, realm string, offset, limit int) ([]models.RemoteUser, error)
	SearchForUser(ctx context.Context, realm, search string, offset, limit int) ([]models.RemoteUser, error)
	SearchForUserByParams(ctx context.Context, realm string, filters map[string]string, offset, limit int) ([]models.RemoteUser, error)
	UsersCount(ctx context.Context, realm string) (int, error)
	VerifyPassword(ctx context.Context, realm, externalID, password string) bool
	IsPasswordConfigured(ctx context.Context, realm, externalID string) (bool, error)
	CreateUser(ctx context.Context, realm string, user models.RemoteUser) (*models.RemoteUser, error)
	UpdateUser(ctx context.Context, realm string, user models.RemoteUser) error
	RemoveUserByExternalID(ctx context.Context, realm, externalID string) (bool, error)
}

// CredentialType is a closed enumeration of the credential kinds this
// provider understands.
type CredentialType string

// CredentialTypePassword is the only supported credential kind.
const CredentialTypePassword CredentialType = "password"

// Credential is a tagged credential input. Operations check the tag and
// reject kinds they do not support instead of guessing at the payload.
type Credential struct {
	Type   CredentialType
	Secret string
}

var (
	// ErrPendingCredential is returned when credentials are validated for a
	// user that exists only in the pending-write cache: there is no remote
	// record to validate against yet.
	ErrPendingCredential = errors.New("cannot validate credentials for a user not yet persisted to the remote directory")
	// ErrCredentialUnsupported is returned by credential operations the
	// remote directory cannot perform.
	ErrCredentialUnsupported = errors.New("credential operation not supported by the remote directory")
)

// Provider is the directory facade the host runtime talks to. Lookups
// consult the session's pending-write cache first and fall through to the
// remote directory on a miss; query methods always go straight to the remote
// directory, so uncommitted users of the current unit of work do not appear
// in bulk listings.
type Provider struct {
	remote RemoteDirectory
}

// NewProvider creates a facade over the given remote directory.
func NewProvider(remote RemoteDirectory) *Provider {
	return &Provider{remote: remote}
}

// --- Lookup Methods ---

// UserByUsername returns the user with the given username, or nil when the
// directory does not know it.
func (p *Provider) UserByUsername(ctx context.Context, session *Session, realm, username string) (*UserAdapter, error) {
	if pending := session.Pending().ByUsername(username); pending != nil {
		return pending, nil
	}
	user, err := p.remote.UserByUsername(ctx, realm, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return AdaptExistingUser(session, realm, UserFromRemote(*user), p.remote), nil
}

// UserByID returns the user with the given storage-scoped id. Unlike the
// other lookups, a remote miss is a hard error: the host only asks for ids
// it believes exist.
func (p *Provider) UserByID(ctx context.Context, session *Session, realm, id string) (*UserAdapter, error) {
	if pending := session.Pending().ByID(id); pending != nil {
		return pending, nil
	}
	externalID := ExternalID(id)
	user, err := p.remote.UserByExternalID(ctx, realm, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found by external id %q", externalID)
	}
	return AdaptExistingUser(session, realm, UserFromRemote(*user), p.remote), nil
}

// UserByEmail returns the user with the given mail address, or nil when the
// directory does not know it.
func (p *Provider) UserByEmail(ctx context.Context, session *Session, realm, email string) (*UserAdapter, error) {
	if pending := session.Pending().ByEmail(email); pending != nil {
		return pending, nil
	}
	user, err := p.remote.UserByEmail(ctx, realm, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return AdaptExistingUser(session, realm, UserFromRemote(*user), p.remote), nil
}

// --- Query Methods ---

// UsersCount reports the remote directory's user count, bounded by the
// client's probe size.
func (p *Provider) UsersCount(ctx context.Context, realm string) (int, error) {
	return p.remote.UsersCount(ctx, realm)
}

// AllUsers returns every user the remote directory will hand out in one
// unpaged call.
func (p *Provider) AllUsers(ctx context.Context, session *Session, realm string) ([]*UserAdapter, error) {
	return p.Users(ctx, session, realm, 0, fullBatch)
}

// Users returns one page of users.
func (p *Provider) Users(ctx context.Context, session *Session, realm string, offset, limit int) ([]*UserAdapter, error) {
	users, err := p.remote.Users(ctx, realm, offset, limit)
	if err != nil {
		return nil, err
	}
	return p.adaptAll(session, realm, users), nil
}

// SearchForUser returns users matching a free-text search.
func (p *Provider) SearchForUser(ctx context.Context, session *Session, realm, search string, offset, limit int) ([]*UserAdapter, error) {
	users, err := p.remote.SearchForUser(ctx, realm, search, offset, limit)
	if err != nil {
		return nil, err
	}
	return p.adaptAll(session, realm, users), nil
}

// SearchForUserByParams returns users matching the given attribute filters.
func (p *Provider) SearchForUserByParams(ctx context.Context, session *Session, realm string, filters map[string]string, offset, limit int) ([]*UserAdapter, error) {
	users, err := p.remote.SearchForUserByParams(ctx, realm, filters, offset, limit)
	if err != nil {
		return nil, err
	}
	return p.adaptAll(session, realm, users), nil
}

// GroupMembers returns the members of the named group.
func (p *Provider) GroupMembers(ctx context.Context, session *Session, realm, group string, offset, limit int) ([]*UserAdapter, error) {
	return p.SearchForUserByParams(ctx, session, realm, map[string]string{"group": group}, offset, limit)
}

// SearchForUserByAttribute returns users carrying the given attribute value.
func (p *Provider) SearchForUserByAttribute(ctx context.Context, session *Session, realm, name, value string) ([]*UserAdapter, error) {
	return p.SearchForUserByParams(ctx, session, realm, map[string]string{name: value}, 0, fullBatch)
}

// fullBatch requests everything; pagination is disabled in this revision.
const fullBatch = math.MaxInt

func (p *Provider) adaptAll(session *Session, realm string, users []models.RemoteUser) []*UserAdapter {
	adapters := make([]*UserAdapter, 0, len(users))
	for _, user := range users {
		adapters = append(adapters, AdaptExistingUser(session, realm, UserFromRemote(user), p.remote))
	}
	return adapters
}

// --- Registration Methods ---

// AddUser creates a fresh principal in the current unit of work. The user
// carries a synthetic local id until the deferred create assigns a remote
// one, is visible to lookups in this session through the pending-write
// cache, and is flushed to the remote directory when the session commits.
func (p *Provider) AddUser(ctx context.Context, session *Session, realm, username string) (*UserAdapter, error) {
	user := NewUser(uuid.NewString())
	user.SetCreatedTimestamp(time.Now().UnixMilli())

	adapter := AdaptNewUser(session, realm, user, p.remote)
	adapter.SetUsername(username)
	session.Pending().Put(adapter)

	slog.Debug("Created pending user", "realm", realm, "username", username, "id", adapter.ID())
	return adapter, nil
}

// RemoveUser deletes a user from the remote directory. Unsupported; the
// result is always false.
func (p *Provider) RemoveUser(ctx context.Context, realm string, user *UserAdapter) (bool, error) {
	return p.remote.RemoveUserByExternalID(ctx, realm, ExternalID(user.ID()))
}

// --- Credential Methods ---

// SupportsCredentialType reports whether the provider can handle the given
// credential kind. Only passwords are supported.
func (p *Provider) SupportsCredentialType(credentialType CredentialType) bool {
	return credentialType == CredentialTypePassword
}

// IsConfiguredFor reports whether the user has the given credential kind
// configured.
func (p *Provider) IsConfiguredFor(ctx context.Context, realm string, user *UserAdapter, credentialType CredentialType) (bool, error) {
	if !p.SupportsCredentialType(credentialType) {
		return false, nil
	}
	return p.remote.IsPasswordConfigured(ctx, realm, ExternalID(user.ID()))
}

// IsValid validates a credential against the remote directory. Validation of
// an unsupported credential kind denies; validation of a user that only
// exists in the pending-write cache fails hard, since no authoritative
// remote record exists yet. Remote verification itself never raises: it
// denies on any failure.
func (p *Provider) IsValid(ctx context.Context, session *Session, realm string, user *UserAdapter, credential Credential) (bool, error) {
	slog.Debug("Validating credential", "realm", realm, "username", user.Username(), "type", credential.Type)
	if credential.Type != CredentialTypePassword {
		return false, nil
	}
	if pending := session.Pending().ByID(user.ID()); pending != nil {
		return false, fmt.Errorf("%w: %s", ErrPendingCredential, user.Username())
	}
	return p.remote.VerifyPassword(ctx, realm, ExternalID(user.ID()), credential.Secret), nil
}

// UpdateCredential installs a new credential on the in-memory user and
// defers the remote write to session commit.
func (p *Provider) UpdateCredential(ctx context.Context, session *Session, realm string, user *UserAdapter, credential Credential) (bool, error) {
	if credential.Type != CredentialTypePassword {
		return false, nil
	}
	user.SetPassword(credential.Secret)
	return true, nil
}

// DisableCredentialType is not supported by the remote directory.
func (p *Provider) DisableCredentialType(ctx context.Context, realm string, user *UserAdapter, credentialType CredentialType) error {
	return ErrCredentialUnsupported
}

// DisableableCredentialTypes returns the credential kinds that can be
// disabled: none.
func (p *Provider) DisableableCredentialTypes(ctx context.Context, realm string, user *UserAdapter) []CredentialType {
	return nil
}
