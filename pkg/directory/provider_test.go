package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// fakeRemote is an in-memory stand-in for the remote directory that records
// every call.
type fakeRemote struct {
	users map[string]models.RemoteUser // keyed by external id

	lookupCalls int
	verifyCalls int
	createCalls int
	updateCalls int

	lastExternalID string
	lastUpdate     models.RemoteUser

	createErr error
	assignID  string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{users: map[string]models.RemoteUser{}, assignID: "remote-1"}
}

func (f *fakeRemote) add(user models.RemoteUser) {
	f.users[user.ID] = user
}

func (f *fakeRemote) UserByExternalID(ctx context.Context, realm, externalID string) (*models.RemoteUser, error) {
	f.lookupCalls++
	f.lastExternalID = externalID
	if user, ok := f.users[externalID]; ok {
		return &user, nil
	}
	return nil, nil
}

func (f *fakeRemote) UserByUsername(ctx context.Context, realm, username string) (*models.RemoteUser, error) {
	f.lookupCalls++
	for _, user := range f.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) UserByEmail(ctx context.Context, realm, email string) (*models.RemoteUser, error) {
	f.lookupCalls++
	for _, user := range f.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) Users(ctx context.Context, realm string, offset, limit int) ([]models.RemoteUser, error) {
	var users []models.RemoteUser
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeRemote) SearchForUser(ctx context.Context, realm, search string, offset, limit int) ([]models.RemoteUser, error) {
	return f.Users(ctx, realm, offset, limit)
}

func (f *fakeRemote) SearchForUserByParams(ctx context.Context, realm string, filters map[string]string, offset, limit int) ([]models.RemoteUser, error) {
	var matches []models.RemoteUser
	for _, user := range f.users {
		ok := true
		for name, value := range filters {
			if name == "group" {
				if _, in := user.GroupsAndRoles[value]; !in {
					ok = false
				}
				continue
			}
			if !slices.Contains(user.Attributes[name], value) {
				ok = false
			}
		}
		if ok {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

func (f *fakeRemote) UsersCount(ctx context.Context, realm string) (int, error) {
	return len(f.users), nil
}

func (f *fakeRemote) VerifyPassword(ctx context.Context, realm, externalID, password string) bool {
	f.verifyCalls++
	f.lastExternalID = externalID
	return password == "correct"
}

func (f *fakeRemote) IsPasswordConfigured(ctx context.Context, realm, externalID string) (bool, error) {
	return true, nil
}

func (f *fakeRemote) CreateUser(ctx context.Context, realm string, user models.RemoteUser) (*models.RemoteUser, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := user
	created.ID = f.assignID
	f.users[created.ID] = created
	return &created, nil
}

func (f *fakeRemote) UpdateUser(ctx context.Context, realm string, user models.RemoteUser) error {
	f.updateCalls++
	f.lastUpdate = user
	f.users[user.ID] = user
	return nil
}

func (f *fakeRemote) RemoveUserByExternalID(ctx context.Context, realm, externalID string) (bool, error) {
	return false, nil
}

const testRealm = "master"

func TestPendingUserVisibleWithinUnitOfWork(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	alice, err := provider.AddUser(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if alice.Persisted() {
		t.Fatal("a fresh user must not be marked persisted")
	}

	byUsername, err := provider.UserByUsername(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if byUsername != alice {
		t.Fatal("lookup within the unit of work must return the pending adapter")
	}

	byID, err := provider.UserByID(ctx, session, testRealm, alice.ID())
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if byID != alice {
		t.Fatal("id lookup within the unit of work must return the pending adapter")
	}

	if remote.lookupCalls != 0 {
		t.Fatalf("pending lookups must not reach the remote directory, got %d calls", remote.lookupCalls)
	}
}

func TestCommittedUserResolvedRemotelyInNewUnitOfWork(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)

	session := NewSession()
	alice, err := provider.AddUser(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	alice.SetEmail("alice@example.org")
	alice.SetEnabled(true)

	if err := session.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if remote.createCalls != 1 {
		t.Fatalf("expected exactly one create at commit, got %d", remote.createCalls)
	}
	if !alice.Persisted() {
		t.Fatal("a successful create must flip the persisted flag")
	}
	if alice.User().ID() != "remote-1" {
		t.Fatalf("expected the remote-assigned id to be adopted, got %q", alice.User().ID())
	}

	next := NewSession()
	found, err := provider.UserByUsername(ctx, next, testRealm, "alice")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if found == nil || found == alice {
		t.Fatal("a new unit of work must resolve the user remotely")
	}
	if remote.lookupCalls != 1 {
		t.Fatalf("expected one remote lookup in the new unit of work, got %d", remote.lookupCalls)
	}
}

func TestExactlyOnceFlushForManyMutations(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, err := provider.UserByUsername(ctx, session, testRealm, "bob")
	if err != nil || bob == nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}

	bob.SetEmail("bob@example.org")
	bob.SetFirstName("Bob")
	bob.SetLastName("Builder")
	bob.SetEnabled(true)
	bob.SetSingleAttribute("department", "ops")

	if err := session.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if remote.updateCalls != 1 {
		t.Fatalf("expected exactly one update for five mutations, got %d", remote.updateCalls)
	}
	if remote.createCalls != 0 {
		t.Fatalf("a persisted user must not be re-created, got %d creates", remote.createCalls)
	}
	if remote.lastUpdate.Email != "bob@example.org" || remote.lastUpdate.FirstName != "Bob" {
		t.Fatalf("flushed payload is missing mutations: %+v", remote.lastUpdate)
	}
}

func TestCommitWithoutMutationsFlushesNothing(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	if _, err := provider.UserByUsername(ctx, session, testRealm, "bob"); err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if err := session.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if remote.createCalls+remote.updateCalls != 0 {
		t.Fatal("a read-only unit of work must not write to the remote directory")
	}
}

func TestCreateFailurePropagatesToCommit(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.createErr = errors.New("creating user in http storage has failed")
	provider := NewProvider(remote)
	session := NewSession()

	alice, err := provider.AddUser(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	err = session.Commit(ctx)
	if err == nil {
		t.Fatal("expected the remote create failure to surface at commit")
	}
	if !strings.Contains(err.Error(), "creating user in http storage has failed") {
		t.Fatalf("expected the remote error to be preserved, got %v", err)
	}
	if alice.Persisted() {
		t.Fatal("a failed create must not flip the persisted flag")
	}
}

func TestRollbackPerformsNoRemoteWrite(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	alice, err := provider.AddUser(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	alice.SetEmail("alice@example.org")

	if err := session.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if remote.createCalls+remote.updateCalls != 0 {
		t.Fatal("rollback must not write to the remote directory")
	}
	// The in-memory entity still reflects the uncommitted change.
	if alice.Email() != "alice@example.org" {
		t.Fatal("rollback must not undo in-memory mutations")
	}
}

func TestUserByIDStripsStoragePrefix(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, err := provider.UserByID(ctx, session, testRealm, StorageID("ext-1"))
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if bob == nil || bob.Username() != "bob" {
		t.Fatalf("unexpected user: %+v", bob)
	}
	if remote.lastExternalID != "ext-1" {
		t.Fatalf("expected the prefix to be stripped before the remote call, got %q", remote.lastExternalID)
	}
	if bob.ID() != StorageID("ext-1") {
		t.Fatalf("expected the storage-scoped id on the adapter, got %q", bob.ID())
	}
}

func TestUserByIDMissIsHardError(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	_, err := provider.UserByID(ctx, session, testRealm, StorageID("ghost"))
	if err == nil {
		t.Fatal("a by-id miss must be a hard error")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected the external id in the error, got %v", err)
	}
}

func TestUsernameAndEmailMissAreSoft(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	user, err := provider.UserByUsername(ctx, session, testRealm, "ghost")
	if err != nil || user != nil {
		t.Fatalf("expected a soft miss, got user=%v err=%v", user, err)
	}
	user, err = provider.UserByEmail(ctx, session, testRealm, "ghost@example.org")
	if err != nil || user != nil {
		t.Fatalf("expected a soft miss, got user=%v err=%v", user, err)
	}
}

func TestIsValidRefusesPendingUser(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	alice, err := provider.AddUser(ctx, session, testRealm, "alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	_, err = provider.IsValid(ctx, session, testRealm, alice, Credential{Type: CredentialTypePassword, Secret: "anything"})
	if !errors.Is(err, ErrPendingCredential) {
		t.Fatalf("expected ErrPendingCredential, got %v", err)
	}
	if remote.verifyCalls != 0 {
		t.Fatalf("a pending user must never reach remote verification, got %d calls", remote.verifyCalls)
	}
}

func TestIsValidDelegatesToRemoteVerification(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, err := provider.UserByUsername(ctx, session, testRealm, "bob")
	if err != nil || bob == nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}

	valid, err := provider.IsValid(ctx, session, testRealm, bob, Credential{Type: CredentialTypePassword, Secret: "correct"})
	if err != nil || !valid {
		t.Fatalf("expected valid=true err=nil, got valid=%t err=%v", valid, err)
	}
	valid, err = provider.IsValid(ctx, session, testRealm, bob, Credential{Type: CredentialTypePassword, Secret: "wrong"})
	if err != nil || valid {
		t.Fatalf("expected valid=false err=nil, got valid=%t err=%v", valid, err)
	}
	if remote.lastExternalID != "ext-1" {
		t.Fatalf("expected verification with the stripped external id, got %q", remote.lastExternalID)
	}
}

func TestIsValidRejectsUnknownCredentialKind(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, _ := provider.UserByUsername(ctx, session, testRealm, "bob")

	valid, err := provider.IsValid(ctx, session, testRealm, bob, Credential{Type: "otp", Secret: "123456"})
	if err != nil || valid {
		t.Fatalf("an unknown credential kind must deny without error, got valid=%t err=%v", valid, err)
	}
	if remote.verifyCalls != 0 {
		t.Fatal("an unknown credential kind must not reach the remote directory")
	}
}

func TestUpdateCredentialDefersToCommit(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, _ := provider.UserByUsername(ctx, session, testRealm, "bob")

	updated, err := provider.UpdateCredential(ctx, session, testRealm, bob, Credential{Type: CredentialTypePassword, Secret: "new-secret"})
	if err != nil || !updated {
		t.Fatalf("UpdateCredential failed: updated=%t err=%v", updated, err)
	}
	if remote.updateCalls != 0 {
		t.Fatal("the credential update must not reach the remote directory before commit")
	}

	if err := session.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if remote.updateCalls != 1 {
		t.Fatalf("expected exactly one update at commit, got %d", remote.updateCalls)
	}
	if remote.lastUpdate.Password != "new-secret" {
		t.Fatal("the flushed payload must carry the new password")
	}
}

func TestUpdateCredentialRejectsUnknownKind(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, _ := provider.UserByUsername(ctx, session, testRealm, "bob")

	updated, err := provider.UpdateCredential(ctx, session, testRealm, bob, Credential{Type: "otp", Secret: "123456"})
	if err != nil || updated {
		t.Fatalf("an unknown credential kind must be refused without error, got updated=%t err=%v", updated, err)
	}
}

func TestCredentialSupportSurface(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, _ := provider.UserByUsername(ctx, session, testRealm, "bob")

	if !provider.SupportsCredentialType(CredentialTypePassword) {
		t.Fatal("passwords must be supported")
	}
	if provider.SupportsCredentialType("otp") {
		t.Fatal("only passwords are supported")
	}

	configured, err := provider.IsConfiguredFor(ctx, testRealm, bob, CredentialTypePassword)
	if err != nil || !configured {
		t.Fatalf("IsConfiguredFor(password) = %t, %v", configured, err)
	}
	configured, err = provider.IsConfiguredFor(ctx, testRealm, bob, "otp")
	if err != nil || configured {
		t.Fatalf("IsConfiguredFor(otp) = %t, %v", configured, err)
	}

	if err := provider.DisableCredentialType(ctx, testRealm, bob, CredentialTypePassword); !errors.Is(err, ErrCredentialUnsupported) {
		t.Fatalf("expected ErrCredentialUnsupported, got %v", err)
	}
	if types := provider.DisableableCredentialTypes(ctx, testRealm, bob); len(types) != 0 {
		t.Fatalf("no credential kind is disableable, got %v", types)
	}
}

func TestRemoveUserUnsupported(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob"})
	provider := NewProvider(remote)
	session := NewSession()

	bob, _ := provider.UserByUsername(ctx, session, testRealm, "bob")

	removed, err := provider.RemoveUser(ctx, testRealm, bob)
	if err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if removed {
		t.Fatal("deletion is unsupported and must report false")
	}
}

func TestGroupMembersQueriesRemoteDirectory(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob", GroupsAndRoles: map[string][]string{"admins": {"manage-users"}}})
	remote.add(models.RemoteUser{ID: "ext-2", Username: "eve", GroupsAndRoles: map[string][]string{"guests": nil}})
	provider := NewProvider(remote)
	session := NewSession()

	members, err := provider.GroupMembers(ctx, session, testRealm, "admins", 0, 100)
	if err != nil {
		t.Fatalf("GroupMembers failed: %v", err)
	}
	if len(members) != 1 || members[0].Username() != "bob" {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestSearchForUserByAttribute(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.add(models.RemoteUser{ID: "ext-1", Username: "bob", Attributes: map[string][]string{"department": {"ops"}}})
	remote.add(models.RemoteUser{ID: "ext-2", Username: "eve", Attributes: map[string][]string{"department": {"sales"}}})
	provider := NewProvider(remote)
	session := NewSession()

	users, err := provider.SearchForUserByAttribute(ctx, session, testRealm, "department", "ops")
	if err != nil {
		t.Fatalf("SearchForUserByAttribute failed: %v", err)
	}
	if len(users) != 1 || users[0].Username() != "bob" {
		t.Fatalf("unexpected users: %v", users)
	}
}

func TestListingsDoNotSeePendingUsers(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	provider := NewProvider(remote)
	session := NewSession()

	if _, err := provider.AddUser(ctx, session, testRealm, "alice"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	users, err := provider.Users(ctx, session, testRealm, 0, 100)
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("bulk listings bypass the pending-write cache, got %d users", len(users))
	}

	all, err := provider.AllUsers(ctx, session, testRealm)
	if err != nil {
		t.Fatalf("AllUsers failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("unpaged listings bypass the pending-write cache too, got %d users", len(all))
	}
}

func TestSessionCommitIsOneShot(t *testing.T) {
	ctx := context.Background()
	session := NewSession()
	if err := session.Commit(ctx); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	if err := session.Commit(ctx); err == nil {
		t.Fatal("a completed session must refuse a second commit")
	}
}

// sanity check that the storage id helpers round-trip.
func TestStorageIDRoundTrip(t *testing.T) {
	id := StorageID("ext-1")
	if id != fmt.Sprintf("%s:%s", ProviderName, "ext-1") {
		t.Fatalf("unexpected storage id %q", id)
	}
	if ExternalID(id) != "ext-1" {
		t.Fatalf("prefix strip failed for %q", id)
	}
	if ExternalID("plain") != "plain" {
		t.Fatal("ids without the prefix must pass through unchanged")
	}
}
