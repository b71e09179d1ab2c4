package directory

import (
	"context"
	"log/slog"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// TxState tracks the lifecycle of a deferred write.
type TxState int

const (
	// TxIdle means the transaction has not been enlisted yet.
	TxIdle TxState = iota
	// TxEnlisted means the transaction is registered with a session and
	// waiting for commit.
	TxEnlisted
	// TxApplied means the flush was attempted. Terminal.
	TxApplied
)

// Transaction is a deferred unit registered with a Session and driven at
// unit-of-work completion.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// remoteWriter is the slice of the remote directory the write transaction
// needs at flush time.
type remoteWriter interface {
	CreateUser(ctx context.Context, realm string, user models.RemoteUser) (*models.RemoteUser, error)
	UpdateUser(ctx context.Context, realm string, user models.RemoteUser) error
}

// WriteTransaction applies the accumulated mutations of one adapter to the
// remote directory in a single write at commit time. It flushes at most
// once: a not-yet-persisted user is created, an already persisted one is
// updated. Rollback performs no remote action; the in-memory user keeps the
// uncommitted change, which the remote side never received.
type WriteTransaction struct {
	remote  remoteWriter
	adapter *UserAdapter
	state   TxState
}

func newWriteTransaction(remote remoteWriter, adapter *UserAdapter) *WriteTransaction {
	return &WriteTransaction{remote: remote, adapter: adapter}
}

// State returns the current lifecycle state.
func (t *WriteTransaction) State() TxState {
	return t.state
}

// Commit flushes exactly one remote write. On a successful create the
// adapter is marked persisted and adopts the remote-assigned id if the
// directory returned one. Errors propagate to the session commit path; no
// compensation or retry is attempted.
func (t *WriteTransaction) Commit(ctx context.Context) error {
	t.state = TxApplied
	if !t.adapter.Persisted() {
		created, err := t.remote.CreateUser(ctx, t.adapter.Realm(), t.adapter.user.Remote())
		if err != nil {
			return err
		}
		if created != nil && created.ID != "" {
			t.adapter.user.bindRemoteID(created.ID)
			// The id changed, so the cached storage-scoped form is stale.
			t.adapter.storageID = ""
		}
		t.adapter.persisted = true
		return nil
	}
	return t.remote.UpdateUser(ctx, t.adapter.Realm(), t.adapter.user.Remote())
}

// Rollback discards the deferred write without touching the remote
// directory.
func (t *WriteTransaction) Rollback(ctx context.Context) error {
	slog.Debug("Discarding deferred directory write", "username", t.adapter.Username())
	t.state = TxApplied
	return nil
}
