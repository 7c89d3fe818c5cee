package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/config"
	"github.com/cleared-dev/ledger/internal/gitops"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/ledger"
	"github.com/cleared-dev/ledger/internal/logging"
)

// LockFile sits at the ledger root and serializes ledger processes.
const LockFile = "ledger.lock"

// lockMode says whether a command only reads the journal or also appends to it.
type lockMode int

const (
	lockShared lockMode = iota
	lockExclusive
)

var (
	lockTimeout    = 30 * time.Second
	lockRetryDelay = 20 * time.Millisecond
)

// workspace is a ledger directory loaded into memory for one command.
// It holds the ledger lock from load until close, so the balance a command
// checks is the balance on disk when it appends.
type workspace struct {
	root    string
	cfg     *config.Config
	logger  *zap.Logger
	lock    *flock.Flock
	journal *journal.File
	store   *ledger.Store
}

func openWorkspace(repoDir string, mode lockMode) (*workspace, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	lock, err := acquireLock(root, mode)
	if err != nil {
		return nil, err
	}

	jf := journal.Open(root, cfg.Storage.JournalFile)
	history, err := jf.Load()
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	logger.Debug("loaded journal",
		zap.String("path", jf.Path()),
		zap.Int("transactions", len(history)),
	)

	return &workspace{
		root:    root,
		cfg:     cfg,
		logger:  logger,
		lock:    lock,
		journal: jf,
		store:   ledger.NewStore(history...),
	}, nil
}

func acquireLock(root string, mode lockMode) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(root, LockFile))

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	var ok bool
	var err error
	if mode == lockExclusive {
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("locking ledger: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("locking ledger: %s is held by another process", lock.Path())
	}
	return lock, nil
}

func (w *workspace) close() {
	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("failed to release ledger lock", zap.Error(err))
	}
	_ = w.logger.Sync()
}

// audit records entries in the audit log. Failures are logged, not returned:
// the journal is the source of truth.
func (w *workspace) audit(entries ...auditlog.Entry) {
	if err := auditlog.Append(w.root, entries); err != nil {
		w.logger.Warn("failed to write audit log", zap.Error(err))
	}
}

// commit snapshots the ledger directory when auto-commit is on.
// Returns an empty hash when nothing was committed.
func (w *workspace) commit(message string) (string, error) {
	if !w.cfg.Git.AutoCommit || !gitops.IsRepo(w.root) {
		return "", nil
	}
	changed, err := gitops.HasChanges(w.root)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}
	hash, err := gitops.CommitAll(w.root, message, gitops.Author{
		Name:  w.cfg.Git.AuthorName,
		Email: w.cfg.Git.AuthorEmail,
	})
	if err != nil {
		return "", err
	}
	w.logger.Debug("committed", zap.String("hash", hash), zap.String("message", message))
	return hash, nil
}
