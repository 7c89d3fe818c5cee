package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledger/internal/model"
)

// File is a journal CSV on disk.
type File struct {
	path string
}

// Open returns the journal File named name under repoRoot. The file is
// not touched until Load or Append is called.
func Open(repoRoot, name string) *File {
	return &File{path: filepath.Join(repoRoot, name)}
}

// Path returns the journal's location on disk.
func (f *File) Path() string {
	return f.path
}

// Load reads every transaction from the journal. A missing file is an empty journal.
func (f *File) Load() ([]model.Transaction, error) {
	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", f.path, err)
	}
	defer fh.Close()

	txns, err := ReadTransactions(fh)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", f.path, err)
	}
	return txns, nil
}

// Create writes an empty journal containing only the header.
func (f *File) Create() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}
	fh, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("creating journal: %w", err)
	}
	defer fh.Close()

	if err := WriteTransactions(fh, nil); err != nil {
		return fmt.Errorf("writing journal header: %w", err)
	}
	return nil
}

// Append adds transactions to the end of the journal, writing the header
// first if the file is new.
func (f *File) Append(txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if info, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0) {
		isNew = true
	}

	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer fh.Close()

	if isNew {
		if _, err := fmt.Fprintln(fh, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTransactions(fh, txns); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}
