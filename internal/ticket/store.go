package ticket

import (
	"fmt"
	"os"
	"path/filepath"
)

const lastTicketFile = "lastticket.html"

// Store keeps the most recently rendered receipt on disk. The workflow
// overwrites it on every generation; only the latest one is ever served.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Save atomically replaces the stored receipt.
func (s *Store) Save(html []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("ticket dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, lastTicketFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

// Path returns where the stored receipt lives.
func (s *Store) Path() string {
	return filepath.Join(s.dir, lastTicketFile)
}

// Exists reports whether a receipt has been generated yet.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}
