package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/vbisect/internal/data/db"
)

// corruptMessages are substrings of driver errors that mean the file is
// not a usable database, for errors that arrive without a result code.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsNotFoundError reports whether err means a query matched no row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsCorruptionError reports whether err means the database file is damaged.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
	}

	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Quarantine moves a damaged database and its WAL and SHM files aside so a
// fresh one can be created. It returns the new path of the main file, or ""
// if there was nothing to move.
func Quarantine(dataDir string, now time.Time) (string, error) {
	base := filepath.Join(dataDir, db.Filename)
	backup := fmt.Sprintf("%s.corrupt.%s", base, now.Format("20060102-150405"))

	moved := ""
	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := base + suffix
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := os.Rename(src, backup+suffix); err != nil {
			// A leftover WAL or SHM would be replayed into the new file.
			if rmErr := os.Remove(src); rmErr != nil {
				return "", fmt.Errorf("move aside %s: %w", filepath.Base(src), err)
			}
			continue
		}
		if suffix == "" {
			moved = backup
		}
	}
	return moved, nil
}

// OpenWithRecovery opens the database, quarantining and recreating it once
// if the existing file is corrupt. backup is the quarantined path, if any.
func OpenWithRecovery(dataDir string, opts db.OpenOptions) (database *db.DB, backup string, err error) {
	database, err = db.Open(dataDir, opts)
	if err == nil || !IsCorruptionError(err) {
		return database, "", err
	}

	backup, qerr := Quarantine(dataDir, time.Now())
	if qerr != nil {
		return nil, "", errors.Join(err, qerr)
	}

	database, err = db.Open(dataDir, opts)
	if err != nil {
		return nil, backup, fmt.Errorf("reopen after quarantine: %w", err)
	}
	return database, backup, nil
}
