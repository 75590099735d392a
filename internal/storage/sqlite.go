package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding processed document records.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "findoc.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, logger: slog.Default()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in
// ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// SaveDocument appends a record, assigning its id and upload timestamp, and
// returns the new id. The filename is the one structural constraint enforced
// here; everything else is stored as given.
func (s *Store) SaveDocument(rec DocumentRecord) (int64, error) {
	if strings.TrimSpace(rec.Filename) == "" {
		return 0, fmt.Errorf("filename is required")
	}

	savedAt := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO documents (filename, upload_timestamp, raw_text, structured_data, model_type, file_size)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Filename, savedAt.Format(time.RFC3339), rec.RawText, rec.StructuredData, rec.ModelType, rec.FileSize,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}

	s.logger.Info("storage.document.saved", "id", id, "filename", rec.Filename, "model_type", rec.ModelType)
	return id, nil
}

// ListDocuments returns all stored records, most recently saved first. Zero
// rows yields an empty slice, never nil.
func (s *Store) ListDocuments() ([]DocumentRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, upload_timestamp, raw_text, structured_data, model_type, file_size
		FROM documents ORDER BY upload_timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	results := []DocumentRecord{}
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// GetDocument returns one record by id, or ErrNotFound.
func (s *Store) GetDocument(id int64) (DocumentRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, filename, upload_timestamp, raw_text, structured_data, model_type, file_size
		FROM documents WHERE id = ?`, id)

	rec, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return DocumentRecord{}, ErrNotFound
	}
	if err != nil {
		return DocumentRecord{}, err
	}
	return rec, nil
}

// CountDocuments returns the total number of stored records. It degrades to
// 0 instead of failing when the store cannot be read, so callers showing a
// count never have to handle an error.
func (s *Store) CountDocuments() int {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		s.logger.Warn("storage.count_failed", "error", err)
		return 0
	}
	return count
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (DocumentRecord, error) {
	var rec DocumentRecord
	var uploadedAt string
	var rawText, structuredData sql.NullString

	err := row.Scan(&rec.ID, &rec.Filename, &uploadedAt, &rawText, &structuredData, &rec.ModelType, &rec.FileSize)
	if err != nil {
		return DocumentRecord{}, err
	}

	rec.RawText = rawText.String
	rec.StructuredData = structuredData.String

	t, err := time.Parse(time.RFC3339, uploadedAt)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("parsing upload_timestamp: %w", err)
	}
	rec.UploadTimestamp = t
	return rec, nil
}
