package storage

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// CountDocuments is the one read path that swallows its error, so its
// degraded behavior is pinned down against a failing database.
func TestCountDocuments_DegradesToZeroOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
		WillReturnError(errors.New("disk I/O error"))

	s := &Store{db: db, logger: slog.Default()}
	if got := s.CountDocuments(); got != 0 {
		t.Errorf("CountDocuments() = %d, want 0 on query error", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
