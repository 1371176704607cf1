package sqlutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"", "''"},
		{"it's", "'it''s'"},
		{"''", "''''''"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := QuoteLiteral(tt.in); got != tt.want {
				t.Fatalf("QuoteLiteral(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestScanRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b").AddRow("c"))

	rows, err := db.Query("SELECT id FROM t")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	got, err := ScanRows(rows, func(r *sql.Rows) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	})
	if err != nil {
		t.Fatalf("ScanRows() error = %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("ScanRows() = %v, want [a b c]", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestScanRowsPropagatesScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(nil))

	rows, err := db.Query("SELECT id FROM t")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	_, err = ScanRows(rows, func(r *sql.Rows) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	})
	if err == nil {
		t.Fatal("ScanRows() error = nil, want scan failure")
	}
}
