package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique violation", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"wrapped serialization", fmt.Errorf("commit transaction: %w", &pq.Error{Code: "40001"}), ErrorClassSerialization},
		{"badger conflict", badger.ErrConflict, ErrorClassSerialization},
		{"dynamodb transaction conflict", &types.TransactionConflictException{}, ErrorClassSerialization},
		{"dynamodb transaction canceled", fmt.Errorf("write 2 documents: %w", &types.TransactionCanceledException{}), ErrorClassSerialization},
		{"no rows", sql.ErrNoRows, ErrorClassPermanent},
		{"canceled", context.Canceled, ErrorClassPermanent},
		{"other", errors.New("boom"), ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")

	err := retry(context.Background(), 3, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversFromConflict(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return badger.ErrConflict
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 2, func() error {
		calls++
		return &pq.Error{Code: "40P01"}
	})
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if !IsRetryable(err) {
		t.Errorf("Wrapped error should still classify as retryable: %v", err)
	}
}

func TestMigrationFilesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"002_b.up.sql", "001_a.up.sql", "001_a.down.sql", "002_b.down.sql", "README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	up, err := MigrationFiles(dir, Up)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"001_a.up.sql", "002_b.up.sql"}, up); diff != "" {
		t.Errorf("up order mismatch (-want +got):\n%s", diff)
	}

	down, err := MigrationFiles(dir, Down)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"002_b.down.sql", "001_a.down.sql"}, down); diff != "" {
		t.Errorf("down order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("Expected error for unknown direction")
	}
	if d, err := ParseDirection("down"); err != nil || d != Down {
		t.Errorf("ParseDirection(down) = %v, %v", d, err)
	}
}
