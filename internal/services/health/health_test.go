package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	got := NewService(nil).Status(context.Background())
	if !got.OK || got.Database != "memory" {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := NewService(db)

	mock.ExpectPing()
	if got := svc.Status(context.Background()); !got.OK || got.Database != "up" {
		t.Fatalf("expected up, got %+v", got)
	}

	mock.ExpectPing().WillReturnError(errors.New("down"))
	if got := svc.Status(context.Background()); got.OK || got.Database != "down" {
		t.Fatalf("expected down, got %+v", got)
	}
}
