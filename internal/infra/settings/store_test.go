package settings

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeSQL struct {
	values map[string]string
}

func (f *fakeSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	key, _ := args[0].(string)
	value, _ := args[1].(string)
	f.values[key] = value
	return pgconn.CommandTag{}, nil
}

func (f *fakeSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	key, _ := args[0].(string)
	value, ok := f.values[key]
	return fakeRow{value: value, ok: ok}
}

func (f *fakeSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type fakeRow struct {
	value string
	ok    bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.ok {
		return pgx.ErrNoRows
	}
	if p, ok := dest[0].(*string); ok {
		*p = r.value
	}
	return nil
}

func TestAPIKeyPrefersEnvironment(t *testing.T) {
	sql := &fakeSQL{values: map[string]string{KeyAPIKey: "stored"}}
	store := NewStore(sql, "from-env", time.Second)

	key, err := store.APIKey(context.Background())
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("key = %q, want env value", key)
	}
}

func TestAPIKeyFallsBackToStored(t *testing.T) {
	sql := &fakeSQL{values: map[string]string{}}
	store := NewStore(sql, "", time.Second)

	key, err := store.APIKey(context.Background())
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "" {
		t.Fatalf("key = %q, want empty when unset", key)
	}

	if err := store.SetAPIKey(context.Background(), " k-42 "); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	key, err = store.APIKey(context.Background())
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "k-42" {
		t.Fatalf("key = %q, want trimmed stored value", key)
	}
}

func TestSetAPIKeyRejectsEmpty(t *testing.T) {
	store := NewStore(&fakeSQL{values: map[string]string{}}, "", 0)
	if err := store.SetAPIKey(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestRequestDelayStoredOverride(t *testing.T) {
	sql := &fakeSQL{values: map[string]string{}}
	store := NewStore(sql, "", 1500*time.Millisecond)

	delay, err := store.RequestDelay(context.Background())
	if err != nil {
		t.Fatalf("RequestDelay: %v", err)
	}
	if delay != 1500*time.Millisecond {
		t.Fatalf("delay = %v, want default", delay)
	}

	if err := store.SetRequestDelay(context.Background(), 250*time.Millisecond); err != nil {
		t.Fatalf("SetRequestDelay: %v", err)
	}
	delay, err = store.RequestDelay(context.Background())
	if err != nil {
		t.Fatalf("RequestDelay: %v", err)
	}
	if delay != 250*time.Millisecond {
		t.Fatalf("delay = %v, want stored override", delay)
	}
}

func TestRequestDelayMalformedFallsBack(t *testing.T) {
	sql := &fakeSQL{values: map[string]string{KeyRequestDelay: "soon"}}
	store := NewStore(sql, "", 2*time.Second)

	delay, err := store.RequestDelay(context.Background())
	if err != nil {
		t.Fatalf("RequestDelay: %v", err)
	}
	if delay != 2*time.Second {
		t.Fatalf("delay = %v, want default on malformed value", delay)
	}
}

func TestSetRequestDelayRejectsNegative(t *testing.T) {
	store := NewStore(&fakeSQL{values: map[string]string{}}, "", 0)
	if err := store.SetRequestDelay(context.Background(), -time.Second); err == nil {
		t.Fatalf("expected error for negative delay")
	}
}
