package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lungrisk/internal/adapters/database"
)

// NewTestPostgres connects to the integration database and switches the
// connection to a throwaway schema that is dropped on cleanup.
func NewTestPostgres(t *testing.T) *database.Client {
	t.Helper()

	cfg := PostgresConfigFromEnv(t)
	cfg.MaxConns = 1 // search_path is per connection

	ctx := context.Background()
	client, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create postgres client: %v", err)
	}

	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	if _, err := client.DB().ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = client.Close()
		t.Fatalf("failed to create schema: %v", err)
	}
	if _, err := client.DB().ExecContext(ctx, "SET search_path TO "+schema); err != nil {
		_ = client.Close()
		t.Fatalf("failed to set search_path: %v", err)
	}

	t.Cleanup(func() {
		_, _ = client.DB().ExecContext(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		_ = client.Close()
	})

	return client
}
