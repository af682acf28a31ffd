package testsupport

import (
	"context"
	"testing"

	"lungrisk/internal/adapters/database"
)

// NewTestSQLite opens a private in-memory SQLite database closed on cleanup.
func NewTestSQLite(t *testing.T) *database.Client {
	t.Helper()

	client, err := database.NewSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
