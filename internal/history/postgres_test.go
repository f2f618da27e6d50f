package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postgresStore connects to SPECTRA_TEST_POSTGRES_DSN, skipping when it is unset
func postgresStore(t *testing.T, maxRecords int) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("SPECTRA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SPECTRA_TEST_POSTGRES_DSN not set")
	}

	s, err := NewPostgresStore(context.Background(), dsn, maxRecords)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		s.Close()
	})

	require.NoError(t, s.Clear(context.Background()))

	return s
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := postgresStore(t, 2)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, Record{ID: "a", FinalRisk: 10, Timestamp: base}))
	require.NoError(t, s.Save(ctx, Record{ID: "b", FinalRisk: 20, Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.Save(ctx, Record{ID: "a", FinalRisk: 95, Verdict: "High Risk", Result: []byte(`{"x":1}`), Timestamp: base.Add(2 * time.Minute)}))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 95.0, got.FinalRisk)
	assert.JSONEq(t, `{"x":1}`, string(got.Result))

	require.NoError(t, s.Save(ctx, Record{ID: "c", Timestamp: base.Add(3 * time.Minute)}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(list))

	deleted, err := s.Delete(ctx, "c")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewPostgresStoreBadDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "://not-a-dsn", 1)
	assert.ErrorIs(t, err, ErrConnect)
}
