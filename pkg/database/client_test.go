package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestClient starts a throwaway Postgres container and runs it through the
// real NewClient path, so tests exercise the embedded migrations exactly as
// production does.
func newTestClient(t *testing.T) *Client {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	client, err := NewClient(ctx, Config{
		Host:            host,
		Port:            port.Int(),
		User:            "test",
		Password:        "test",
		Database:        "test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestDatabaseClient_ConnectionPool(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	err := client.DB().PingContext(ctx)
	require.NoError(t, err)

	health, err := Health(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Greater(t, health.MaxOpenConns, 0)
}

func TestDatabaseClient_LibraryNameUnique(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Library.Create().
		SetID("lib-1").
		SetName("curl/curl").
		SetRepoURL("https://github.com/curl/curl").
		Save(ctx)
	require.NoError(t, err)

	_, err = client.Library.Create().
		SetID("lib-2").
		SetName("curl/curl").
		SetRepoURL("https://github.com/curl/curl-fork").
		Save(ctx)
	assert.Error(t, err, "name conflict with a different repo_url must be rejected")
}

func TestDatabaseClient_UpdatedAtTriggerFiresOnRawSQL(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	lib, err := client.Library.Create().
		SetID("lib-trigger").
		SetName("openssl/openssl").
		SetRepoURL("https://github.com/openssl/openssl").
		Save(ctx)
	require.NoError(t, err)

	// Write directly with SQL, bypassing ent's UpdateDefault hook, to prove the
	// Postgres trigger (not just the ent hook) maintains updated_at.
	_, err = client.DB().ExecContext(ctx,
		`UPDATE libraries SET default_branch = 'master' WHERE id = $1`, lib.ID)
	require.NoError(t, err)

	var updatedAt time.Time
	row := client.DB().QueryRowContext(ctx, `SELECT updated_at FROM libraries WHERE id = $1`, lib.ID)
	require.NoError(t, row.Scan(&updatedAt))
	assert.True(t, updatedAt.After(lib.UpdatedAt) || updatedAt.Equal(lib.UpdatedAt))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Host:         "localhost",
				Port:         5432,
				User:         "test",
				Password:     "test",
				Database:     "test",
				SSLMode:      "disable",
				MaxOpenConns: 10,
				MaxIdleConns: 5,
			},
			wantErr: false,
		},
		{
			name: "missing password",
			cfg: Config{
				Host:         "localhost",
				Port:         5432,
				User:         "test",
				Password:     "",
				Database:     "test",
				MaxOpenConns: 10,
				MaxIdleConns: 5,
			},
			wantErr: true,
		},
		{
			name: "idle conns exceed max conns",
			cfg: Config{
				Host:         "localhost",
				Port:         5432,
				User:         "test",
				Password:     "test",
				Database:     "test",
				MaxOpenConns: 5,
				MaxIdleConns: 10,
			},
			wantErr: true,
		},
		{
			name: "zero max open conns",
			cfg: Config{
				Host:         "localhost",
				Port:         5432,
				User:         "test",
				Password:     "test",
				Database:     "test",
				MaxOpenConns: 0,
				MaxIdleConns: 0,
			},
			wantErr: true,
		},
		{
			name: "negative idle conns",
			cfg: Config{
				Host:         "localhost",
				Port:         5432,
				User:         "test",
				Password:     "test",
				Database:     "test",
				MaxOpenConns: 10,
				MaxIdleConns: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
