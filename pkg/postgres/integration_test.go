package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// PostgresContainer represents a Postgres container for testing
type PostgresContainer struct {
	testcontainers.Container
	Config Config
	Host   string
	Port   string
}

// setupPostgresContainer sets up a Postgres container for testing. The
// host port is pinned so the container keeps its address across a
// stop/start cycle, which the recovery test relies on.
func setupPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	config := Config{
		Connection: Connection{
			Host:     host,
			Port:     portStr,
			User:     "testuser",
			Password: "testpass",
			DbName:   "testdb",
			SSLMode:  "disable",
		},
	}

	if err := waitForPostgresReady(config, 30*time.Second); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("postgres container not ready: %w", err)
	}

	return &PostgresContainer{
		Container: pgContainer,
		Config:    config,
		Host:      host,
		Port:      portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		err := addr.Close()
		if err != nil {
			fmt.Printf("Failed to close listener: %v", err)
		}
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForPostgresReady attempts to connect to PostgreSQL until it's ready
// or times out. It probes through lib/pq so the readiness check stays
// independent of the driver under test.
func waitForPostgresReady(cfg Config, timeout time.Duration) error {
	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for PostgreSQL to be ready after %s", timeout)
		}

		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		err = db.Ping()
		_ = db.Close()
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func newMockLogger(t *testing.T) *database.MockLogger {
	ctrl := gomock.NewController(t)
	mockLogger := database.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return mockLogger
}

const testSchema = `
CREATE TABLE resources(
       internalId BIGSERIAL NOT NULL PRIMARY KEY,
       resourceType INTEGER NOT NULL,
       publicId VARCHAR(64) NOT NULL,
       parentId BIGINT);
CREATE UNIQUE INDEX PublicIdIndex ON resources(publicId);

CREATE TABLE metadata(
       id BIGINT NOT NULL,
       type INTEGER NOT NULL,
       value TEXT,
       PRIMARY KEY(id, type));

CREATE TABLE attachments(
       id BIGINT NOT NULL,
       content BYTEA);

CREATE TABLE counters(
       id BIGINT NOT NULL PRIMARY KEY,
       n BIGINT NOT NULL);

CREATE FUNCTION ResourceDeletedFunc() RETURNS TRIGGER AS $body$
BEGIN
   DELETE FROM metadata WHERE id = old.internalId;
   RETURN NULL;
END;
$body$ LANGUAGE plpgsql;

CREATE TRIGGER ResourceDeleted AFTER DELETE ON resources
FOR EACH ROW EXECUTE PROCEDURE ResourceDeletedFunc();
`

func TestPostgresEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	t.Logf("Using PostgreSQL on %s:%s", pgContainer.Host, pgContainer.Port)

	var factory database.Factory
	app := fxtest.New(t,
		fx.Provide(
			func() Config { return pgContainer.Config },
			func() database.Logger { return newMockLogger(t) },
		),
		FXModule,
		fx.Populate(&factory),
	)
	app.RequireStart()
	defer app.RequireStop()

	manager := database.NewManager(factory, newMockLogger(t))
	defer manager.Close()

	conn, err := manager.Connection(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.ExecuteMultiLines(ctx, testSchema))

	t.Run("introspection", func(t *testing.T) {
		exists, err := conn.DoesTableExist(ctx, "resources")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = conn.DoesTableExist(ctx, "nonexistent")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = conn.DoesIndexExist(ctx, "PublicIdIndex")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = conn.DoesTriggerExist(ctx, "ResourceDeleted")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("autoincrement insert", func(t *testing.T) {
		insert := database.NewCachedStatement(database.FromHere(), manager,
			"INSERT INTO resources VALUES(${AUTOINCREMENT} ${type}, ${publicId}, NULL)")
		lastID := database.NewCachedStatement(database.FromHere(), manager,
			"SELECT lastval()").SetReadOnly(true)

		_, err := manager.StartTransaction(ctx, database.TransactionReadWrite)
		require.NoError(t, err)

		parameters := database.NewDictionary()
		parameters.SetInteger64("type", 1)
		parameters.SetUtf8("publicId", "patient-1")
		require.NoError(t, insert.ExecuteWithoutResult(ctx, parameters))

		reader, err := lastID.Execute(ctx, nil)
		require.NoError(t, err)
		first, err := reader.ReadInteger64(0)
		require.NoError(t, err)
		reader.Close()
		assert.Positive(t, first)

		parameters.SetUtf8("publicId", "patient-2")
		require.NoError(t, insert.ExecuteWithoutResult(ctx, parameters))

		reader, err = lastID.Execute(ctx, nil)
		require.NoError(t, err)
		second, err := reader.ReadInteger64(0)
		require.NoError(t, err)
		reader.Close()
		assert.Equal(t, first+1, second)

		require.NoError(t, manager.Commit())
	})

	t.Run("typed round trip", func(t *testing.T) {
		payload := []byte{0x44, 0x49, 0x43, 0x4d, 0x00, 0xff}

		insert := database.NewCachedStatement(database.FromHere(), manager,
			"INSERT INTO attachments VALUES(${id}, ${content})")
		query := database.NewCachedStatement(database.FromHere(), manager,
			"SELECT id, content FROM attachments WHERE id = ${id}").SetReadOnly(true)

		_, err := manager.StartTransaction(ctx, database.TransactionImplicit)
		require.NoError(t, err)
		parameters := database.NewDictionary()
		parameters.SetInteger64("id", 1)
		parameters.SetInputFile("content", payload)
		require.NoError(t, insert.ExecuteWithoutResult(ctx, parameters))
		require.NoError(t, manager.Commit())

		_, err = manager.StartTransaction(ctx, database.TransactionReadOnly)
		require.NoError(t, err)
		lookup := database.NewDictionary()
		lookup.SetInteger64("id", 1)
		reader, err := query.Execute(ctx, lookup)
		require.NoError(t, err)
		defer reader.Close()

		id, err := reader.ReadInteger64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		require.NoError(t, reader.SetExpectedType(1, database.TypeResultFile))
		content, err := reader.ReadLargeObject(1)
		require.NoError(t, err)
		assert.Equal(t, payload, content)

		require.NoError(t, manager.Commit())
	})

	t.Run("server enforces read only", func(t *testing.T) {
		_, err := manager.StartTransaction(ctx, database.TransactionReadOnly)
		require.NoError(t, err)

		// Declared read-only to get past the client-side gate; the
		// server still rejects the write with SQLSTATE 25006.
		statement := database.NewStandaloneStatement(manager,
			"INSERT INTO counters VALUES(${id}, ${n})").SetReadOnly(true)
		defer statement.Close()

		parameters := database.NewDictionary()
		parameters.SetInteger64("id", 99)
		parameters.SetInteger64("n", 0)
		err = statement.ExecuteWithoutResult(ctx, parameters)
		require.Error(t, err)
		assert.False(t, database.IsCollision(err))
		assert.False(t, database.IsUnavailable(err))
		assert.Nil(t, manager.ActiveTransaction(), "a failed transaction is discarded")
	})

	t.Run("concurrent update collides", func(t *testing.T) {
		second := database.NewManager(factory, newMockLogger(t))
		defer second.Close()

		seed := database.NewStandaloneStatement(manager,
			"INSERT INTO counters VALUES(${id}, 0)")
		readFirst := database.NewCachedStatement(database.FromHere(), manager,
			"SELECT n FROM counters WHERE id = ${id}").SetReadOnly(true)
		bumpFirst := database.NewCachedStatement(database.FromHere(), manager,
			"UPDATE counters SET n = n + 1 WHERE id = ${id}")
		bumpSecond := database.NewCachedStatement(database.FromHere(), second,
			"UPDATE counters SET n = n + 1 WHERE id = ${id}")

		parameters := database.NewDictionary()
		parameters.SetInteger64("id", 1)

		_, err := manager.StartTransaction(ctx, database.TransactionImplicit)
		require.NoError(t, err)
		require.NoError(t, seed.ExecuteWithoutResult(ctx, parameters))
		seed.Close()
		require.NoError(t, manager.Commit())

		// The first transaction takes its snapshot with a read, then a
		// concurrent transaction updates the row and commits.
		firstTx, err := manager.StartTransaction(ctx, database.TransactionReadWrite)
		require.NoError(t, err)
		reader, err := readFirst.Execute(ctx, parameters)
		require.NoError(t, err)
		reader.Close()

		_, err = second.StartTransaction(ctx, database.TransactionReadWrite)
		require.NoError(t, err)
		require.NoError(t, bumpSecond.ExecuteWithoutResult(ctx, parameters))
		require.NoError(t, second.Commit())

		err = bumpFirst.ExecuteWithoutResult(ctx, parameters)
		require.Error(t, err)
		assert.True(t, database.IsCollision(err),
			"a concurrent update under serializable isolation is a collision")
		assert.Same(t, firstTx, manager.ActiveTransaction(),
			"the collided transaction is kept for the caller to retry")
		assert.Equal(t, 1, manager.Stats().Collisions)

		// Retrying the whole unit of work succeeds.
		require.NoError(t, firstTx.Rollback())
		_, err = manager.StartTransaction(ctx, database.TransactionReadWrite)
		require.NoError(t, err)
		require.NoError(t, bumpFirst.ExecuteWithoutResult(ctx, parameters))
		require.NoError(t, manager.Commit())

		_, err = manager.StartTransaction(ctx, database.TransactionImplicit)
		require.NoError(t, err)
		reader, err = readFirst.Execute(ctx, parameters)
		require.NoError(t, err)
		n, err := reader.ReadInteger64(0)
		require.NoError(t, err)
		reader.Close()
		require.NoError(t, manager.Commit())
		assert.Equal(t, int64(2), n)
	})
}

func TestPostgresRecoversAfterRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	factory, err := NewFactory(pgContainer.Config, newMockLogger(t))
	require.NoError(t, err)
	manager := database.NewManager(factory, newMockLogger(t))
	defer manager.Close()

	conn, err := manager.Connection(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.ExecuteMultiLines(ctx,
		"CREATE TABLE heartbeat(id BIGINT NOT NULL)"))

	ping := database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO heartbeat VALUES(${id})")

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", 1)
	_, err = manager.StartTransaction(ctx, database.TransactionImplicit)
	require.NoError(t, err)
	require.NoError(t, ping.ExecuteWithoutResult(ctx, parameters))
	require.NoError(t, manager.Commit())

	stopTimeout := 10 * time.Second
	require.NoError(t, pgContainer.Stop(ctx, &stopTimeout))

	_, err = manager.StartTransaction(ctx, database.TransactionImplicit)
	if err == nil {
		// The pooled connection may only notice the outage on first use.
		err = ping.ExecuteWithoutResult(ctx, parameters)
		manager.Rollback()
	}
	require.Error(t, err)
	assert.True(t, database.IsUnavailable(err),
		"a stopped server must classify as unavailable")

	require.NoError(t, pgContainer.Start(ctx))
	require.NoError(t, waitForPostgresReady(pgContainer.Config, 30*time.Second))

	// The manager reconnects lazily and recompiles the statement.
	parameters.SetInteger64("id", 2)
	_, err = manager.StartTransaction(ctx, database.TransactionImplicit)
	require.NoError(t, err)
	require.NoError(t, ping.ExecuteWithoutResult(ctx, parameters))
	require.NoError(t, manager.Commit())

	stats := manager.Stats()
	assert.Equal(t, 1, stats.Reconnects)
	assert.GreaterOrEqual(t, stats.UnavailableFailures, 1)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		sentinel error
	}{
		{"serialization failure is a collision", "40001", database.ErrCannotSerialize},
		{"deadlock is a collision", "40P01", database.ErrCannotSerialize},
		{"connection failure is unavailable", "08006", database.ErrDatabaseUnavailable},
		{"admin shutdown is unavailable", "57P01", database.ErrDatabaseUnavailable},
		{"cannot connect now is unavailable", "57P03", database.ErrDatabaseUnavailable},
		{"too many connections is unavailable", "53300", database.ErrDatabaseUnavailable},
		{"unique violation stays generic", "23505", database.ErrDatabase},
		{"read only violation stays generic", "25006", database.ErrDatabase},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classified := translateError(&pgconn.PgError{Code: tc.code, Message: "boom"})
			require.Error(t, classified)
			assert.ErrorIs(t, classified, tc.sentinel)

			var pgErr *pgconn.PgError
			require.ErrorAs(t, classified, &pgErr)
			assert.Equal(t, tc.code, pgErr.Code)
		})
	}

	t.Run("foreign errors fall through", func(t *testing.T) {
		assert.Nil(t, translateError(fmt.Errorf("not from pgx")))
	})
}

func TestConfigDSN(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=dicom password=secret dbname=dicomdb sslmode=disable",
		Config{Connection: Connection{
			Host:     "db",
			User:     "dicom",
			Password: "secret",
			DbName:   "dicomdb",
			SSLMode:  "disable",
		}}.DSN())

	assert.Equal(t,
		"host=db port=5433 user=dicom dbname=dicomdb",
		Config{Connection: Connection{
			Host:   "db",
			Port:   "5433",
			User:   "dicom",
			DbName: "dicomdb",
		}}.DSN())
}
