package engines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqlite"
)

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

func TestNewFactoryDispatches(t *testing.T) {
	factory, err := NewFactory(SQLiteConfig(sqlite.Config{
		Connection: sqlite.Connection{InMemory: true},
	}), newMockLogger(t))
	require.NoError(t, err)
	assert.Equal(t, database.DialectSQLite, factory.Dialect())

	manager := database.NewManager(factory, newMockLogger(t))
	defer manager.Close()

	_, err = manager.StartTransaction(context.Background(), database.TransactionImplicit)
	require.NoError(t, err)
	statement := database.NewStandaloneStatement(manager, "SELECT 1").SetReadOnly(true)
	defer statement.Close()
	reader, err := statement.Execute(context.Background(), nil)
	require.NoError(t, err)
	one, err := reader.ReadInteger64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), one)
	require.NoError(t, manager.Commit())
}

func TestNewFactoryRejectsBadConfigs(t *testing.T) {
	_, err := NewFactory(Config{Type: "oracle"}, newMockLogger(t))
	assert.ErrorIs(t, err, database.ErrBadParameterType)

	_, err = NewFactory(Config{Type: "postgres"}, newMockLogger(t))
	assert.ErrorIs(t, err, database.ErrBadParameterType)

	_, err = NewFactory(Config{Type: "sqlite"}, newMockLogger(t))
	assert.ErrorIs(t, err, database.ErrBadParameterType)
}
