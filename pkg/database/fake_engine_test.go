package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"
)

// newMockLogger returns a mock logger that accepts any call, the way the
// integration tests of the engine packages set theirs up.
func newMockLogger(t *testing.T) *MockLogger {
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return mockLogger
}

// fakeFactory is a scriptable in-memory engine used to exercise the
// orchestration layer without any real database.
type fakeFactory struct {
	mu      sync.Mutex
	dialect Dialect

	// failuresLeft makes Open fail that many times before succeeding.
	failuresLeft int
	// failWith overrides the error returned while failing; defaults to
	// an unavailable error.
	failWith error

	opens int
	conns []*fakeConnection
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{dialect: DialectSQLite}
}

func (f *fakeFactory) Open(ctx context.Context) (Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failuresLeft > 0 {
		f.failuresLeft--
		if f.failWith != nil {
			return nil, f.failWith
		}
		return nil, fmt.Errorf("%w: fake engine is down", ErrDatabaseUnavailable)
	}
	f.opens++
	conn := &fakeConnection{dialect: f.dialect}
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeFactory) Dialect() Dialect {
	return f.dialect
}

// lastConn returns the most recently opened connection.
func (f *fakeFactory) lastConn() *fakeConnection {
	return f.conns[len(f.conns)-1]
}

type fakeConnection struct {
	dialect    Dialect
	compiles   int
	begun      int
	executions int
	commits    int
	rollbacks  int
	closed     bool

	// rows is what the next executions return.
	rows [][]Value
	// executeErr makes the next execution fail once.
	executeErr error
	// commitErr makes the next commit fail once.
	commitErr error

	// releaseLog, when set, records the order in which statements and
	// result sets are closed.
	releaseLog *[]string

	statements []*fakeStatement
}

func (c *fakeConnection) Compile(ctx context.Context, query *Query) (Statement, error) {
	formatter := NewGenericFormatter(c.dialect)
	sql, err := query.Format(formatter)
	if err != nil {
		return nil, err
	}
	c.compiles++
	statement := &fakeStatement{query: query, sql: sql, releaseLog: c.releaseLog}
	c.statements = append(c.statements, statement)
	return statement, nil
}

func (c *fakeConnection) Begin(ctx context.Context, transactionType TransactionType) (Transaction, error) {
	c.begun++
	return &fakeTransaction{conn: c}, nil
}

func (c *fakeConnection) Implicit() Transaction {
	return &fakeTransaction{conn: c, implicit: true}
}

func (c *fakeConnection) ExecuteMultiLines(ctx context.Context, sql string) error {
	return nil
}

func (c *fakeConnection) DoesTableExist(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (c *fakeConnection) DoesIndexExist(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (c *fakeConnection) DoesTriggerExist(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (c *fakeConnection) Dialect() Dialect {
	return c.dialect
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeStatement struct {
	query      *Query
	sql        string
	closed     bool
	releaseLog *[]string
}

func (s *fakeStatement) Query() *Query {
	return s.query
}

func (s *fakeStatement) SQL() string {
	return s.sql
}

func (s *fakeStatement) Close() error {
	s.closed = true
	if s.releaseLog != nil {
		*s.releaseLog = append(*s.releaseLog, "statement")
	}
	return nil
}

type fakeTransaction struct {
	conn      *fakeConnection
	implicit  bool
	executes  int
	commits   int
	rollbacks int
}

func (t *fakeTransaction) Execute(ctx context.Context, statement Statement, parameters *Dictionary) (ResultSet, error) {
	if err := t.conn.executeErr; err != nil {
		t.conn.executeErr = nil
		return nil, err
	}
	t.executes++
	t.conn.executions++
	return &fakeResultSet{rows: t.conn.rows, releaseLog: t.conn.releaseLog}, nil
}

func (t *fakeTransaction) ExecuteWithoutResult(ctx context.Context, statement Statement, parameters *Dictionary) error {
	if err := t.conn.executeErr; err != nil {
		t.conn.executeErr = nil
		return err
	}
	t.executes++
	t.conn.executions++
	return nil
}

func (t *fakeTransaction) Commit() error {
	if err := t.conn.commitErr; err != nil {
		t.conn.commitErr = nil
		return err
	}
	t.commits++
	t.conn.commits++
	return nil
}

func (t *fakeTransaction) Rollback() error {
	t.rollbacks++
	t.conn.rollbacks++
	return nil
}

type fakeResultSet struct {
	rows       [][]Value
	position   int
	expected   map[int]Type
	closed     bool
	releaseLog *[]string
}

func (r *fakeResultSet) IsDone() bool {
	return r.position >= len(r.rows)
}

func (r *fakeResultSet) Next(ctx context.Context) error {
	if r.IsDone() {
		return fmt.Errorf("%w: no more rows", ErrInexistentItem)
	}
	r.position++
	return nil
}

func (r *fakeResultSet) FieldsCount() int {
	if len(r.rows) == 0 {
		return 0
	}
	return len(r.rows[0])
}

func (r *fakeResultSet) Field(index int) (Value, error) {
	if r.IsDone() {
		return nil, fmt.Errorf("%w: no current row", ErrInexistentItem)
	}
	if index < 0 || index >= len(r.rows[r.position]) {
		return nil, fmt.Errorf("%w: field index %d out of range", ErrInexistentItem, index)
	}
	return r.rows[r.position][index], nil
}

func (r *fakeResultSet) SetExpectedType(index int, t Type) error {
	if r.expected == nil {
		r.expected = make(map[int]Type)
	}
	r.expected[index] = t
	return nil
}

func (r *fakeResultSet) Close() error {
	r.closed = true
	if r.releaseLog != nil {
		*r.releaseLog = append(*r.releaseLog, "result")
	}
	return nil
}
