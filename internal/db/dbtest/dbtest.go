// Package dbtest provides an in-memory database/sql driver for tests.
package dbtest

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"regexp"
	"strconv"
	"sync"
)

var topClause = regexp.MustCompile(`(?i)\bselect\s+top\s+(\d+)\b`)

// Table is the result every query returns, cut to N rows for "select top N".
type Table struct {
	Columns []string
	Types   []string
	Rows    [][]driver.Value
}

// Connector counts connections and records what it was built with.
type Connector struct {
	Table Table
	// RowsFor, when set, replaces Table.Rows per connection; id starts at 1.
	RowsFor func(id int) [][]driver.Value

	ConnectErr error
	PingErr    error
	// PingBlocks makes Ping wait for its context to end.
	PingBlocks bool
	QueryErr   error
	BuildErr   error

	mu      sync.Mutex
	opened  int
	closed  int
	queries []string
	dsns    []string
	tokens  []string
}

// Func matches db.ConnectorFunc.
func (c *Connector) Func() func(dsn string, token func() (string, error)) (driver.Connector, error) {
	return func(dsn string, token func() (string, error)) (driver.Connector, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.dsns = append(c.dsns, dsn)
		if token != nil {
			t, err := token()
			if err != nil {
				return nil, err
			}
			c.tokens = append(c.tokens, t)
		}
		if c.BuildErr != nil {
			return nil, c.BuildErr
		}
		return c, nil
	}
}

func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	c.opened++
	return &conn{c: c, id: c.opened}, nil
}

func (c *Connector) Driver() driver.Driver { return fakeDriver{} }

func (c *Connector) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

func (c *Connector) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connector) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *Connector) DSNs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dsns...)
}

func (c *Connector) Tokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tokens...)
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("dbtest: use the connector")
}

type conn struct {
	c      *Connector
	id     int
	closed bool
}

func (cn *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("dbtest: prepare not supported")
}

func (cn *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("dbtest: transactions not supported")
}

func (cn *conn) Close() error {
	cn.c.mu.Lock()
	defer cn.c.mu.Unlock()
	if cn.closed {
		return errors.New("dbtest: connection closed twice")
	}
	cn.closed = true
	cn.c.closed++
	return nil
}

func (cn *conn) Ping(ctx context.Context) error {
	if cn.c.PingBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return cn.c.PingErr
}

func (cn *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	cn.c.mu.Lock()
	cn.c.queries = append(cn.c.queries, query)
	queryErr := cn.c.QueryErr
	table := cn.c.Table
	rowsFor := cn.c.RowsFor
	cn.c.mu.Unlock()

	if queryErr != nil {
		return nil, queryErr
	}
	data := table.Rows
	if rowsFor != nil {
		data = rowsFor(cn.id)
	}
	if n, ok := topLimit(query); ok && n < len(data) {
		data = data[:n]
	}
	return &rows{table: table, data: data}, nil
}

// topLimit reads N from a leading "select top N".
func topLimit(query string) (int, bool) {
	m := topClause.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

type rows struct {
	table Table
	data  [][]driver.Value
	pos   int
}

func (r *rows) Columns() []string { return r.table.Columns }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

func (r *rows) ColumnTypeDatabaseTypeName(index int) string {
	if index < len(r.table.Types) {
		return r.table.Types[index]
	}
	return ""
}
