// Package products reads the product catalog into schema-less records.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TopFiveStatement is the only statement the function runs.
const TopFiveStatement = "select top 5 * from SalesLT.Product"

var ErrQuery = errors.New("query failed")

type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TopFive runs TopFiveStatement and collects the rows. The cursor is closed
// before returning.
func TopFive(ctx context.Context, q Querier) (Result, error) {
	rows, err := q.QueryContext(ctx, TopFiveStatement)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	result, err := Collect(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return result, nil
}
