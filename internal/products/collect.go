package products

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/shopspring/decimal"
)

// Rows is the part of *sql.Rows that Collect needs.
type Rows interface {
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Collect reads the column list once and turns every remaining row into a
// Record, preserving cursor order. It does not close rows.
func Collect(rows Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	dbTypes := make([]string, len(cols))
	if len(types) == len(cols) {
		for i, t := range types {
			dbTypes[i] = strings.ToUpper(t.DatabaseTypeName())
		}
	}

	result := make(Result, 0)
	for rows.Next() {
		raw := make([]any, len(cols))
		scanArgs := make([]any, len(cols))
		for i := range raw {
			scanArgs[i] = &raw[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		values := make([]Value, len(cols))
		for i := range raw {
			v, err := convert(dbTypes[i], raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cols[i], err)
			}
			values[i] = v
		}
		result = append(result, NewRecord(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// convert maps a driver value to a Value. dbType is the upper-cased database
// type name and is only consulted for []byte payloads.
func convert(dbType string, v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case int64:
		return Int(t), nil
	case int32:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int:
		return Int(int64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	case bool:
		return Bool(t), nil
	case string:
		return textValue(dbType, t)
	case time.Time:
		if dbType == "DATE" {
			return Date(civil.DateOf(t)), nil
		}
		return Timestamp(t), nil
	case decimal.Decimal:
		return Decimal(t), nil
	case []byte:
		return bytesValue(dbType, t)
	default:
		return Text(fmt.Sprint(t)), nil
	}
}

func textValue(dbType, s string) (Value, error) {
	if isDecimalType(dbType) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, err
		}
		return Decimal(d), nil
	}
	return Text(s), nil
}

func bytesValue(dbType string, b []byte) (Value, error) {
	switch {
	case isDecimalType(dbType):
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return Value{}, err
		}
		return Decimal(d), nil
	case dbType == "UNIQUEIDENTIFIER":
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err != nil {
			return Value{}, err
		}
		return Text(uuid.UUID(id).String()), nil
	case isBinaryType(dbType):
		return Binary(append([]byte(nil), b...)), nil
	default:
		return Text(string(b)), nil
	}
}

func isDecimalType(dbType string) bool {
	switch dbType {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return true
	}
	return false
}

func isBinaryType(dbType string) bool {
	switch dbType {
	case "VARBINARY", "BINARY", "IMAGE", "TIMESTAMP", "ROWVERSION":
		return true
	}
	return false
}
