package products

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindDecimal
	KindFloat
	KindText
	KindBoolean
	KindTimestamp
	KindDate
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindBinary:
		return "binary"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single SQL scalar. Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Int     int64
	Decimal decimal.Decimal
	Float   float64
	Text    string
	Bool    bool
	Time    time.Time
	Date    civil.Date
	Bytes   []byte
}

func Null() Value { return Value{Kind: KindNull} }
func Int(v int64) Value { return Value{Kind: KindInteger, Int: v} }
func Decimal(v decimal.Decimal) Value { return Value{Kind: KindDecimal, Decimal: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func Text(v string) Value { return Value{Kind: KindText, Text: v} }
func Bool(v bool) Value { return Value{Kind: KindBoolean, Bool: v} }
func Timestamp(v time.Time) Value { return Value{Kind: KindTimestamp, Time: v} }
func Date(v civil.Date) Value { return Value{Kind: KindDate, Date: v} }
func Binary(v []byte) Value { return Value{Kind: KindBinary, Bytes: v} }
func (v Value) IsNull() bool { return v.Kind == KindNull }
func (v Value) Equal(o Value) bool { return v.Kind == o.Kind && v.String() == o.String() }

// TimestampLayout is used for every timestamp in responses.
const TimestampLayout = time.RFC3339Nano

// Any returns the plain Go value.
func (v Value) Any() any {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindDecimal:
		return v.Decimal
	case KindFloat:
		return v.Float
	case KindText:
		return v.Text
	case KindBoolean:
		return v.Bool
	case KindTimestamp:
		return v.Time
	case KindDate:
		return v.Date
	case KindBinary:
		return v.Bytes
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return v.Decimal.String()
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindText:
		return v.Text
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindTimestamp:
		return v.Time.Format(TimestampLayout)
	case KindDate:
		return v.Date.String()
	case KindBinary:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindInteger:
		return strconv.AppendInt(nil, v.Int, 10), nil
	case KindDecimal:
		// Emitted unquoted so decimals stay JSON numbers.
		return []byte(v.Decimal.String()), nil
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBoolean:
		return strconv.AppendBool(nil, v.Bool), nil
	case KindText:
		return json.Marshal(v.Text)
	case KindTimestamp:
		return json.Marshal(v.Time.Format(TimestampLayout))
	case KindDate:
		return json.Marshal(v.Date.String())
	case KindBinary:
		return json.Marshal(v.Bytes)
	default:
		return nil, fmt.Errorf("products: cannot marshal value of %s", v.Kind)
	}
}
