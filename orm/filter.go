package orm

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"restlab/dao/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operator compares a column with a filter value.
type Operator string

const (
	OpEq  Operator = "=="
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
)

var comparisonRe = regexp.MustCompile(`^(.+)\[(gte|gt|lte|lt)\]$`)

// Condition is one parsed filter.
type Condition struct {
	Column Column
	Op     Operator
	Value  any
}

// Expression renders c against the statement's main table.
func (c Condition) Expression() clause.Expression {
	col := clause.Column{Table: clause.CurrentTable, Name: c.Column.Field.DBName}
	switch c.Op {
	case OpGte:
		return clause.Gte{Column: col, Value: c.Value}
	case OpGt:
		return clause.Gt{Column: col, Value: c.Value}
	case OpLte:
		return clause.Lte{Column: col, Value: c.Value}
	case OpLt:
		return clause.Lt{Column: col, Value: c.Value}
	default:
		return clause.Eq{Column: col, Value: c.Value}
	}
}

// Conditions turns non-reserved parameters into filters. name[op]=v uses op,
// a bare name=v means equality. Unknown columns and values that do not parse
// as the column's type are skipped.
func Conditions(cols Columns, params Params) []Condition {
	var conds []Condition
	for _, p := range params {
		if isReserved(p.Key) {
			continue
		}
		name, op := p.Key, OpEq
		if m := comparisonRe.FindStringSubmatch(p.Key); m != nil {
			name, op = m[1], Operator(m[2])
		}
		col, ok := cols.Lookup(name)
		if !ok {
			continue
		}
		value, ok := convert(col.Field.FieldType, p.Value)
		if !ok {
			continue
		}
		conds = append(conds, Condition{Column: col, Op: op, Value: value})
	}
	return conds
}

// ApplyFilter adds every filter in params to db.
func ApplyFilter(db *gorm.DB, cols Columns, params Params) *gorm.DB {
	for _, cond := range Conditions(cols, params) {
		db = db.Where(cond.Expression())
	}
	return db
}

var (
	dateType    = reflect.TypeOf(model.Date{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func convert(t reflect.Type, raw string) (any, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case dateType:
		d, err := model.ParseDate(raw)
		return d, err == nil
	case decimalType:
		d, err := decimal.NewFromString(raw)
		return d, err == nil
	case timeType:
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts, true
		}
		ts, err := time.Parse(model.DateLayout, raw)
		return ts, err == nil
	}

	switch t.Kind() {
	case reflect.String:
		return raw, true
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		return b, err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		return n, err == nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		return n, err == nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		return f, err == nil
	}
	return nil, false
}

// ApplyOrder sorts by comma separated keys; a leading '-' sorts descending.
// Unknown keys are ignored and the primary key breaks remaining ties.
func ApplyOrder(db *gorm.DB, cols Columns, sort string) *gorm.DB {
	byID := false
	for _, key := range strings.Split(sort, ",") {
		key = strings.TrimSpace(key)
		desc := strings.HasPrefix(key, "-")
		key = strings.TrimPrefix(key, "-")
		col, ok := cols.Lookup(key)
		if !ok {
			continue
		}
		if col.Field.PrimaryKey {
			byID = true
		}
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: col.Field.DBName},
			Desc:   desc,
		})
	}
	if !byID {
		if pk, ok := primaryKey(cols); ok {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: pk}})
		}
	}
	return db
}

func primaryKey(cols Columns) (string, bool) {
	for _, col := range cols.byName {
		if col.Field.PrimaryKey {
			return col.Field.DBName, true
		}
	}
	return "", false
}
