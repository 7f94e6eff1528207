// Package orm decorates gorm list queries from a request's query string:
// filtering, sorting, field projection and pagination.
package orm

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var schemaCache sync.Map

// Column is a table column exposed through the API.
type Column struct {
	Name  string // wire name, the json tag
	Field *schema.Field
}

// Columns maps wire names onto the columns of one model. Columns whose json
// tag is "-" (password hashes, relations) are never exposed.
type Columns struct {
	byName map[string]Column
}

// ColumnsOf parses model with db's naming strategy. Results are cached per type.
func ColumnsOf(db *gorm.DB, model any) (Columns, error) {
	s, err := schema.Parse(model, &schemaCache, db.NamingStrategy)
	if err != nil {
		return Columns{}, fmt.Errorf("parse schema of %T: %w", model, err)
	}
	cols := Columns{byName: make(map[string]Column, len(s.Fields))}
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		name := jsonName(f.Tag)
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.DBName
		}
		cols.byName[name] = Column{Name: name, Field: f}
	}
	return cols, nil
}

func jsonName(tag reflect.StructTag) string {
	name, _, _ := strings.Cut(tag.Get("json"), ",")
	return name
}

// Lookup finds a column by wire name.
func (c Columns) Lookup(name string) (Column, bool) {
	col, ok := c.byName[name]
	return col, ok
}

func (c Columns) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}
