package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an InsertBuilder from a struct's `db` tags.
// Fields tagged `db:"-"` or left untagged are skipped.
func InsertModel(table string, model any) (*InsertBuilder, error) {
	columns, values, err := modelColumns(model)
	if err != nil {
		return nil, err
	}
	b := Insert(table)
	for i, col := range columns {
		b.Set(col, values[i])
	}
	return b, nil
}

// UpdateModel builds an UpdateBuilder from a struct's `db` tags,
// skipping the columns named in exclude (typically the key columns).
func UpdateModel(table string, model any, exclude ...string) (*UpdateBuilder, error) {
	columns, values, err := modelColumns(model)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(exclude))
	for _, col := range exclude {
		skip[col] = true
	}
	b := Update(table)
	for i, col := range columns {
		if skip[col] {
			continue
		}
		b.Set(col, values[i])
	}
	return b, nil
}

func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("querybuilder: nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("querybuilder: model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	var columns []string
	var values []any
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		column, _, _ := strings.Cut(tag, ",")
		columns = append(columns, column)
		values = append(values, v.Field(i).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("querybuilder: model %s has no db-tagged fields", t.Name())
	}
	return columns, values, nil
}
