package utils

import (
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm/schema"
)

var columnNamer = schema.NamingStrategy{}

// ColumnUpdates turns a patch struct of pointer fields into a gorm Updates map.
// Nil fields are skipped, as are fields tagged `gorm:"-"`. The column comes
// from a `gorm:"column:..."` tag or gorm's default snake_case naming. Values
// are copied as-is.
func ColumnUpdates(patch any) map[string]any {
	res := make(map[string]any)
	v := reflect.ValueOf(patch)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if !sf.IsExported() || fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		column, skip := columnOf(sf)
		if skip {
			continue
		}
		res[column] = fv.Elem().Interface()
	}
	return res
}

func columnOf(sf reflect.StructField) (string, bool) {
	settings := schema.ParseTagSetting(sf.Tag.Get("gorm"), ";")
	if _, ok := settings["-"]; ok {
		return "", true
	}
	if name, ok := settings["COLUMN"]; ok && name != "" {
		return name, false
	}
	return columnNamer.ColumnName("", sf.Name), false
}

// ParseIntDefault parses a non-negative int, returning def when s is empty,
// malformed or negative.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
