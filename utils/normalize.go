package utils

import (
	"reflect"
	"strings"
)

// NormalizeDTO trims string fields and rounds float64 fields on a pointer-to-struct DTO.
// Pointer fields are followed when non-nil, and slices of structs are normalized element-wise.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizeValue(v.Elem())
}

func normalizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			normalizeValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				normalizeValue(v.Field(i))
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			normalizeValue(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	case reflect.Float64:
		if v.CanSet() {
			v.SetFloat(RoundCents(v.Float()))
		}
	}
}
