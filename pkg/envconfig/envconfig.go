// Package envconfig populates configuration structs from environment variables.
//
// Keys are built from the prefix and the field's `envconfig` tag, falling back to
// the upper-cased field name. Nested structs extend the prefix. Unlike other
// implementations it never applies `default` tags, so values loaded earlier from a
// file are only replaced by variables that are actually set.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Reader looks up a key, returning whether it is present.
type Reader func(key string) (value string, ok bool, err error)

var EnvironmentReader Reader = func(key string) (string, bool, error) {
	value, ok := os.LookupEnv(key)
	return value, ok, nil
}

// Decoder is implemented by types that decode themselves from a raw value.
type Decoder interface {
	Decode(value string) error
}

// Process populates spec from the process environment.
func Process(prefix string, spec interface{}) error {
	return ProcessWithReader(prefix, spec, EnvironmentReader)
}

func ProcessWithReader(prefix string, spec interface{}, reader Reader) error {
	v := reflect.ValueOf(spec)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("envconfig: spec must be a struct pointer")
	}
	return process(strings.ToUpper(prefix), v.Elem(), reader)
}

func key(prefix string, f reflect.StructField) string {
	name := f.Tag.Get("envconfig")
	if name == "" {
		name = strings.ToUpper(f.Name)
	}
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func process(prefix string, v reflect.Value, reader Reader) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)
		if !f.IsExported() || f.Tag.Get("envconfig") == "-" {
			continue
		}
		if f.Anonymous && fv.Kind() == reflect.Struct {
			if err := process(prefix, fv, reader); err != nil {
				return err
			}
			continue
		}

		k := key(prefix, f)
		if fv.Kind() == reflect.Struct && !implementsDecoder(fv) {
			if err := process(k, fv, reader); err != nil {
				return err
			}
			continue
		}

		value, ok, err := reader(k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := set(fv, value); err != nil {
			return fmt.Errorf("envconfig: %s: %w", k, err)
		}
	}
	return nil
}

func implementsDecoder(v reflect.Value) bool {
	return v.CanAddr() && v.Addr().Type().Implements(reflect.TypeOf((*Decoder)(nil)).Elem())
}

func set(v reflect.Value, value string) error {
	if implementsDecoder(v) {
		return v.Addr().Interface().(Decoder).Decode(value)
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(n)
	case reflect.Slice, reflect.Map:
		if strings.HasPrefix(strings.TrimSpace(value), "[") || strings.HasPrefix(strings.TrimSpace(value), "{") {
			return json.Unmarshal([]byte(value), v.Addr().Interface())
		}
		if v.Kind() == reflect.Map {
			return fmt.Errorf("map values must be JSON")
		}
		parts := strings.Split(value, ",")
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := set(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return err
			}
		}
		v.Set(slice)
	default:
		return fmt.Errorf("unsupported type %s", v.Type())
	}
	return nil
}
