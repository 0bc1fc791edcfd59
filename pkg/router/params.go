package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Params maps parameter names to the values captured from a path.
type Params map[string]string

// Get returns the value of name, or "".
func (p Params) Get(name string) string {
	return p[name]
}

// Lookup returns the value of name and whether it was captured.
func (p Params) Lookup(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Int parses the value of name as a base-10 integer.
func (p Params) Int(name string) (int, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("param %q not captured", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %q: invalid integer: %s", name, v)
	}
	return n, nil
}

// UUID parses the value of name as a UUID.
func (p Params) UUID(name string) (uuid.UUID, error) {
	v, ok := p[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("param %q not captured", name)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("param %q: invalid UUID: %s", name, v)
	}
	return id, nil
}

// Segments splits a catch-all value on "/".
func (p Params) Segments(name string) []string {
	v := p[name]
	if v == "" {
		return nil
	}
	return strings.Split(v, "/")
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// Decode populates a struct from the params. target must be a pointer to a
// struct; fields are selected with a `param:"name"` tag. Missing params
// leave the field untouched.
//
//	var p struct {
//	    JobID int    `param:"jobId"`
//	    Path  []string `param:"_splat"`
//	}
//	err := match.Params.Decode(&p)
func (p Params) Decode(target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}
		value, ok := p[name]
		if !ok {
			continue
		}
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if err := setField(fv, value); err != nil {
			return fmt.Errorf("decoding param %q: %w", name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	if field.Type() == uuidType {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		var parts []string
		if value != "" {
			parts = strings.Split(value, "/")
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}
	return nil
}
