package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DTO is the shape persisted by Create/Update. ToModel lifts the stored
// fields plus the generated id back into the domain model.
type DTO interface {
	ToModel(id int) any
}

// This type of hook separates from the regular PostSave hook since it has side effects
type AfterSaveCommitHook func()

// Hooks for database operations
type Hooks struct {
	PreSave         []func(ctx context.Context, tx *sqlx.Tx, data DTO, isNew bool) error
	PostSave        []func(ctx context.Context, tx *sqlx.Tx, data DTO, model any, isNew bool) error
	PreDelete       []func(ctx context.Context, tx *sqlx.Tx, id int) error
	PostDelete      []func(ctx context.Context, tx *sqlx.Tx, id int) error
	AfterSaveCommit []func(ctx context.Context, data DTO, model any, isNew bool) AfterSaveCommitHook
}

// Datastorer is the persistence surface for one soft-deleted table. Deletes
// stamp deleted_at instead of removing rows; reads through Get/Select are
// expected to carry the deleted_at IS NULL filter in their queries.
type Datastorer[T any] interface {
	Create(ctx context.Context, data DTO) (any, error)
	Update(ctx context.Context, id int, data DTO) (any, error)
	Delete(ctx context.Context, id int) error
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)

	// Count reports live (not soft-deleted) rows; used by seeding only.
	Count(ctx context.Context) (int, error)

	// Set hooks.
	SetHooks(hooks Hooks)

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

func getStructFieldNamesFromInstance(instance any) []string {
	typ := reflect.TypeOf(instance)
	if typ.Kind() == reflect.Ptr { // Handle pointer types
		typ = typ.Elem()
	}

	var fields []string

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		dbTag := field.Tag.Get("db")

		if dbTag != "" && dbTag != "-" {
			fields = append(fields, dbTag)
		}
	}

	return fields
}

// getStructFieldsFromDTO extracts field names and placeholders from a DTO struct
func getStructFieldsFromDTO(dto DTO) (columns string, placeholders string) {
	// Get the reflection type of the struct
	t := reflect.TypeOf(dto)
	if t.Kind() == reflect.Ptr {
		t = t.Elem() // Dereference pointer
	}

	var columnNames []string
	var placeholderNames []string

	// Iterate over struct fields
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Get the `db` tag
		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue // Skip fields without a `db` tag or explicitly ignored fields
		}

		columnNames = append(columnNames, dbTag)
		placeholderNames = append(placeholderNames, placeholderFor(field, dbTag))
	}

	return strings.Join(columnNames, ", "), strings.Join(placeholderNames, ", ")
}

// placeholderFor returns the named placeholder for one field. Types that
// implement driver.Valuer (json columns) bind as-is; plain slices are cast
// to the matching Postgres array type.
func placeholderFor(field reflect.StructField, dbTag string) string {
	if field.Type.Implements(valuerType) {
		return ":" + dbTag
	}

	if field.Type.Kind() == reflect.Slice {
		return fmt.Sprintf("CAST(:%s AS %s)", dbTag, pgArrayType(field.Type.Elem().Kind()))
	}

	return ":" + dbTag
}

func pgArrayType(elem reflect.Kind) string {
	switch elem {
	case reflect.String:
		return "text[]"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer[]"
	case reflect.Float32, reflect.Float64:
		return "float[]"
	case reflect.Bool:
		return "boolean[]"
	default:
		return "text[]"
	}
}

// getNonEmptyFieldsFromDTO builds the SET clause for a partial update. Nil
// pointers, nil slices/maps and empty strings are treated as "not part of
// the patch" and skipped.
func getNonEmptyFieldsFromDTO(dto DTO, params map[string]any) string {
	v := reflect.ValueOf(dto)
	t := reflect.TypeOf(dto)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
		t = t.Elem()
	}

	var fields []string

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)

		columnName := field.Tag.Get("db")
		if columnName == "-" {
			continue
		}
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		switch value.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map:
			if value.IsNil() {
				continue
			}
		case reflect.String:
			if value.String() == "" {
				continue
			}
		}

		fields = append(fields, fmt.Sprintf("%s = %s", columnName, placeholderFor(field, columnName)))
		params[columnName] = value.Interface()
	}

	return strings.Join(fields, ", ")
}
