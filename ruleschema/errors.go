package ruleschema

import "errors"

// ErrInvalidSchema indicates the storage port returned no columns, a
// duplicate priority, a duplicate name, or a reserved column name.
var ErrInvalidSchema = errors.New("invalid schema")
