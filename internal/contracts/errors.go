package contracts

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned when Predict is called before Fit.
var ErrNotFitted = errors.New("model must be fitted before making predictions")

// SchemaError marks raw input that cannot be mapped to the panel schema.
// Fatal to the builder call that produced it, never retried.
type SchemaError struct {
	Field  string
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("schema: %s", e.Detail)
}

// InsufficientDataError is returned when a model is fitted with fewer
// observations than its configured minimum.
type InsufficientDataError struct {
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("training data must have at least %d observations, got %d", e.Needed, e.Got)
}

// IsSchemaError reports whether err is a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
