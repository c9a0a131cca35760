package apperr

import (
	"errors"
	"fmt"
)

// 错误分类：adapter 在边界处包装，上层用 errors.Is 判断
var (
	ErrNotFound          = errors.New("not found")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrCacheUnavailable  = errors.New("local cache unavailable")
)

// ValidationError 在任何 I/O 之前被拒绝
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
