package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrValidation         = errors.New("invalid input")
	ErrSlugConflict       = errors.New("slug already in use")
	ErrStorage            = errors.New("storage unavailable")
	ErrImageHost          = fmt.Errorf("image host: %w", ErrStorage)
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError 汇总字段级别的校验失败信息。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalidField(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func imageHostError(err error) error {
	return fmt.Errorf("%w: %w", ErrImageHost, err)
}
