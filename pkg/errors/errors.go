// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreEntityNotFound     Code = "store.entity.get.not_found"
	CodeStoreDatabaseFailure    Code = "store.database.failure"
	CodeStoreBackendUnsupported Code = "store.backend.unsupported"
	CodeStoreInvalidInput       Code = "store.invalid_input"

	CodeSnapshotLoadReadFailure    Code = "snapshot.load.read.failure"
	CodeSnapshotParseInvalidFormat Code = "snapshot.parse.invalid_format"

	CodeImportTransactionFailure Code = "import.transaction.failure"
	CodeImportSnapshotInvalid    Code = "import.snapshot.invalid_input"

	CodeQueryFilmNotFound        Code = "query.film.not_found"
	CodeQueryRelationInvalid     Code = "query.relation.invalid_input"
	CodeQueryHydrationFailure    Code = "query.hydration.failure"
	CodeCacheFetchFailure        Code = "cache.fetch.failure"
	CodeCacheFetchCancelled      Code = "cache.fetch.cancelled"
	CodeCacheSelectionInvalid    Code = "cache.selection.invalid_input"
	CodeCacheClosed              Code = "cache.lifecycle.closed"
	CodeCacheViewNotFound        Code = "cache.view.not_found"
	CodeNotifyBrokerClosed       Code = "notify.broker.closed"
	CodeMetricsRegisterConflict  Code = "metrics.register.conflict"
	CodeMetricsRegisterFailure   Code = "metrics.register.failure"
	CodeConfigLoadReadFailure    Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat Code = "config.parse.invalid_format"

	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerEntityNotFound  Code = "server.entity.not_found"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"

	CodeCLISetupFailure   Code = "cli.setup.failure"
	CodeCLIRequestFailure Code = "cli.request.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// FieldValue creates a structured error field.
func FieldValue(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Field is kept as the primary helper for terse callsites.
func Field(key string, value any) Attr {
	return FieldValue(key, value)
}

func FieldURL(value string) Attr {
	return Field("url", value)
}

func FieldKind(value string) Attr {
	return Field("kind", value)
}

func FieldRelation(value string) Attr {
	return Field("relation", value)
}

func FieldViewID(value string) Attr {
	return Field("view_id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsConflict(err error) bool {
	return reason(CodeOf(err)) == "conflict"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

// IsCancelled reports whether err marks a superseded or cancelled fetch.
func IsCancelled(err error) bool {
	return reason(CodeOf(err)) == "cancelled"
}

func HTTPStatus(err error) int {
	return StatusOf(CodeOf(err))
}

// StatusOf maps a code to the HTTP status its reason implies.
func StatusOf(code Code) int {
	switch reason(code) {
	case "not_found":
		return http.StatusNotFound
	case "conflict", "cancelled", "closed":
		return http.StatusConflict
	case "invalid", "invalid_input", "invalid_value", "invalid_format":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
