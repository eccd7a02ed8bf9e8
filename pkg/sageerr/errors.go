// Package sageerr defines the closed error taxonomy for the voice pipeline.
//
// Every failure surfaced across a component boundary is one of the kinds
// below. Transport and storage errors are mapped at the boundary by the
// adapter that saw them; raw errors from third-party clients never leak
// into the pipeline.
package sageerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	KindUserNotAuthenticated     Kind = "user_not_authenticated"
	KindInvalidData              Kind = "invalid_data"
	KindValueOutOfRange          Kind = "value_out_of_range"
	KindMissingField             Kind = "missing_field"
	KindProcessingTimeout        Kind = "processing_timeout"
	KindNoInsightYet             Kind = "no_insight_yet"
	KindDuplicateValue           Kind = "duplicate_value"
	KindDuplicateFeature         Kind = "duplicate_feature"
	KindNetworkUnavailable       Kind = "network_unavailable"
	KindRecordingNotFound        Kind = "recording_not_found"
	KindClinicalValidationFailed Kind = "clinical_validation_failed"
	KindUserProfileNotFound      Kind = "user_profile_not_found"
	KindRepositoryError          Kind = "repository_error"
	KindUnknown                  Kind = "unknown"
)

// Error is the single error type crossing component boundaries.
type Error struct {
	// Kind is the stable taxonomy member; also used as the wire code.
	Kind Kind

	// UserMessage is safe to show in a presentation layer as-is.
	UserMessage string

	// TechnicalDetail carries diagnostic context for logs, never for users.
	TechnicalDetail string

	// Retry tells the caller whether and when to retry.
	Retry RetryPolicy

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sage [%s]: %s: %v", e.Kind, e.TechnicalDetail, e.Cause)
	}
	return fmt.Sprintf("sage [%s]: %s", e.Kind, e.TechnicalDetail)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the stable string identifier for the kind.
func (e *Error) Code() string {
	return string(e.Kind)
}

// Is reports kind equality, so errors.Is(err, &Error{Kind: k}) works and
// callers can match against the kind sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the taxonomy kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Constructors. Each kind has a fixed user message and retry policy so the
// presentation layer never needs to interpret kinds itself.

// NotAuthenticated reports a missing or expired user session.
func NotAuthenticated(detail string) *Error {
	return &Error{
		Kind:            KindUserNotAuthenticated,
		UserMessage:     "Please sign in to continue.",
		TechnicalDetail: detail,
		Retry:           AfterUserAction("sign in again"),
	}
}

// InvalidData reports a malformed or inconsistent payload.
func InvalidData(detail string) *Error {
	return &Error{
		Kind:            KindInvalidData,
		UserMessage:     "We couldn't read this measurement.",
		TechnicalDetail: detail,
		Retry:           Never(),
	}
}

// OutOfRange reports a value outside its feature's configured valid range.
func OutOfRange(feature string, value, min, max float64) *Error {
	return &Error{
		Kind:            KindValueOutOfRange,
		UserMessage:     "This measurement looks out of range, so it was skipped.",
		TechnicalDetail: fmt.Sprintf("%s value %.3f outside valid range [%.3f, %.3f]", feature, value, min, max),
		Retry:           Never(),
	}
}

// MissingField reports a required field absent from a document.
func MissingField(field string) *Error {
	return &Error{
		Kind:            KindMissingField,
		UserMessage:     "We couldn't read this measurement.",
		TechnicalDetail: fmt.Sprintf("required field %q missing", field),
		Retry:           Never(),
	}
}

// Timeout reports that a feature did not produce a result in time.
func Timeout(feature string, after time.Duration) *Error {
	return &Error{
		Kind:            KindProcessingTimeout,
		UserMessage:     "Analysis is taking longer than expected.",
		TechnicalDetail: fmt.Sprintf("%s produced no update within %s", feature, after),
		Retry:           Immediately(),
	}
}

// NoInsightYet signals that processing may still be in flight. It is not a
// failure while a subscription remains open; fetchers keep waiting instead
// of surfacing it.
func NoInsightYet(feature string) *Error {
	return &Error{
		Kind:            KindNoInsightYet,
		UserMessage:     "Your analysis is still processing.",
		TechnicalDetail: fmt.Sprintf("no %s insight available yet", feature),
		Retry:           Immediately(),
	}
}

// Duplicate signals a within-debounce-threshold repeat. Internal no-op
// marker, never shown to a caller.
func Duplicate(feature string, value float64) *Error {
	return &Error{
		Kind:            KindDuplicateValue,
		UserMessage:     "",
		TechnicalDetail: fmt.Sprintf("%s value %.3f within debounce threshold of previous", feature, value),
		Retry:           Never(),
	}
}

// DuplicateFeature reports a second concurrent subscription for the same
// (feature, source) pair.
func DuplicateFeature(feature string) *Error {
	return &Error{
		Kind:            KindDuplicateFeature,
		UserMessage:     "This measurement is already being tracked.",
		TechnicalDetail: fmt.Sprintf("observation already active for %s", feature),
		Retry:           Never(),
	}
}

// NetworkUnavailable reports a transport failure talking to the store.
func NetworkUnavailable(cause error) *Error {
	return &Error{
		Kind:            KindNetworkUnavailable,
		UserMessage:     "Connection lost. We'll keep trying.",
		TechnicalDetail: "store transport failed",
		Retry:           After(5 * time.Second),
		Cause:           cause,
	}
}

// RecordingNotFound reports that the referenced recording does not exist.
func RecordingNotFound(recordingID string) *Error {
	return &Error{
		Kind:            KindRecordingNotFound,
		UserMessage:     "We couldn't find that recording.",
		TechnicalDetail: fmt.Sprintf("recording %q not found", recordingID),
		Retry:           Never(),
	}
}

// ClinicalValidationFailed reports biomarkers that fail clinical checks.
func ClinicalValidationFailed(reason string) *Error {
	return &Error{
		Kind:            KindClinicalValidationFailed,
		UserMessage:     "This recording wasn't clear enough to analyze. Try re-recording in a quiet space.",
		TechnicalDetail: reason,
		Retry:           AfterUserAction("record again"),
	}
}

// ProfileNotFound reports a missing user profile.
func ProfileNotFound(userID string) *Error {
	return &Error{
		Kind:            KindUserProfileNotFound,
		UserMessage:     "We couldn't load your profile.",
		TechnicalDetail: fmt.Sprintf("profile for user %q not found", userID),
		Retry:           Never(),
	}
}

// Repository wraps a persistence failure.
func Repository(op string, cause error) *Error {
	return &Error{
		Kind:            KindRepositoryError,
		UserMessage:     "Something went wrong saving your data.",
		TechnicalDetail: fmt.Sprintf("repository %s failed", op),
		Retry:           After(2 * time.Second),
		Cause:           cause,
	}
}

// Unknown wraps an unclassified error at a boundary.
func Unknown(cause error) *Error {
	return &Error{
		Kind:            KindUnknown,
		UserMessage:     "Something unexpected went wrong.",
		TechnicalDetail: "unclassified error",
		Retry:           Never(),
		Cause:           cause,
	}
}

// Map coerces an arbitrary error into the taxonomy. Taxonomy errors pass
// through untouched; anything else becomes Unknown.
func Map(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unknown(err)
}
