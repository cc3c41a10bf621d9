// Package errors defines the tagged error kinds shared by every layer of the
// editor core: model invariants, persistence, external processes, worker
// jobs, and the export renderer. Each kind carries a stable code plus a
// structured detail payload so a host UI can localize the message while a
// developer still gets the process stderr tail, offending token, or path.
package errors

import "fmt"

type Code string

const (
	CodeInvalidTimecode        Code = "INVALID_TIMECODE"
	CodeOverlap                Code = "OVERLAP"
	CodeOutOfRange             Code = "OUT_OF_RANGE"
	CodeNotFound               Code = "NOT_FOUND"
	CodeMalformedJSON          Code = "MALFORMED_JSON"
	CodeUnsupportedVersion     Code = "UNSUPPORTED_VERSION"
	CodeSchemaViolation        Code = "SCHEMA_VIOLATION"
	CodeReferencedFileMissing  Code = "REFERENCED_FILE_MISSING"
	CodeProcessNotFound        Code = "PROCESS_NOT_FOUND"
	CodeProcessSpawnFailed     Code = "PROCESS_SPAWN_FAILED"
	CodeProcessNonZeroExit     Code = "PROCESS_NON_ZERO_EXIT"
	CodeProcessTimedOut        Code = "PROCESS_TIMED_OUT"
	CodeProcessCancelled       Code = "PROCESS_CANCELLED"
	CodeHTTPUnauthorized       Code = "HTTP_UNAUTHORIZED"
	CodeHTTPRateLimited        Code = "HTTP_RATE_LIMITED"
	CodeHTTPTransport          Code = "HTTP_TRANSPORT"
	CodeHTTPProtocolError      Code = "HTTP_PROTOCOL_ERROR"
	CodeFilterGraphBuildFailed Code = "FILTER_GRAPH_BUILD_FAILED"
	CodeEncoderUnavailable     Code = "ENCODER_UNAVAILABLE"
	CodeDiskFull               Code = "DISK_FULL"
	CodeCacheMiss              Code = "CACHE_MISS"
	CodeDecodeFailed           Code = "DECODE_FAILED"
)

// FmmError is the single tagged error type used across the core. Details
// carries developer-oriented context (offending token, stderr tail, path);
// the host maps Code to a localized message id.
type FmmError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Wrapped error          `json:"-"`
}

func (e *FmmError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FmmError) Unwrap() error { return e.Wrapped }

func newErr(code Code, msg string, details map[string]any, wrapped error) *FmmError {
	return &FmmError{Code: code, Message: msg, Details: details, Wrapped: wrapped}
}

func InvalidTimecode(token, expectedFormats string) *FmmError {
	return newErr(CodeInvalidTimecode, fmt.Sprintf("invalid timecode %q", token), map[string]any{
		"token": token, "expected_formats": expectedFormats,
	}, nil)
}

func Overlap(detail string) *FmmError {
	return newErr(CodeOverlap, detail, nil, nil)
}

func OutOfRange(detail string) *FmmError {
	return newErr(CodeOutOfRange, detail, nil, nil)
}

func NotFound(index int) *FmmError {
	return newErr(CodeNotFound, fmt.Sprintf("index %d not found", index), map[string]any{"index": index}, nil)
}

// NotFoundByID is NotFound's id-keyed counterpart, for stores (library,
// templates) that key entries by uuid rather than position.
func NotFoundByID(id string) *FmmError {
	return newErr(CodeNotFound, fmt.Sprintf("id %q not found", id), map[string]any{"id": id}, nil)
}

func MalformedJSON(err error) *FmmError {
	return newErr(CodeMalformedJSON, "project file is not valid JSON", nil, err)
}

func UnsupportedVersion(version int) *FmmError {
	return newErr(CodeUnsupportedVersion, fmt.Sprintf("project version %d is newer than supported", version),
		map[string]any{"version": version}, nil)
}

func SchemaViolation(field, reason string) *FmmError {
	return newErr(CodeSchemaViolation, fmt.Sprintf("field %q: %s", field, reason), map[string]any{"field": field}, nil)
}

func ReferencedFileMissing(path string) *FmmError {
	return newErr(CodeReferencedFileMissing, fmt.Sprintf("referenced file missing: %s", path), map[string]any{"path": path}, nil)
}

func ProcessNotFound(binary string) *FmmError {
	return newErr(CodeProcessNotFound, fmt.Sprintf("executable not found: %s", binary), map[string]any{"binary": binary}, nil)
}

func ProcessSpawnFailed(err error) *FmmError {
	return newErr(CodeProcessSpawnFailed, "failed to spawn process", nil, err)
}

func ProcessNonZeroExit(code int, stderrTail string) *FmmError {
	return newErr(CodeProcessNonZeroExit, fmt.Sprintf("process exited with code %d", code),
		map[string]any{"exit_code": code, "stderr_tail": stderrTail}, nil)
}

func ProcessTimedOut(operation string) *FmmError {
	return newErr(CodeProcessTimedOut, fmt.Sprintf("operation %s timed out", operation), map[string]any{"operation": operation}, nil)
}

func ProcessCancelled() *FmmError {
	return newErr(CodeProcessCancelled, "process cancelled", nil, nil)
}

func HTTPUnauthorized(segmentIndex int) *FmmError {
	return newErr(CodeHTTPUnauthorized, "TTS engine rejected credentials", map[string]any{"segment_index": segmentIndex}, nil)
}

func HTTPRateLimited(segmentIndex int) *FmmError {
	return newErr(CodeHTTPRateLimited, "TTS engine rate limited the request", map[string]any{"segment_index": segmentIndex}, nil)
}

func HTTPTransport(err error) *FmmError {
	return newErr(CodeHTTPTransport, "transport error calling TTS engine", nil, err)
}

func HTTPProtocolError(detail string) *FmmError {
	return newErr(CodeHTTPProtocolError, detail, nil, nil)
}

func FilterGraphBuildFailed(reason string) *FmmError {
	return newErr(CodeFilterGraphBuildFailed, reason, nil, nil)
}

func EncoderUnavailable(encoder string) *FmmError {
	return newErr(CodeEncoderUnavailable, fmt.Sprintf("encoder unavailable: %s", encoder), map[string]any{"encoder": encoder}, nil)
}

func DiskFull(path string) *FmmError {
	return newErr(CodeDiskFull, fmt.Sprintf("disk full writing %s", path), map[string]any{"path": path}, nil)
}

func CacheMiss(key string) *FmmError {
	return newErr(CodeCacheMiss, fmt.Sprintf("cache miss for %s", key), map[string]any{"key": key}, nil)
}

func DecodeFailed(err error) *FmmError {
	return newErr(CodeDecodeFailed, "decode failed", nil, err)
}
