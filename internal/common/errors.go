package common

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can react without string matching.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindValidationFailed
	KindNotFound
	KindEncryptionFailed
	KindDecryptionFailed
	KindNotInitialized
	KindAlreadyInProgress
	KindOffline
	KindNotAuthenticated
	KindTransport
)

// Sentinels, one per Kind. Match with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrValidationFailed  = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrNotInitialized    = errors.New("not initialized")
	ErrAlreadyInProgress = errors.New("sync already in progress")
	ErrOffline           = errors.New("no internet connection available")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrTransport         = errors.New("transport error")
)

var kindSentinels = map[Kind]error{
	KindInvalidInput:      ErrInvalidInput,
	KindValidationFailed:  ErrValidationFailed,
	KindNotFound:          ErrNotFound,
	KindEncryptionFailed:  ErrEncryptionFailed,
	KindDecryptionFailed:  ErrDecryptionFailed,
	KindNotInitialized:    ErrNotInitialized,
	KindAlreadyInProgress: ErrAlreadyInProgress,
	KindOffline:           ErrOffline,
	KindNotAuthenticated:  ErrNotAuthenticated,
	KindTransport:         ErrTransport,
}

func (k Kind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return "unknown error"
}

// Error is a classified failure of a named operation.
//
// It renders as "<op> failed: <cause>". When Err is nil the kind's own
// message is used as the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E builds an *Error. err may be nil.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ef is E with a formatted cause.
func Ef(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	cause := e.Kind.String()
	if e.Err != nil {
		cause = e.Err.Error()
	}
	if e.Op == "" {
		return cause
	}
	return e.Op + " failed: " + cause
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the outermost classified error in err's chain,
// falling back to sentinel matching and KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}
