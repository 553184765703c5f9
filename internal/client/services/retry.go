package services

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	retryableWords = []string{"network", "timeout", "connection", "fetch", "rate limit", "too many requests", "429"}
	serverCode     = regexp.MustCompile(`\b5\d{2}\b`)
)

// IsRetryable reports whether err looks transient. Typed transport errors
// are checked first; anything else falls back to matching the message
// against network, timeout, connection, fetch, 5xx and rate-limit signals.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, client.ErrUnavailable),
		errors.Is(err, client.ErrRateLimited),
		errors.Is(err, client.ErrServer),
		errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, client.ErrAlreadyExists),
		errors.Is(err, context.Canceled):
		return false
	}

	switch common.KindOf(err) {
	case common.KindInvalidInput, common.KindValidationFailed, common.KindNotAuthenticated,
		common.KindEncryptionFailed, common.KindDecryptionFailed:
		return false
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted,
			codes.Internal, codes.Unknown, codes.Aborted:
			return true
		}
		return false
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, w := range retryableWords {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return serverCode.MatchString(msg)
}
