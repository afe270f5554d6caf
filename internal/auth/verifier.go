// Package auth covers the gateway's two security concerns: verifying a
// bearer credential against the identity service and enforcing resource
// ownership before mutations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/model"
)

// ErrMissingCredential means no usable token was present in the request.
// Returned before any network call is made.
var ErrMissingCredential = errors.New("auth: missing credential")

// Reason classifies a failed remote verification.
type Reason string

const (
	ReasonExpired     Reason = "expired"
	ReasonInvalid     Reason = "invalid"
	ReasonUnavailable Reason = "backend_unavailable"
)

// VerifyError is a failed verification of a present credential.
type VerifyError struct {
	Reason Reason
	cause  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("auth: verification failed (%s)", e.Reason)
}

func (e *VerifyError) Unwrap() error { return e.cause }

// Verifier resolves bearer credentials into principals via the identity
// service. Verification is a per-request latency-sensitive path: one bounded
// call, no retries.
type Verifier struct {
	identity *clients.IdentityClient
	log      *zap.SugaredLogger
}

// NewVerifier creates a credential verifier.
func NewVerifier(identity *clients.IdentityClient, log *zap.SugaredLogger) *Verifier {
	return &Verifier{identity: identity, log: log}
}

// Verify extracts the bearer token from a raw Authorization header value and
// verifies it remotely. The "Bearer " prefix is optional; an empty token
// fails immediately without touching the network.
func (v *Verifier) Verify(ctx context.Context, rawHeader string) (*model.Principal, error) {
	token := strings.TrimSpace(rawHeader)
	// Cut the scheme word alone so "Bearer" with nothing after it (or only
	// whitespace, already trimmed away) still counts as an empty token. A bare
	// token that merely starts with "Bearer" is left untouched.
	if after, ok := strings.CutPrefix(token, "Bearer"); ok && (after == "" || after[0] == ' ') {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return nil, ErrMissingCredential
	}

	principal, err := v.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, v.classify(err)
	}
	return principal, nil
}

// classify maps an identity call failure onto a verification reason. 401/403
// responses are credential problems, split on the backend's "expired"
// wording; everything else, timeouts included, means identity is down.
func (v *Verifier) classify(err error) error {
	var be *clients.Error
	if errors.As(err, &be) {
		switch be.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			if strings.Contains(strings.ToLower(be.Body), "expired") {
				return &VerifyError{Reason: ReasonExpired, cause: err}
			}
			return &VerifyError{Reason: ReasonInvalid, cause: err}
		default:
			return &VerifyError{Reason: ReasonUnavailable, cause: err}
		}
	}
	v.log.Warnw("identity verification unreachable", "err", err)
	return &VerifyError{Reason: ReasonUnavailable, cause: err}
}
