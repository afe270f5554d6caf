package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"huduku-gateway/internal/auth"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/location"
	"huduku-gateway/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps domain failures onto response statuses. Upstream statuses
// from backend calls are preserved; transport-level failures become 503.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrMissingCredential) {
		writeDetail(w, http.StatusUnauthorized, "Please log in to continue")
		return
	}

	var verifyErr *auth.VerifyError
	if errors.As(err, &verifyErr) {
		if verifyErr.Reason == auth.ReasonUnavailable {
			writeDetail(w, http.StatusServiceUnavailable, "Auth service unavailable")
			return
		}
		writeDetail(w, http.StatusUnauthorized, "Please log in to continue")
		return
	}

	if errors.Is(err, auth.ErrUnauthorized) {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var notFound *location.NotFoundError
	if errors.As(err, &notFound) {
		writeDetail(w, http.StatusNotFound, levelTitle(notFound.Level)+" not found")
		return
	}

	var backendErr *clients.Error
	if errors.As(err, &backendErr) {
		detail := backendErr.Body
		if detail == "" {
			detail = "Backend error"
		}
		writeDetail(w, backendErr.Status, detail)
		return
	}

	s.log.Errorw("backend call failed", "err", err)
	writeDetail(w, http.StatusServiceUnavailable, "Backend unavailable")
}

func levelTitle(level string) string {
	if level == "" {
		return "Location"
	}
	return strings.ToUpper(level[:1]) + level[1:]
}

// principal verifies the request's Authorization header.
func (s *Server) principal(r *http.Request) (*model.Principal, error) {
	return s.verifier.Verify(r.Context(), r.Header.Get("Authorization"))
}

func pathID(r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return validate.Struct(v)
}

// publishListingEvent emits a mutation event. Fire and forget: a broker
// problem is logged and the request still succeeds.
func (s *Server) publishListingEvent(r *http.Request, action string, listingID, userID int64) {
	if s.producer == nil {
		return
	}
	evt := model.ListingEvent{
		Action:    action,
		ListingID: listingID,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.producer.PublishListingEvent(r.Context(), evt); err != nil {
		s.log.Warnw("listing event publish failed", "action", action, "listing_id", listingID, "err", err)
	}
}
