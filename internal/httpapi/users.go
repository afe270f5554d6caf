package httpapi

import (
	"net/http"

	"huduku-gateway/internal/model"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.identity.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	// The token payload passes through untouched; the identity service is
	// the only token authority.
	out, err := s.identity.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.identity.ChangePassword(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// updateProfile acts on the verified principal's own account; there is no
// way to address another user's profile through this endpoint.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.identity.UpdateProfile(r.Context(), principal.UserID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.identity.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
