package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) getStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.geo.States(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) getDistricts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	districts, err := s.resolver.Districts(r.Context(), vars["state_slug"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, districts)
}

func (s *Server) getCities(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cities, err := s.resolver.Cities(r.Context(), vars["state_slug"], vars["district_slug"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (s *Server) getLocalities(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	localities, err := s.resolver.Localities(r.Context(), vars["state_slug"], vars["district_slug"], vars["city_slug"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, localities)
}
