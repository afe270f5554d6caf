// Package httpapi exposes the gateway's HTTP surface and maps domain
// failures onto response statuses.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"huduku-gateway/internal/aggregate"
	"huduku-gateway/internal/auth"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/kstream"
	"huduku-gateway/internal/location"
)

// validate checks inbound JSON payloads against struct tags before any
// backend call is made.
var validate = validator.New()

// Server bundles the gateway's collaborators behind the HTTP handlers.
type Server struct {
	identity  *clients.IdentityClient
	inventory *clients.InventoryClient
	geo       *clients.GeoClient
	verifier  *auth.Verifier
	resolver  *location.Resolver
	engine    *aggregate.Engine
	producer  *kstream.Producer
	log       *zap.SugaredLogger
}

// NewServer creates the handler set.
func NewServer(
	identity *clients.IdentityClient,
	inventory *clients.InventoryClient,
	geo *clients.GeoClient,
	verifier *auth.Verifier,
	resolver *location.Resolver,
	engine *aggregate.Engine,
	producer *kstream.Producer,
	log *zap.SugaredLogger,
) *Server {
	return &Server{
		identity:  identity,
		inventory: inventory,
		geo:       geo,
		verifier:  verifier,
		resolver:  resolver,
		engine:    engine,
		producer:  producer,
		log:       log,
	}
}

// RegisterRoutes wires every gateway route onto the router.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Listings and composites
	api.HandleFunc("/categories", s.getCategories).Methods(http.MethodGet)
	api.HandleFunc("/listings", s.getListings).Methods(http.MethodGet)
	api.HandleFunc("/listings-with-images", s.getListingsWithImages).Methods(http.MethodGet)
	api.HandleFunc("/listing/create", s.createListing).Methods(http.MethodPost)
	api.HandleFunc("/listing/{listing_id:[0-9]+}/with-images", s.getListingDetails).Methods(http.MethodGet)
	api.HandleFunc("/listing/{listing_id:[0-9]+}/image/upload", s.uploadListingImage).Methods(http.MethodPost)
	api.HandleFunc("/listing/{listing_id:[0-9]+}/image/{image_id:[0-9]+}", s.deleteListingImage).Methods(http.MethodDelete)
	api.HandleFunc("/listing/{listing_id:[0-9]+}", s.updateListing).Methods(http.MethodPut)
	api.HandleFunc("/listing/{listing_id:[0-9]+}", s.deleteListing).Methods(http.MethodDelete)

	// Users
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/users/change_password", s.changePassword).Methods(http.MethodPost)
	api.HandleFunc("/update_user_profile", s.updateProfile).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id:[0-9]+}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/user/{user_id:[0-9]+}/listings", s.getUserListings).Methods(http.MethodGet)

	// Geography
	api.HandleFunc("/states", s.getStates).Methods(http.MethodGet)
	api.HandleFunc("/states/{state_slug}/districts", s.getDistricts).Methods(http.MethodGet)
	api.HandleFunc("/states/{state_slug}/districts/{district_slug}/cities", s.getCities).Methods(http.MethodGet)
	api.HandleFunc("/states/{state_slug}/districts/{district_slug}/cities/{city_slug}/localities", s.getLocalities).Methods(http.MethodGet)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
