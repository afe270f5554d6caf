package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"huduku-gateway/internal/aggregate"
	"huduku-gateway/internal/auth"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/model"
)

// compositeFilterKeys are the query parameters forwarded to the inventory
// search from the composite endpoint. Anything else is dropped, which also
// keeps junk parameters out of the cache fingerprint.
var compositeFilterKeys = []string{
	"location",
	"category",
	"min_price",
	"max_price",
	"user_id",
	"state_slug",
	"district_slug",
	"city_slug",
	"locality_slug",
	"category_slug",
	"slug",
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.inventory.Categories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) getListings(w http.ResponseWriter, r *http.Request) {
	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 && values[0] != "" {
			filters[key] = values[0]
		}
	}

	listings, err := s.inventory.SearchListings(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) getListingsWithImages(w http.ResponseWriter, r *http.Request) {
	filters := map[string]string{}
	for _, key := range compositeFilterKeys {
		if v := r.URL.Query().Get(key); v != "" {
			filters[key] = v
		}
	}

	results, cached, err := s.engine.ListWithImages(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !cached && s.producer != nil {
		evt := model.SearchPerformed{
			Fingerprint: aggregate.Fingerprint(filters),
			Filters:     filters,
			Results:     len(results),
			Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := s.producer.PublishSearchPerformed(r.Context(), evt); err != nil {
			s.log.Warnw("search event publish failed", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) getListingDetails(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(r, "listing_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := s.engine.GetWithImages(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) getUserListings(w http.ResponseWriter, r *http.Request) {
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

	listings, err := s.inventory.SearchListings(r.Context(), map[string]string{
		"user_id": fmt.Sprintf("%d", userID),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"listings": listings,
	})
}

func (s *Server) createListing(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req model.CreateListingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	// The hierarchical location path is built here so the inventory service
	// only ever sees one canonical format.
	locationPath := fmt.Sprintf("%s/%s/%s/%s", req.StateSlug, req.DistrictSlug, req.CitySlug, req.LocalitySlug)

	listing, err := s.inventory.CreateListing(r.Context(), inventoryCreatePayload(principal.UserID, req, locationPath, isActive))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.publishListingEvent(r, "created", listing.ID, principal.UserID)
	writeJSON(w, http.StatusOK, listing)
}

func inventoryCreatePayload(userID int64, req model.CreateListingRequest, locationPath string, isActive bool) clients.CreateListingPayload {
	return clients.CreateListingPayload{
		UserID:       userID,
		Title:        req.Title,
		Category:     req.Category,
		Price:        req.Price,
		LocalitySlug: req.LocalitySlug,
		Location:     locationPath,
		IsActive:     isActive,
	}
}

func (s *Server) updateListing(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listingID, ok := pathID(r, "listing_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	// Fetch, authorize, act. Never reordered, never skipped.
	listing, err := s.inventory.GetListing(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := auth.AuthorizeMutation(principal, listing.OwnerUserID); err != nil {
		s.writeError(w, err)
		return
	}

	var req model.UpdateListingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.inventory.UpdateListing(r.Context(), listingID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.publishListingEvent(r, "updated", listingID, principal.UserID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteListing(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listingID, ok := pathID(r, "listing_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := s.inventory.GetListing(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := auth.AuthorizeMutation(principal, listing.OwnerUserID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.inventory.DeleteListing(r.Context(), listingID); err != nil {
		s.writeError(w, err)
		return
	}

	s.publishListingEvent(r, "deleted", listingID, principal.UserID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) uploadListingImage(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listingID, ok := pathID(r, "listing_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := s.inventory.GetListing(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := auth.AuthorizeMutation(principal, listing.OwnerUserID); err != nil {
		s.writeError(w, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// The UI submits <input name="images">; take the first of those.
		file, header, err = r.FormFile("images")
	}
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	image, err := s.inventory.UploadImage(
		r.Context(),
		listingID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		r.Header.Get("Authorization"),
	)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.publishListingEvent(r, "image_uploaded", listingID, principal.UserID)
	writeJSON(w, http.StatusCreated, image)
}

func (s *Server) deleteListingImage(w http.ResponseWriter, r *http.Request) {
	principal, err := s.principal(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listingID, ok := pathID(r, "listing_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	imageID, ok := pathID(r, "image_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid image id")
		return
	}

	listing, err := s.inventory.GetListing(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := auth.AuthorizeMutation(principal, listing.OwnerUserID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.inventory.DeleteImage(r.Context(), listingID, imageID); err != nil {
		s.writeError(w, err)
		return
	}

	s.publishListingEvent(r, "image_deleted", listingID, principal.UserID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
