package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"huduku-gateway/internal/model"
)

// InventoryClient talks to the listing service (listings, images,
// categories).
type InventoryClient struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
}

// NewInventoryClient creates an inventory facade. Reads use timeout; the
// multipart image upload gets the longer uploadTimeout.
func NewInventoryClient(baseURL string, timeout, uploadTimeout time.Duration) *InventoryClient {
	return &InventoryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		uploadClient: &http.Client{
			Timeout: uploadTimeout,
		},
	}
}

// Categories lists all listing categories.
func (c *InventoryClient) Categories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodGet, c.baseURL+"/category", nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// SearchListings runs a filtered listing search. Filters are forwarded as
// query parameters verbatim.
func (c *InventoryClient) SearchListings(ctx context.Context, filters map[string]string) ([]model.ListingSummary, error) {
	q := url.Values{}
	for k, v := range filters {
		q.Set(k, v)
	}
	u := c.baseURL + "/listings"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var listings []model.ListingSummary
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodGet, u, nil, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetListing fetches a single listing by id.
func (c *InventoryClient) GetListing(ctx context.Context, listingID int64) (*model.ListingSummary, error) {
	var listing model.ListingSummary
	u := fmt.Sprintf("%s/listing/%d", c.baseURL, listingID)
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodGet, u, nil, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListingPayload is the forwarded create body. The gateway fills
// UserID from the verified principal and Location from the slug chain.
type CreateListingPayload struct {
	UserID       int64   `json:"user_id"`
	Title        string  `json:"title"`
	Category     int64   `json:"category"`
	Price        float64 `json:"price"`
	LocalitySlug string  `json:"locality_slug"`
	Location     string  `json:"location"`
	IsActive     bool    `json:"is_active"`
}

// CreateListing creates a listing on behalf of a verified user.
func (c *InventoryClient) CreateListing(ctx context.Context, payload CreateListingPayload) (*model.ListingSummary, error) {
	var listing model.ListingSummary
	u := c.baseURL + "/listing/create"
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodPost, u, nil, payload, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing applies a partial update to a listing.
func (c *InventoryClient) UpdateListing(ctx context.Context, listingID int64, req model.UpdateListingRequest) (*model.ListingSummary, error) {
	var listing model.ListingSummary
	u := fmt.Sprintf("%s/listing/%d", c.baseURL, listingID)
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodPut, u, nil, req, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteListing removes a listing.
func (c *InventoryClient) DeleteListing(ctx context.Context, listingID int64) error {
	u := fmt.Sprintf("%s/listing/%d", c.baseURL, listingID)
	return doJSON(ctx, c.httpClient, "inventory", http.MethodDelete, u, nil, nil, nil)
}

// ListImages returns the images attached to a listing, in backend order.
func (c *InventoryClient) ListImages(ctx context.Context, listingID int64) ([]model.ListingImage, error) {
	var images []model.ListingImage
	u := fmt.Sprintf("%s/listing/%d/images/", c.baseURL, listingID)
	if err := doJSON(ctx, c.httpClient, "inventory", http.MethodGet, u, nil, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// UploadImage forwards a multipart image upload for a listing. The original
// Authorization header travels with it so the listing service can run its
// own credential check.
func (c *InventoryClient) UploadImage(ctx context.Context, listingID int64, filename, contentType string, file io.Reader, authHeader string) (*model.ListingImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("inventory: build multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("inventory: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("inventory: close multipart: %w", err)
	}

	u := fmt.Sprintf("%s/listing/%d/image/upload", c.baseURL, listingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return nil, fmt.Errorf("inventory: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{Service: "inventory", Status: resp.StatusCode, Body: string(raw)}
	}

	var image model.ListingImage
	if err := json.NewDecoder(resp.Body).Decode(&image); err != nil {
		return nil, fmt.Errorf("inventory: decode response: %w", err)
	}
	return &image, nil
}

// DeleteImage removes a single image from a listing.
func (c *InventoryClient) DeleteImage(ctx context.Context, listingID, imageID int64) error {
	u := fmt.Sprintf("%s/listing/%d/image/%d", c.baseURL, listingID, imageID)
	return doJSON(ctx, c.httpClient, "inventory", http.MethodDelete, u, nil, nil, nil)
}
