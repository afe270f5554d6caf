package model

import "time"

// Principal is the authenticated identity derived from a verified credential.
// It lives for a single request.
type Principal struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email,omitempty"`
	IsStaff bool   `json:"is_staff"`
}

// User is the profile shape returned by the identity service.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Category is a listing category as stored by the inventory service.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id"`
}

// ListingSummary is the core listing record from the inventory service. The
// gateway never mutates these directly, it only forwards validated requests.
type ListingSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	OwnerUserID int64     `json:"owner_user_id"`
	CategoryID  int64     `json:"category_id"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingImage is one image attached to a listing. Ordering is whatever the
// inventory service returns; the gateway does not re-sort.
type ListingImage struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// AggregateListing is the composed entity the gateway exposes: a listing plus
// its images. Built fresh per request (or served from the response cache),
// never persisted.
type AggregateListing struct {
	ListingSummary
	Images []ListingImage `json:"images"`
}

// Area is one node of the geography hierarchy (state, district, city or
// locality). Slugs are unique among siblings.
type Area struct {
	Code int64  `json:"code"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateListingRequest is the inbound sell-flow payload. The four location
// slugs are mandatory; the gateway joins them into the hierarchical location
// path before forwarding.
type CreateListingRequest struct {
	Title        string  `json:"title" validate:"required"`
	Category     int64   `json:"category" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	StateSlug    string  `json:"state_slug" validate:"required"`
	DistrictSlug string  `json:"district_slug" validate:"required"`
	CitySlug     string  `json:"city_slug" validate:"required"`
	LocalitySlug string  `json:"locality_slug" validate:"required"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateListingRequest carries partial listing updates. Nil means the field
// is untouched.
type UpdateListingRequest struct {
	Title    *string  `json:"title,omitempty"`
	Category *int64   `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Location *string  `json:"location,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// RegisterRequest is the inbound registration payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

// LoginRequest is the inbound login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is forwarded to the identity service after
// validation.
type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=64"`
}

// UpdateProfileRequest updates the verified principal's own profile.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,len=10"`
}
