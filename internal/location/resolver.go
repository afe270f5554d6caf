// Package location resolves human-readable slug paths
// (state/district/city/locality) into the region service's numeric codes.
package location

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/model"
)

// Path is a slug chain. StateSlug is mandatory; deeper slugs are optional
// but must be contiguous (no city without a district).
type Path struct {
	StateSlug    string
	DistrictSlug string
	CitySlug     string
	LocalitySlug string
}

// Resolved holds the backend-native codes for the supplied slugs. A level
// that was not part of the input stays zero.
type Resolved struct {
	StateCode    int64
	DistrictCode int64
	CityCode     int64
	LocalityCode int64
}

// NotFoundError reports which hierarchy level had no match, so handlers can
// return the right not-found message.
type NotFoundError struct {
	Level string
	Slug  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location: %s %q not found", e.Level, e.Slug)
}

// Resolver walks the hierarchy level by level. Only the state level supports
// slug lookup on the backend; districts, cities and localities are listed by
// parent code and scanned here. Fan-out per level is bounded (a state has at
// most a few hundred districts), so the scan stays cheap.
type Resolver struct {
	geo *clients.GeoClient
	log *zap.SugaredLogger
}

// NewResolver creates a resolver over the given geography client.
func NewResolver(geo *clients.GeoClient, log *zap.SugaredLogger) *Resolver {
	return &Resolver{geo: geo, log: log}
}

// Resolve turns a slug path into codes. It short-circuits on the first level
// with no match and never looks deeper than the deepest supplied slug.
func (r *Resolver) Resolve(ctx context.Context, path Path) (*Resolved, error) {
	if path.StateSlug == "" {
		return nil, &NotFoundError{Level: "state", Slug: path.StateSlug}
	}
	if path.DistrictSlug == "" && (path.CitySlug != "" || path.LocalitySlug != "") ||
		path.CitySlug == "" && path.LocalitySlug != "" {
		return nil, fmt.Errorf("location: disjoint slug path %+v", path)
	}

	resolved := &Resolved{}

	stateCode, err := r.resolveState(ctx, path.StateSlug)
	if err != nil {
		return nil, err
	}
	resolved.StateCode = stateCode

	if path.DistrictSlug == "" {
		return resolved, nil
	}
	districtCode, err := r.resolveChild(ctx, "district", path.DistrictSlug,
		func() ([]model.Area, error) { return r.geo.Districts(ctx, stateCode) })
	if err != nil {
		return nil, err
	}
	resolved.DistrictCode = districtCode

	if path.CitySlug == "" {
		return resolved, nil
	}
	cityCode, err := r.resolveChild(ctx, "city", path.CitySlug,
		func() ([]model.Area, error) { return r.geo.Cities(ctx, stateCode, districtCode) })
	if err != nil {
		return nil, err
	}
	resolved.CityCode = cityCode

	if path.LocalitySlug == "" {
		return resolved, nil
	}
	localityCode, err := r.resolveChild(ctx, "locality", path.LocalitySlug,
		func() ([]model.Area, error) { return r.geo.Localities(ctx, stateCode, districtCode, cityCode) })
	if err != nil {
		return nil, err
	}
	resolved.LocalityCode = localityCode

	return resolved, nil
}

// Districts resolves the state and returns its districts.
func (r *Resolver) Districts(ctx context.Context, stateSlug string) ([]model.Area, error) {
	resolved, err := r.Resolve(ctx, Path{StateSlug: stateSlug})
	if err != nil {
		return nil, err
	}
	return r.geo.Districts(ctx, resolved.StateCode)
}

// Cities resolves state and district and returns the district's cities.
func (r *Resolver) Cities(ctx context.Context, stateSlug, districtSlug string) ([]model.Area, error) {
	resolved, err := r.Resolve(ctx, Path{StateSlug: stateSlug, DistrictSlug: districtSlug})
	if err != nil {
		return nil, err
	}
	return r.geo.Cities(ctx, resolved.StateCode, resolved.DistrictCode)
}

// Localities resolves state, district and city and returns the city's
// localities.
func (r *Resolver) Localities(ctx context.Context, stateSlug, districtSlug, citySlug string) ([]model.Area, error) {
	resolved, err := r.Resolve(ctx, Path{StateSlug: stateSlug, DistrictSlug: districtSlug, CitySlug: citySlug})
	if err != nil {
		return nil, err
	}
	return r.geo.Localities(ctx, resolved.StateCode, resolved.DistrictCode, resolved.CityCode)
}

func (r *Resolver) resolveState(ctx context.Context, slug string) (int64, error) {
	states, err := r.geo.States(ctx, slug)
	if err != nil {
		return 0, err
	}
	if len(states) == 0 {
		return 0, &NotFoundError{Level: "state", Slug: slug}
	}
	// Slugs are unique; the backend returns at most one match.
	return states[0].Code, nil
}

func (r *Resolver) resolveChild(ctx context.Context, level, slug string, list func() ([]model.Area, error)) (int64, error) {
	children, err := list()
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		if child.Slug == slug {
			return child.Code, nil
		}
	}
	return 0, &NotFoundError{Level: level, Slug: slug}
}
