package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"huduku-gateway/internal/clients"
)

// fakeGeo serves a two-state hierarchy and counts calls per level.
type fakeGeo struct {
	stateCalls    int64
	districtCalls int64
	cityCalls     int64
	localityCalls int64
}

func (f *fakeGeo) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/locality"):
			atomic.AddInt64(&f.localityCalls, 1)
			w.Write([]byte(`[{"code": 400, "name": "Gandhi Nagar", "slug": "gandhi-nagar"}]`))
		case strings.HasSuffix(path, "/cities"):
			atomic.AddInt64(&f.cityCalls, 1)
			w.Write([]byte(`[{"code": 300, "name": "Vijayawada", "slug": "vijayawada"}]`))
		case strings.HasSuffix(path, "/districts"):
			atomic.AddInt64(&f.districtCalls, 1)
			w.Write([]byte(`[{"code": 200, "name": "Krishna", "slug": "krishna"}, {"code": 201, "name": "Guntur", "slug": "guntur"}]`))
		case path == "/states":
			atomic.AddInt64(&f.stateCalls, 1)
			if r.URL.Query().Get("slug") == "andhra-pradesh" {
				w.Write([]byte(`[{"code": 100, "name": "Andhra Pradesh", "slug": "andhra-pradesh"}]`))
				return
			}
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}
}

func newResolver(t *testing.T) (*Resolver, *fakeGeo) {
	t.Helper()
	fake := &fakeGeo{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	geo := clients.NewGeoClient(srv.URL, 2*time.Second)
	return NewResolver(geo, zap.NewNop().Sugar()), fake
}

func TestResolveFullChain(t *testing.T) {
	r, _ := newResolver(t)

	resolved, err := r.Resolve(context.Background(), Path{
		StateSlug:    "andhra-pradesh",
		DistrictSlug: "krishna",
		CitySlug:     "vijayawada",
		LocalitySlug: "gandhi-nagar",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100, resolved.StateCode)
	assert.EqualValues(t, 200, resolved.DistrictCode)
	assert.EqualValues(t, 300, resolved.CityCode)
	assert.EqualValues(t, 400, resolved.LocalityCode)
}

func TestResolveStopsAtDeepestSuppliedSlug(t *testing.T) {
	r, fake := newResolver(t)

	resolved, err := r.Resolve(context.Background(), Path{
		StateSlug:    "andhra-pradesh",
		DistrictSlug: "guntur",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 201, resolved.DistrictCode)
	assert.Zero(t, resolved.CityCode)
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.cityCalls))
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.localityCalls))
}

func TestResolveStateMissShortCircuits(t *testing.T) {
	r, fake := newResolver(t)

	_, err := r.Resolve(context.Background(), Path{
		StateSlug:    "atlantis",
		DistrictSlug: "krishna",
		CitySlug:     "vijayawada",
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "state", notFound.Level)
	// No wasted calls past the miss.
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.districtCalls))
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.cityCalls))
}

func TestResolveDistrictMiss(t *testing.T) {
	r, fake := newResolver(t)

	_, err := r.Resolve(context.Background(), Path{
		StateSlug:    "andhra-pradesh",
		DistrictSlug: "nowhere",
		CitySlug:     "vijayawada",
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "district", notFound.Level)
	assert.Equal(t, "nowhere", notFound.Slug)
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.cityCalls))
}

func TestResolveRejectsDisjointPath(t *testing.T) {
	r, fake := newResolver(t)

	_, err := r.Resolve(context.Background(), Path{
		StateSlug: "andhra-pradesh",
		CitySlug:  "vijayawada", // no district slug
	})
	require.Error(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt64(&fake.stateCalls))
}

func TestDistrictsListing(t *testing.T) {
	r, _ := newResolver(t)

	districts, err := r.Districts(context.Background(), "andhra-pradesh")
	require.NoError(t, err)
	require.Len(t, districts, 2)
	assert.Equal(t, "krishna", districts[0].Slug)
}
