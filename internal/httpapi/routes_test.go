package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"huduku-gateway/internal/aggregate"
	"huduku-gateway/internal/auth"
	"huduku-gateway/internal/cache"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/location"
)

// backendCounters tracks which upstream operations actually ran.
type backendCounters struct {
	verifyCalls int64
	updateCalls int64
	deleteCalls int64
	uploadCalls int64

	mu             sync.Mutex
	uploadFilename string
	uploadAuth     string
}

// newGateway wires a full handler stack against fake identity, inventory and
// geography backends. The bearer token encodes the principal:
// "user:<id>" or "staff:<id>".
func newGateway(t *testing.T) (*mux.Router, *backendCounters) {
	t.Helper()
	counters := &backendCounters{}

	identitySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/verify-token"):
			atomic.AddInt64(&counters.verifyCalls, 1)
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			switch {
			case strings.HasPrefix(token, "staff:"):
				w.Write([]byte(`{"user_id": ` + strings.TrimPrefix(token, "staff:") + `, "is_staff": true}`))
			case strings.HasPrefix(token, "user:"):
				w.Write([]byte(`{"user_id": ` + strings.TrimPrefix(token, "user:") + `, "is_staff": false}`))
			default:
				http.Error(w, `{"detail": "Invalid token"}`, http.StatusUnauthorized)
			}
		case strings.HasPrefix(r.URL.Path, "/users/"):
			w.Write([]byte(`{"id": 9, "email": "owner@example.com"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(identitySrv.Close)

	inventorySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/listings":
			w.Write([]byte(`[{"id": 5, "title": "Phone", "owner_user_id": 9, "category_id": 3, "price": 150,
				"location": "x", "is_active": true,
				"created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-01T10:00:00Z"}]`))
		case r.URL.Path == "/listing/5/images/":
			w.Write([]byte(`[{"id": 11, "listing_id": 5, "image": "/media/a.jpg", "created_at": "2024-05-01T11:00:00Z"}]`))
		case r.URL.Path == "/listing/5" && r.Method == http.MethodGet:
			w.Write([]byte(`{"id": 5, "title": "Phone", "owner_user_id": 9, "category_id": 3, "price": 150,
				"location": "x", "is_active": true,
				"created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-01T10:00:00Z"}`))
		case r.URL.Path == "/listing/5" && r.Method == http.MethodPut:
			atomic.AddInt64(&counters.updateCalls, 1)
			w.Write([]byte(`{"id": 5, "title": "Phone v2", "owner_user_id": 9, "category_id": 3, "price": 120,
				"location": "x", "is_active": true,
				"created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-03T10:00:00Z"}`))
		case r.URL.Path == "/listing/5/image/upload" && r.Method == http.MethodPost:
			atomic.AddInt64(&counters.uploadCalls, 1)
			// FormFile pins the forwarded part name; a renamed part 400s here.
			file, header, err := r.FormFile("image")
			if err != nil {
				http.Error(w, `{"detail": "missing image part"}`, http.StatusBadRequest)
				return
			}
			file.Close()
			counters.mu.Lock()
			counters.uploadFilename = header.Filename
			counters.uploadAuth = r.Header.Get("Authorization")
			counters.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 31, "listing_id": 5, "image": "/media/new.jpg", "created_at": "2024-05-04T10:00:00Z"}`))
		case r.URL.Path == "/listing/5" && r.Method == http.MethodDelete:
			atomic.AddInt64(&counters.deleteCalls, 1)
			w.Write([]byte(`{"success": true}`))
		default:
			http.Error(w, `{"detail": "Not found"}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(inventorySrv.Close)

	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/states" && r.URL.Query().Get("slug") == "andhra-pradesh":
			w.Write([]byte(`[{"code": 100, "name": "Andhra Pradesh", "slug": "andhra-pradesh"}]`))
		case r.URL.Path == "/states":
			w.Write([]byte(`[]`))
		case strings.HasSuffix(r.URL.Path, "/districts"):
			w.Write([]byte(`[{"code": 200, "name": "Krishna", "slug": "krishna"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(geoSrv.Close)

	log := zap.NewNop().Sugar()
	identity := clients.NewIdentityClient(identitySrv.URL, 2*time.Second)
	inventory := clients.NewInventoryClient(inventorySrv.URL, 2*time.Second, 2*time.Second)
	geo := clients.NewGeoClient(geoSrv.URL, 2*time.Second)

	server := NewServer(
		identity,
		inventory,
		geo,
		auth.NewVerifier(identity, log),
		location.NewResolver(geo, log),
		aggregate.NewEngine(inventory, cache.NewMemory(), time.Minute, log),
		nil, // no kafka in tests
		log,
	)

	r := mux.NewRouter()
	server.RegisterRoutes(r)
	return r, counters
}

func doRequest(router *mux.Router, method, target, token string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateListingRejectsNonOwner(t *testing.T) {
	router, counters := newGateway(t)

	rec := doRequest(router, http.MethodPut, "/api/v1/listing/5", "user:7", `{"title": "hijack"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
	// Authorization runs after the fetch and before the act.
	assert.EqualValues(t, 0, atomic.LoadInt64(&counters.updateCalls))
}

func TestUpdateListingAllowsStaff(t *testing.T) {
	router, counters := newGateway(t)

	rec := doRequest(router, http.MethodPut, "/api/v1/listing/5", "staff:7", `{"title": "moderated"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, atomic.LoadInt64(&counters.updateCalls))
}

func TestDeleteListingByOwner(t *testing.T) {
	router, counters := newGateway(t)

	rec := doRequest(router, http.MethodDelete, "/api/v1/listing/5", "user:9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "true")
	assert.EqualValues(t, 1, atomic.LoadInt64(&counters.deleteCalls))
}

func TestDeleteListingRequiresCredential(t *testing.T) {
	router, counters := newGateway(t)

	rec := doRequest(router, http.MethodDelete, "/api/v1/listing/5", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// No token means no verification call at all.
	assert.EqualValues(t, 0, atomic.LoadInt64(&counters.verifyCalls))
	assert.EqualValues(t, 0, atomic.LoadInt64(&counters.deleteCalls))
}

func uploadRequest(t *testing.T, fieldName, filename, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listing/5/image/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadImageForwardsMultipart(t *testing.T) {
	router, counters := newGateway(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "image", "photo.png", "user:9"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "/media/new.jpg")
	assert.EqualValues(t, 1, atomic.LoadInt64(&counters.uploadCalls))

	counters.mu.Lock()
	defer counters.mu.Unlock()
	assert.Equal(t, "photo.png", counters.uploadFilename)
	assert.Equal(t, "Bearer user:9", counters.uploadAuth)
}

func TestUploadImageAcceptsImagesFieldName(t *testing.T) {
	router, counters := newGateway(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "images", "gallery.jpg", "user:9"))

	require.Equal(t, http.StatusCreated, rec.Code)
	counters.mu.Lock()
	defer counters.mu.Unlock()
	assert.Equal(t, "gallery.jpg", counters.uploadFilename)
}

func TestUploadImageRejectsNonOwner(t *testing.T) {
	router, counters := newGateway(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "image", "photo.png", "user:7"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.EqualValues(t, 0, atomic.LoadInt64(&counters.uploadCalls))
}

func TestListingsWithImagesComposite(t *testing.T) {
	router, _ := newGateway(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/listings-with-images?category_slug=electronics&min_price=100", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"images"`)
	assert.Contains(t, body, "/media/a.jpg")
}

func TestRegisterValidationRejectsBadPayload(t *testing.T) {
	router, _ := newGateway(t)

	rec := doRequest(router, http.MethodPost, "/api/v1/register", "", `{"email": "not-an-email", "password": "short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistrictsForUnknownState(t *testing.T) {
	router, _ := newGateway(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/states/atlantis/districts", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "State not found")
}

func TestDistrictsForKnownState(t *testing.T) {
	router, _ := newGateway(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/states/andhra-pradesh/districts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "krishna")
}
