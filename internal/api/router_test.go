// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/auth"
	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/images"
	"github.com/cartatlas/cartatlas/internal/mailer"
	"github.com/cartatlas/cartatlas/internal/models"
	"github.com/cartatlas/cartatlas/internal/service"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

type fakeImageStore struct {
	mu sync.Mutex
	n  int
}

func (f *fakeImageStore) Upload(_ context.Context, r io.Reader) (images.UploadedImage, error) {
	if _, err := io.ReadAll(r); err != nil {
		return images.UploadedImage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	id := fmt.Sprintf("img-%d", f.n)
	return images.UploadedImage{URL: "https://cdn.test/" + id + ".jpg", PublicID: id}, nil
}

func (f *fakeImageStore) Destroy(context.Context, string) error { return nil }

type testEnv struct {
	router  http.Handler
	jwt     *auth.JWTManager
	pods    *database.MemoryPodStore
	carts   *database.MemoryCartStore
	userID  primitive.ObjectID
	token   string
	another string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pods := database.NewMemoryPodStore()
	carts := database.NewMemoryCartStore()
	podSvc := service.NewPodService(pods, carts)
	cartSvc := service.NewCartService(carts, pods, mailer.NoopNotifier{})
	uploader := images.NewBatchUploader(&fakeImageStore{}, config.UploadConfig{
		MaxFiles:    10,
		MaxFileSize: 5 * 1024 * 1024,
	})

	jwt, err := auth.NewJWTManager(config.SecurityConfig{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	userID := primitive.NewObjectID()
	token, err := jwt.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	another, err := jwt.GenerateToken(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := NewHandler(podSvc, cartSvc, uploader, nil)
	router := NewRouter(handler, jwt, config.SecurityConfig{RateLimitDisabled: true})

	return &testEnv{
		router:  router,
		jwt:     jwt,
		pods:    pods,
		carts:   carts,
		userID:  userID,
		token:   token,
		another: another,
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return env.do(t, method, path, token, bytes.NewReader(raw), "application/json")
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("response has no error")
	}
	return resp.Error.Code
}

func (env *testEnv) createPod(t *testing.T, token string) models.CartPod {
	t.Helper()
	rec := env.doJSON(t, http.MethodPost, "/cartpods", token, map[string]interface{}{
		"name":     "Main St",
		"location": map[string]interface{}{"type": "Point", "coordinates": []float64{-122.4, 37.7}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pod status = %d, body %s", rec.Code, rec.Body.String())
	}
	var pod models.CartPod
	decodeData(t, rec, &pod)
	return pod
}

func (env *testEnv) createCart(t *testing.T, token string, podID primitive.ObjectID) models.FoodCart {
	t.Helper()
	body, contentType := cartForm(t, map[string]string{
		"name":       "Taco Truck",
		"cartPodId":  podID.Hex(),
		"location":   `{"type":"Point","coordinates":[-122.4,37.7]}`,
		"foodServed": `["Tacos","Burritos"]`,
	}, 1)
	rec := env.do(t, http.MethodPost, "/foodcarts", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cart status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cart models.FoodCart
	decodeData(t, rec, &cart)
	return cart
}

// cartForm builds a multipart body with the given form values and
// imageCount PNG file parts.
func cartForm(t *testing.T, fields map[string]string, imageCount int) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for i := 0; i < imageCount; i++ {
		fw, err := w.CreateFormFile("images", fmt.Sprintf("photo-%d.png", i))
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(pngHeader); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestListPodsEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/cartpods", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var pods []models.PopulatedCartPod
	decodeData(t, rec, &pods)
	if len(pods) != 0 {
		t.Fatalf("got %d pods, want 0", len(pods))
	}
}

func TestCreatePodRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/cartpods", "", map[string]interface{}{"name": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndGetPod(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)

	if pod.CreatedBy != env.userID {
		t.Fatalf("createdBy = %s, want %s", pod.CreatedBy.Hex(), env.userID.Hex())
	}

	rec := env.do(t, http.MethodGet, "/cartpods/"+pod.ID.Hex(), "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestGetPodNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/cartpods/"+primitive.NewObjectID().Hex(), "", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/cartpods/not-an-id", "", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestUpdatePodRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)

	rec := env.doJSON(t, http.MethodPatch, "/cartpods/"+pod.ID.Hex(), env.token, map[string]interface{}{
		"createdBy": primitive.NewObjectID().Hex(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for forbidden field", rec.Code)
	}
}

func TestUpdatePodForbiddenForNonOwner(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)

	rec := env.doJSON(t, http.MethodPatch, "/cartpods/"+pod.ID.Hex(), env.another, map[string]interface{}{
		"name": "hijacked",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeForbidden {
		t.Fatalf("error code = %q, want %q", code, ErrCodeForbidden)
	}
}

func TestDeletePodWithCartsRejected(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)
	env.createCart(t, env.token, pod.ID)

	rec := env.do(t, http.MethodDelete, "/cartpods/"+pod.ID.Hex(), env.token, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodePodNotEmpty {
		t.Fatalf("error code = %q, want %q", code, ErrCodePodNotEmpty)
	}
}

func TestNearbyPods(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// ~100m and ~5km east of the query center.
	if _, err := env.pods.Insert(ctx, models.CartPod{Name: "near", Location: models.NewPoint(-122.6777, 45.5231)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := env.pods.Insert(ctx, models.CartPod{Name: "far", Location: models.NewPoint(-122.6125, 45.5231)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/cartpods/nearby/45.5231/-122.6765/1", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var pods []models.PopulatedCartPod
	decodeData(t, rec, &pods)
	if len(pods) != 1 || pods[0].Name != "near" {
		t.Fatalf("nearby returned %d pods, want only the near one", len(pods))
	}

	rec = env.do(t, http.MethodGet, "/cartpods/nearby/abc/-122.6765/1", "", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad latitude status = %d, want 400", rec.Code)
	}
}

func TestCreateCartAttachesToPod(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)
	cart := env.createCart(t, env.token, pod.ID)

	if cart.AverageRating != 0 {
		t.Fatalf("averageRating = %v, want 0", cart.AverageRating)
	}
	if cart.Image == "" {
		t.Fatal("cart has no primary image")
	}

	stored, err := env.pods.Get(context.Background(), pod.ID)
	if err != nil {
		t.Fatalf("pod Get: %v", err)
	}
	if !stored.HasCart(cart.ID) {
		t.Fatal("pod foodCarts missing the new cart")
	}
}

func TestCreateCartWithoutImagesRejected(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)

	body, contentType := cartForm(t, map[string]string{
		"name":       "No Pics",
		"cartPodId":  pod.ID.Hex(),
		"location":   `{"type":"Point","coordinates":[-122.4,37.7]}`,
		"foodServed": `["Tacos"]`,
	}, 0)
	rec := env.do(t, http.MethodPost, "/foodcarts", env.token, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddRatings(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)
	cart := env.createCart(t, env.token, pod.ID)

	var updated models.FoodCart
	for _, rating := range []int{5, 3, 4} {
		rec := env.doJSON(t, http.MethodPost, "/foodcarts/"+cart.ID.Hex()+"/ratings", env.another, map[string]interface{}{
			"rating": rating,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("rating status = %d, body %s", rec.Code, rec.Body.String())
		}
		decodeData(t, rec, &updated)
	}
	if updated.AverageRating != 4.0 {
		t.Fatalf("averageRating = %v, want 4.0", updated.AverageRating)
	}

	rec := env.doJSON(t, http.MethodPost, "/foodcarts/"+cart.ID.Hex()+"/ratings", env.token, map[string]interface{}{
		"rating": 9,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range rating status = %d, want 400", rec.Code)
	}
}

func TestSearchCarts(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)
	env.createCart(t, env.token, pod.ID)

	rec := env.do(t, http.MethodGet, "/foodcarts/search/tac", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var carts []models.FoodCart
	decodeData(t, rec, &carts)
	if len(carts) != 1 {
		t.Fatalf("search returned %d carts, want 1", len(carts))
	}
}

func TestDeleteCartDetachesFromPod(t *testing.T) {
	env := newTestEnv(t)
	pod := env.createPod(t, env.token)
	cart := env.createCart(t, env.token, pod.ID)

	rec := env.do(t, http.MethodDelete, "/foodcarts/"+cart.ID.Hex(), env.another, nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/foodcarts/"+cart.ID.Hex(), env.token, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d, want 204", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/foodcarts/"+cart.ID.Hex(), "", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}

	stored, err := env.pods.Get(context.Background(), pod.ID)
	if err != nil {
		t.Fatalf("pod Get: %v", err)
	}
	if stored.HasCart(cart.ID) {
		t.Fatal("deleted cart still listed in pod foodCarts")
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := cartForm(t, nil, 3)
	rec := env.do(t, http.MethodPost, "/upload", "", body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	decodeData(t, rec, &resp)
	if len(resp.URLs) != 3 {
		t.Fatalf("got %d urls, want 3", len(resp.URLs))
	}
	for _, url := range resp.URLs {
		if !strings.HasPrefix(url, "https://cdn.test/") {
			t.Fatalf("unexpected url %q", url)
		}
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, _ := w.CreateFormFile("images", "notes.txt")
	if _, err := fw.Write([]byte("plain text, not an image at all")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/upload", "", &buf, w.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
