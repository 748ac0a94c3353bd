package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogfront/pkg/cache"
)

func (e *testEnv) postRevalidate(token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/revalidate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)
	return w
}

func TestRevalidateRejectsWrongToken(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)

	for _, body := range []string{
		`{"event":"entry.update","model":"blog","entry":{"slug":"abc"}}`,
		`not even json`,
		``,
	} {
		w := env.postRevalidate("wrong", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Invalid token"}`, w.Body.String())
	}
}

func TestRevalidateRejectsMissingHeader(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)

	w := env.postRevalidate("", `{"event":"entry.update","model":"blog"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRevalidateRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)

	w := env.postRevalidate("s3cret", `{"event":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Bad request"}`, w.Body.String())
}

func TestRevalidateBlogUpdateInvalidatesPostTags(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)
	ctx := context.Background()

	env.store.Set(ctx, "/", "text/html", "listing", []string{cache.TagPosts})
	env.store.Set(ctx, "/blog/abc", "text/html", "abc", []string{cache.TagPosts, cache.PostTag("abc")})
	env.store.Set(ctx, "/category/go", "text/html", "go", []string{cache.TagCategories})

	w := env.postRevalidate("s3cret", `{"event":"entry.update","model":"blog","entry":{"slug":"abc"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Revalidated bool  `json:"revalidated"`
		Now         int64 `json:"now"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Revalidated)
	assert.Positive(t, resp.Now)

	_, ok := env.store.Get(ctx, "/")
	assert.False(t, ok, "generic posts tag invalidated")
	_, ok = env.store.Get(ctx, "/blog/abc")
	assert.False(t, ok, "slug-specific tag invalidated")
	_, ok = env.store.Get(ctx, "/category/go")
	assert.True(t, ok, "category cache untouched")
}

func TestRevalidateCategoryUpdateInvalidatesCategoryTags(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)
	ctx := context.Background()

	env.store.Set(ctx, "/category/go", "text/html", "go", []string{cache.TagCategories, cache.CategoryTag("go")})
	env.store.Set(ctx, "/", "text/html", "listing", []string{cache.TagPosts})

	w := env.postRevalidate("s3cret", `{"event":"entry.publish","model":"category","entry":{"slug":"go"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := env.store.Get(ctx, "/category/go")
	assert.False(t, ok)
	_, ok = env.store.Get(ctx, "/")
	assert.True(t, ok)
}

func TestRevalidateIgnoresUnknownModelAndEvent(t *testing.T) {
	env := newTestEnv(t, newFakeCMS(nil, nil), true)
	ctx := context.Background()

	env.store.Set(ctx, "/", "text/html", "listing", []string{cache.TagPosts})

	for _, body := range []string{
		`{"event":"entry.update","model":"author","entry":{"slug":"x"}}`,
		`{"event":"trigger-test","model":"blog"}`,
	} {
		w := env.postRevalidate("s3cret", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"revalidated":true`)
	}

	_, ok := env.store.Get(ctx, "/")
	assert.True(t, ok, "no-op events leave the cache alone")
}

func TestListingCacheRefreshAfterWebhook(t *testing.T) {
	fake := newFakeCMS(makePosts(3), someCategories())
	env := newTestEnv(t, fake, true)

	require.Equal(t, http.StatusOK, env.get("/").Code)
	fetchesAfterFirst := len(fake.blogQueries)

	// Cached: no new backend calls.
	require.Equal(t, http.StatusOK, env.get("/").Code)
	assert.Equal(t, fetchesAfterFirst, len(fake.blogQueries))

	w := env.postRevalidate("s3cret", `{"event":"entry.create","model":"blog","entry":{"slug":"post-9"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Invalidated: the next render hits the backend again.
	require.Equal(t, http.StatusOK, env.get("/").Code)
	assert.Greater(t, len(fake.blogQueries), fetchesAfterFirst)
}
