package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
	"github.com/lanternpress/lantern/pkg/readcache"
	"github.com/lanternpress/lantern/pkg/search"
	"github.com/lanternpress/lantern/pkg/storage/memory"
)

func testServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	logger := logging.NewLogger(&logging.Config{Level: logging.ErrorLevel, Output: io.Discard})

	cache := readcache.New(readcache.Options{Enabled: true, TTL: time.Minute})
	reader := readcache.NewReader(cache, store, logger)

	index, err := search.NewPostIndex("", 100)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { index.Close() })

	hook := search.NewIndexHook(index, logger)
	engine := search.NewEngine(index, store.Posts(), store.Users(), logger)

	return NewServer(store, reader, engine, hook, logger, 0), store
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
	}
	return rec, resp
}

func seedUser(t *testing.T, store *memory.Store, id string, active bool) {
	t.Helper()
	err := store.Users().Create(t.Context(), content.User{ID: id, Name: id, Active: active})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndFetchPost(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)

	rec, resp := doJSON(t, server, "POST", "/api/posts", postRequest{
		Title:    "First post",
		Subtitle: "A beginning",
		Body:     "Hello world.",
		AuthorID: "alice",
	})
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("create failed: %d %s", rec.Code, resp.Error)
	}

	var created content.Post
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created post has no ID")
	}

	rec, resp = doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch returned %d", rec.Code)
	}

	var view readcache.PostView
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatal(err)
	}
	if view.Post.Title != "First post" {
		t.Errorf("got title %q", view.Post.Title)
	}
}

func TestCreatePostValidation(t *testing.T) {
	server, _ := testServer(t)

	rec, _ := doJSON(t, server, "POST", "/api/posts", postRequest{Body: "no title"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400 for missing title", rec.Code)
	}
}

func TestListingReflectsNewPostDespiteCache(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)

	// Prime the cached listing.
	rec, resp := doJSON(t, server, "GET", "/api/posts", nil)
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}

	doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Fresh", AuthorID: "alice"})

	_, resp = doJSON(t, server, "GET", "/api/posts", nil)
	var posts []content.Post
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Title != "Fresh" {
		t.Errorf("listing %v, want the fresh post (listing must be invalidated on create)", posts)
	}
}

func TestCommentInvalidatesPostView(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)
	seedUser(t, store, "bob", true)

	_, resp := doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Discussed", AuthorID: "alice"})
	var created content.Post
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}

	// Prime the cached detail view.
	doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)

	rec, _ := doJSON(t, server, "POST", fmt.Sprintf("/api/posts/%s/comments", created.ID), commentRequest{
		AuthorID: "bob",
		Body:     "Good read.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("comment create returned %d", rec.Code)
	}

	_, resp = doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)
	var view readcache.PostView
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Comments) != 1 {
		t.Errorf("view has %d comments, want 1 (detail view must be invalidated on comment)", len(view.Comments))
	}
}

func TestCommentOnMissingPost(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "bob", true)

	rec, _ := doJSON(t, server, "POST", "/api/posts/nope/comments", commentRequest{AuthorID: "bob", Body: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)

	doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Sailing the ocean", AuthorID: "alice"})
	doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Desert hiking", AuthorID: "alice"})

	rec, resp := doJSON(t, server, "POST", "/api/search", searchRequest{Query: "ocean"})
	if rec.Code != http.StatusOK {
		t.Fatalf("search returned %d: %s", rec.Code, resp.Error)
	}

	var results []search.Result
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Post.Title != "Sailing the ocean" {
		t.Errorf("results %v, want only the ocean post", results)
	}
}

func TestSearchRejectsSuspiciousQuery(t *testing.T) {
	server, _ := testServer(t)

	rec, resp := doJSON(t, server, "POST", "/api/search", searchRequest{Query: "<script>alert(1)</script>"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
	if resp.Error != search.ErrInvalidQuery.Message {
		t.Errorf("error %q, want the generic invalid-query message", resp.Error)
	}
}

func TestUserStatusTogglesVisibilityEverywhere(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)

	_, resp := doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Soon hidden", AuthorID: "alice"})
	var created content.Post
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}

	// Prime both cached read paths.
	doJSON(t, server, "GET", "/api/posts", nil)
	doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)

	rec, _ := doJSON(t, server, "POST", "/api/admin/users/alice/status", statusRequest{Active: false})
	if rec.Code != http.StatusOK {
		t.Fatalf("status change returned %d", rec.Code)
	}

	_, resp = doJSON(t, server, "GET", "/api/posts", nil)
	var posts []content.Post
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 0 {
		t.Errorf("listing still shows %d posts after deactivation", len(posts))
	}

	rec, _ = doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("detail view returned %d after deactivation, want 404", rec.Code)
	}
}

func TestDeletePost(t *testing.T) {
	server, store := testServer(t)
	seedUser(t, store, "alice", true)

	_, resp := doJSON(t, server, "POST", "/api/posts", postRequest{Title: "Short lived", AuthorID: "alice"})
	var created content.Post
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}

	rec, _ := doJSON(t, server, "DELETE", "/api/posts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec, _ = doJSON(t, server, "GET", "/api/posts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", rec.Code)
	}

	// The deleted post must also leave the search results.
	_, resp = doJSON(t, server, "POST", "/api/search", searchRequest{Query: "lived"})
	var results []search.Result
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deleted post still in search results: %v", results)
	}
}

func TestCreateUser(t *testing.T) {
	server, _ := testServer(t)

	rec, resp := doJSON(t, server, "POST", "/api/users", userRequest{Name: "Dana", Email: "dana@example.com"})
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("create user failed: %d %s", rec.Code, resp.Error)
	}

	var user content.User
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &user); err != nil {
		t.Fatal(err)
	}
	if !user.Active {
		t.Error("new users should start active")
	}
}
