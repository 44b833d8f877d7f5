package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/search"
)

// APIResponse is the envelope for every JSON endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type postRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	AuthorID string `json:"author_id"`
}

type commentRequest struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

type statusRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.reader.ListPosts(r.Context())
	if err != nil {
		sendError(w, err, http.StatusInternalServerError)
		return
	}
	sendJSON(w, APIResponse{Success: true, Data: posts})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.reader.PostWithComments(r.Context(), id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}
	sendJSON(w, APIResponse{Success: true, Data: view})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.AuthorID == "" {
		sendError(w, errors.New("title and author_id are required"), http.StatusBadRequest)
		return
	}

	post := content.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Body:      req.Body,
		AuthorID:  req.AuthorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Posts().Create(r.Context(), post); err != nil {
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	s.hook.OnPostWritten(post)
	s.reader.InvalidateListing()
	s.broadcast(Event{Type: "post_created", PostID: post.ID, At: time.Now().UTC()})

	sendJSON(w, APIResponse{Success: true, Data: post})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}

	existing, err := s.store.Posts().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	existing.Title = req.Title
	existing.Subtitle = req.Subtitle
	existing.Body = req.Body
	if err := s.store.Posts().Update(r.Context(), existing); err != nil {
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	s.hook.OnPostWritten(existing)
	s.reader.InvalidatePost(id)
	s.reader.InvalidateListing()
	s.broadcast(Event{Type: "post_updated", PostID: id, At: time.Now().UTC()})

	sendJSON(w, APIResponse{Success: true, Data: existing})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.Posts().Delete(r.Context(), id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	s.hook.OnPostDeleted(id)
	s.reader.InvalidatePost(id)
	s.reader.InvalidateListing()
	s.broadcast(Event{Type: "post_deleted", PostID: id, At: time.Now().UTC()})

	sendJSON(w, APIResponse{Success: true})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" || req.AuthorID == "" {
		sendError(w, errors.New("body and author_id are required"), http.StatusBadRequest)
		return
	}

	if _, err := s.store.Posts().Get(r.Context(), postID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	comment := content.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  req.AuthorID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Comments().Create(r.Context(), comment); err != nil {
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	// A new comment only changes that post's detail view, not the listing.
	s.reader.InvalidatePost(postID)
	s.broadcast(Event{Type: "comment_created", PostID: postID, At: time.Now().UTC()})

	sendJSON(w, APIResponse{Success: true, Data: comment})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	postID := r.URL.Query().Get("post_id")

	if err := s.store.Comments().Delete(r.Context(), id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	if postID != "" {
		s.reader.InvalidatePost(postID)
		s.broadcast(Event{Type: "comment_deleted", PostID: postID, At: time.Now().UTC()})
	}

	sendJSON(w, APIResponse{Success: true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}

	results, err := s.engine.Search(r.Context(), req.Query)
	if err != nil {
		var serr search.SearchError
		if errors.As(err, &serr) {
			sendError(w, serr, http.StatusBadRequest)
			return
		}
		sendError(w, search.ErrUnavailable, http.StatusInternalServerError)
		return
	}

	sendJSON(w, APIResponse{Success: true, Data: results})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		sendError(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}

	user := content.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Active:    true,
		Admin:     req.Admin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Users().Create(r.Context(), user); err != nil {
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	sendJSON(w, APIResponse{Success: true, Data: user})
}

func (s *Server) handleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}

	if err := s.store.Users().SetActive(r.Context(), id, req.Active); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			sendError(w, err, http.StatusNotFound)
			return
		}
		sendError(w, err, http.StatusInternalServerError)
		return
	}

	// Toggling a principal changes the visibility of everything they ever
	// wrote, including comments on other authors' posts. There is no cheap
	// way to enumerate the affected keys, so drop the whole cache.
	s.reader.Reset()
	s.logger.Info("user status changed, cache cleared", map[string]interface{}{
		"user_id": id,
		"active":  req.Active,
	})
	s.broadcast(Event{Type: "cache_cleared", At: time.Now().UTC()})

	sendJSON(w, APIResponse{Success: true})
}

func sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()})
}
