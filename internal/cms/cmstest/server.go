// Package cmstest provides an in-memory WordPress REST API for tests.
//
// The server keeps a slug index per collection, so upsert behavior can be
// observed across calls, and individual routes can be overridden to return
// arbitrary responses such as an HTML challenge page with a 201 status.
package cmstest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Route identifies an endpoint that can be overridden.
type Route string

// Overridable routes.
const (
	RouteLookup Route = "lookup"
	RouteCreate Route = "create"
	RouteUpdate Route = "update"
	RouteUpload Route = "upload"
	RouteTags   Route = "tags"
)

// Resource is a stored post or page.
type Resource struct {
	ID            int64   `json:"id"`
	Slug          string  `json:"slug"`
	Link          string  `json:"link"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Status        string  `json:"status"`
	Tags          []int64 `json:"tags,omitempty"`
	FeaturedMedia int64   `json:"featured_media,omitempty"`
}

// Media is a stored upload.
type Media struct {
	ID                 int64
	ContentType        string
	ContentDisposition string
	Size               int
}

type override struct {
	status      int
	contentType string
	body        string
}

// Server is a fake WordPress site.
type Server struct {
	*httptest.Server

	User     string
	Password string

	mu        sync.Mutex
	nextID    int64
	resources map[string]map[string]*Resource // collection -> slug -> resource
	media     []Media
	tags      map[string]int64 // slug -> id
	overrides map[Route]override
	requests  []string
}

// NewServer starts a fake site that accepts the given credentials.
// Callers must Close it.
func NewServer(user, password string) *Server {
	s := &Server{
		User:      user,
		Password:  password,
		nextID:    100,
		resources: map[string]map[string]*Resource{"posts": {}, "pages": {}},
		tags:      map[string]int64{},
		overrides: map[Route]override{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /wp-json/wp/v2/tags", s.handleTagLookup)
	mux.HandleFunc("POST /wp-json/wp/v2/tags", s.handleTagCreate)
	mux.HandleFunc("POST /wp-json/wp/v2/media", s.handleUpload)
	mux.HandleFunc("GET /wp-json/wp/v2/{collection}", s.handleLookup)
	mux.HandleFunc("POST /wp-json/wp/v2/{collection}", s.handleCreate)
	mux.HandleFunc("POST /wp-json/wp/v2/{collection}/{id}", s.handleUpdate)

	s.Server = httptest.NewServer(s.authenticate(mux))
	return s
}

// Override makes route answer with a fixed response until cleared.
func (s *Server) Override(route Route, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = override{status: status, contentType: contentType, body: body}
}

// ClearOverride restores the default behavior of route.
func (s *Server) ClearOverride(route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, route)
}

// Count returns the number of resources in collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources[collection])
}

// Get returns a copy of the resource with slug in collection.
func (s *Server) Get(collection, slug string) (Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[collection][slug]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Put seeds a resource and returns its id.
func (s *Server) Put(collection string, r Resource) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	r.Link = s.link(collection, r.Slug, r.ID)
	if r.Status == "" {
		r.Status = "publish"
	}
	if s.resources[collection] == nil {
		s.resources[collection] = map[string]*Resource{}
	}
	s.resources[collection][r.Slug] = &r
	return r.ID
}

// Media returns the uploads received so far.
func (s *Server) Media() []Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Media(nil), s.media...)
}

// TagIDs returns the ids of the tags created so far, keyed by slug.
func (s *Server) TagIDs() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.tags))
	for k, v := range s.tags {
		out[k] = v
	}
	return out
}

// Requests returns "METHOD path" for every authenticated request.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.User || pass != s.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"code":    "rest_not_logged_in",
				"message": "You are not currently logged in.",
			})
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// overridden writes the override for route, if any.
func (s *Server) overridden(w http.ResponseWriter, route Route) bool {
	s.mu.Lock()
	o, ok := s.overrides[route]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if o.contentType != "" {
		w.Header().Set("Content-Type", o.contentType)
	}
	w.WriteHeader(o.status)
	_, _ = io.WriteString(w, o.body)
	return true
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := r.PathValue("collection")
	if c != "posts" && c != "pages" {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": "rest_no_route"})
		return "", false
	}
	return c, true
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteLookup) {
		return
	}
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	slug := query.Get("slug")
	statuses := listStatuses(query.Get("status"))

	s.mu.Lock()
	matches := []Resource{}
	if res, found := s.resources[collection][slug]; found && statuses(res.Status) {
		matches = append(matches, *res)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, matches)
}

// listStatuses mirrors the status filter of the WordPress list endpoints:
// only published resources without a status parameter, everything for
// "any", otherwise the comma separated set.
func listStatuses(param string) func(string) bool {
	switch param {
	case "":
		param = "publish"
	case "any":
		return func(string) bool { return true }
	}
	allowed := map[string]bool{}
	for _, st := range strings.Split(param, ",") {
		allowed[strings.TrimSpace(st)] = true
	}
	return func(status string) bool { return allowed[status] }
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteCreate) {
		return
	}
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}
	var in Resource
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "rest_invalid_json"})
		return
	}

	s.mu.Lock()
	if _, exists := s.resources[collection][in.Slug]; exists {
		// WordPress would suffix the slug; the fake rejects it so tests see duplicates.
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{"code": "duplicate_slug"})
		return
	}
	s.nextID++
	in.ID = s.nextID
	in.Link = s.link(collection, in.Slug, in.ID)
	if in.Status == "" {
		in.Status = "draft"
	}
	stored := in
	s.resources[collection][in.Slug] = &stored
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteUpdate) {
		return
	}
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": "rest_post_invalid_id"})
		return
	}
	var in Resource
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "rest_invalid_json"})
		return
	}

	s.mu.Lock()
	var target *Resource
	for _, res := range s.resources[collection] {
		if res.ID == id {
			target = res
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"code": "rest_post_invalid_id"})
		return
	}
	target.Title = in.Title
	target.Content = in.Content
	target.Status = in.Status
	target.Tags = in.Tags
	target.FeaturedMedia = in.FeaturedMedia
	stored := *target
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteUpload) {
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "rest_upload_no_data"})
		return
	}
	disposition := r.Header.Get("Content-Disposition")
	if !strings.Contains(disposition, "filename=") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "rest_upload_no_content_disposition"})
		return
	}

	s.mu.Lock()
	s.nextID++
	m := Media{
		ID:                 s.nextID,
		ContentType:        r.Header.Get("Content-Type"),
		ContentDisposition: disposition,
		Size:               len(data),
	}
	s.media = append(s.media, m)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         m.ID,
		"source_url": fmt.Sprintf("%s/wp-content/uploads/%d", s.URL, m.ID),
	})
}

func (s *Server) handleTagLookup(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteTags) {
		return
	}
	slug := r.URL.Query().Get("slug")
	s.mu.Lock()
	id, ok := s.tags[slug]
	s.mu.Unlock()

	matches := []map[string]any{}
	if ok {
		matches = append(matches, map[string]any{"id": id, "slug": slug})
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	if s.overridden(w, RouteTags) {
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "rest_missing_callback_param"})
		return
	}
	slug := strings.ToLower(strings.Join(strings.Fields(in.Name), "-"))

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.tags[slug] = id
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": in.Name, "slug": slug})
}

// link must be called with s.mu held or before the server is shared.
func (s *Server) link(collection, slug string, id int64) string {
	if collection == "pages" {
		return fmt.Sprintf("%s/%s/", s.URL, slug)
	}
	return fmt.Sprintf("%s/?p=%d", s.URL, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
