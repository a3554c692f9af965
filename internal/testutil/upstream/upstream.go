// Package upstream is an in-memory stand-in for the back-office REST service,
// used by tests. It serves the collection convention and POST /auth/login under
// the /api prefix and issues HS256 tokens for bcrypt-checked users.
package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/mboutique/backoffice/internal/core/domain"
)

const signingSecret = "upstream-test-secret"

// Request is a snapshot of a call received by the server.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

type account struct {
	principal    domain.Principal
	passwordHash string
}

// Server is a running fake upstream.
type Server struct {
	*httptest.Server
	TokenTTL time.Duration

	mu          sync.Mutex
	accounts    map[string]account
	collections map[string]*collection
	requests    []Request
}

type collection struct {
	order   []string
	records map[string]map[string]any
}

// New starts a server. Callers must Close it.
func New() *Server {
	s := &Server{
		TokenTTL:    time.Hour,
		accounts:    make(map[string]account),
		collections: make(map[string]*collection),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(s.record)

	api := e.Group("/api")
	api.POST("/auth/login", s.login)
	api.GET("/:collection", s.list)
	api.GET("/:collection/paginated", s.paginated)
	api.GET("/:collection/search", s.search)
	api.GET("/:collection/:id", s.get)
	api.POST("/:collection", s.create)
	api.PUT("/:collection/:id", s.update)
	api.DELETE("/:collection/:id", s.delete)

	s.Server = httptest.NewServer(e)
	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// AddUser registers an account able to log in.
func (s *Server) AddUser(p domain.Principal, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[p.Email] = account{principal: p, passwordHash: string(hash)}
}

// Seed inserts a record and returns its assigned id.
func (s *Server) Seed(coll string, rec map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(coll, rec)
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets the calls received so far.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// LastRequest returns the most recent call.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// IssueToken signs a token for p expiring at exp.
func IssueToken(p domain.Principal, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub":   p.ID,
		"email": p.Email,
		"role":  string(p.Role),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        req.Method,
			Path:          req.URL.Path,
			Query:         req.URL.Query(),
			Authorization: req.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) login(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(creds.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Identifiants invalides"})
	}

	p := acc.principal
	return c.JSON(http.StatusOK, domain.Session{
		Token:     IssueToken(p, time.Now().Add(s.TokenTTL)),
		Principal: &p,
	})
}

func (s *Server) list(c echo.Context) error {
	s.mu.Lock()
	items := s.sorted(c.Param("collection"), c.QueryParam("sort"), c.QueryParam("order"))
	s.mu.Unlock()
	items = window(items, c.QueryParams())
	return c.JSON(http.StatusOK, items)
}

func (s *Server) paginated(c echo.Context) error {
	s.mu.Lock()
	items := s.sorted(c.Param("collection"), c.QueryParam("sort"), c.QueryParam("order"))
	s.mu.Unlock()
	total := len(items)
	page, limit := 1, 10
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	return c.JSON(http.StatusOK, map[string]any{
		"data":       items[from:to],
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + limit - 1) / limit,
	})
}

func (s *Server) search(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))
	s.mu.Lock()
	items := s.sorted(c.Param("collection"), c.QueryParam("sort"), c.QueryParam("order"))
	s.mu.Unlock()
	matched := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		for _, v := range rec {
			if str, ok := v.(string); ok && strings.Contains(strings.ToLower(str), q) {
				matched = append(matched, rec)
				break
			}
		}
	}
	matched = window(matched, c.QueryParams())
	return c.JSON(http.StatusOK, matched)
}

func (s *Server) get(c echo.Context) error {
	s.mu.Lock()
	rec, ok := s.lookup(c.Param("collection"), c.Param("id"))
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Introuvable"})
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) create(c echo.Context) error {
	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	s.mu.Lock()
	id := s.insert(c.Param("collection"), body)
	rec, _ := s.lookup(c.Param("collection"), id)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) update(c echo.Context) error {
	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[c.Param("collection")]
	if coll == nil || coll.records[c.Param("id")] == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Introuvable"})
	}
	rec := coll.records[c.Param("id")]
	for k, v := range body {
		if k == "_id" || k == "createdAt" {
			continue
		}
		rec[k] = v
	}
	rec["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
	out, _ := s.lookup(c.Param("collection"), c.Param("id"))
	return c.JSON(http.StatusOK, out)
}

func (s *Server) delete(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[c.Param("collection")]
	id := c.Param("id")
	if coll == nil || coll.records[id] == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Introuvable"})
	}
	delete(coll.records, id)
	for i, v := range coll.order {
		if v == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// insert must be called with mu held.
func (s *Server) insert(name string, rec map[string]any) string {
	coll := s.collections[name]
	if coll == nil {
		coll = &collection{records: make(map[string]map[string]any)}
		s.collections[name] = coll
	}
	id := primitive.NewObjectID().Hex()
	stored := make(map[string]any, len(rec)+2)
	for k, v := range rec {
		stored[k] = v
	}
	stored["_id"] = id
	if _, ok := stored["createdAt"]; !ok {
		stored["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	coll.records[id] = stored
	coll.order = append(coll.order, id)
	return id
}

// lookup must be called with mu held.
func (s *Server) lookup(name, id string) (map[string]any, bool) {
	coll := s.collections[name]
	if coll == nil {
		return nil, false
	}
	rec, ok := coll.records[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, true
}

// sorted must be called with mu held.
func (s *Server) sorted(name, key, order string) []map[string]any {
	coll := s.collections[name]
	if coll == nil {
		return []map[string]any{}
	}
	items := make([]map[string]any, 0, len(coll.order))
	for _, id := range coll.order {
		rec, _ := s.lookup(name, id)
		items = append(items, rec)
	}
	if key != "" {
		sort.SliceStable(items, func(i, j int) bool {
			a, b := fmt.Sprint(items[i][key]), fmt.Sprint(items[j][key])
			if order == "desc" {
				return a > b
			}
			return a < b
		})
	}
	return items
}

// window applies page/limit when a limit is given.
func window(items []map[string]any, q url.Values) []map[string]any {
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		return items
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	from := min((page-1)*limit, len(items))
	to := min(from+limit, len(items))
	return items[from:to]
}
