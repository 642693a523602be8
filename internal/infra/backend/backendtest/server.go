// Package backendtest runs an in-memory content API for tests. It speaks the
// same envelope, routes and multipart format as the real backend.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Record is a stored document.
type Record = map[string]any

// Account is a user known to the fake auth endpoints.
type Account struct {
	Password string
	Token    string
	User     Record
}

// Server is a fake content API.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]Record
	accounts    map[string]Account
	hits        map[string]int
	failures    map[string]int
	uploads     map[string]string
	auth        map[string][]string
	lastAuth    string
	holds       map[string]chan struct{}
	parked      map[string]int
}

// New starts a server with the standard collections. The caller must Close it.
func New() *Server {
	s := &Server{
		collections: map[string][]Record{
			"blog":    {},
			"client":  {},
			"team":    {},
			"work":    {},
			"journey": {},
		},
		accounts: make(map[string]Account),
		hits:     make(map[string]int),
		failures: make(map[string]int),
		uploads:  make(map[string]string),
		auth:     make(map[string][]string),
		holds:    make(map[string]chan struct{}),
		parked:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/signup", s.signup)
	mux.HandleFunc("GET /{collection}", s.list)
	mux.HandleFunc("GET /{collection}/{id}", s.get)
	mux.HandleFunc("POST /{collection}", s.create)
	mux.HandleFunc("PUT /{collection}/{id}", s.update)
	mux.HandleFunc("DELETE /{collection}/{id}", s.remove)

	s.Server = httptest.NewServer(s.track(mux))

	return s
}

// Seed appends records to a collection, assigning ids where missing.
func (s *Server) Seed(collection string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, ok := r["_id"]; !ok {
			r["_id"] = uuid.NewString()
		}
		s.collections[collection] = append(s.collections[collection], r)
	}
}

// Records returns a copy of a collection.
func (s *Server) Records(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.collections[collection]))
	copy(out, s.collections[collection])

	return out
}

// AddAccount registers credentials for the auth endpoints.
func (s *Server) AddAccount(email string, account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[email] = account
}

// Hits returns how many requests matched "METHOD /path".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[route]
}

// FailNext makes the next n requests to "METHOD /path" answer 500.
func (s *Server) FailNext(route string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] += n
}

// Upload returns the filename uploaded with the record id, if any.
func (s *Server) Upload(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.uploads[id]
}

// LastAuthorization returns the Authorization header of the latest request.
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastAuth
}

// Authorizations returns the Authorization header of every request to
// "METHOD /path", oldest first.
func (s *Server) Authorizations(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.auth[route]...)
}

// Hold parks requests to "METHOD /path" after they have been answered and
// before the answer is sent, until release is called. A held request reports
// the data as it was when the request arrived.
func (s *Server) Hold(route string) (release func()) {
	gate := make(chan struct{})

	s.mu.Lock()
	s.holds[route] = gate
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == gate {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Parked returns how many requests to "METHOD /path" have been answered and
// parked by Hold.
func (s *Server) Parked(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.parked[route]
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		authorization := r.Header.Get("Authorization")

		s.mu.Lock()
		s.hits[route]++
		s.auth[route] = append(s.auth[route], authorization)
		s.lastAuth = authorization
		fail := s.failures[route] > 0
		if fail {
			s.failures[route]--
		}
		gate := s.holds[route]
		s.mu.Unlock()

		if fail {
			writeError(w, http.StatusInternalServerError, "injected failure")

			return
		}

		if gate == nil {
			next.ServeHTTP(w, r)

			return
		}

		held := httptest.NewRecorder()
		next.ServeHTTP(held, r)

		s.mu.Lock()
		s.parked[route]++
		s.mu.Unlock()

		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}

		for k, v := range held.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(held.Code)
		_, _ = w.Write(held.Body.Bytes())
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	records, ok := s.collections[r.PathValue("collection")]
	out := append([]Record{}, records...)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "unknown collection")

		return
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if collection == "journey" {
		switch id {
		case "experience", "skill", "education":
			out := []Record{}
			for _, rec := range s.collections[collection] {
				if rec["type"] == id {
					out = append(out, rec)
				}
			}
			writeData(w, http.StatusOK, out)

			return
		}
	}

	if i := s.indexLocked(collection, id); i >= 0 {
		writeData(w, http.StatusOK, s.collections[collection][i])

		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	rec, filename, err := decodeRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		writeError(w, http.StatusNotFound, "unknown collection")

		return
	}

	id := uuid.NewString()
	rec["_id"] = id
	if filename != "" {
		s.uploads[id] = filename
		rec["image"] = "/uploads/" + filename
	}
	s.collections[collection] = append(s.collections[collection], rec)

	writeData(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	rec, filename, err := decodeRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(collection, id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "not found")

		return
	}

	current := s.collections[collection][i]
	for k, v := range rec {
		current[k] = v
	}
	current["_id"] = id
	if filename != "" {
		s.uploads[id] = filename
		current["image"] = "/uploads/" + filename
	}

	writeData(w, http.StatusOK, current)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(collection, id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "not found")

		return
	}
	records := s.collections[collection]
	s.collections[collection] = append(records[:i:i], records[i+1:]...)

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")

		return
	}

	s.mu.Lock()
	account, ok := s.accounts[in.Email]
	s.mu.Unlock()

	if !ok || account.Password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")

		return
	}
	writeData(w, http.StatusOK, map[string]any{"token": account.Token, "user": account.User})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[in.Email]; exists {
		writeError(w, http.StatusConflict, "Email already registered")

		return
	}
	user := Record{"_id": uuid.NewString(), "name": in.Name, "email": in.Email, "role": "user"}
	s.accounts[in.Email] = Account{Password: in.Password, Token: "signup-" + uuid.NewString(), User: user}

	writeData(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) indexLocked(collection, id string) int {
	for i, rec := range s.collections[collection] {
		if rec["_id"] == id {
			return i
		}
	}

	return -1
}

func decodeRecord(r *http.Request) (Record, string, error) {
	rec := Record{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return nil, "", err
		}
		if data := r.FormValue("data"); data != "" {
			if err := json.Unmarshal([]byte(data), &rec); err != nil {
				return nil, "", err
			}
		}

		var filename string
		if file, header, err := r.FormFile("file"); err == nil {
			filename = header.Filename
			_ = file.Close()
		}

		return rec, filename, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return nil, "", err
	}

	return rec, "", nil
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
