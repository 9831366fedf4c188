// Package adminserver implements SPEC_FULL.md §4.8's read-only admin HTTP
// surface over one or more replication.Replica instances: a status
// endpoint and a parameter-store dump, nothing that can mutate a replica.
// It follows the teacher's RESTServer shape (server/routes.go): public
// configuration fields, a Run that blocks serving, a Stop that drains
// cleanly.
package adminserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/facebookgo/httpdown"
	"github.com/julienschmidt/httprouter"

	"github.com/ndlib/dbreplicate/replication"
)

// AdminServer holds the configuration for a read-only replication status
// server. Create it with New, add replicas with Register, then call Run.
type AdminServer struct {
	PortNumber string

	mu       sync.RWMutex
	replicas map[string]*replication.Replica

	server httpdown.Server
}

// New returns an AdminServer with no replicas registered yet.
func New(portNumber string) *AdminServer {
	return &AdminServer{PortNumber: portNumber, replicas: make(map[string]*replication.Replica)}
}

// Register makes name's status and parameters visible at /replicas/:name.
func (s *AdminServer) Register(name string, r *replication.Replica) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replicas[name] = r
}

// Run starts serving and blocks until Stop is called or the listener fails.
func (s *AdminServer) Run() error {
	log.Println("Starting replication admin server on", s.PortNumber)
	h := httpdown.HTTP{}
	server, err := h.ListenAndServe(&http.Server{
		Addr:    ":" + s.PortNumber,
		Handler: s.addRoutes(),
	})
	if err != nil {
		return err
	}
	s.server = server
	return s.server.Wait()
}

// Stop closes the listening socket and waits for in-flight requests.
func (s *AdminServer) Stop() error {
	return s.server.Stop()
}

func (s *AdminServer) addRoutes() http.Handler {
	r := httprouter.New()
	r.GET("/replicas", s.listReplicasHandler)
	r.GET("/replicas/:name/status", s.statusHandler)
	r.GET("/replicas/:name/params", s.paramsHandler)
	return r
}

func (s *AdminServer) lookup(name string) (*replication.Replica, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.replicas[name]
	return r, ok
}

func (s *AdminServer) listReplicasHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.RLock()
	names := make([]string, 0, len(s.replicas))
	for name := range s.replicas {
		names = append(names, name)
	}
	s.mu.RUnlock()

	writeJSON(w, names)
}

func (s *AdminServer) statusHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	replica, ok := s.lookup(ps.ByName("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, replica.Status())
}

func (s *AdminServer) paramsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	replica, ok := s.lookup(ps.ByName("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, replica.Params().Snapshot())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		log.Printf("adminserver: encode response: %s", err)
	}
}
