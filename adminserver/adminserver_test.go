package adminserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndlib/dbreplicate/replication"
	"github.com/ndlib/dbreplicate/replication/memdb"
)

func TestStatusAndParamsEndpoints(t *testing.T) {
	dir := t.TempDir()
	replica, err := replication.OpenReplica(dir, memdb.New())
	if err != nil {
		t.Fatalf("OpenReplica: %s", err)
	}
	defer replica.Close()

	s := New("0")
	s.Register("a", replica)
	ts := httptest.NewServer(s.addRoutes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/replicas")
	if err != nil {
		t.Fatalf("GET /replicas: %s", err)
	}
	defer resp.Body.Close()
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		t.Fatalf("decode: %s", err)
	}
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("expected [\"a\"], got %v", names)
	}

	resp2, err := http.Get(ts.URL + "/replicas/a/status")
	if err != nil {
		t.Fatalf("GET status: %s", err)
	}
	defer resp2.Body.Close()
	var status replication.ReplicaStatus
	if err := json.NewDecoder(resp2.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %s", err)
	}

	respParams, err := http.Get(ts.URL + "/replicas/a/params")
	if err != nil {
		t.Fatalf("GET params: %s", err)
	}
	defer respParams.Body.Close()
	var params map[string]string
	if err := json.NewDecoder(respParams.Body).Decode(&params); err != nil {
		t.Fatalf("decode params: %s", err)
	}
	if len(params) != 0 {
		t.Fatalf("expected no parameters on a fresh replica, got %v", params)
	}

	resp3, err := http.Get(ts.URL + "/replicas/missing/status")
	if err != nil {
		t.Fatalf("GET missing status: %s", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown replica, got %d", resp3.StatusCode)
	}
}
