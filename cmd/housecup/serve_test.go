package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/observability"
	"github.com/xraph/housecup/points"
)

func newTestApp(t *testing.T) (*app, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

	cfg := Config{
		DataFile:     filepath.Join(t.TempDir(), "points.json"),
		Houses:       []string{"A", "B"},
		Top:          10,
		RequireHouse: true,
		LogLevel:     "error",
	}
	a, err := startApp(context.Background(), cfg, io.Discard, housecup.WithPlugin(metrics))
	if err != nil {
		t.Fatalf("startApp: %v", err)
	}
	t.Cleanup(a.close)
	return a, reg
}

func TestRouterLiveness(t *testing.T) {
	a, reg := newTestApp(t)
	srv := httptest.NewServer(newRouter(a, reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}
}

func TestRouterStandingsAndMetrics(t *testing.T) {
	ctx := context.Background()
	a, reg := newTestApp(t)
	if _, err := a.handler.Points(ctx, "7", member("1", []string{"B"})); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(newRouter(a, reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/standings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got standingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != 1 || got.Members[0].Points != 7 {
		t.Errorf("members = %+v", got.Members)
	}
	if len(got.Houses) != 2 || got.Houses[0].House != "B" {
		t.Errorf("houses = %+v", got.Houses)
	}

	mresp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer mresp.Body.Close()
	body, _ := io.ReadAll(mresp.Body)
	if !strings.Contains(string(body), "housecup_points_awarded_total 1") {
		t.Errorf("metrics missing the award counter:\n%s", body)
	}
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("POST %s: decode reply: %v", url, err)
	}
	return resp.StatusCode, got.Reply
}

func getStandings(t *testing.T, url string) standingsResponse {
	t.Helper()
	resp, err := http.Get(url + "/standings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got standingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	return got
}

func TestRouterAwardUpdatesStandings(t *testing.T) {
	a, reg := newTestApp(t)
	srv := httptest.NewServer(newRouter(a, reg))
	defer srv.Close()

	status, reply := post(t, srv.URL+"/award", `{"member_id":"5","display_name":"Ginny","roles":["A"],"amount":9}`)
	if status != http.StatusOK || reply != "✅ 9 points were **added** to Ginny!" {
		t.Fatalf("POST /award = %d %q", status, reply)
	}
	status, reply = post(t, srv.URL+"/award", `{"member_id":"5","roles":["A"],"amount":"-2"}`)
	if status != http.StatusOK || reply != "❌ 2 points were **removed** from 5!" {
		t.Fatalf("POST /award revoke = %d %q", status, reply)
	}
	status, _ = post(t, srv.URL+"/activity", `{"member_id":"6","roles":["B"],"activity":"quiz"}`)
	if status != http.StatusOK {
		t.Fatalf("POST /activity = %d", status)
	}

	got := getStandings(t, srv.URL)
	if len(got.Members) != 2 || got.Members[0] != (points.MemberTotal{MemberID: "5", Points: 7}) {
		t.Errorf("members = %+v", got.Members)
	}
	if len(got.Houses) != 2 || got.Houses[0] != (points.HouseTotal{House: "A", Points: 7}) {
		t.Errorf("houses = %+v", got.Houses)
	}

	// The data file is written by the serving process.
	reloaded, err := startApp(context.Background(), a.cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer reloaded.close()
	if n := reloaded.ledger.GetMemberPoints("5"); n != 7 {
		t.Errorf("reloaded member total = %d, want 7", n)
	}
}

func TestRouterReset(t *testing.T) {
	a, reg := newTestApp(t)
	srv := httptest.NewServer(newRouter(a, reg))
	defer srv.Close()

	if status, reply := post(t, srv.URL+"/award", `{"member_id":"1","roles":["B"],"amount":4}`); status != http.StatusOK {
		t.Fatalf("POST /award = %d %q", status, reply)
	}
	resp, err := http.Post(srv.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /reset = %d", resp.StatusCode)
	}

	got := getStandings(t, srv.URL)
	if len(got.Members) != 0 {
		t.Errorf("members after reset = %+v", got.Members)
	}
	for _, h := range got.Houses {
		if h.Points != 0 {
			t.Errorf("house %q = %d after reset", h.House, h.Points)
		}
	}
}

func TestRouterCommandErrors(t *testing.T) {
	a, reg := newTestApp(t)
	srv := httptest.NewServer(newRouter(a, reg))
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"not json", "/award", `points please`, http.StatusBadRequest},
		{"unknown field", "/award", `{"member_id":"1","roles":["A"],"amount":1,"bonus":true}`, http.StatusBadRequest},
		{"fractional amount", "/award", `{"member_id":"1","roles":["A"],"amount":1.5}`, http.StatusBadRequest},
		{"missing amount", "/award", `{"member_id":"1","roles":["A"]}`, http.StatusBadRequest},
		{"invalid member", "/award", `{"member_id":" ","roles":["A"],"amount":1}`, http.StatusBadRequest},
		{"no house", "/award", `{"member_id":"1","roles":["staff"],"amount":1}`, http.StatusUnprocessableEntity},
		{"unknown activity", "/activity", `{"member_id":"1","roles":["A"],"activity":"duel"}`, http.StatusBadRequest},
		{"activity without house", "/activity", `{"member_id":"1","activity":"quiz"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reply := post(t, srv.URL+tt.path, tt.body)
			if status != tt.status {
				t.Errorf("POST %s = %d %q, want %d", tt.path, status, reply, tt.status)
			}
			if reply == "" {
				t.Error("empty reply")
			}
		})
	}

	if snap := a.ledger.Snapshot(); len(snap.Members) != 0 {
		t.Errorf("rejected commands changed the ledger: %+v", snap.Members)
	}
}
