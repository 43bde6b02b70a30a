package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"encore/internal/config"
	"encore/internal/metrics"
	"encore/internal/sim"
	"encore/internal/store"
)

type memSaves struct {
	mu   sync.Mutex
	rows map[string]store.SaveHeader
	blob map[string][]byte
}

func newMemSaves() *memSaves {
	return &memSaves{rows: make(map[string]store.SaveHeader), blob: make(map[string][]byte)}
}

func (m *memSaves) Put(_ context.Context, id, artist string, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	h, ok := m.rows[id]
	if !ok {
		h = store.SaveHeader{ID: id, Artist: artist, CreatedAt: now}
	}
	h.UpdatedAt = now
	m.rows[id] = h
	m.blob[id] = append([]byte(nil), snapshot...)
	return nil
}

func (m *memSaves) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blob[id]
	if !ok {
		return nil, store.ErrSaveNotFound
	}
	return b, nil
}

func (m *memSaves) List(_ context.Context) ([]store.SaveHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.SaveHeader
	for _, h := range m.rows {
		out = append(out, h)
	}
	return out, nil
}

func (m *memSaves) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrSaveNotFound
	}
	delete(m.rows, id)
	delete(m.blob, id)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(config.APIConfig{}, nil, newMemSaves(), metrics.New(), sim.DefaultBalance())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func createSave(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var summary sim.Summary
	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/saves",
		map[string]any{"artist": "Test Artist", "seed": 7}, &summary)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create save status = %d", resp.StatusCode)
	}
	if summary.SaveID == "" {
		t.Fatal("create save returned empty id")
	}
	return summary.SaveID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]any
	resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, &out)
	if resp.StatusCode != http.StatusOK || out["ok"] != true {
		t.Fatalf("healthz = %d %v", resp.StatusCode, out)
	}
}

func TestSaveLifecycle(t *testing.T) {
	ts := newTestServer(t)
	saveID := createSave(t, ts)

	var listed struct {
		Saves []store.SaveHeader `json:"saves"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/v1/saves", nil, &listed)
	if len(listed.Saves) != 1 || listed.Saves[0].ID != saveID {
		t.Fatalf("list saves = %+v", listed.Saves)
	}

	resp := doJSON(t, http.MethodDelete, ts.URL+"/v1/saves/"+saveID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/saves/"+saveID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted save still loads: %d", resp.StatusCode)
	}
}

func TestRecordAndReleaseFlow(t *testing.T) {
	ts := newTestServer(t)
	saveID := createSave(t, ts)
	base := ts.URL + "/v1/saves/" + saveID

	var recorded struct {
		Song *sim.Song `json:"song"`
	}
	resp := doJSON(t, http.MethodPost, base+"/songs",
		map[string]any{"title": "Skyline", "genre": "pop"}, &recorded)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record song status = %d", resp.StatusCode)
	}

	var assembled struct {
		Release *sim.Release `json:"release"`
	}
	resp = doJSON(t, http.MethodPost, base+"/releases",
		map[string]any{"title": "Skyline EP", "kind": "ep", "song_ids": []string{recorded.Song.ID}}, &assembled)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("assemble release status = %d", resp.StatusCode)
	}

	var res sim.CommandResult
	resp = doJSON(t, http.MethodPost, base+"/advance", map[string]any{"weeks": 3}, &res)
	if resp.StatusCode != http.StatusOK || res.Tick != 3 {
		t.Fatalf("advance = %d tick=%d", resp.StatusCode, res.Tick)
	}

	var chart sim.ChartSnapshot
	doJSON(t, http.MethodGet, base+"/charts/hot", nil, &chart)
	if len(chart.Entries) == 0 {
		t.Fatal("hot chart empty after three weeks")
	}
	for i, e := range chart.Entries {
		if e.Rank != i+1 {
			t.Fatalf("chart ranks not contiguous at %d", i)
		}
	}
}

func TestDomainErrorsMapToStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	saveID := createSave(t, ts)
	base := ts.URL + "/v1/saves/" + saveID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown genre", http.MethodPost, "/songs",
			map[string]any{"title": "X", "genre": "chiptune"}, http.StatusBadRequest},
		{"empty tracklist", http.MethodPost, "/releases",
			map[string]any{"title": "Empty", "kind": "ep", "song_ids": []string{}}, http.StatusBadRequest},
		{"unknown song", http.MethodGet, "/songs/song-999999", nil, http.StatusNotFound},
		{"unknown offer", http.MethodPost, "/offers/offer-999999/accept", nil, http.StatusNotFound},
		{"unknown award", http.MethodPost, "/awards/mtv/submit",
			map[string]any{"entries": []any{}}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/songs",
			map[string]any{"titel": "typo"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, base+tt.path, tt.body, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.status)
			}
		})
	}
}

func doJSONWithKey(t *testing.T, method, url, key string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIdempotencyKeyRejectsReplay(t *testing.T) {
	ts := newTestServer(t)
	saveID := createSave(t, ts)
	base := ts.URL + "/v1/saves/" + saveID

	advance := map[string]any{"weeks": 1}
	if resp := doJSONWithKey(t, http.MethodPost, base+"/advance", "key-1", advance); resp.StatusCode != http.StatusOK {
		t.Fatalf("first advance = %d, want 200", resp.StatusCode)
	}
	if resp := doJSONWithKey(t, http.MethodPost, base+"/advance", "key-1", advance); resp.StatusCode != http.StatusConflict {
		t.Fatalf("replayed advance = %d, want 409", resp.StatusCode)
	}
	if resp := doJSONWithKey(t, http.MethodPost, base+"/advance", "key-2", advance); resp.StatusCode != http.StatusOK {
		t.Fatalf("fresh key advance = %d, want 200", resp.StatusCode)
	}
	// Reads never claim keys.
	if resp := doJSONWithKey(t, http.MethodGet, base, "key-1", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("summary with used key = %d, want 200", resp.StatusCode)
	}

	var sum sim.Summary
	if resp := doJSON(t, http.MethodGet, base, nil, &sum); resp.StatusCode != http.StatusOK {
		t.Fatalf("summary = %d, want 200", resp.StatusCode)
	}
	if sum.Tick != 2 {
		t.Fatalf("tick = %d, want 2: replay must not advance the clock", sum.Tick)
	}
}

func TestAdvanceRejectsNonPositiveWeeks(t *testing.T) {
	ts := newTestServer(t)
	saveID := createSave(t, ts)
	base := ts.URL + "/v1/saves/" + saveID

	for _, weeks := range []int{0, -2, sim.MaxAdvanceBatch + 1} {
		resp := doJSON(t, http.MethodPost, base+"/advance", map[string]any{"weeks": weeks}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("advance %d weeks = %d, want 400", weeks, resp.StatusCode)
		}
	}
}

func TestSaveSurvivesEviction(t *testing.T) {
	saves := newMemSaves()
	srv := New(config.APIConfig{}, nil, saves, metrics.New(), sim.DefaultBalance())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	saveID := createSave(t, ts)
	base := fmt.Sprintf("%s/v1/saves/%s", ts.URL, saveID)
	doJSON(t, http.MethodPost, base+"/songs", map[string]any{"title": "Kept", "genre": "rock"}, nil)

	// Drop the in-memory session; the next request must rebuild it from
	// the persisted snapshot.
	srv.evict(saveID)

	var songs struct {
		Songs []*sim.Song `json:"songs"`
	}
	resp := doJSON(t, http.MethodGet, base+"/songs", nil, &songs)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload status = %d", resp.StatusCode)
	}
	if len(songs.Songs) != 1 || songs.Songs[0].Title != "Kept" {
		t.Fatalf("reloaded save lost data: %+v", songs.Songs)
	}
}
