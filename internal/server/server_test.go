package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/pathways/backend/internal/queue"
	mid "github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/pkg/aggregate"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph/graphtest"
	"github.com/OFFIS-RIT/pathways/backend/pkg/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rabbitmq/amqp091-go"
)

const (
	masterKey = "master-secret"
	jwtSecret = "jwt-secret"
)

type recordingChannel struct {
	published []amqp091.Publishing
	keys      []string
}

func (r *recordingChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	return nil
}

func (r *recordingChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (r *recordingChannel) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	return nil
}

func (r *recordingChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error) {
	return nil, nil
}

func (r *recordingChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	r.keys = append(r.keys, key)
	r.published = append(r.published, msg)
	return nil
}

func newStore(t *testing.T, loaded bool) *store.GraphStore {
	t.Helper()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := store.NewGraphStore(store.NewGraphStoreParams{Loader: client, Source: graphtest.Snapshot()})
	if err != nil {
		t.Fatal(err)
	}
	if loaded {
		s.Set(graphtest.Graph(t))
	}
	return s
}

func newApp(t *testing.T, loaded bool) *mid.App {
	t.Helper()
	return &mid.App{
		Store:        newStore(t, loaded),
		MasterAPIKey: masterKey,
		Key: func(token *jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		},
	}
}

func do(t *testing.T, app *mid.App, method string, path string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := New(app)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		loaded bool
		want   int
	}{
		{"Health", "/health", false, http.StatusOK},
		{"Metrics", "/metrics", false, http.StatusOK},
		{"StatsNotLoaded", "/api/stats", false, http.StatusServiceUnavailable},
		{"Stats", "/api/stats", true, http.StatusOK},
		{"List", "/api/projects", true, http.StatusOK},
		{"Detail", "/api/worldviews/" + graphtest.WorldviewScience, true, http.StatusOK},
		{"UnknownSlug", "/api/worldviews/does-not-exist", true, http.StatusNotFound},
		{"UnknownRelationOwner", "/api/outcomes/does-not-exist/problems", true, http.StatusNotFound},
		{"UnknownView", "/api/groups/nope", true, http.StatusNotFound},
		{"NegativeTop", "/api/groups/organizations-by-role?top=-1", true, http.StatusBadRequest},
		{"HeatmapTooLarge", "/api/heatmap?rows=1000", true, http.StatusBadRequest},
		{"AdminWithoutToken", "/api/admin/id-maps", true, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newApp(t, tc.loaded), http.MethodGet, tc.path, "", "")
			if rec.Code != tc.want {
				t.Fatalf("GET %s = %d, want %d (%s)", tc.path, rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestStats(t *testing.T) {
	rec := do(t, newApp(t, true), http.MethodGet, "/api/stats", "", "")
	stats := decode[graph.Stats](t, rec)
	if stats.Projects != 3 || stats.Worldviews != 3 || stats.Dropped != graphtest.DanglingReferences {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestReverseLookups(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/api/outcomes/" + graphtest.OutcomeFunding + "/problems", []string{graphtest.ProblemGrants}},
		{"/api/problems/" + graphtest.ProblemGrants + "/projects", []string{graphtest.ProjectBridge, graphtest.ProjectCommons}},
		{"/api/problems/" + graphtest.ProblemAwareness + "/projects", []string{}},
		{"/api/organizations/" + graphtest.OrgBeacon + "/projects", []string{graphtest.ProjectBridge, graphtest.ProjectCommons}},
		{"/api/worldviews/" + graphtest.WorldviewScience + "/outcomes", []string{graphtest.OutcomeData, graphtest.OutcomeAwareness}},
		{"/api/outcomes?worldview=" + graphtest.WorldviewScience + "&relevance=Low", []string{graphtest.OutcomeAwareness}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := do(t, newApp(t, true), http.MethodGet, tc.path, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d (%s)", tc.path, rec.Code, rec.Body.String())
			}
			items := decode[[]struct {
				Slug string `json:"slug"`
			}](t, rec)
			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.Slug)
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGroups(t *testing.T) {
	rec := do(t, newApp(t, true), http.MethodGet, "/api/groups/organizations-by-role?top=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", rec.Code, rec.Body.String())
	}
	groups := decode[[]aggregate.Summary](t, rec)
	if len(groups) != 1 || groups[0].Key != "Funder" || groups[0].Count != 2 {
		t.Fatalf("unexpected groups %+v", groups)
	}

	rec = do(t, newApp(t, true), http.MethodGet, "/api/groups/organizations-by-city?fallback=Elsewhere", "", "")
	groups = decode[[]aggregate.Summary](t, rec)
	if groups[0].Key != "Elsewhere" || groups[0].Count != 2 {
		t.Fatalf("expected fallback group first, got %+v", groups)
	}
}

func TestHeatmap(t *testing.T) {
	rec := do(t, newApp(t, true), http.MethodGet, "/api/heatmap?rows=2&cols=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", rec.Code, rec.Body.String())
	}
	h := decode[aggregate.Heatmap](t, rec)
	if len(h.Rows) != 2 || len(h.Cols) != 2 {
		t.Fatalf("unexpected heatmap shape %+v", h)
	}
	if got := h.At("Funder", "USA"); got != 2 {
		t.Fatalf("Funder x USA = %d, want 2", got)
	}
}

func TestPathway(t *testing.T) {
	type view struct {
		Visibility []bool `json:"visibility"`
		Outcomes   struct {
			Computed bool `json:"computed"`
			Items    []struct {
				Slug string `json:"slug"`
			} `json:"items"`
		} `json:"outcomes"`
		Problems struct {
			Computed bool `json:"computed"`
		} `json:"problems"`
	}

	body := `{"toggle":{"stage":"worldview","slug":"` + graphtest.WorldviewMarket + `"}}`
	rec := do(t, newApp(t, true), http.MethodPost, "/api/pathway", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", rec.Code, rec.Body.String())
	}
	v := decode[view](t, rec)
	if !v.Visibility[1] || v.Visibility[2] {
		t.Fatalf("unexpected visibility %v", v.Visibility)
	}
	if !v.Outcomes.Computed || len(v.Outcomes.Items) != 1 || v.Outcomes.Items[0].Slug != graphtest.OutcomeFunding {
		t.Fatalf("unexpected outcomes %+v", v.Outcomes)
	}
	if v.Problems.Computed {
		t.Fatal("problems must not be computed without a selected outcome")
	}

	body = `{"worldviews":["` + graphtest.WorldviewMarket + `"],"clear":true}`
	v = decode[view](t, do(t, newApp(t, true), http.MethodPost, "/api/pathway", body, ""))
	if v.Outcomes.Computed || v.Visibility[1] {
		t.Fatalf("clear must reset the selection, got %+v", v)
	}

	bad := []string{
		`{"toggle":{"stage":"galaxy","slug":"x"}}`,
		`{"relevance":["Sometimes"]}`,
		`{"toggle":{"stage":"worldview"}}`,
	}
	for _, b := range bad {
		if rec := do(t, newApp(t, true), http.MethodPost, "/api/pathway", b, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("POST %s = %d, want 400", b, rec.Code)
		}
	}
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"MasterKey", masterKey, http.StatusOK},
		{"WrongKey", "nope", http.StatusUnauthorized},
		{"JWTWithPermission", signToken(t, jwt.MapClaims{"sub": "u1", "permissions": []string{mid.PermissionInspect}}), http.StatusOK},
		{"JWTAdminRole", signToken(t, jwt.MapClaims{"id": "u2", "role": "admin"}), http.StatusOK},
		{"JWTWithoutPermission", signToken(t, jwt.MapClaims{"id": 7, "permissions": []string{mid.PermissionReload}}), http.StatusForbidden},
		{"JWTWithoutID", signToken(t, jwt.MapClaims{"role": "admin"}), http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newApp(t, true), http.MethodGet, "/api/admin/id-maps", "", tc.token)
			if rec.Code != tc.want {
				t.Fatalf("unexpected status %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestAdminReload(t *testing.T) {
	app := newApp(t, false)
	rec := do(t, app, http.MethodPost, "/api/admin/reload", "", masterKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d (%s)", rec.Code, rec.Body.String())
	}
	if _, err := app.Store.Current(); err != nil {
		t.Fatalf("expected graph after reload, got %v", err)
	}
}

func TestAdminSync(t *testing.T) {
	app := newApp(t, true)
	if rec := do(t, app, http.MethodPost, "/api/admin/sync", `{}`, masterKey); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without queue, got %d", rec.Code)
	}

	ch := &recordingChannel{}
	app.Queue = ch
	rec := do(t, app, http.MethodPost, "/api/admin/sync", `{"message":"nightly","archive":true}`, masterKey)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d (%s)", rec.Code, rec.Body.String())
	}
	if len(ch.keys) != 1 || ch.keys[0] != queue.SnapshotQueue {
		t.Fatalf("expected job on snapshot queue, got %v", ch.keys)
	}
	job, err := queue.ParseSnapshotJob(ch.published[0].Body)
	if err != nil {
		t.Fatalf("ParseSnapshotJob() error = %v", err)
	}
	if job.RequestedBy != "master" || !job.Archive || job.Message != "nightly" {
		t.Fatalf("unexpected job %+v", job)
	}
}
