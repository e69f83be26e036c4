package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/dsl"
	"github.com/aretw0/formflow/pkg/observability"
)

func branching() *document.Document {
	b := dsl.New("Branching").ServiceID("svc-1").Owner("tester")
	b.Start("page-a").
		Component("X", domain.ComponentRadios, "yes", "no").
		Branch("page-b", dsl.Equals("X", "yes")).
		Go("page-c")
	b.Question("page-b").Go("page-c")
	b.Confirmation("page-c")
	return b.Document()
}

func setup(t *testing.T, opts ...Option) (http.Handler, *memory.Store) {
	t.Helper()
	eng, err := formflow.New()
	require.NoError(t, err)
	store := memory.NewStore()
	return NewHandler(eng, store, opts...), store
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]any](t, w)
	assert.Equal(t, formflow.Version, info["version"])
	assert.Contains(t, info["schemas"], "page.start")
}

func TestCreateService(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, "POST", "/services", CreateServiceRequest{ServiceName: "Razorback", Owner: "1234"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[document.Document](t, w)
	require.NotEmpty(t, created.ServiceID)
	assert.Len(t, created.Pages, 3)

	w = do(t, h, "GET", "/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{created.ServiceID}, decode[map[string][]string](t, w)["services"])

	w = do(t, h, "GET", "/services/"+created.ServiceID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Razorback", decode[document.Document](t, w).ServiceName)

	w = do(t, h, "POST", "/services/"+created.ServiceID+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ValidationResponse](t, w).Valid)

	w = do(t, h, "POST", "/services", CreateServiceRequest{ServiceName: "Razorback"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/services/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutService(t *testing.T) {
	h, store := setup(t)

	w := do(t, h, "PUT", "/services/svc-1", branching())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := store.Load(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Len(t, stored.Pages, 3)

	t.Run("Mismatched ID", func(t *testing.T) {
		w := do(t, h, "PUT", "/services/other", branching())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Document", func(t *testing.T) {
		doc := branching()
		doc.Flow["page-b"] = document.FlowObject{Type: domain.FlowTypePage, Next: domain.FlowEdge{Fallback: "ghost"}}

		w := do(t, h, "PUT", "/services/svc-1", doc)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode[ErrorResponse](t, w)
		require.Len(t, resp.Violations, 1)
		assert.Equal(t, domain.CodeDanglingFallback, resp.Violations[0].Code)

		stored, err := store.Load(context.Background(), "svc-1")
		require.NoError(t, err)
		assert.Equal(t, "page-c", stored.Flow["page-b"].Next.Fallback, "invalid documents are not stored")
	})

	t.Run("Not JSON", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/services/svc-1", strings.NewReader("{"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteService(t *testing.T) {
	h, _ := setup(t)
	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/services/svc-1", branching()).Code)

	w := do(t, h, "DELETE", "/services/svc-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/services/svc-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", "/services/svc-1", nil).Code)
}

func TestResolveNext(t *testing.T) {
	h, store := setup(t)
	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/services/svc-1", branching()).Code)

	tests := []struct {
		name     string
		page     string
		answers  domain.AnswerSet
		wantCode int
		wantNext string
		wantURL  string
	}{
		{"Branch", "page-a", domain.AnswerSet{"X": "yes"}, http.StatusOK, "page-b", "page-b"},
		{"Fallback", "page-a", domain.AnswerSet{"X": "no"}, http.StatusOK, "page-c", "form-sent"},
		{"Unanswered", "page-a", nil, http.StatusOK, "page-c", "form-sent"},
		{"End", "page-c", nil, http.StatusOK, "", ""},
		{"Unknown Page", "ghost", nil, http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/services/svc-1/pages/"+tt.page+"/next", ResolveRequest{Answers: tt.answers})
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			resp := decode[ResolveResponse](t, w)
			assert.Equal(t, tt.page, resp.PageID)
			assert.Equal(t, tt.wantNext, resp.NextPageID)
			assert.Equal(t, tt.wantURL, resp.NextURL)
			assert.Equal(t, tt.wantNext == "", resp.End)
		})
	}

	t.Run("Empty Body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/services/svc-1/pages/page-a/next", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "page-c", decode[ResolveResponse](t, w).NextPageID)
	})

	t.Run("Invalid Stored Service", func(t *testing.T) {
		doc := branching()
		doc.ServiceID = "broken"
		doc.Flow["page-b"] = document.FlowObject{Type: domain.FlowTypePage, Next: domain.FlowEdge{Fallback: "ghost"}}
		require.NoError(t, store.Save(context.Background(), doc))

		w := do(t, h, "POST", "/services/broken/pages/page-a/next", ResolveRequest{})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.NotEmpty(t, decode[ErrorResponse](t, w).Violations)
	})

	t.Run("Unknown Service", func(t *testing.T) {
		w := do(t, h, "POST", "/services/missing/pages/page-a/next", ResolveRequest{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestValidateFragment(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, "POST", "/validate?schema=page.start", map[string]any{"_type": "page.start"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ValidationResponse](t, w)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Violations)

	w = do(t, h, "POST", "/validate", branching())
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[ValidationResponse](t, w)
	assert.True(t, resp.Valid, "%v", resp.Violations)
	assert.NotNil(t, resp.Violations)

	w = do(t, h, "POST", "/validate", []string{"not", "a", "service"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGraph(t *testing.T) {
	h, _ := setup(t)
	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/services/svc-1", branching()).Code)

	w := do(t, h, "GET", "/services/svc-1/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), `p_page_a -- "X equals yes" --> p_page_b`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := formflow.New(formflow.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h := NewHandler(eng, memory.NewStore(), WithGatherer(reg))

	require.Equal(t, http.StatusOK, do(t, h, "PUT", "/services/svc-1", branching()).Code)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/services/svc-1/pages/page-a/next", ResolveRequest{Answers: domain.AnswerSet{"X": "yes"}}).Code)

	w := do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `formflow_resolutions_total{outcome="branch"} 1`)
	assert.Contains(t, w.Body.String(), "formflow_validation_duration_seconds_count 2")

	h, _ = setup(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/metrics", nil).Code)
}

func TestCORS(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, "OPTIONS", "/services", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := setup(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/services/svc-1/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}

	// The ping is written after the subscription is registered.
	readUntil("data: connected")

	body, err := json.Marshal(branching())
	require.NoError(t, err)
	put, err := http.NewRequest("PUT", srv.URL+"/services/svc-1", bytes.NewReader(body))
	require.NoError(t, err)
	putResp, err := srv.Client().Do(put)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	readUntil("event: change")
	data := strings.TrimPrefix(readUntil("data: "), "data: ")

	var event ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, ChangeUpdated, event.Type)
	assert.Equal(t, "svc-1", event.ServiceID)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()

	ch, cancel := sm.Subscribe("svc")
	assert.Equal(t, 1, sm.Subscribers("svc"))

	sm.Publish("svc", ChangeDeleted, "")
	sm.Publish("other", ChangeDeleted, "")

	msg := <-ch
	assert.Contains(t, msg, `"type":"deleted"`)
	assert.Empty(t, ch)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("svc"))
	_, open := <-ch
	assert.False(t, open)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrServiceNotFound, http.StatusNotFound},
		{domain.ErrPageNotFound, http.StatusNotFound},
		{&domain.UnresolvedTransitionError{PageID: "p", Reason: "no edge"}, http.StatusConflict},
		{domain.Result{Violations: []domain.Violation{{Code: domain.CodeDanglingFallback}}}.Err(), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), "%v", tt.err)
	}
}
