package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvask-cli/internal/ai"
	"github.com/KaramelBytes/csvask-cli/internal/assist"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

const salesCSV = "category,revenue,height,weight\nA,10,150,50\nB,30,160,61\nA,20,170,69\nC,5,180,82\n"

type stubRuntime struct{ answer string }

func (s *stubRuntime) Generate(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: s.answer}}}}, nil
}

func newTestServer(t *testing.T, a *assist.Assistant) *httptest.Server {
	t.Helper()
	s := New(Config{
		Router:      router.New(router.Config{}),
		Runner:      tools.NewRunner(tools.Options{}, nil),
		Assistant:   a,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func uploadFile(t *testing.T, ts *httptest.Server, name, body string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	resp, err := http.Post(ts.URL+"/api/datasets", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func upload(t *testing.T, ts *httptest.Server) DatasetView {
	t.Helper()
	resp := uploadFile(t, ts, "sales.csv", salesCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var v DatasetView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func ask(t *testing.T, ts *httptest.Server, id string, req AskRequest) (*http.Response, AskResponse) {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/datasets/"+id+"/ask", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	var out AskResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "sales.csv", v.Name)
	assert.Equal(t, 4, v.Rows)
	require.Len(t, v.Columns, 4)
	assert.Equal(t, "categorical", string(v.Columns[0].Kind))
	assert.Equal(t, "numeric", string(v.Columns[1].Kind))

	resp, err := http.Get(ts.URL + "/api/datasets/" + v.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusBadRequest, uploadFile(t, ts, "notes.pdf", "x").StatusCode)
	assert.Equal(t, http.StatusBadRequest, uploadFile(t, ts, "empty.csv", "").StatusCode)

	resp, err = http.Post(ts.URL+"/api/datasets", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskWithToolAndFetchChart(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	resp, out := ask(t, ts, v.ID, AskRequest{Query: "average revenue by category", Tool: "bar"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, router.Bar, out.Decision.Tool)
	assert.Equal(t, router.StrategyManual, out.Decision.Strategy)
	require.NotNil(t, out.Result.Chart)
	assert.Equal(t, []string{"B", "A", "C"}, out.Result.Chart.Labels)
	require.NotEmpty(t, out.ChartURL)

	img, err := http.Get(ts.URL + out.ChartURL)
	require.NoError(t, err)
	defer img.Body.Close()
	assert.Equal(t, http.StatusOK, img.StatusCode)
	assert.Equal(t, "image/png", img.Header.Get("Content-Type"))
	b, _ := io.ReadAll(img.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	missing, err := http.Get(ts.URL + "/api/datasets/" + v.ID + "/charts/nope.png")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAskRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	resp, out := ask(t, ts, v.ID, AskRequest{Query: "show a histogram of revenue"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, router.Histogram, out.Decision.Tool)
	assert.Equal(t, router.StrategyExplicit, out.Decision.Strategy)
	assert.Equal(t, "revenue", out.Result.Resolved[tools.RoleValue])

	resp, out = ask(t, ts, v.ID, AskRequest{Query: "correlation matrix"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, router.Correlation, out.Decision.Tool)
	assert.Empty(t, out.ChartURL)
	assert.NotEmpty(t, out.Result.Pairs)
}

func TestAskPendingAndAssistant(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	resp, out := ask(t, ts, v.ID, AskRequest{Query: "compare the two", Tool: "scatter"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, out.Result.Chart)
	require.Len(t, out.Result.Pending, 2)
	assert.Equal(t, []string{"revenue", "height", "weight"}, out.Result.Pending[0].Candidates)

	resp, out = ask(t, ts, v.ID, AskRequest{Query: "compare the two", Tool: "scatter",
		Selections: tools.Selections{tools.RoleX: "height", tools.RoleY: "weight"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Result.Chart)

	withAssist := newTestServer(t, assist.New(assist.Config{Runtime: &stubRuntime{answer: "x=height,y=weight"}}))
	v = upload(t, withAssist)
	resp, out = ask(t, withAssist, v.ID, AskRequest{Query: "compare the two", Tool: "scatter"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Result.Chart)
	assert.Equal(t, "weight vs height", out.Result.Chart.Title)
}

func TestAskErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)

	resp, _ := ask(t, ts, "missing", AskRequest{Query: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ask(t, ts, v.ID, AskRequest{Tool: "radar"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ask(t, ts, v.ID, AskRequest{Tool: "bar", Selections: tools.Selections{tools.RoleValue: "category"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "wrong kind")

	bad, err := http.Post(ts.URL+"/api/datasets/"+v.ID+"/ask", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/datasets/"+v.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsAndCORS(t *testing.T) {
	ts := newTestServer(t, nil)
	v := upload(t, ts)
	ask(t, ts, v.ID, AskRequest{Query: "pie of revenue"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "csvask_router_decisions_total")

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/datasets", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer pre.Body.Close()
	assert.Equal(t, "http://localhost:3000", pre.Header.Get("Access-Control-Allow-Origin"))
}

func TestChartEviction(t *testing.T) {
	sess := &session{charts: map[string]*tools.Chart{}}
	for _, id := range []string{"a", "b", "c"} {
		sess.keep(id, &tools.Chart{}, 2)
	}
	_, ok := sess.chart("a")
	assert.False(t, ok)
	_, ok = sess.chart("c")
	assert.True(t, ok)
}
