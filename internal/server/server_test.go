// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/explainer/internal/chain"
	"github.com/pdiddy/explainer/internal/export"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/session"
	"github.com/pdiddy/explainer/pkg/types"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func newTestServer(t *testing.T, gen generate.Generator) *httptest.Server {
	t.Helper()
	sess, err := session.New(gen, session.WithStore(chain.New(chain.WithIDFunc(seqIDs()))))
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	ts := httptest.NewServer(NewMux(NewHandler(gen, sess)))
	t.Cleanup(ts.Close)
	return ts
}

func echo(output string) generate.Generator {
	return generate.Func(func(context.Context, string) (string, error) { return output, nil })
}

func failing(err error) generate.Generator {
	return generate.Func(func(context.Context, string) (string, error) { return "", err })
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// --- explain ---

func TestExplain(t *testing.T) {
	ts := newTestServer(t, echo("plain words"))

	resp := do(t, ts, http.MethodPost, "/api/explain", `{"prompt":"what is a monad"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[generate.ExplainResponse](t, resp)
	assert.Equal(t, "plain words", out.Output)
}

func TestExplainEmptyPrompt(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/explain", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExplainGeneratorFailure(t *testing.T) {
	ts := newTestServer(t, failing(errors.New("upstream down")))

	resp := do(t, ts, http.MethodPost, "/api/explain", `{"prompt":"hi"}`)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	e := decodeBody[errorResponse](t, resp)
	assert.Contains(t, e.Error, "upstream down")
}

func TestExplainMalformedBody(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/explain", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExplainViaHTTPClient(t *testing.T) {
	ts := newTestServer(t, echo("remote text"))
	client := &generate.HTTPClient{BaseURL: ts.URL, Client: ts.Client()}

	out, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "remote text", out)
}

// --- session editing ---

func TestTemplates(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodGet, "/api/templates", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	tmpls := decodeBody[[]types.Template](t, resp)
	require.NotEmpty(t, tmpls)
	assert.Equal(t, "Definition", tmpls[0].Type)
}

func TestAddBlockFromTemplate(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decodeBody[types.Block](t, resp)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "Definition", b.Type)

	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	require.Len(t, state.Main, 1)
	assert.Equal(t, "b1", state.Main[0].ID)
}

func TestAddBlockUnknownTemplate(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddCustomBlockToBranch(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Claim"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/blocks",
		`{"parent":"b1","custom":{"type":"Aside","icon":"💬","description":"by the way"}}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	require.Len(t, state.Branches["b1"], 1)
	assert.Equal(t, "Aside", state.Branches["b1"][0].Type)
}

func TestAddBlockUnknownParent(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/blocks", `{"parent":"ghost","template":"Definition"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/session/blocks",
		`{"parent":"ghost","custom":{"type":"Aside","description":"note"}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	assert.Empty(t, state.Branches)
}

func TestFindBlock(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Example"}`)

	resp := do(t, ts, http.MethodGet, "/api/session/blocks/b1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Example", decodeBody[types.Block](t, resp).Type)

	assert.Equal(t, http.StatusNotFound, do(t, ts, http.MethodGet, "/api/session/blocks/missing", "").StatusCode)
}

func TestGrowAndRemoveCascade(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/blocks/b1/grow", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	grown := decodeBody[types.Block](t, resp)
	assert.Equal(t, "BranchOf(Definition)", grown.Type)

	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	assert.Equal(t, types.BranchOf("b1"), state.Active)

	resp = do(t, ts, http.MethodDelete, "/api/session/blocks/b1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	state = decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	assert.Empty(t, state.Main)
	assert.Empty(t, state.Branches)
	assert.True(t, state.Active.IsMain())
}

func TestGrowUnknownParentIsNoOp(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/blocks/ghost/grow", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRemoveUnknownIsNoOp(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodDelete, "/api/session/blocks/ghost", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSetActive(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks/b1/grow", "")

	resp := do(t, ts, http.MethodPut, "/api/session/active", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[session.State](t, resp).Active.IsMain())

	resp = do(t, ts, http.MethodPut, "/api/session/active", `{"parent":"b1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.BranchOf("b1"), decodeBody[session.State](t, resp).Active)

	resp = do(t, ts, http.MethodPut, "/api/session/active", `{"parent":"nowhere"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetPromptAndTab(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPut, "/api/session/prompt", `{"prompt":"explain TCP"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "explain TCP", decodeBody[session.State](t, resp).Prompt)

	resp = do(t, ts, http.MethodPut, "/api/session/tab", `{"tab":"tree"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session.TabTree, decodeBody[session.State](t, resp).Tab)

	resp = do(t, ts, http.MethodPut, "/api/session/tab", `{"tab":"settings"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHighlight(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/highlight", `{"text":" key phrase "}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decodeBody[types.Block](t, resp)
	assert.Equal(t, chain.HighlightType, b.Type)
	assert.Equal(t, "key phrase", b.Description)

	resp = do(t, ts, http.MethodPost, "/api/session/highlight", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReorder(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Example"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/reorder", `{"from":1,"to":0}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	require.Len(t, state.Main, 2)
	assert.Equal(t, "b2", state.Main[0].ID)
	assert.Equal(t, "b1", state.Main[1].ID)
}

func TestTree(t *testing.T) {
	ts := newTestServer(t, echo("x"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks/b1/grow", "")

	resp := do(t, ts, http.MethodGet, "/api/session/tree", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	root := decodeBody[chain.Node](t, resp)
	require.Len(t, root.Children, 1)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "b2", root.Children[0].Children[0].Block.ID)
}

// --- generation ---

func TestGenerateRecordsHistory(t *testing.T) {
	ts := newTestServer(t, echo("a clear explanation"))
	do(t, ts, http.MethodPut, "/api/session/prompt", `{"prompt":"explain DNS"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/generate", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[session.Outcome](t, resp)
	assert.False(t, out.Failed)
	assert.Equal(t, "a clear explanation", out.Output)

	resp = do(t, ts, http.MethodGet, "/api/session/history?q=clear", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decodeBody[[]types.HistoryEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, "explain DNS", entries[0].Prompt)
}

func TestGeneratePreconditions(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodPost, "/api/session/generate", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	do(t, ts, http.MethodPut, "/api/session/prompt", `{"prompt":"p"}`)
	resp = do(t, ts, http.MethodPost, "/api/session/generate", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateFailureIsReportedInBody(t *testing.T) {
	ts := newTestServer(t, failing(errors.New("quota exceeded")))
	do(t, ts, http.MethodPut, "/api/session/prompt", `{"prompt":"p"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Claim"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/generate", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[session.Outcome](t, resp)
	assert.True(t, out.Failed)
	assert.True(t, strings.HasPrefix(out.Output, session.FailurePrefix))
	assert.Contains(t, out.Reason, "quota exceeded")
}

func TestBlend(t *testing.T) {
	ts := newTestServer(t, echo("merged text"))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Example"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/blend", `{"a":"b1","b":"b2"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unconfirmed blend is rejected")

	resp = do(t, ts, http.MethodPost, "/api/session/blend", `{"a":"b1","b":"b2","confirmed":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decodeBody[types.Block](t, resp)
	assert.Equal(t, "Definition+Example", b.Type)
	assert.Equal(t, "merged text", b.FullText)
}

func TestBlendErrors(t *testing.T) {
	ts := newTestServer(t, failing(errors.New("boom")))
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Example"}`)

	resp := do(t, ts, http.MethodPost, "/api/session/blend", `{"a":"b1","b":"b1","confirmed":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/session/blend", `{"a":"b1","b":"zz","confirmed":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/session/blend", `{"a":"b1","b":"b2","confirmed":true}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	state := decodeBody[session.State](t, do(t, ts, http.MethodGet, "/api/session", ""))
	assert.Len(t, state.Main, 2, "sources survive a failed blend")
}

// --- export ---

func TestExportJSONRoundTrip(t *testing.T) {
	ts := newTestServer(t, echo("final answer"))
	do(t, ts, http.MethodPut, "/api/session/prompt", `{"prompt":"explain RAID"}`)
	do(t, ts, http.MethodPost, "/api/session/blocks", `{"template":"Definition"}`)
	do(t, ts, http.MethodPost, "/api/session/generate", "")

	resp := do(t, ts, http.MethodGet, "/api/session/export", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "explanation.json")
	doc, err := export.ReadJSON(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "explain RAID", doc.Prompt)
	assert.Equal(t, "final answer", doc.Explanation)
	require.Len(t, doc.Structure, 1)
}

func TestExportMarkdownAndBadFormat(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	resp := do(t, ts, http.MethodGet, "/api/session/export?format=markdown", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Explanation")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "explanation.md")

	resp = do(t, ts, http.MethodGet, "/api/session/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- middleware ---

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, echo("x"))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/explain", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerStartAndShutdown(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}
