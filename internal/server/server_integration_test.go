package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/capture"
	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/store"
	"github.com/ayusman/panmotion/internal/timeutil"
	"github.com/ayusman/panmotion/internal/viewer"
)

func newIntegrationServer(t *testing.T) (*httptest.Server, *app.App, *Hub) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	frames := capture.BlankFrames(1, 32, 24)
	t.Cleanup(func() { frames[0].Close() })

	a, err := app.New(app.Config{
		Store:  st,
		Camera: capture.NewMockCamera(frames, true),
		Detector: func(ctx context.Context) (detector.Detector, error) {
			return detector.NewMockDetector(), nil
		},
		Clock:     timeutil.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		Container: viewer.Size{Width: 800, Height: 600},
		Content:   viewer.Size{Width: 400, Height: 300},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	hub := NewHub()
	a.SetSink(hub)

	ts := httptest.NewServer(New(Config{App: a, Hub: hub}))
	t.Cleanup(ts.Close)
	return ts, a, hub
}

func doJSON(t *testing.T, client *http.Client, method, url, body string, out any) int {
	t.Helper()

	var r *bytes.Buffer
	if body != "" {
		r = bytes.NewBufferString(body)
	} else {
		r = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_SectionWorkflow(t *testing.T) {
	ts, _, _ := newIntegrationServer(t)
	client := ts.Client()

	// 1. The store is seeded with the built-in sections
	var listed struct {
		Sections []section.Section `json:"sections"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, ts.URL+"/api/sections", "", &listed))
	require.Len(t, listed.Sections, len(section.Defaults()))
	assert.Equal(t, "section-a", listed.Sections[0].ID)

	// 2. Create a section without an id
	var created section.Section
	status := doJSON(t, client, http.MethodPost, ts.URL+"/api/sections",
		`{"rect":{"x":10,"y":10,"width":50,"height":40},"cropSrc":"/sections/b.png"}`, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, created.ID)

	// 3. Get it back
	var got section.Section
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, ts.URL+"/api/sections/"+created.ID, "", &got))
	assert.Equal(t, created, got)

	// 4. Duplicate and malformed sections are rejected
	dup, _ := json.Marshal(created)
	assert.Equal(t, http.StatusConflict, doJSON(t, client, http.MethodPost, ts.URL+"/api/sections", string(dup), nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, client, http.MethodPost, ts.URL+"/api/sections",
		`{"id":"flat","rect":{"width":0,"height":10}}`, nil))

	// 5. Delete it
	assert.Equal(t, http.StatusNoContent, doJSON(t, client, http.MethodDelete, ts.URL+"/api/sections/"+created.ID, "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, client, http.MethodGet, ts.URL+"/api/sections/"+created.ID, "", nil))
}

func TestAPI_ViewWorkflow(t *testing.T) {
	ts, _, _ := newIntegrationServer(t)
	client := ts.Client()
	home := viewer.Transform{X: 200, Y: 150, Scale: 1}

	var view app.ViewState
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, ts.URL+"/api/view", "", &view))
	assert.Equal(t, home, view.Transform)
	assert.Equal(t, home, view.Home)

	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPost, ts.URL+"/api/view/pan", `{"dx":10,"dy":5}`, &view))
	assert.Equal(t, viewer.Transform{X: 210, Y: 155, Scale: 1}, view.Transform)

	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPost, ts.URL+"/api/view/zoom", `{"factor":2}`, &view))
	assert.Equal(t, 2.0, view.Transform.Scale)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, client, http.MethodPost, ts.URL+"/api/view/zoom", `{"factor":0}`, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, client, http.MethodPost, ts.URL+"/api/view/spin", `{}`, nil))

	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPost, ts.URL+"/api/view/reset", "", &view))
	assert.Equal(t, home, view.Transform)
}

func TestAPI_SelectAndAbort(t *testing.T) {
	ts, a, _ := newIntegrationServer(t)
	client := ts.Client()

	require.Equal(t, http.StatusAccepted, doJSON(t, client, http.MethodPost, ts.URL+"/api/sections/section-a/select", "", nil))

	var state flow.State
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, ts.URL+"/api/flow", "", &state))
	assert.Equal(t, flow.PhaseMainTransitionOut, state.Phase)
	assert.Equal(t, "section-a", state.SectionID)
	assert.True(t, a.Engine().Animating())

	// Only one selection at a time
	assert.Equal(t, http.StatusConflict, doJSON(t, client, http.MethodPost, ts.URL+"/api/sections/section-a/select", "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, client, http.MethodPost, ts.URL+"/api/sections/missing/select", "", nil))

	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPost, ts.URL+"/api/flow/abort", "", &state))
	assert.Equal(t, flow.PhaseMainIdle, state.Phase)
	assert.False(t, a.Engine().Animating())

	assert.Equal(t, http.StatusConflict, doJSON(t, client, http.MethodPost, ts.URL+"/api/flow/exit", "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, client, http.MethodPost, ts.URL+"/api/flow/dance", "", nil))
}

func TestAPI_Features(t *testing.T) {
	ts, _, _ := newIntegrationServer(t)
	client := ts.Client()

	var features app.Features
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPut, ts.URL+"/api/features", `{"hands":true}`, &features))
	assert.True(t, features.Hands)
	assert.False(t, features.Head)

	require.Eventually(t, func() bool {
		var f app.Features
		doJSON(t, client, http.MethodGet, ts.URL+"/api/features", "", &f)
		return f.HandsReady
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPut, ts.URL+"/api/features", `{"hands":false}`, &features))
	assert.Equal(t, app.Features{}, features)
}

func TestAPI_Dissolve(t *testing.T) {
	ts, _, _ := newIntegrationServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/dissolve?progress=0.5")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err = png.Decode(resp.Body)
	assert.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/dissolve?progress=2", "", nil))
}

func TestAPI_EventsFollowViewChanges(t *testing.T) {
	ts, _, hub := newIntegrationServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/view/pan", `{"dx":-20,"dy":0}`, nil))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg app.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, app.KindView, msg.Kind)
	require.NotNil(t, msg.View)
	assert.Equal(t, viewer.Transform{X: 180, Y: 150, Scale: 1}, *msg.View)
}

func TestAPI_HealthCheck(t *testing.T) {
	ts, _, _ := newIntegrationServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
