package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/viewer"
)

// fakeController records calls and answers from canned state.
type fakeController struct {
	sections  []section.Section
	addErr    error
	removeErr error
	selectErr error
	selected  string

	view     app.ViewState
	pans     [][2]float64
	zooms    [][3]float64
	animated *viewer.Transform
	duration time.Duration
	resets   int

	features app.Features

	flow       *flow.Machine
	actionErr  error
	actions    []string
	progresses []float64

	maskErr error
}

func newFakeController() *fakeController {
	return &fakeController{
		sections: section.Defaults(),
		view: app.ViewState{
			Transform: viewer.Transform{X: 200, Y: 150, Scale: 1},
			Home:      viewer.Transform{X: 200, Y: 150, Scale: 1},
			Container: viewer.Size{Width: 800, Height: 600},
		},
		flow: flow.New(),
	}
}

func (f *fakeController) Sections() []section.Section { return f.sections }

func (f *fakeController) Section(id string) (section.Section, error) {
	if s := section.ByID(id, f.sections); s != nil {
		return *s, nil
	}
	return section.Section{}, fmt.Errorf("%w: %s", app.ErrUnknownSection, id)
}

func (f *fakeController) AddSection(s section.Section) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if f.addErr != nil {
		return f.addErr
	}
	f.sections = append(f.sections, s)
	return nil
}

func (f *fakeController) RemoveSection(id string) error { return f.removeErr }

func (f *fakeController) SelectSection(id string) error {
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selected = id
	return nil
}

func (f *fakeController) View() app.ViewState {
	return f.view
}

func (f *fakeController) Pan(dx, dy float64) {
	f.pans = append(f.pans, [2]float64{dx, dy})
}

func (f *fakeController) ResetView() {
	f.resets++
}

func (f *fakeController) Zoom(factor, cx, cy float64) {
	f.zooms = append(f.zooms, [3]float64{factor, cx, cy})
}

func (f *fakeController) AnimateTo(target viewer.Transform, d time.Duration) {
	f.animated = &target
	f.duration = d
}

func (f *fakeController) CenterContent(container, content viewer.Size) bool {
	return container.Width > 0 && container.Height > 0 && content.Width > 0 && content.Height > 0
}

func (f *fakeController) Features() app.Features { return f.features }
func (f *fakeController) SetHandsEnabled(enabled bool) { f.features.Hands = enabled }
func (f *fakeController) SetHeadEnabled(enabled bool) { f.features.Head = enabled }

func (f *fakeController) Flow() *flow.Machine { return f.flow }

func (f *fakeController) FlowAction(action string, progress float64) error {
	f.actions = append(f.actions, action)
	f.progresses = append(f.progresses, progress)
	return f.actionErr
}

func (f *fakeController) DissolveMask(progress float64) ([]byte, error) {
	if f.maskErr != nil {
		return nil, f.maskErr
	}
	return []byte(fmt.Sprintf("mask %.2f", progress)), nil
}

var _ Controller = (*fakeController)(nil)

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSectionHandler_List(t *testing.T) {
	f := newFakeController()
	h := NewSectionHandler(f)

	rec := serve(h, http.MethodGet, "/api/sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp listSectionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, f.sections, resp.Sections)

	t.Run("empty list is an array", func(t *testing.T) {
		f.sections = nil
		rec := serve(h, http.MethodGet, "/api/sections", "")
		assert.JSONEq(t, `{"sections":[]}`, rec.Body.String())
	})
}

func TestSectionHandler_Create(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		addErr error
		want   int
	}{
		{"valid with id", `{"id":"b","rect":{"x":1,"y":2,"width":3,"height":4}}`, nil, http.StatusCreated},
		{"valid without id", `{"rect":{"width":3,"height":4}}`, nil, http.StatusCreated},
		{"invalid json", `{"id":`, nil, http.StatusBadRequest},
		{"empty rect", `{"id":"b","rect":{"width":0,"height":4}}`, nil, http.StatusBadRequest},
		{"3D without model", `{"id":"b","rect":{"width":3,"height":4},"has3D":true}`, nil, http.StatusBadRequest},
		{"duplicate", `{"id":"section-a","rect":{"width":3,"height":4}}`, errors.New("section section-a already exists"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeController()
			f.addErr = tt.addErr

			rec := serve(NewSectionHandler(f), http.MethodPost, "/api/sections", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.want == http.StatusCreated {
				var got section.Section
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.NotEmpty(t, got.ID)
				assert.Len(t, f.sections, len(section.Defaults())+1)
			}
		})
	}
}

func TestSectionHandler_Item(t *testing.T) {
	f := newFakeController()
	h := NewSectionHandler(f)

	t.Run("get", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/api/sections/section-a", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got section.Section
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, section.Defaults()[0], got)
	})

	t.Run("get missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/sections/nope", "").Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodDelete, "/api/sections/section-a", "").Code)

		f.removeErr = fmt.Errorf("%w: x", app.ErrUnknownSection)
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodDelete, "/api/sections/x", "").Code)

		f.removeErr = errors.New("disk on fire")
		assert.Equal(t, http.StatusInternalServerError, serve(h, http.MethodDelete, "/api/sections/x", "").Code)
		f.removeErr = nil
	})

	t.Run("unsupported paths and methods", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPut, "/api/sections/section-a", "").Code)
		assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodDelete, "/api/sections", "").Code)
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/sections/a/b/c", "").Code)
	})
}

func TestSectionHandler_Select(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"unknown", fmt.Errorf("%w: x", app.ErrUnknownSection), http.StatusNotFound},
		{"busy", fmt.Errorf("%w: select in MAIN_TRANSITION_OUT", flow.ErrInvalidTransition), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeController()
			f.selectErr = tt.err

			rec := serve(NewSectionHandler(f), http.MethodPost, "/api/sections/section-a/select", "")
			assert.Equal(t, tt.want, rec.Code)
			if tt.err == nil {
				assert.Equal(t, "section-a", f.selected)
			}
		})
	}

	t.Run("GET not allowed", func(t *testing.T) {
		rec := serve(NewSectionHandler(newFakeController()), http.MethodGet, "/api/sections/section-a/select", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestViewHandler(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewViewHandler(f), http.MethodGet, "/api/view", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got app.ViewState
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, f.view, got)
	})

	t.Run("pan", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewViewHandler(f), http.MethodPost, "/api/view/pan", `{"dx":3,"dy":-4}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [][2]float64{{3, -4}}, f.pans)
	})

	t.Run("zoom defaults to container center", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewViewHandler(f), http.MethodPost, "/api/view/zoom", `{"factor":1.5}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [][3]float64{{1.5, 400, 300}}, f.zooms)
	})

	t.Run("zoom at point", func(t *testing.T) {
		f := newFakeController()
		serve(NewViewHandler(f), http.MethodPost, "/api/view/zoom", `{"factor":0.5,"x":10,"y":20}`)
		assert.Equal(t, [][3]float64{{0.5, 10, 20}}, f.zooms)
	})

	t.Run("animate", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewViewHandler(f), http.MethodPost, "/api/view/animate",
			`{"target":{"x":1,"y":2,"scale":3},"durationMs":250}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, f.animated)
		assert.Equal(t, viewer.Transform{X: 1, Y: 2, Scale: 3}, *f.animated)
		assert.Equal(t, 250*time.Millisecond, f.duration)
	})

	t.Run("reset", func(t *testing.T) {
		f := newFakeController()
		serve(NewViewHandler(f), http.MethodPost, "/api/view/reset", "")
		assert.Equal(t, 1, f.resets)
	})

	t.Run("rejects bad requests", func(t *testing.T) {
		tests := []struct {
			target string
			body   string
			want   int
		}{
			{"/api/view/zoom", `{"factor":0}`, http.StatusBadRequest},
			{"/api/view/zoom", `{"factor":-1}`, http.StatusBadRequest},
			{"/api/view/pan", `not json`, http.StatusBadRequest},
			{"/api/view/animate", `{"target":{"scale":0}}`, http.StatusBadRequest},
			{"/api/view/center", `{"container":{"width":800,"height":600},"content":{"width":0,"height":0}}`, http.StatusBadRequest},
			{"/api/view/rotate", `{}`, http.StatusNotFound},
		}
		for _, tt := range tests {
			f := newFakeController()
			rec := serve(NewViewHandler(f), http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code, tt.target+" "+tt.body)
			assert.Empty(t, f.zooms)
			assert.Empty(t, f.pans)
		}
	})

	t.Run("actions need POST", func(t *testing.T) {
		rec := serve(NewViewHandler(newFakeController()), http.MethodGet, "/api/view/reset", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestFeaturesHandler(t *testing.T) {
	f := newFakeController()
	h := NewFeaturesHandler(f)

	rec := serve(h, http.MethodPut, "/api/features", `{"head":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hands":false,"head":true,"handsReady":false,"headReady":false}`, rec.Body.String())

	// Omitted fields are left alone.
	serve(h, http.MethodPut, "/api/features", `{"hands":true}`)
	assert.Equal(t, app.Features{Hands: true, Head: true}, f.features)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPut, "/api/features", `[`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "/api/features", `{}`).Code)
}

func TestFlowHandler(t *testing.T) {
	t.Run("get state", func(t *testing.T) {
		rec := serve(NewFlowHandler(newFakeController()), http.MethodGet, "/api/flow", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"phase":"MAIN_IDLE"}`, rec.Body.String())
	})

	t.Run("action with progress", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewFlowHandler(f), http.MethodPost, "/api/flow/flip", `{"progress":0.25}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"flip"}, f.actions)
		assert.Equal(t, []float64{0.25}, f.progresses)
	})

	t.Run("action without body", func(t *testing.T) {
		f := newFakeController()
		rec := serve(NewFlowHandler(f), http.MethodPost, "/api/flow/exit", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"exit"}, f.actions)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{fmt.Errorf("%w: %q", app.ErrUnknownAction, "spin"), http.StatusNotFound},
			{fmt.Errorf("%w: exit in MAIN_IDLE", flow.ErrInvalidTransition), http.StatusConflict},
			{errors.New("boom"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			f := newFakeController()
			f.actionErr = tt.err
			assert.Equal(t, tt.want, serve(NewFlowHandler(f), http.MethodPost, "/api/flow/x", "").Code)
		}
	})
}

func TestDissolveHandler(t *testing.T) {
	f := newFakeController()
	h := NewDissolveHandler(f.DissolveMask)

	rec := serve(h, http.MethodGet, "/api/dissolve?progress=0.3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mask 0.30", rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/dissolve", "")
	assert.Equal(t, "mask 0.00", rec.Body.String())

	for _, q := range []string{"-0.1", "1.5", "half"} {
		assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/dissolve?progress="+q, "").Code, q)
	}

	f.maskErr = errors.New("encode failed")
	assert.Equal(t, http.StatusInternalServerError, serve(h, http.MethodGet, "/api/dissolve?progress=1", "").Code)
}
