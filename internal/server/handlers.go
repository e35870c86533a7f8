package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/persist"
	"github.com/claude/onerm/internal/render"
	"github.com/claude/onerm/internal/share"
)

// pageData is what templates/index.html renders.
type pageData struct {
	render.View
	ShareURL string
}

// view renders sess for r. The caller holds sess.mu.
func (s *Server) view(ctx context.Context, sess *session, r *http.Request) render.View {
	theme := persist.LoadTheme(ctx, sess.store, prefersDark(r))
	opts := render.Options{
		Theme:     string(theme),
		ThemeIcon: theme.Icon(),
		Links:     s.opts.Links,
	}
	snap := sess.d.State().Snapshot()
	if sess.status != nil {
		// re-localized so a later locale switch also translates the banner
		st := share.StatusFor(sess.status.Kind, i18n.For(snap.Locale))
		opts.Status = st.Message
		opts.StatusError = st.Error
	}
	return render.Render(snap, opts)
}

// prefersDark reads the client hint browsers send once asked via Accept-CH.
func prefersDark(r *http.Request) bool {
	return r.Header.Get("Sec-CH-Prefers-Color-Scheme") == "dark"
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.start(w, r)
	sess.mu.Lock()
	data := pageData{View: s.view(r.Context(), sess, r)}
	if _, ok := sess.d.State().Result(); ok {
		data.ShareURL = share.Link(s.baseURL(r), sess.d.State().Input())
	}
	// the status banner is shown once
	sess.status = nil
	sess.mu.Unlock()

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
	w.Header().Set("Vary", "Sec-CH-Prefers-Color-Scheme")
	_, _ = w.Write(buf.Bytes())
}

// handleForm applies a no-script form post and redirects back to the page.
// Field values are dispatched as the matching events, then the action runs.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	d := sess.d
	if r.PostForm.Has("exercise") {
		s.dispatch(d, calc.ExerciseChanged, r.PostForm.Get("exercise"))
	}
	if r.PostForm.Has("weight") && r.PostForm.Get("weight") != d.State().Input().Weight {
		s.dispatch(d, calc.WeightChanged, r.PostForm.Get("weight"))
	}
	if r.PostForm.Has("reps") && r.PostForm.Get("reps") != d.State().Input().Reps {
		s.dispatch(d, calc.RepsChanged, r.PostForm.Get("reps"))
	}

	switch r.PostForm.Get("action") {
	case "submit":
		s.dispatch(d, calc.SubmitRequested, "")
	case calc.CarouselNext, calc.CarouselPrev:
		s.dispatch(d, calc.CarouselMoved, r.PostForm.Get("action"))
	case "locale":
		s.dispatch(d, calc.LocaleChanged, r.PostForm.Get("lang"))
	case "theme":
		if _, err := persist.ToggleTheme(r.Context(), sess.store, prefersDark(r)); err != nil {
			s.log.Warn("persist theme failed", "error", err)
		}
	case "dismiss":
		sess.status = nil
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// dispatch applies a form event, logging values the dispatcher rejects.
func (s *Server) dispatch(d *calc.Dispatcher, ev calc.Event, value string) {
	err := d.Dispatch(ev, value)
	var kind calc.ErrorKind
	if err != nil && !errors.As(err, &kind) {
		s.log.Debug("form event rejected", "event", ev, "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, r))
}

type eventRequest struct {
	Value string `json:"value"`
}

// handleEvent dispatches one named event and returns the re-rendered view.
// A validation failure is part of the view, not an HTTP error.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ev := calc.Event(chi.URLParam(r, "event"))

	var req eventRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	err := sess.d.Dispatch(ev, req.Value)
	var kind calc.ErrorKind
	switch {
	case err == nil, errors.As(err, &kind):
	case errors.Is(err, calc.ErrUnknownEvent):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, r))
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := persist.ToggleTheme(r.Context(), sess.store, prefersDark(r)); err != nil {
		s.log.Warn("persist theme failed", "error", err)
	}
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, r))
}

func (s *Server) handleDismissStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	sess.status = nil
	sess.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type estimateResponse struct {
	Result    *calc.Result `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
	Text      string       `json:"text,omitempty"`
}

// handleEstimate computes a one-off estimate from query parameters without
// touching any session.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	locale, ok := calc.ParseLocale(q.Get("lang"))
	if !ok {
		locale = s.opts.DefaultLocale
	}
	t := i18n.For(locale)

	in := calc.Input{
		Exercise: calc.Exercise(q.Get(persist.ParamExercise)),
		Weight:   q.Get(persist.ParamWeight),
		Reps:     q.Get(persist.ParamReps),
	}
	res, err := calc.Estimate(in)
	if err != nil {
		var kind calc.ErrorKind
		errors.As(err, &kind)
		writeJSON(w, http.StatusUnprocessableEntity, estimateResponse{
			Error:     t.ErrorMessage(kind),
			ErrorKind: kind.String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		Result: &res,
		Text:   render.Card(res, t).OneRepMax,
	})
}

func (s *Server) handlePrecache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"assets": render.PrecacheAssets})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
