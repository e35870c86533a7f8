package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/claude/onerm/internal/batch"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/share"
)

// maxUploadBytes bounds batch workbook uploads.
const maxUploadBytes = 5 << 20

// nativeHandoff passes the payload back to a client that announced a share
// sheet; the client opens it after the response arrives.
type nativeHandoff struct {
	payload *share.Payload
}

func (n *nativeHandoff) Share(_ context.Context, p share.Payload) error {
	n.payload = &p
	return nil
}

// linkHandoff returns the link for the client to place on its clipboard.
type linkHandoff struct {
	text string
}

func (l *linkHandoff) WriteText(_ context.Context, text string) error {
	l.text = text
	return nil
}

// attachment streams an exported file as the response body.
type attachment struct {
	w http.ResponseWriter
}

func (a attachment) Download(_ context.Context, f share.File) error {
	a.w.Header().Set("Content-Type", f.MIME)
	a.w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	a.w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	a.w.WriteHeader(http.StatusOK)
	if _, err := a.w.Write(f.Data); err != nil {
		return fmt.Errorf("writing %s: %w", f.Name, err)
	}
	return nil
}

type shareRequest struct {
	// Native reports that the client has a share sheet.
	Native bool `json:"native"`
	// Clipboard is false when the client cannot write to its clipboard.
	Clipboard *bool `json:"clipboard"`
}

type shareResponse struct {
	Status  share.Status   `json:"status"`
	Payload *share.Payload `json:"payload,omitempty"`
	Link    string         `json:"link,omitempty"`
}

// handleShare runs the link share chain for the visible result. The server
// cannot reach the client's share sheet or clipboard itself, so each step
// hands its data back in the response for the client to finish.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.d.State()
	t := i18n.For(state.Locale())
	if _, ok := state.Result(); !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no result to share"})
		return
	}

	native := &nativeHandoff{}
	link := &linkHandoff{}
	svc := &share.Service{Log: s.log}
	if req.Native {
		svc.Native = native
	}
	if req.Clipboard == nil || *req.Clipboard {
		svc.Clipboard = link
	}

	st := svc.ShareLink(r.Context(), share.NewPayload(s.baseURL(r), state.Input(), t), t)
	sess.status = &st
	writeJSON(w, http.StatusOK, shareResponse{Status: st, Payload: native.payload, Link: link.text})
}

type statusReport struct {
	Kind share.Kind `json:"kind"`
}

// handleReportStatus records how the client finished a share handoff. The
// share endpoint only knows which step was handed over; the share sheet or
// clipboard can still fail on the client, which then reports the real
// outcome here.
func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	switch req.Kind {
	case share.Shared, share.LinkCopied, share.ShareFailed:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown share outcome %q", req.Kind)})
		return
	}

	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := share.StatusFor(req.Kind, i18n.For(sess.d.State().Locale()))
	sess.status = &st
	if st.Error {
		s.log.Warn("client share step failed", "session", sess.id)
	}
	writeJSON(w, http.StatusOK, s.view(r.Context(), sess, r))
}

// handleExport renders the visible result as a PDF card or a workbook and
// sends it as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.d.State()
	t := i18n.For(state.Locale())
	res, ok := state.Result()
	if !ok {
		st := share.StatusFor(share.ExportFailed, t)
		sess.status = &st
		writeJSON(w, http.StatusConflict, map[string]any{"error": "no result to export", "status": st})
		return
	}

	var (
		f   share.File
		err error
	)
	switch chi.URLParam(r, "format") {
	case "pdf":
		f, err = share.PDF(res, state.Locale(), s.opts.Cards)
	case "xlsx":
		f, err = share.XLSX(res, state.Locale(), s.opts.Cards)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown export format"})
		return
	}
	if err != nil {
		s.log.Error("export render failed", "error", err)
		st := share.StatusFor(share.ExportFailed, t)
		sess.status = &st
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "export failed", "status": st})
		return
	}

	svc := &share.Service{Downloader: attachment{w: w}, Log: s.log}
	st := svc.ExportFile(r.Context(), share.NewPayload(s.baseURL(r), state.Input(), t), f, t)
	sess.status = &st
}

// handleBatch estimates every row of an uploaded xlsx workbook. The file is
// either the request body or the "file" part of a multipart form.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field: " + err.Error()})
			return
		}
		defer file.Close()
		body = file
	}

	report, err := batch.Estimate(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), errors.Is(err, batch.ErrTooManyRows):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "workbook too large"})
		case errors.Is(err, batch.ErrEmptySheet):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}
	s.log.Info("batch estimated", "rows", report.Count, "failed", report.Failed)
	writeJSON(w, http.StatusOK, report)
}

