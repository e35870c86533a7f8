// Package share publishes a calculator result: a reconstructible link, a
// PDF result card or a spreadsheet, each through a best-effort fallback
// chain. Failures only produce a status message.
package share

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/persist"
)

// ErrUnavailable reports that a collaborator cannot be used on this client.
var ErrUnavailable = errors.New("share target unavailable")

// File is an exported artifact.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Payload is what a native share receives.
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	File  *File  `json:"-"`
}

// Sharer is the platform share sheet.
type Sharer interface {
	Share(ctx context.Context, p Payload) error
}

// Clipboard copies text for the user.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Downloader saves a file on the user's side.
type Downloader interface {
	Download(ctx context.Context, f File) error
}

// Kind classifies a share/export outcome.
type Kind string

const (
	Shared       Kind = "shared"
	LinkCopied   Kind = "link_copied"
	ShareFailed  Kind = "share_failed"
	Exported     Kind = "exported"
	Downloaded   Kind = "downloaded"
	ExportFailed Kind = "export_failed"
)

// Status is the transient, dismissable banner shown after a share/export.
type Status struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// StatusFor returns the banner for k in t. Unknown kinds report a share failure.
func StatusFor(k Kind, t i18n.Strings) Status {
	switch k {
	case Shared:
		return Status{Kind: k, Message: t.Shared}
	case LinkCopied:
		return Status{Kind: k, Message: t.LinkCopied}
	case Exported:
		return Status{Kind: k, Message: t.Exported}
	case Downloaded:
		return Status{Kind: k, Message: t.Downloaded}
	case ExportFailed:
		return Status{Kind: k, Message: t.ExportFailed, Error: true}
	default:
		return Status{Kind: ShareFailed, Message: t.ShareFailed, Error: true}
	}
}

// Link rebuilds a URL that restores in when opened: base's scheme, host and
// path with exercise, weight and reps as query parameters. Unset fields are
// left out.
func Link(base *url.URL, in calc.Input) string {
	u := url.URL{Scheme: base.Scheme, Host: base.Host, Path: base.Path}
	q := url.Values{}
	if in.Exercise != "" {
		q.Set(persist.ParamExercise, string(in.Exercise))
	}
	if w := strings.TrimSpace(in.Weight); w != "" {
		q.Set(persist.ParamWeight, w)
	}
	if in.Reps != "" {
		q.Set(persist.ParamReps, in.Reps)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Service runs the fallback chains. Any collaborator may be nil, which is
// treated as unavailable.
type Service struct {
	Native     Sharer
	Clipboard  Clipboard
	Downloader Downloader
	Log        *slog.Logger
}

// ShareLink tries the native share sheet, then copies the link.
func (s *Service) ShareLink(ctx context.Context, p Payload, t i18n.Strings) Status {
	if s.Native != nil {
		err := s.Native.Share(ctx, p)
		if err == nil {
			return StatusFor(Shared, t)
		}
		s.logFallback("native share", err)
	}
	if s.Clipboard != nil {
		err := s.Clipboard.WriteText(ctx, p.URL)
		if err == nil {
			return StatusFor(LinkCopied, t)
		}
		s.logFallback("clipboard", err)
	}
	return StatusFor(ShareFailed, t)
}

// ExportFile tries sharing f natively, then a direct download.
func (s *Service) ExportFile(ctx context.Context, p Payload, f File, t i18n.Strings) Status {
	if s.Native != nil {
		p.File = &f
		err := s.Native.Share(ctx, p)
		if err == nil {
			return StatusFor(Exported, t)
		}
		s.logFallback("native file share", err)
	}
	if s.Downloader != nil {
		err := s.Downloader.Download(ctx, f)
		if err == nil {
			return StatusFor(Downloaded, t)
		}
		s.logFallback("download", err)
	}
	return StatusFor(ExportFailed, t)
}

func (s *Service) logFallback(step string, err error) {
	if s.Log == nil {
		return
	}
	if errors.Is(err, ErrUnavailable) {
		s.Log.Debug("share step unavailable", "step", step)
		return
	}
	s.Log.Warn("share step failed", "step", step, "error", err)
}

// NewPayload builds the localized share payload for in.
func NewPayload(base *url.URL, in calc.Input, t i18n.Strings) Payload {
	return Payload{Title: t.ShareTitle, Text: t.ShareText, URL: Link(base, in)}
}
