package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/persist"
	"github.com/claude/onerm/internal/share"
	"github.com/claude/onerm/internal/storage"
)

const sessionCookie = "onerm_session"

// session is one browser's calculator. Handlers hold mu for the whole
// request so events apply in arrival order.
type session struct {
	mu     sync.Mutex
	id     uuid.UUID
	store  persist.Store
	d      *calc.Dispatcher
	status *share.Status

	// lastSeen is guarded by sessions.mu.
	lastSeen time.Time
}

// sessions maps cookie ids to live calculators. A session's storage
// namespace is its id, so a calculator evicted from memory (or lost in a
// restart) is rebuilt from what it last saved.
type sessions struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*session
	kv        storage.KV
	locale    calc.Locale
	log       *slog.Logger
	idle      time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
}

func newSessions(kv storage.KV, locale calc.Locale, idle time.Duration, maxLive int, log *slog.Logger) *sessions {
	return &sessions{
		byID:   make(map[uuid.UUID]*session),
		kv:     kv,
		locale: locale,
		log:    log,
		idle:   idle,
		max:    maxLive,
		now:    time.Now,
	}
}

// start is a page load. The live calculator is reused unless there is none
// yet or the URL carries input parameters, in which case it is restored
// from storage and the query. A restored calculator replaces the live one
// under its lock, so a request still using it finishes (and saves) first.
func (m *sessions) start(w http.ResponseWriter, r *http.Request) *session {
	id := m.identify(w, r)
	q := r.URL.Query()

	m.mu.Lock()
	sess, ok := m.lookup(id)
	m.mu.Unlock()
	if !ok {
		fresh := m.restore(r.Context(), id, q)
		if sess = m.add(fresh); sess == fresh {
			return sess
		}
	}
	if hasInputParams(q) {
		sess.mu.Lock()
		sess.d = m.restore(r.Context(), id, q).d
		sess.mu.Unlock()
	}
	return sess
}

// get returns the live calculator for an API call, restoring it without a
// query when it is not in memory.
func (m *sessions) get(w http.ResponseWriter, r *http.Request) *session {
	id := m.identify(w, r)

	m.mu.Lock()
	sess, ok := m.lookup(id)
	m.mu.Unlock()
	if ok {
		return sess
	}
	return m.add(m.restore(r.Context(), id, nil))
}

// lookup returns the live session for id and marks it used. The caller
// holds m.mu.
func (m *sessions) lookup(id uuid.UUID) (*session, bool) {
	sess, ok := m.byID[id]
	if ok {
		sess.lastSeen = m.now()
	}
	return sess, ok
}

// add registers fresh unless another request restored the same id
// meanwhile, then evicts idle sessions and, past the cap, the least
// recently used ones.
func (m *sessions) add(fresh *session) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.lookup(fresh.id); ok {
		return sess
	}
	now := m.now()
	fresh.lastSeen = now
	m.byID[fresh.id] = fresh

	if now.Sub(m.lastSweep) >= m.idle/10 {
		m.lastSweep = now
		for id, sess := range m.byID {
			if now.Sub(sess.lastSeen) > m.idle {
				delete(m.byID, id)
			}
		}
	}
	for len(m.byID) > m.max {
		var oldest *session
		for _, sess := range m.byID {
			if sess != fresh && (oldest == nil || sess.lastSeen.Before(oldest.lastSeen)) {
				oldest = sess
			}
		}
		if oldest == nil {
			break
		}
		delete(m.byID, oldest.id)
	}
	return fresh
}

func (m *sessions) restore(ctx context.Context, id uuid.UUID, q url.Values) *session {
	store := storage.Scope(m.kv, id.String())
	d := calc.NewDispatcher(persist.Restore(ctx, store, q, m.locale))
	// write-back outlives the request that created the session
	persist.Bind(context.Background(), d, store, m.log.With("session", id))
	return &session{id: id, store: store, d: d}
}

// identify returns the session id from the cookie, issuing a new one when
// the cookie is missing or malformed.
func (m *sessions) identify(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}
	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// later lookups in this request see the same id
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: id.String()})
	return id
}

func hasInputParams(q url.Values) bool {
	return q.Has(persist.ParamExercise) || q.Has(persist.ParamWeight) || q.Has(persist.ParamReps)
}
