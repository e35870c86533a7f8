// Package persist restores calculator input from stored data and the query
// string, and writes it back on every user change.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/claude/onerm/internal/calc"
)

// Keys in the per-session store.
const (
	KeyInputs = "lastInputs"
	KeyLocale = "lang"
	KeyTheme  = "theme"
)

// Query parameter names.
const (
	ParamExercise = "exercise"
	ParamWeight   = "weight"
	ParamReps     = "reps"
)

// Store is the key-value collaborator. Get reports absence with ok=false.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// record is the stored shape of the input triple.
type record struct {
	Exercise string `json:"exercise"`
	Weight   string `json:"weight"`
	Reps     string `json:"reps"`
}

// LoadInputs reads the stored triple. Missing, unreadable or malformed
// records yield an empty Input; unknown exercise ids are dropped.
func LoadInputs(ctx context.Context, store Store) calc.Input {
	raw, ok, err := store.Get(ctx, KeyInputs)
	if err != nil || !ok || raw == "" {
		return calc.Input{}
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return calc.Input{}
	}
	in := calc.Input{Weight: rec.Weight, Reps: rec.Reps}
	if e, ok := calc.ParseExercise(rec.Exercise); ok {
		in.Exercise = e
	}
	return in
}

// SaveInputs overwrites the stored triple with in.
func SaveInputs(ctx context.Context, store Store, in calc.Input) error {
	data, err := json.Marshal(record{
		Exercise: string(in.Exercise),
		Weight:   in.Weight,
		Reps:     in.Reps,
	})
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	if err := store.Set(ctx, KeyInputs, string(data)); err != nil {
		return fmt.Errorf("saving inputs: %w", err)
	}
	return nil
}

// QueryInputs extracts the triple from query parameters. complete is true
// when all three parameters are present and non-empty, which requests an
// automatic submit. Unknown exercise ids are ignored.
func QueryInputs(q url.Values) (in calc.Input, complete bool) {
	exercise := q.Get(ParamExercise)
	in.Weight = q.Get(ParamWeight)
	in.Reps = q.Get(ParamReps)
	if e, ok := calc.ParseExercise(exercise); ok {
		in.Exercise = e
	}
	complete = exercise != "" && in.Weight != "" && in.Reps != ""
	return in, complete
}

// Merge overlays each non-empty field of over onto base.
func Merge(base, over calc.Input) calc.Input {
	if over.Exercise != "" {
		base.Exercise = over.Exercise
	}
	if over.Weight != "" {
		base.Weight = over.Weight
	}
	if over.Reps != "" {
		base.Reps = over.Reps
	}
	return base
}

// LoadLocale returns the stored locale, or fallback.
func LoadLocale(ctx context.Context, store Store, fallback calc.Locale) calc.Locale {
	raw, ok, err := store.Get(ctx, KeyLocale)
	if err != nil || !ok {
		return fallback
	}
	if l, ok := calc.ParseLocale(raw); ok {
		return l
	}
	return fallback
}

// Restore builds a new State for a session start: stored locale, stored
// inputs, then query parameters field by field. When the query carries all
// three parameters the state is submitted. Restoration never writes back.
func Restore(ctx context.Context, store Store, q url.Values, fallback calc.Locale) *calc.State {
	s := calc.NewState(LoadLocale(ctx, store, fallback))

	query, auto := QueryInputs(q)
	in := Merge(LoadInputs(ctx, store), query)

	if in.Exercise != "" {
		_ = s.SelectExercise(in.Exercise)
	}
	s.SetWeight(in.Weight)
	s.SetReps(in.Reps)

	if auto {
		_, _ = s.Submit()
	}
	return s
}

// Bind registers the write-back observers on d: every input change saves the
// full triple, every locale change saves the locale flag. Storage failures
// are logged and otherwise ignored.
func Bind(ctx context.Context, d *calc.Dispatcher, store Store, log *slog.Logger) {
	d.On(func(ev calc.Event, snap calc.Snapshot) {
		if err := SaveInputs(ctx, store, snap.Input); err != nil {
			log.Warn("persist inputs failed", "event", ev, "error", err)
		}
	}, calc.ExerciseChanged, calc.WeightChanged, calc.RepsChanged, calc.CarouselMoved)

	d.On(func(ev calc.Event, snap calc.Snapshot) {
		if err := store.Set(ctx, KeyLocale, string(snap.Locale)); err != nil {
			log.Warn("persist locale failed", "error", err)
		}
	}, calc.LocaleChanged)
}
