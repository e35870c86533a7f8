package calc

import "strings"

// Input is the raw user input triple. Weight and reps are kept as typed so
// they can be shown, stored and shared exactly as entered.
type Input struct {
	Exercise Exercise `json:"exercise"`
	Weight   string   `json:"weight"`
	Reps     string   `json:"reps"`
}

// Complete reports whether every field is set (not necessarily valid).
func (in Input) Complete() bool {
	return in.Exercise != "" && strings.TrimSpace(in.Weight) != "" && strings.TrimSpace(in.Reps) != ""
}

// Result is the derived estimate. It only exists for a validated Input.
type Result struct {
	Exercise   Exercise `json:"exercise"`
	Weight     float64  `json:"weight"`
	WeightText string   `json:"weight_text"`
	Reps       int      `json:"reps"`
	OneRepMax  int      `json:"one_rep_max"`
}

// State owns the calculator input, the derived result and its visibility.
// It is not safe for concurrent use; callers serialize access.
type State struct {
	input    Input
	locale   Locale
	carousel int
	result   *Result
	err      ErrorKind
}

// NewState returns an empty state in the given locale.
func NewState(locale Locale) *State {
	if _, ok := ParseLocale(string(locale)); !ok {
		locale = DefaultLocale
	}
	return &State{locale: locale}
}

// Input returns a copy of the current input triple.
func (s *State) Input() Input { return s.input }

func (s *State) Locale() Locale { return s.locale }

// CarouselIndex returns the selector position in Exercises.
func (s *State) CarouselIndex() int { return s.carousel }

// Err returns the error from the last failed Submit, or NoError.
func (s *State) Err() ErrorKind { return s.err }

// Result returns the visible result, if any.
func (s *State) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// SelectExercise sets the exercise, clears any error, hides the result and
// aligns the carousel with the selection.
func (s *State) SelectExercise(e Exercise) error {
	idx := e.Index()
	if idx < 0 {
		return ErrUnknownExercise
	}
	s.input.Exercise = e
	s.carousel = idx
	s.err = NoError
	s.result = nil
	return nil
}

// SetWeight stores raw weight text and hides the result.
func (s *State) SetWeight(raw string) {
	s.input.Weight = raw
	s.result = nil
}

// SetReps stores raw reps text and hides the result.
func (s *State) SetReps(raw string) {
	s.input.Reps = raw
	s.result = nil
}

// MoveCarousel rotates the selector by step positions (negative moves back)
// and selects the exercise under it.
func (s *State) MoveCarousel(step int) Exercise {
	n := len(Exercises)
	idx := ((s.carousel+step)%n + n) % n
	e := Exercises[idx]
	_ = s.SelectExercise(e)
	return e
}

// SetCarouselIndex points the selector at idx and selects that exercise.
func (s *State) SetCarouselIndex(idx int) error {
	if idx < 0 || idx >= len(Exercises) {
		return ErrUnknownExercise
	}
	return s.SelectExercise(Exercises[idx])
}

// SetLocale changes the display locale. Input, result and error are untouched.
func (s *State) SetLocale(l Locale) error {
	if _, ok := ParseLocale(string(l)); !ok {
		return ErrUnknownLocale
	}
	s.locale = l
	return nil
}

// Submit validates the input in order exercise, weight, reps and stops at the
// first failure. On success the result becomes visible and is returned; on
// failure the result is hidden and the ErrorKind is returned as the error.
func (s *State) Submit() (Result, error) {
	s.result = nil
	s.err = NoError

	if s.input.Exercise == "" {
		s.err = MissingExercise
		return Result{}, s.err
	}
	w, err := ParseWeight(s.input.Weight)
	if err != nil {
		s.err = InvalidWeight
		return Result{}, s.err
	}
	r, err := ParseReps(s.input.Reps)
	if err != nil {
		s.err = InvalidReps
		return Result{}, s.err
	}

	res := Result{
		Exercise:   s.input.Exercise,
		Weight:     w,
		WeightText: strings.TrimSpace(s.input.Weight),
		Reps:       r,
		OneRepMax:  ComputeOneRepMax(w, r),
	}
	s.result = &res
	return res, nil
}

// Snapshot is a read-only copy of everything presentation needs.
type Snapshot struct {
	Input         Input     `json:"input"`
	Locale        Locale    `json:"locale"`
	CarouselIndex int       `json:"carousel_index"`
	Result        *Result   `json:"result,omitempty"`
	Error         ErrorKind `json:"-"`
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Input:         s.input,
		Locale:        s.locale,
		CarouselIndex: s.carousel,
		Error:         s.err,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// Estimate validates in on a fresh state exactly like a form submit. An
// exercise id that is not one of Exercises counts as missing.
func Estimate(in Input) (Result, error) {
	s := NewState(DefaultLocale)
	if in.Exercise.Index() >= 0 {
		_ = s.SelectExercise(in.Exercise)
	}
	s.SetWeight(in.Weight)
	s.SetReps(in.Reps)
	return s.Submit()
}
