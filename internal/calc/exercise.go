package calc

import "errors"

// Exercise identifies one of the supported lifts by its wire id.
type Exercise string

const (
	BenchPress Exercise = "bench_press"
	Squat      Exercise = "squat"
	Deadlift   Exercise = "deadlift"
)

// Exercises is the fixed carousel order.
var Exercises = []Exercise{BenchPress, Squat, Deadlift}

// ErrUnknownExercise is returned when an exercise id is not one of Exercises.
var ErrUnknownExercise = errors.New("unknown exercise")

// ParseExercise maps a wire id to an Exercise.
func ParseExercise(id string) (Exercise, bool) {
	for _, e := range Exercises {
		if string(e) == id {
			return e, true
		}
	}
	return "", false
}

// Index returns the carousel position of e, or -1.
func (e Exercise) Index() int {
	for i, x := range Exercises {
		if x == e {
			return i
		}
	}
	return -1
}

// Locale selects the display language.
type Locale string

const (
	Korean   Locale = "ko"
	English  Locale = "en"
	Japanese Locale = "ja"
)

// DefaultLocale is used when nothing is stored.
const DefaultLocale = Korean

// Locales lists every supported locale.
var Locales = []Locale{Korean, English, Japanese}

// ErrUnknownLocale is returned for a language code outside Locales.
var ErrUnknownLocale = errors.New("unknown locale")

// ParseLocale maps a language code to a Locale.
func ParseLocale(code string) (Locale, bool) {
	for _, l := range Locales {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}
