package calc

import (
	"errors"
	"fmt"
)

// Event names a user interaction the state reacts to.
type Event string

const (
	ExerciseChanged Event = "exerciseChanged"
	WeightChanged   Event = "weightChanged"
	RepsChanged     Event = "repsChanged"
	SubmitRequested Event = "submitRequested"
	LocaleChanged   Event = "localeChanged"
	CarouselMoved   Event = "carouselMoved"
)

// Carousel directions carried by CarouselMoved.
const (
	CarouselNext = "next"
	CarouselPrev = "prev"
)

// ErrUnknownEvent is returned by Dispatch for an unregistered event name.
var ErrUnknownEvent = errors.New("unknown event")

// Observer is notified after the state has applied an event.
type Observer func(ev Event, snap Snapshot)

// Dispatcher routes named events to a single State and then notifies the
// observers registered for that event. Observers are the presentation
// surfaces (view, share card) and the persistence bridge; none of them
// mutate the state.
type Dispatcher struct {
	state     *State
	observers map[Event][]Observer
}

func NewDispatcher(s *State) *Dispatcher {
	return &Dispatcher{state: s, observers: make(map[Event][]Observer)}
}

// State returns the dispatcher's state.
func (d *Dispatcher) State() *State { return d.state }

// On registers fn for the given events. With no events, fn observes all of them.
func (d *Dispatcher) On(fn Observer, events ...Event) {
	if len(events) == 0 {
		events = []Event{ExerciseChanged, WeightChanged, RepsChanged, SubmitRequested, LocaleChanged, CarouselMoved}
	}
	for _, ev := range events {
		d.observers[ev] = append(d.observers[ev], fn)
	}
}

// Dispatch applies ev with its value to the state. Validation failures from
// SubmitRequested are returned as an ErrorKind after observers have run;
// malformed values are returned without notifying anyone.
func (d *Dispatcher) Dispatch(ev Event, value string) error {
	err := d.apply(ev, value)
	var kind ErrorKind
	if err != nil && !errors.As(err, &kind) {
		return err
	}
	snap := d.state.Snapshot()
	for _, fn := range d.observers[ev] {
		fn(ev, snap)
	}
	return err
}

func (d *Dispatcher) apply(ev Event, value string) error {
	s := d.state
	switch ev {
	case ExerciseChanged:
		e, ok := ParseExercise(value)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownExercise, value)
		}
		return s.SelectExercise(e)
	case WeightChanged:
		s.SetWeight(value)
		return nil
	case RepsChanged:
		s.SetReps(value)
		return nil
	case SubmitRequested:
		_, err := s.Submit()
		return err
	case LocaleChanged:
		l, ok := ParseLocale(value)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLocale, value)
		}
		return s.SetLocale(l)
	case CarouselMoved:
		switch value {
		case CarouselNext:
			s.MoveCarousel(1)
		case CarouselPrev:
			s.MoveCarousel(-1)
		default:
			return fmt.Errorf("invalid carousel direction %q", value)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
	}
}
