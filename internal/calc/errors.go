package calc

// ErrorKind is a user-correctable validation failure reported by Submit.
// Only one is shown at a time.
type ErrorKind int

const (
	NoError ErrorKind = iota
	MissingExercise
	InvalidWeight
	InvalidReps
)

func (k ErrorKind) Error() string {
	switch k {
	case MissingExercise:
		return "exercise not selected"
	case InvalidWeight:
		return "weight must be a positive number"
	case InvalidReps:
		return "reps must be an integer between 1 and 10"
	default:
		return "no error"
	}
}

// String returns a stable identifier used in JSON payloads.
func (k ErrorKind) String() string {
	switch k {
	case MissingExercise:
		return "missing_exercise"
	case InvalidWeight:
		return "invalid_weight"
	case InvalidReps:
		return "invalid_reps"
	default:
		return ""
	}
}
