package calc

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinReps = 1
	MaxReps = 10

	// MaxWeight bounds accepted weights in kg, well above any human lift,
	// so the estimate always fits in an int.
	MaxWeight = 10000
)

// ComputeOneRepMax estimates a one-repetition maximum with the Epley formula,
// weight * (1 + reps/30), rounded half-up to the nearest integer.
//
// The product is formed as weight*(30+reps)/30 so that exact ties such as
// 15kg x 1 (15.5) are not pushed below .5 by the inexact 1/30.
func ComputeOneRepMax(weight float64, reps int) int {
	v := weight * float64(30+reps) / 30
	return int(math.Floor(v + 0.5))
}

// ParseWeight validates raw weight text: non-empty, finite, greater than zero
// and at most MaxWeight.
func ParseWeight(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, InvalidWeight
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 || w > MaxWeight {
		return 0, InvalidWeight
	}
	return w, nil
}

// ParseReps validates raw reps text: non-empty, integral, within [MinReps, MaxReps].
// Integral values written with a zero fraction ("5.0") are accepted.
func ParseReps(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, InvalidReps
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, InvalidReps
	}
	if v < MinReps || v > MaxReps {
		return 0, InvalidReps
	}
	return int(v), nil
}
