package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/render"
	"github.com/claude/onerm/internal/share"
)

// --- Tool definitions ---

var toolEstimate = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate a one-rep max from a set: weight lifted (kg) for 1 to 10 reps. Uses the Epley formula rounded to whole kilograms."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id"), mcp.Enum("bench_press", "squat", "deadlift")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted in kg, greater than zero")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed, an integer from 1 to 10")),
	mcp.WithString("locale", mcp.Description("Language of the text fields. Defaults to ko."), mcp.Enum("ko", "en", "ja")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the supported exercises with their ids and localized names."),
	mcp.WithString("locale", mcp.Description("Language of the names. Defaults to ko."), mcp.Enum("ko", "en", "ja")),
)

type estimate struct {
	calc.Result
	Name string `json:"name"`
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

type exercise struct {
	ID    calc.Exercise `json:"id"`
	Name  string        `json:"name"`
	Image string        `json:"image"`
}

func localeArg(req mcp.CallToolRequest) calc.Locale {
	if l, ok := calc.ParseLocale(req.GetString("locale", "")); ok {
		return l
	}
	return calc.DefaultLocale
}

func (h *handlers) estimate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ex, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireFloat("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	t := i18n.For(localeArg(req))

	in := calc.Input{
		Exercise: calc.Exercise(ex),
		Weight:   strconv.FormatFloat(weight, 'f', -1, 64),
		Reps:     strconv.FormatFloat(reps, 'f', -1, 64),
	}
	res, err := h.ds.Estimate(ctx, in)
	if err != nil {
		var kind calc.ErrorKind
		if errors.As(err, &kind) {
			return mcp.NewToolResultError(t.ErrorMessage(kind)), nil
		}
		h.log.Warn("estimate failed", "error", err)
		return mcp.NewToolResultError("estimate failed: " + err.Error()), nil
	}

	out := estimate{
		Result: res,
		Name:   t.ExerciseName(res.Exercise),
		Text:   render.Card(res, t).OneRepMax,
	}
	if h.base != nil {
		out.Link = share.Link(h.base, in)
	}
	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := i18n.For(localeArg(req))
	list := make([]exercise, 0, len(calc.Exercises))
	for _, e := range calc.Exercises {
		list = append(list, exercise{ID: e, Name: t.ExerciseName(e), Image: render.Images[e]})
	}
	result, err := mcp.NewToolResultJSON(list)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
