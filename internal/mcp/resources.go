package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
)

func (h *handlers) exercises(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type entry struct {
		ID    calc.Exercise          `json:"id"`
		Names map[calc.Locale]string `json:"names"`
	}
	catalog := struct {
		Exercises []entry `json:"exercises"`
		MinReps   int     `json:"min_reps"`
		MaxReps   int     `json:"max_reps"`
		Formula   string  `json:"formula"`
	}{
		MinReps: calc.MinReps,
		MaxReps: calc.MaxReps,
		Formula: "round(weight * (1 + reps / 30))",
	}
	for _, e := range calc.Exercises {
		names := make(map[calc.Locale]string, len(calc.Locales))
		for _, l := range calc.Locales {
			names[l] = i18n.For(l).ExerciseName(e)
		}
		catalog.Exercises = append(catalog.Exercises, entry{ID: e, Names: names})
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
