// ABOUTME: MCP tool implementations for focus observations and analysis.
// ABOUTME: Provides add/list/delete plus describe, correlate, and analyze.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/regress"
	"github.com/harperreed/focus/internal/stats"
)

func (s *Server) registerTools() {
	// add_observation
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_observation",
		Description: "Record (or replace) one day of metrics: sleep, exercise, screen time, study, social, nutrition, caffeine, stress, cycle, focus",
	}, s.handleAddObservation)

	// list_observations
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_observations",
		Description: "List recent daily observations, oldest first",
	}, s.handleListObservations)

	// delete_observation
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_observation",
		Description: "Delete an observation by ID or ID prefix",
	}, s.handleDeleteObservation)

	// describe
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "describe",
		Description: "Descriptive statistics (mean, std, quartiles) for each tracked metric",
	}, s.handleDescribe)

	// correlate
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "correlate",
		Description: "Rank metrics by Pearson correlation with next-day or same-day focus",
	}, s.handleCorrelate)

	// analyze
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze",
		Description: "Run the full analysis: tests, regression models predicting next-day focus, importances, findings",
	}, s.handleAnalyze)
}

// Tool input/output types

type addObservationInput struct {
	Date            string  `json:"date,omitempty" jsonschema:"Day in YYYY-MM-DD; defaults to today"`
	SleepHours      float64 `json:"sleep_hours" jsonschema:"Hours slept the night before"`
	ExerciseMinutes float64 `json:"exercise_minutes" jsonschema:"Minutes of exercise"`
	ScreenTimeHours float64 `json:"screen_time_hours" jsonschema:"Recreational screen time in hours"`
	StudyHours      float64 `json:"study_hours" jsonschema:"Hours of focused study or work"`
	SocialHours     float64 `json:"social_hours" jsonschema:"Hours spent socialising"`
	NutritionScore  float64 `json:"nutrition_score" jsonschema:"Diet quality from 0 to 10"`
	CaffeineMg      float64 `json:"caffeine_mg" jsonschema:"Caffeine intake in mg"`
	StressLevel     float64 `json:"stress_level" jsonschema:"Stress from 0 to 10"`
	Cycle           int     `json:"cycle,omitempty" jsonschema:"1 if the cycle indicator applies to this day, else 0"`
	FocusScore      float64 `json:"focus_score" jsonschema:"Self-rated focus from 0 to 10"`
	Notes           string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type observationOutput struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type listObservationsInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only days on or after this date (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results, most recent days (default 14)"`
}

type deleteObservationInput struct {
	ID string `json:"id" jsonschema:"Observation ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type describeInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only days on or after this date (YYYY-MM-DD)"`
}

type describeOutput struct {
	Days      int             `json:"days"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Summaries []stats.Summary `json:"summaries"`
}

type correlateInput struct {
	Since  string `json:"since,omitempty" jsonschema:"Only days on or after this date (YYYY-MM-DD)"`
	Target string `json:"target,omitempty" jsonschema:"next_day (default) or same_day"`
}

type correlateOutput struct {
	Target       string              `json:"target"`
	N            int                 `json:"n"`
	Correlations []stats.Correlation `json:"correlations"`
}

type analyzeInput struct {
	Since        string  `json:"since,omitempty" jsonschema:"Only days on or after this date (YYYY-MM-DD)"`
	TestFraction float64 `json:"test_fraction,omitempty" jsonschema:"Share of the latest pairs held out for testing (default from config)"`
	Seed         *int64  `json:"seed,omitempty" jsonschema:"Random seed for the tree ensembles"`
}

type analyzeOutput struct {
	Days        int                  `json:"days"`
	Pairs       int                  `json:"pairs"`
	TestFrom    string               `json:"test_from"`
	BestModel   string               `json:"best_model"`
	Holdout     []regress.Score      `json:"holdout"`
	Importance  []regress.Importance `json:"importance"`
	Findings    []string             `json:"findings"`
	Warnings    []string             `json:"warnings,omitempty"`
	GeneratedAt string               `json:"generated_at"`
}

// Tool handlers

func (s *Server) handleAddObservation(ctx context.Context, req *mcp.CallToolRequest, input addObservationInput) (*mcp.CallToolResult, observationOutput, error) {
	day := time.Now()
	if input.Date != "" {
		parsed, err := parseDay("date", input.Date)
		if err != nil {
			return nil, observationOutput{}, err
		}
		day = *parsed
	}

	o := models.NewObservation(day)
	o.SleepHours = input.SleepHours
	o.ExerciseMinutes = input.ExerciseMinutes
	o.ScreenTimeHours = input.ScreenTimeHours
	o.StudyHours = input.StudyHours
	o.SocialHours = input.SocialHours
	o.NutritionScore = input.NutritionScore
	o.CaffeineMg = input.CaffeineMg
	o.StressLevel = input.StressLevel
	o.Cycle = input.Cycle
	o.FocusScore = input.FocusScore
	if input.Notes != "" {
		o.WithNotes(input.Notes)
	}

	if err := s.repo.UpsertObservation(o); err != nil {
		return nil, observationOutput{}, fmt.Errorf("failed to save observation: %w", err)
	}

	return nil, observationOutput{
		ID:      o.ID.String()[:8],
		Date:    o.DateString(),
		Message: fmt.Sprintf("Recorded %s: focus %.1f, sleep %.1fh (ID: %s)", o.DateString(), o.FocusScore, o.SleepHours, o.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListObservations(ctx context.Context, req *mcp.CallToolRequest, input listObservationsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 14
	}
	since, err := parseDay("since", input.Since)
	if err != nil {
		return nil, nil, err
	}

	obs, err := s.repo.ListObservations(since, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list observations: %w", err)
	}

	if len(obs) == 0 {
		return nil, map[string]interface{}{"message": "No observations found."}, nil
	}

	return nil, map[string]interface{}{"observations": obs}, nil
}

func (s *Server) handleDeleteObservation(ctx context.Context, req *mcp.CallToolRequest, input deleteObservationInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteObservation(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete observation: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted observation: %s", input.ID),
	}, nil
}

func (s *Server) handleDescribe(ctx context.Context, req *mcp.CallToolRequest, input describeInput) (*mcp.CallToolResult, describeOutput, error) {
	since, err := parseDay("since", input.Since)
	if err != nil {
		return nil, describeOutput{}, err
	}
	ds, err := s.loadDataset(since)
	if err != nil {
		return nil, describeOutput{}, err
	}
	if ds.Len() < 2 {
		return nil, describeOutput{}, fmt.Errorf("%d observations, need at least 2: %w", ds.Len(), dataset.ErrNotEnoughRows)
	}

	from, to := ds.Span()
	return nil, describeOutput{
		Days:      ds.Len(),
		From:      from.Format(models.DateLayout),
		To:        to.Format(models.DateLayout),
		Summaries: analysis.Describe(ds, models.AllFeatures),
	}, nil
}

func (s *Server) handleCorrelate(ctx context.Context, req *mcp.CallToolRequest, input correlateInput) (*mcp.CallToolResult, correlateOutput, error) {
	since, err := parseDay("since", input.Since)
	if err != nil {
		return nil, correlateOutput{}, err
	}
	ds, err := s.loadDataset(since)
	if err != nil {
		return nil, correlateOutput{}, err
	}

	var out correlateOutput
	switch input.Target {
	case "", "next_day":
		pairs := ds.NextDayPairs(models.PredictorFeatures)
		out.Target, out.N = analysis.TargetName, pairs.Len()
		out.Correlations, err = analysis.NextDayCorrelates(pairs)
	case "same_day":
		out.Target, out.N = string(models.FeatureFocusScore), ds.Len()
		out.Correlations, err = analysis.SameDayCorrelates(ds)
	default:
		return nil, correlateOutput{}, fmt.Errorf("unknown target %q: use next_day or same_day", input.Target)
	}
	if err != nil {
		return nil, correlateOutput{}, fmt.Errorf("failed to correlate: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input analyzeInput) (*mcp.CallToolResult, analyzeOutput, error) {
	since, err := parseDay("since", input.Since)
	if err != nil {
		return nil, analyzeOutput{}, err
	}
	ds, err := s.loadDataset(since)
	if err != nil {
		return nil, analyzeOutput{}, err
	}

	opts := s.opts
	if input.TestFraction != 0 {
		opts.TestFraction = input.TestFraction
	}
	if input.Seed != nil {
		opts.Seed = *input.Seed
	}

	r, err := analysis.Run(ctx, ds, opts)
	if err != nil {
		if errors.Is(err, dataset.ErrNotEnoughRows) {
			return nil, analyzeOutput{}, fmt.Errorf("analysis needs at least %d consecutive-day pairs: %w", analysis.MinPairs, err)
		}
		return nil, analyzeOutput{}, fmt.Errorf("analysis failed: %w", err)
	}

	out := analyzeOutput{
		Days:        r.Summary.Rows,
		Pairs:       r.Summary.Pairs,
		TestFrom:    r.Summary.TestFrom.Format(models.DateLayout),
		BestModel:   r.BestModel,
		Holdout:     r.Holdout,
		Findings:    r.Findings,
		Warnings:    r.Warnings,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
	}
	if len(r.Importances) > 0 {
		out.Importance = r.Importances[0].Ranking
	}
	return nil, out, nil
}
