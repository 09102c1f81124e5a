// ABOUTME: MCP resource implementations for focus observations.
// ABOUTME: Provides focus://recent and focus://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gonum.org/v1/gonum/stat"

	"github.com/harperreed/focus/internal/models"
)

const (
	recentURI  = "focus://recent"
	summaryURI = "focus://summary"

	recentDays = 14
	weekDays   = 7
)

func (s *Server) registerResources() {
	// focus://recent - the last two weeks of observations
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Observations",
		Description: "The last 14 recorded days",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// focus://summary - counts, span, and this week's averages against the overall ones
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Focus Summary",
		Description: "Days recorded, date span, latest day, and last-7-day averages versus all-time averages",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	obs, err := s.repo.ListObservations(nil, recentDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	if obs == nil {
		obs = []*models.Observation{}
	}

	return jsonResource(recentURI, map[string]interface{}{
		"observations": obs,
	})
}

type featureAverage struct {
	Week    float64 `json:"last_7_days"`
	AllTime float64 `json:"all_time"`
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	obs, err := s.repo.ListObservations(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"days":         len(obs),
	}

	if len(obs) > 0 {
		first, last := obs[0], obs[len(obs)-1]
		result["from"] = first.DateString()
		result["to"] = last.DateString()
		result["latest"] = last

		week := obs
		if len(week) > weekDays {
			week = week[len(week)-weekDays:]
		}
		averages := make(map[string]featureAverage, len(models.AllFeatures))
		for _, f := range models.AllFeatures {
			if f == models.FeatureDayOfWeek {
				continue
			}
			averages[string(f)] = featureAverage{
				Week:    mean(week, f),
				AllTime: mean(obs, f),
			}
		}
		result["averages"] = averages
	}

	return jsonResource(summaryURI, result)
}

func mean(obs []*models.Observation, f models.Feature) float64 {
	xs := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = o.Value(f)
	}
	return stat.Mean(xs, nil)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
