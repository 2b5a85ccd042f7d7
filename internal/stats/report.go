// Package stats aggregates reading history and renders it for the CLI.
package stats

import (
	"context"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Summary      model.ReadingSummary
	Progress     []model.DocumentProgress
	RecentSpeeds []int
}

// BuildReport loads and prepares data for stats rendering. speedWindow
// bounds how many recent session speeds feed the trend.
func BuildReport(ctx context.Context, st *store.Store, speedWindow int) (Report, error) {
	summary, err := st.Summary(ctx)
	if err != nil {
		return Report{}, err
	}
	progress, err := st.ListProgress(ctx)
	if err != nil {
		return Report{}, err
	}
	speeds, err := st.ListRecentSpeeds(ctx, speedWindow)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Summary:      summary,
		Progress:     progress,
		RecentSpeeds: speeds,
	}, nil
}
