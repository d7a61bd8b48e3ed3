package stats

import (
	"context"

	"github.com/verte-zerg/shortcut/internal/store"
)

// BuildReport loads progress from st and summarizes one app, or every app
// when app is empty.
func BuildReport(ctx context.Context, st store.ProgressStore, app string, top int) (Summary, error) {
	progress, err := st.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(progress, app, top), nil
}
