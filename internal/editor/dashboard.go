package editor

import (
	"context"
	"fmt"

	"finsight/internal/core"
	"finsight/internal/log"
)

// DefaultTopRiskyCount is how many accounts the dashboard ranks.
const DefaultTopRiskyCount = 5

type AnalyticsAPI interface {
	TopRiskyAccounts(ctx context.Context, count int) ([]core.TopRiskyAccount, error)
	MonthlyExpenseSummary(ctx context.Context) ([]core.MonthlySummary, error)
	CategorySummary(ctx context.Context) ([]core.CategorySummary, error)
}

// Dashboard is the read-only analytics page. It has no mutations.
type Dashboard struct {
	Phase      Phase
	TopRisky   []core.TopRiskyAccount
	Monthly    []core.MonthlySummary
	Categories []core.CategorySummary
}

// LoadDashboard fetches the three analytics together. A failure is only
// logged and leaves every section empty.
func LoadDashboard(ctx context.Context, api AnalyticsAPI, count int, logger *log.Logger) (*Dashboard, error) {
	if count <= 0 {
		count = DefaultTopRiskyCount
	}
	d := &Dashboard{Phase: Loading}
	err := Join(ctx,
		Into(&d.TopRisky, func(ctx context.Context) ([]core.TopRiskyAccount, error) {
			return api.TopRiskyAccounts(ctx, count)
		}),
		Into(&d.Monthly, api.MonthlyExpenseSummary),
		Into(&d.Categories, api.CategorySummary),
	)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return d, ctxErr
	}
	d.Phase = Ready
	if err != nil {
		if logger != nil {
			logger.WithComponent(log.ComponentEditor).ErrorContext(ctx, "Error loading dashboard data",
				log.FieldOperation, log.OpLoad,
				log.FieldPage, "dashboard",
				log.FieldError, err)
		}
		return d, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}
