package http

import (
	"net/http"

	"finsight/internal/core"
	"finsight/internal/editor"
	"finsight/internal/log"
)

// chartColors cycles over the category breakdown.
var chartColors = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#00C49F"}

type monthBar struct {
	Month   string
	Type    string
	Total   float64
	Percent int
}

type categorySlice struct {
	Category string
	Type     string
	Total    float64
	Percent  int
	Color    string
}

type dashboardView struct {
	TopRisky   []core.TopRiskyAccount
	Monthly    []monthBar
	Categories []categorySlice
}

// handleDashboard renders the analytics overview. A failed fetch is only
// logged and the sections render empty.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.sessionOf(w, r)

	d, err := editor.LoadDashboard(ctx, s.clientFor(sess), s.topRiskyCount, log.FromContext(ctx))
	if err != nil && ctx.Err() != nil {
		return
	}

	s.render(w, r, sess, http.StatusOK, pageDashboard, "Dashboard", newDashboardView(d))
}

func newDashboardView(d *editor.Dashboard) dashboardView {
	view := dashboardView{TopRisky: d.TopRisky}

	var maxTotal float64
	for _, m := range d.Monthly {
		if m.Total > maxTotal {
			maxTotal = m.Total
		}
	}
	for _, m := range d.Monthly {
		view.Monthly = append(view.Monthly, monthBar{
			Month:   m.Month,
			Type:    m.Type,
			Total:   m.Total,
			Percent: percentOf(m.Total, maxTotal),
		})
	}

	var sum float64
	for _, c := range d.Categories {
		sum += c.Total
	}
	for i, c := range d.Categories {
		view.Categories = append(view.Categories, categorySlice{
			Category: c.Category,
			Type:     c.Type,
			Total:    c.Total,
			Percent:  percentOf(c.Total, sum),
			Color:    chartColors[i%len(chartColors)],
		})
	}
	return view
}

func percentOf(v, whole float64) int {
	if whole <= 0 || v <= 0 {
		return 0
	}
	return int(v * 100 / whole)
}
