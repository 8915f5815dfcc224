package timeline

import "github.com/penwyp/go-presence-timeline/internal/core/model"

// Summary aggregates a reconstructed timeline
type Summary struct {
	OnlinePercent  float64      `json:"online_percent"`
	OfflinePercent float64      `json:"offline_percent"`
	Transitions    int          `json:"transitions"`
	LastStatus     model.Status `json:"last_status,omitempty"`
}

// Summarize totals the covered day fraction per status.
// Time before the first report is counted in neither total; runs that
// wrap past midnight count both of their parts.
func Summarize(intervals []model.TimelineInterval) Summary {
	var s Summary
	for _, iv := range intervals {
		w := iv.Width()
		switch iv.Status {
		case model.StatusOn:
			s.OnlinePercent += w
		case model.StatusOff:
			s.OfflinePercent += w
		}
	}
	if n := len(intervals); n > 0 {
		s.Transitions = n - 1
		s.LastStatus = intervals[n-1].Status
	}
	return s
}
