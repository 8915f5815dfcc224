package interaction

import (
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
)

// LimitDevices keeps the first n devices; n <= 0 falls back to the default row count
func LimitDevices(devices []model.Device, n int) []model.Device {
	if n <= 0 {
		n = constants.DefaultVisibleRows
	}
	if len(devices) <= n {
		return devices
	}
	return devices[:n]
}

// ScrollWindow returns the [start, end) slice of total rows to show so that
// selected stays visible in a viewport of n rows
func ScrollWindow(total, selected, n int) (int, int) {
	if n <= 0 {
		n = constants.DefaultVisibleRows
	}
	if total <= n {
		return 0, total
	}
	start := selected - n + 1
	if start < 0 {
		start = 0
	}
	if start > total-n {
		start = total - n
	}
	return start, start + n
}
