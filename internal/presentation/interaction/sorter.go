package interaction

import (
	"sort"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
)

// SortField represents the field to sort devices by
type SortField int

const (
	SortByName SortField = iota
	SortByOnline
	SortByTransitions
)

// ParseSortField maps a flag value to a SortField, defaulting to name
func ParseSortField(s string) SortField {
	switch strings.ToLower(s) {
	case "online":
		return SortByOnline
	case "changes", "transitions":
		return SortByTransitions
	default:
		return SortByName
	}
}

// SortOrder represents the sort order
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// Sortable is a device row with its summary
type Sortable struct {
	Device  model.Device
	Summary timeline.Summary
}

// DeviceSorter orders device rows; ties keep their input order
type DeviceSorter struct {
	field SortField
	order SortOrder
}

func NewDeviceSorter(field SortField, order SortOrder) *DeviceSorter {
	return &DeviceSorter{field: field, order: order}
}

// Order returns the indices of rows in sorted order
func (s *DeviceSorter) Order(rows []Sortable) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := rows[idx[a]], rows[idx[b]]
		var less, greater bool
		switch s.field {
		case SortByOnline:
			less = ra.Summary.OnlinePercent < rb.Summary.OnlinePercent
			greater = ra.Summary.OnlinePercent > rb.Summary.OnlinePercent
		case SortByTransitions:
			less = ra.Summary.Transitions < rb.Summary.Transitions
			greater = ra.Summary.Transitions > rb.Summary.Transitions
		default:
			na, nb := strings.ToLower(ra.Device.Label()), strings.ToLower(rb.Device.Label())
			less, greater = na < nb, na > nb
		}
		if s.order == SortDescending {
			return greater
		}
		return less
	})
	return idx
}
