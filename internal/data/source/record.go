package source

import "github.com/penwyp/go-presence-timeline/internal/core/model"

// HostRecord is one host-history row as served by the LAN scanner backend
type HostRecord struct {
	Name  string           `json:"Name,omitempty"`
	Iface string           `json:"Iface"`
	IP    string           `json:"IP"`
	Mac   string           `json:"Mac,omitempty"`
	Date  string           `json:"Date"`
	Known model.KnownState `json:"Known"`
	Now   int              `json:"Now"`
}

// ToEvent converts the record to a presence event. Now == 0 means offline.
func (r HostRecord) ToEvent() model.PresenceEvent {
	return model.PresenceEvent{
		Timestamp: r.Date,
		Online:    r.Now != 0,
		Iface:     r.Iface,
		IP:        r.IP,
		Known:     r.Known,
	}
}

func toEvents(records []HostRecord) []model.PresenceEvent {
	events := make([]model.PresenceEvent, 0, len(records))
	for _, r := range records {
		events = append(events, r.ToEvent())
	}
	return events
}
