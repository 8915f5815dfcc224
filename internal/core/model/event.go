package model

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Status is the online state of a device over an interval
type Status string

const (
	StatusOn  Status = "on"
	StatusOff Status = "off"
)

// StatusOf maps an online flag to a Status
func StatusOf(online bool) Status {
	if online {
		return StatusOn
	}
	return StatusOff
}

// KnownState is the tri-state "recognized device" flag
type KnownState int8

const (
	KnownUnset KnownState = iota
	KnownNo
	KnownYes
)

// KnownFromInt maps the 0/1 column used by history stores
func KnownFromInt(v int) KnownState {
	if v != 0 {
		return KnownYes
	}
	return KnownNo
}

func (k KnownState) String() string {
	switch k {
	case KnownYes:
		return "true"
	case KnownNo:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes a set flag as a bool and an unset one as null
func (k KnownState) MarshalJSON() ([]byte, error) {
	switch k {
	case KnownYes:
		return []byte("true"), nil
	case KnownNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts booleans, 0/1 numbers, their string forms and null
func (k *KnownState) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*k = KnownUnset
		return nil
	}

	var s string
	if strings.HasPrefix(raw, `"`) {
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = raw
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		*k = KnownYes
	case "false", "0", "no":
		*k = KnownNo
	case "", "unknown", "null":
		*k = KnownUnset
	default:
		return fmt.Errorf("known must be a boolean or 0/1, got %s", raw)
	}
	return nil
}

// PresenceEvent is one reported online/offline observation for a device
type PresenceEvent struct {
	Timestamp string     `json:"timestamp"` // YYYY-MM-DD HH:MM:SS, local wall clock
	Online    bool       `json:"online"`
	Iface     string     `json:"iface"`
	IP        string     `json:"ip"`
	Known     KnownState `json:"known"`
}

// Status returns the event's status
func (e PresenceEvent) Status() Status {
	return StatusOf(e.Online)
}

// Device identifies one row of the device list
type Device struct {
	ID   string `json:"id" mapstructure:"id"` // MAC address or other stable key
	Name string `json:"name" mapstructure:"name"`
	IP   string `json:"ip" mapstructure:"ip"`
}

// Label returns the name, falling back to the ID
func (d Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}
