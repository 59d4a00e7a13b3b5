package report

import "time"

// AlarmRecord is one alarm row as read from the partitioned history
// tables, with equipment, tele-object and severity names already
// joined in. Zero ClearedAt means the alarm is still active.
type AlarmRecord struct {
	ID             string    `json:"id"`
	StationID      int       `json:"station_id"`
	EquipmentName  string    `json:"equipment_name"`
	SkidName       string    `json:"skid_name,omitempty"`
	TeleObjectName string    `json:"tele_object_name"`
	SeverityID     int       `json:"severity_id"`
	SeverityName   string    `json:"severity_name"`
	SeverityColor  string    `json:"severity_color,omitempty"`
	Description    string    `json:"description,omitempty"`
	StartAt        time.Time `json:"start_at"`
	ClearedAt      time.Time `json:"cleared_at,omitempty"`
	AckedAt        time.Time `json:"acked_at,omitempty"`
	AckedBy        string    `json:"acked_by,omitempty"`
}

// Open reports whether the alarm had not cleared when read.
func (r AlarmRecord) Open() bool {
	return r.ClearedAt.IsZero()
}

// Acknowledged reports whether the alarm was acknowledged.
func (r AlarmRecord) Acknowledged() bool {
	return !r.AckedAt.IsZero()
}

// Event converts the record into engine input keyed by the
// tele-object label.
func (r AlarmRecord) Event() AlarmEvent {
	return AlarmEvent{
		ID:         r.ID,
		GroupLabel: r.TeleObjectName,
		Start:      r.StartAt,
		End:        r.ClearedAt,
	}
}

// DurationMinutes resolves the record's alarmed time against
// referenceNow, or 0 for malformed rows.
func (r AlarmRecord) DurationMinutes(referenceNow time.Time) float64 {
	interval, ok := ResolveInterval(r.Event(), referenceNow)
	if !ok {
		return 0
	}
	return interval.Minutes()
}

// EquipmentDisplayName formats "equipment - (skid)" the way the
// dashboard labels ranking rows.
func (r AlarmRecord) EquipmentDisplayName() string {
	if r.SkidName == "" {
		return r.EquipmentName
	}
	return r.EquipmentName + " - (" + r.SkidName + ")"
}
