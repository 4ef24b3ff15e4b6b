package survey

import (
	"time"
)

// NPSUnanswered is the form sentinel for a score that has not been picked yet.
const NPSUnanswered = -1

// NPS bounds (inclusive).
const (
	NPSMin = 0
	NPSMax = 10
)

// TimestampLayout is the ISO-8601 layout used for response timestamps.
// Millisecond precision, always UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Role is a respondent category. Values are the display labels so that a
// stored role reads the same in every export.
type Role string

const (
	RoleProducer   Role = "Productor"
	RoleAdvisor    Role = "Asesor Agronómico"
	RoleContractor Role = "Contratista"
	RoleOperator   Role = "Operario"
	RoleStudent    Role = "Estudiante"
	RoleOther      Role = "Otro"
)

// Roles lists every role in form order.
var Roles = []Role{
	RoleProducer,
	RoleAdvisor,
	RoleContractor,
	RoleOperator,
	RoleStudent,
	RoleOther,
}

// IsKnown reports whether r is one of Roles.
func (r Role) IsKnown() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Response is the atomic survey record.
//
// JSON field names are the snapshot wire format and must not change: other
// devices running older builds read the same files.
//
// Synced is nil for foreign records that never carried the flag, so they
// re-export without it.
type Response struct {
	ID               string   `json:"id"`
	Timestamp        string   `json:"timestamp"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	Role             Role     `json:"role"`
	NPS              int      `json:"nps"`
	InterestedInInfo bool     `json:"interestedInInfo"`
	SelectedProducts []string `json:"selectedProducts"`
	Synced           *bool    `json:"synced,omitempty"`
	DeviceID         string   `json:"deviceId,omitempty"`
	SectorName       string   `json:"sectorName,omitempty"`
}

// Draft is a response as produced by the form: everything except the fields
// the Response Store stamps itself (id, device, sector, synced).
//
// Timestamp is optional; the store fills it from its clock when empty.
type Draft struct {
	Timestamp        string
	FirstName        string
	LastName         string
	Email            string
	Role             Role
	NPS              int
	InterestedInInfo bool
	SelectedProducts []string
}

// AppConfig holds the mutable per-device settings.
type AppConfig struct {
	AdminPIN          string   `json:"adminPin"`
	AvailableProducts []string `json:"availableProducts"`
	StandID           string   `json:"standId"`
	SectorName        string   `json:"sectorName"`
}

// Clone returns a deep copy of c.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.AvailableProducts = append([]string(nil), c.AvailableProducts...)
	return out
}

// Clone returns a deep copy of r.
func (r Response) Clone() Response {
	out := r
	if r.SelectedProducts != nil {
		out.SelectedProducts = append([]string{}, r.SelectedProducts...)
	}
	if r.Synced != nil {
		out.Synced = Bool(*r.Synced)
	}
	return out
}

// IsSynced reports whether r has been included in an exported snapshot.
// A record without the flag counts as not synced.
func (r Response) IsSynced() bool {
	return r.Synced != nil && *r.Synced
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
