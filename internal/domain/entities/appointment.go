package entities

// Appointment represents a scheduled consultation slot.
//
// The patient reference is stored both as an id and as a denormalized
// name; the name is resolved once at creation time and never
// reconciled afterwards (no patient edit path exists in this
// workflow). Date is an ISO 8601 calendar date, Time a local
// time-of-day string, both compared by exact string equality.
type Appointment struct {
	ID          int64  `json:"id" db:"id"`
	PatientID   int64  `json:"patient_id" db:"patient_id"`
	PatientName string `json:"patient_name" db:"patient_name"`
	Date        string `json:"date" db:"date"`
	Time        string `json:"time" db:"time"`
}
