package entities

// Patient represents a patient on the practice roster.
// Rows are created through the roster form and never mutated or
// deleted by this workflow; the gateway owns the row lifetime.
type Patient struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
}
