package models

// Patient is the normalized patient profile used by eligibility checks.
// Conversion from external representations happens at the API boundary;
// eligibility logic only ever sees this type. Nil/empty fields mean the
// value was not provided.
type Patient struct {
	Age *int   `json:"age,omitempty"`
	Sex string `json:"sex,omitempty"`
}
