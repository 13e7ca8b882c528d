package domain

// Doctor is a practitioner listed under a specialist category.
type Doctor struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Specialist      string  `json:"specialist,omitempty"`
	Hospital        string  `json:"hospital"`
	Experience      int     `json:"experience"`
	ConsultationFee float64 `json:"consultation_fee"`
	PhoneNumber     string  `json:"phone_number"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
}

// Caretaker is a home-care professional available for hire.
type Caretaker struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ServiceType string  `json:"service_type"`
	Experience  int     `json:"experience"`
	HourlyRate  float64 `json:"hourly_rate"`
	PhoneNumber string  `json:"phone_number"`
}

// FamilyMember is a contact attached to a visitor.
type FamilyMember struct {
	ID                 int64  `json:"id"`
	VisitorID          string `json:"-"`
	Name               string `json:"name"`
	PhoneNumber        string `json:"phone_number"`
	Relationship       string `json:"relationship"`
	IsEmergencyContact bool   `json:"is_emergency_contact"`
}

// EmergencyContacts returns the members flagged as emergency contacts, in order.
func EmergencyContacts(members []FamilyMember) []FamilyMember {
	var out []FamilyMember
	for _, m := range members {
		if m.IsEmergencyContact {
			out = append(out, m)
		}
	}
	return out
}
