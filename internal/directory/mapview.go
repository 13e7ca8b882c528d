package directory

import (
	"fmt"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

// Default map centre and zoom used when no doctor is focused.
const (
	DefaultLat  = 17.4065
	DefaultLng  = 78.4772
	DefaultZoom = 13
)

// Marker is one pin on the map.
type Marker struct {
	DoctorID int     `json:"doctor_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Popup    Popup   `json:"popup"`
}

// Popup is the content shown when a marker is opened.
type Popup struct {
	Name     string `json:"name"`
	Hospital string `json:"hospital"`
	Fee      string `json:"fee"`
	Phone    string `json:"phone"`
}

// MapView is what the map renderer receives.
type MapView struct {
	CenterLat float64  `json:"center_lat"`
	CenterLng float64  `json:"center_lng"`
	Zoom      int      `json:"zoom"`
	Focus     int      `json:"focus,omitempty"`
	Markers   []Marker `json:"markers"`
}

// FormatFee renders a consultation fee in rupees.
func FormatFee(fee float64) string {
	return fmt.Sprintf("₹%.0f", fee)
}

// NewMapView builds a view with one marker per doctor, centred on focus when
// it is non-nil.
func NewMapView(doctors []domain.Doctor, focus *domain.Doctor) MapView {
	v := MapView{
		CenterLat: DefaultLat,
		CenterLng: DefaultLng,
		Zoom:      DefaultZoom,
		Markers:   make([]Marker, 0, len(doctors)),
	}
	if focus != nil {
		v.CenterLat, v.CenterLng = focus.Lat, focus.Lng
		v.Focus = focus.ID
	}
	for _, d := range doctors {
		v.Markers = append(v.Markers, Marker{
			DoctorID: d.ID,
			Lat:      d.Lat,
			Lng:      d.Lng,
			Popup: Popup{
				Name:     d.Name,
				Hospital: d.Hospital,
				Fee:      FormatFee(d.ConsultationFee),
				Phone:    d.PhoneNumber,
			},
		})
	}
	return v
}
