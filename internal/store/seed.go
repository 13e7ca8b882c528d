package store

import (
	"context"
	"fmt"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

// SeedDoctors is the doctor directory loaded on first start.
var SeedDoctors = []domain.Doctor{
	{ID: 1, Name: "Dr. Rajesh Sharma", Specialist: "Cardiologist", Hospital: "Apollo Hospital", Experience: 15, ConsultationFee: 500, PhoneNumber: "9876543210", Lat: 17.4065, Lng: 78.4772},
	{ID: 2, Name: "Dr. Priya Reddy", Specialist: "Cardiologist", Hospital: "KIMS Hospital", Experience: 12, ConsultationFee: 600, PhoneNumber: "9876543211", Lat: 17.4075, Lng: 78.4782},
	{ID: 3, Name: "Dr. Suresh Kumar", Specialist: "Neurologist", Hospital: "Care Hospital", Experience: 18, ConsultationFee: 700, PhoneNumber: "9876543212", Lat: 17.4085, Lng: 78.4792},
	{ID: 4, Name: "Dr. Anita Singh", Specialist: "Neurologist", Hospital: "Rainbow Hospital", Experience: 10, ConsultationFee: 550, PhoneNumber: "9876543213", Lat: 17.4095, Lng: 78.4802},
	{ID: 5, Name: "Dr. Ramesh Gupta", Specialist: "General Physician", Hospital: "City Hospital", Experience: 8, ConsultationFee: 300, PhoneNumber: "9876543214", Lat: 17.4105, Lng: 78.4812},
	{ID: 6, Name: "Dr. Kavitha Rao", Specialist: "General Physician", Hospital: "Metro Hospital", Experience: 12, ConsultationFee: 350, PhoneNumber: "9876543215", Lat: 17.4115, Lng: 78.4822},
	{ID: 7, Name: "Dr. Arjun Menon", Specialist: "Gastroenterologist", Hospital: "Yashoda Hospital", Experience: 14, ConsultationFee: 650, PhoneNumber: "9876543223", Lat: 17.4165, Lng: 78.4872},
	{ID: 8, Name: "Dr. Farah Siddiqui", Specialist: "Gastroenterologist", Hospital: "Continental Hospital", Experience: 9, ConsultationFee: 500, PhoneNumber: "9876543224", Lat: 17.4175, Lng: 78.4882},
	{ID: 9, Name: "Dr. Anil Kumar", Specialist: "Hepatologist", Hospital: "Global Hospital", Experience: 10, ConsultationFee: 600, PhoneNumber: "9876543216", Lat: 17.4125, Lng: 78.4832},
	{ID: 10, Name: "Dr. Meera Rani", Specialist: "Hepatologist", Hospital: "Max Hospital", Experience: 15, ConsultationFee: 700, PhoneNumber: "9876543217", Lat: 17.4135, Lng: 78.4842},
	{ID: 11, Name: "Dr. Sneha Iyer", Specialist: "Dermatologist", Hospital: "Skin Care Clinic", Experience: 9, ConsultationFee: 400, PhoneNumber: "9876543218", Lat: 17.4145, Lng: 78.4852},
	{ID: 12, Name: "Dr. Vikram Singh", Specialist: "Dermatologist", Hospital: "Derma Health Center", Experience: 11, ConsultationFee: 450, PhoneNumber: "9876543219", Lat: 17.4155, Lng: 78.4862},
	{ID: 13, Name: "Dr. Naveen Chandra", Specialist: "Orthopedist", Hospital: "Sunshine Hospital", Experience: 16, ConsultationFee: 600, PhoneNumber: "9876543225", Lat: 17.4185, Lng: 78.4892},
	{ID: 14, Name: "Dr. Lavanya Pillai", Specialist: "Orthopedist", Hospital: "Apollo Hospital", Experience: 8, ConsultationFee: 500, PhoneNumber: "9876543226", Lat: 17.4060, Lng: 78.4765},
	{ID: 15, Name: "Dr. Harish Babu", Specialist: "Pulmonologist", Hospital: "KIMS Hospital", Experience: 13, ConsultationFee: 550, PhoneNumber: "9876543227", Lat: 17.4080, Lng: 78.4790},
	{ID: 16, Name: "Dr. Shalini Verma", Specialist: "Pulmonologist", Hospital: "Care Hospital", Experience: 7, ConsultationFee: 450, PhoneNumber: "9876543228", Lat: 17.4090, Lng: 78.4798},
	{ID: 17, Name: "Dr. Karthik Rao", Specialist: "Ophthalmologist", Hospital: "LV Prasad Eye Institute", Experience: 12, ConsultationFee: 400, PhoneNumber: "9876543229", Lat: 17.4195, Lng: 78.4902},
	{ID: 18, Name: "Dr. Deepa Nair", Specialist: "Ophthalmologist", Hospital: "Vasan Eye Care", Experience: 10, ConsultationFee: 350, PhoneNumber: "9876543230", Lat: 17.4205, Lng: 78.4912},
	{ID: 19, Name: "Dr. Mohan Das", Specialist: "ENT Specialist", Hospital: "City Hospital", Experience: 14, ConsultationFee: 450, PhoneNumber: "9876543231", Lat: 17.4110, Lng: 78.4818},
	{ID: 20, Name: "Dr. Rekha Joshi", Specialist: "ENT Specialist", Hospital: "Metro Hospital", Experience: 9, ConsultationFee: 400, PhoneNumber: "9876543232", Lat: 17.4120, Lng: 78.4828},
}

// SeedCaretakers is the caretaker directory loaded on first start.
var SeedCaretakers = []domain.Caretaker{
	{ID: 1, Name: "Mrs. Lakshmi Devi", ServiceType: "Elderly Care", Experience: 5, HourlyRate: 150, PhoneNumber: "9876543220"},
	{ID: 2, Name: "Mr. Ravi Kumar", ServiceType: "Patient Care", Experience: 7, HourlyRate: 200, PhoneNumber: "9876543221"},
	{ID: 3, Name: "Mrs. Sunitha Reddy", ServiceType: "Post-Surgery Care", Experience: 8, HourlyRate: 250, PhoneNumber: "9876543222"},
}

// seed inserts the directory rows that are missing. Existing rows are left alone.
func (s *SQLStore) seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	doctorStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO doctors (`+doctorColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare doctor seed: %w", err)
	}
	defer doctorStmt.Close()

	for _, d := range SeedDoctors {
		if _, err := doctorStmt.ExecContext(ctx,
			d.ID, d.Name, d.Specialist, d.Hospital, d.Experience,
			d.ConsultationFee, d.PhoneNumber, d.Lat, d.Lng,
		); err != nil {
			return fmt.Errorf("seed doctor %d: %w", d.ID, err)
		}
	}

	caretakerStmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO caretakers (id, name, service_type, experience, hourly_rate, phone_number)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare caretaker seed: %w", err)
	}
	defer caretakerStmt.Close()

	for _, c := range SeedCaretakers {
		if _, err := caretakerStmt.ExecContext(ctx,
			c.ID, c.Name, c.ServiceType, c.Experience, c.HourlyRate, c.PhoneNumber,
		); err != nil {
			return fmt.Errorf("seed caretaker %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
