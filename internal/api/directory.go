package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/go-chi/chi/v5"
)

const msgDoctorNotFound = "Doctor not found"

// GetDoctors handles GET /get_doctors/{specialist}. Unknown categories
// return an empty list.
func (h *Handler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	specialist := strings.TrimSpace(chi.URLParam(r, "specialist"))
	doctors, err := h.repo.ListDoctors(r.Context(), specialist)
	if err != nil {
		slog.Error("Failed to list doctors", "specialist", specialist, "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.DoctorsResponse{
		Result:  backend.Result{Success: true},
		Doctors: doctors,
	})
}

// GetDoctorLocation handles GET /get_doctor_location/{id}.
func (h *Handler) GetDoctorLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		fail(w, msgDoctorNotFound)
		return
	}

	doctor, err := h.repo.GetDoctor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(w, msgDoctorNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to load doctor", "doctor_id", id, "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.DoctorResponse{
		Result: backend.Result{Success: true},
		Doctor: doctor,
	})
}

// GetCaretakers handles GET /get_caretakers.
func (h *Handler) GetCaretakers(w http.ResponseWriter, r *http.Request) {
	caretakers, err := h.repo.ListCaretakers(r.Context())
	if err != nil {
		slog.Error("Failed to list caretakers", "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.CaretakersResponse{
		Result:     backend.Result{Success: true},
		Caretakers: caretakers,
	})
}
