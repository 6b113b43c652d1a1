package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/leads"
)

// Handler serves POST /api/leads.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, leads.Response{
			Error: &leads.ResponseError{Type: CodeBadRequest, Message: "method not allowed"},
		})
		return
	}
	p, err := leads.FromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, leads.Response{
			Error: &leads.ResponseError{Type: CodeBadRequest, Message: "invalid form submission"},
		})
		return
	}
	rec, err := h.svc.Intake(r.Context(), p)
	if err != nil {
		h.writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads.Response{
		Success:   true,
		Reference: rec.Reference,
		Duplicate: rec.Duplicate,
	})
}

func (h *Handler) writeIntakeError(w http.ResponseWriter, err error) {
	var ve *leads.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, statusForCode(CodeValidation), leads.Response{
			Error: &leads.ResponseError{Type: leads.ErrorTypeValidation, Errors: ve.Errors},
		})
		return
	}
	status := http.StatusInternalServerError
	var ie *Error
	if errors.As(err, &ie) {
		status = ie.Status
	}
	h.logger.Error("lead intake failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, leads.Response{
		Error: &leads.ResponseError{Type: leads.ErrorTypeSubmission, Message: leads.GenericSubmitMessage},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
