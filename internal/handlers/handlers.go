package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tender-marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 5
	maxLimit     = 50
)

// Handler связывает HTTP-запросы с сервисом маркетплейса
type Handler struct {
	Svc      Service
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler создает новый Handler
func NewHandler(svc Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Svc: svc, log: log, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type errorResponse struct {
	Reason string `json:"reason"`
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		h.log.Debug("write response", zap.Error(err))
	}
}

func (h *Handler) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Svc.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) ListOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Svc.ListOrganizations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orgs)
}

func (h *Handler) ListResponsiblesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.ListResponsibles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// writeJSON пишет JSON-ответ, ошибка записи уходит в debug-лог
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("write response", zap.Error(err))
	}
}

// statusCode сопоставляет вид ошибки сервиса с HTTP-статусом
func statusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		h.writeJSON(w, status, errorResponse{Reason: "internal server error"})
		return
	}
	h.writeJSON(w, status, errorResponse{Reason: err.Error()})
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// decodeBody читает JSON тело с ограничением размера и проверяет его по тегам validate
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return invalid("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// requiredQuery возвращает непустой query-параметр
func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", invalid("missing %s parameter", name)
	}
	return v, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, invalid("invalid %s", name)
	}
	return id, nil
}

func versionParam(r *http.Request) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || v < 1 {
		return 0, invalid("invalid version number")
	}
	return v, nil
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) (service.Page, error) {
	page := service.Page{Limit: defaultLimit}
	q := r.URL.Query()

	if s := q.Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l < 1 || l > maxLimit {
			return page, invalid("limit must be between 1 and %d", maxLimit)
		}
		page.Limit = l
	}
	if s := q.Get("offset"); s != "" {
		o, err := strconv.Atoi(s)
		if err != nil || o < 0 {
			return page, invalid("offset must be non-negative")
		}
		page.Offset = o
	}
	return page, nil
}
