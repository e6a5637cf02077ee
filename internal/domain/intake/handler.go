package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/intake/questions", h.Questions)
	api.POST("/intake/analyze", h.Analyze)
	api.POST("/intake/report", h.Report)
}

func (h *Handler) Questions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"questions": Questions,
		"count":     len(Questions),
	})
}

type analyzeRequest struct {
	PatientID    string `json:"patient_id"`
	SymptomsText string `json:"symptoms_text"`
}

func (h *Handler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" || req.SymptomsText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id and symptoms_text are required")
	}

	result, err := h.svc.AnalyzeSymptoms(c.Request().Context(), req.PatientID, req.SymptomsText)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

type reportRequest struct {
	PatientID string   `json:"patient_id"`
	Symptoms  Symptoms `json:"symptoms"`
	Answers   []string `json:"answers"`
}

func (h *Handler) Report(c echo.Context) error {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	result, err := h.svc.GenerateReport(c.Request().Context(), req.PatientID, req.Symptoms, req.Answers)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
