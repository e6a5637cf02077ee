package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(model *stubModel) (*Handler, *echo.Echo) {
	svc := newTestService(model, &stubStore{}, "")
	return NewHandler(svc), echo.New()
}

func TestHandler_Questions(t *testing.T) {
	h, e := newTestHandler(&stubModel{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intake/questions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Questions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Questions []string `json:"questions"`
		Count     int      `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Count != 10 || len(resp.Questions) != 10 {
		t.Errorf("expected 10 questions, got count=%d len=%d", resp.Count, len(resp.Questions))
	}
}

func TestHandler_Analyze(t *testing.T) {
	model := &stubModel{response: `{"chief_complaint": "cough", "symptoms": []}`}
	h, e := newTestHandler(model)

	body := `{"patient_id":"PTABCD1234","symptoms_text":"I have a cough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Analyze(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var result AnalysisResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Symptoms.ChiefComplaint != "cough" {
		t.Errorf("unexpected chief complaint %q", result.Symptoms.ChiefComplaint)
	}
}

func TestHandler_Analyze_MissingFields(t *testing.T) {
	h, e := newTestHandler(&stubModel{})

	body := `{"patient_id":"PTABCD1234"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Analyze(c)
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Analyze_PatientNotFound(t *testing.T) {
	h, e := newTestHandler(&stubModel{response: `{}`})

	body := `{"patient_id":"PTMISSING1","symptoms_text":"cough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Analyze(c)
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Report(t *testing.T) {
	model := &stubModel{response: "CLINICAL SUMMARY\n- ok"}
	h, e := newTestHandler(model)

	body := `{"patient_id":"PTABCD1234","symptoms":{"chief_complaint":"cough","symptoms":[]},"answers":["a","b"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/report", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Report(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var result ReportResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.ConsultationID == "" {
		t.Error("expected consultation id in response")
	}
	if !strings.Contains(result.PatientReport, "PATIENT HEALTH ASSESSMENT REPORT") {
		t.Error("expected framed report in response")
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e := newTestHandler(&stubModel{})
	api := e.Group("/api/v1")
	h.RegisterRoutes(api)

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+":"+r.Path] = true
	}

	for _, path := range []string{
		"GET:/api/v1/intake/questions",
		"POST:/api/v1/intake/analyze",
		"POST:/api/v1/intake/report",
	} {
		if !routes[path] {
			t.Errorf("missing expected route: %s", path)
		}
	}
}
