package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/punithchavan/CHIKITSA/internal/platform/token"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _, _, _, _ := newTestService()
	iss := token.NewIssuer([]byte("test-secret"), time.Hour)
	return NewHandler(svc, iss, zerolog.Nop()), svc
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLoginHandler_Success(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, _, err := svc.CreateAccount(context.Background(), validPatientInput()); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/login", `{"username":"asha","password":"secret123"}`)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Login successful" {
		t.Errorf("unexpected message %v", resp["message"])
	}
	if tok, _ := resp["token"].(string); tok == "" {
		t.Error("expected a session token")
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response leaks password hash")
	}
}

func TestLoginHandler_UnknownUserIs400(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/login", `{"username":"ghost","password":"x"}`)
	rec := httptest.NewRecorder()

	err := h.Login(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown user, got %v", err)
	}
}

func TestLoginHandler_WrongPasswordIs401(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, _, err := svc.CreateAccount(context.Background(), validPatientInput()); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/login", `{"username":"asha","password":"nope"}`)
	rec := httptest.NewRecorder()

	err := h.Login(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %v", err)
	}
}

func TestCreateAccountHandler(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	body := `{"username":"drkumar","password":"secret123","role":"Doctor",
		"name":"Dr. Kumar","gender":"Male","age":45,"blood_group":"B+","uid":"MED-2041"}`
	req := jsonRequest(http.MethodPost, "/api/users", body)
	rec := httptest.NewRecorder()

	if err := h.CreateAccount(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Profile struct {
			DoctorID string `json:"doctor_id"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Profile.DoctorID, "DOC") {
		t.Errorf("expected DOC code, got %q", resp.Profile.DoctorID)
	}
}

func TestCreateAccountHandler_MissingFieldsIs400(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/api/users", `{"username":"a","password":"b","role":"Doctor"}`)
	rec := httptest.NewRecorder()

	err := h.CreateAccount(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestGetDoctorHandler_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	err := h.GetDoctor(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestGetPatientHandler(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, _, err := svc.CreateAccount(context.Background(), validPatientInput()); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("asha")

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.Name != "Asha Rao" {
		t.Errorf("unexpected patient %q", p.Name)
	}
}
