package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/internal/container"
	"github.com/oksasatya/edu-verify/pkg/helpers"
	"github.com/oksasatya/edu-verify/pkg/validation"
)

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type harness struct {
	engine *gin.Engine
	token  string
	hook   *logtest.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	container.Reset()
	t.Cleanup(container.Reset)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	tokens := helpers.NewServiceTokenManager("test-secret", time.Hour)
	container.SetConfig(&config.Config{
		StoreDriver:          config.StoreDriverMemory,
		Notifier:             config.NotifierLog,
		MailSendEnabled:      false,
		EmailDomainSuffix:    ".edu",
		VerificationCodeTTL:  15 * time.Minute,
		InteractiveTicketTTL: 15 * time.Minute,
		DebugMetricsEnabled:  true,
	})
	container.SetLogger(logger)
	container.SetServiceTokens(tokens)

	engine := gin.New()
	reg := NewRegistry(engine)
	require.NoError(t, InitModules(reg))
	names, err := reg.RegisterAll()
	require.NoError(t, err)
	require.Contains(t, names, "verification")

	tok, _, err := tokens.Generate("test")
	require.NoError(t, err)
	return &harness{engine: engine, token: tok, hook: hook}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

// lastCode pulls the code the log notifier wrote.
func (h *harness) lastCode(t *testing.T) string {
	t.Helper()
	for i := len(h.hook.Entries) - 1; i >= 0; i-- {
		if c, ok := h.hook.Entries[i].Data["code"].(string); ok {
			return c
		}
	}
	t.Fatal("no code logged")
	return ""
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRequireServiceToken(t *testing.T) {
	h := newHarness(t)
	for _, p := range []string{"/api/register", "/api/verify", "/api/verify/interactive", "/api/verify/interactive/submit"} {
		w := httptest.NewRecorder()
		h.engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, p, bytes.NewBufferString(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndVerifyOverHTTP(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/register", map[string]string{
		"platform_id": "1001", "display_name": "Ada", "email": "Ada@Uni.EDU",
	})
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "code_sent", env.Data["outcome"])
	assert.Equal(t, "ada@uni.edu", env.Data["email"])
	assert.NotEmpty(t, env.Data["expires_at"])

	status, env = h.do(t, http.MethodGet, "/api/identities/1001", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending_verification", env.Data["status"])
	assert.NotContains(t, env.Data, "code")

	status, env = h.do(t, http.MethodPost, "/api/verify", map[string]string{"platform_id": "1001", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_code", env.Data["outcome"])

	status, env = h.do(t, http.MethodPost, "/api/verify", map[string]string{"platform_id": "1001", "code": h.lastCode(t)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "verified", env.Data["outcome"])

	status, env = h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "1001", "email": "other@uni.edu"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "already_verified", env.Data["outcome"])
	assert.Equal(t, true, env.Data["email_mismatch"])
	assert.Equal(t, "ada@uni.edu", env.Data["email"])
	assert.NotNil(t, env.Data["projects"])

	status, env = h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "2002", "email": "ada@uni.edu"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email_taken", env.Data["outcome"])
}

func TestRegisterRejections(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "1", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_format", env.Data["outcome"])

	status, env = h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "1", "email": "a@gmail.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "wrong_domain", env.Data["outcome"])

	status, _ = h.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@uni.edu"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInteractiveFlowOverHTTP(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "42", "email": "lin@uni.edu"})
	require.Equal(t, http.StatusAccepted, status)
	code := h.lastCode(t)

	status, env := h.do(t, http.MethodPost, "/api/verify/interactive", map[string]string{"platform_id": "42", "requester_id": "43"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "not_authorized", env.Data["outcome"])

	status, env = h.do(t, http.MethodPost, "/api/verify/interactive", map[string]string{"platform_id": "42", "requester_id": "42"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "form_opened", env.Data["outcome"])
	ticket, _ := env.Data["ticket"].(string)
	require.NotEmpty(t, ticket)

	status, env = h.do(t, http.MethodPost, "/api/verify/interactive/submit", map[string]string{"ticket": ticket, "requester_id": "43", "code": code})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "not_authorized", env.Data["outcome"])

	status, env = h.do(t, http.MethodPost, "/api/verify/interactive/submit", map[string]string{"ticket": ticket, "requester_id": "42", "code": code})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "verified", env.Data["outcome"])

	// the ticket is spent
	status, _ = h.do(t, http.MethodPost, "/api/verify/interactive/submit", map[string]string{"ticket": ticket, "requester_id": "42", "code": code})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCouncilAndSearch(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, http.MethodPut, "/api/identities/missing/council", map[string]bool{"council": true})
	assert.Equal(t, http.StatusNotFound, status)

	_, _ = h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "7", "email": "x@uni.edu"})
	status, env := h.do(t, http.MethodPut, "/api/identities/7/council", map[string]bool{"council": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env.Data["is_council_member"])

	status, _ = h.do(t, http.MethodPut, "/api/identities/7/council", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, http.MethodGet, "/api/identities/search?q=x", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status, "no directory configured")
}

func TestUnknownIdentityIsUnregistered(t *testing.T) {
	h := newHarness(t)
	status, env := h.do(t, http.MethodGet, "/api/identities/nobody", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "unregistered", env.Data["status"])
}

func TestDebugVarsExposeOutcomes(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/api/register", map[string]string{"platform_id": "9", "email": "bad"})

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "verification_outcomes")
	assert.Contains(t, w.Body.String(), "invalid_format")
}
