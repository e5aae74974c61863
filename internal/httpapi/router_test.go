package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coastlineai/sentinel/internal/audit"
	"github.com/coastlineai/sentinel/internal/llm"
	"github.com/coastlineai/sentinel/internal/orchestrator"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct{}

func (stubModel) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: "a calm, supportive reply"}, nil
}

type stubAuditStore struct{}

func (stubAuditStore) Record(ctx context.Context, e audit.CrisisEvent) (audit.CrisisEvent, error) {
	e.ID = "evt-stub"
	return e, nil
}

func newTestRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()
	loader := &fakeLoader{resources: registry.SeedResources(), fabrications: registry.SeedFabrications()}
	store := registry.NewStore(loader, nil)
	require.NoError(t, store.Load(context.Background()))

	o := orchestrator.NewOrchestrator(store, stubAuditStore{}, stubModel{}, nil)

	return New(&Config{
		Orchestrator:    o,
		RegistryStore:   store,
		AdminAuthSecret: adminSecret,
	})
}

func TestHealthEndpointReturnsOK(t *testing.T) {
	router := newTestRouter(t, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTurnEndpointRequiresRequiredFields(t *testing.T) {
	router := newTestRouter(t, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTurnEndpointProcessesLowRiskText(t *testing.T) {
	router := newTestRouter(t, "")
	body := `{"user_text":"how's the weather today","user_id":"u1","conversation_id":"c1","region":"NZ"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "final_text")
}

func TestAdminRoutesRequireAuthWhenEnabled(t *testing.T) {
	router := newTestRouter(t, "admin-secret")
	req := httptest.NewRequest(http.MethodGet, "/admin/registry/NZ/crisis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAbsentWhenNoSecretConfigured(t *testing.T) {
	router := newTestRouter(t, "")
	req := httptest.NewRequest(http.MethodGet, "/admin/registry/NZ/crisis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeLoader struct {
	resources    []registry.Resource
	fabrications []registry.KnownFabrication
}

func (f *fakeLoader) LoadResources(ctx context.Context) ([]registry.Resource, error) {
	return f.resources, nil
}

func (f *fakeLoader) LoadFabrications(ctx context.Context) ([]registry.KnownFabrication, error) {
	return f.fabrications, nil
}

func (f *fakeLoader) SaveResource(ctx context.Context, r registry.Resource) error {
	f.resources = append(f.resources, r)
	return nil
}

func (f *fakeLoader) AppendVerificationEvent(ctx context.Context, e registry.VerificationEvent) error {
	return nil
}
