package v1handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadintake/internal/api/handler/v1handler"
	"leadintake/internal/leads"
	mockleads "leadintake/internal/leads/mock"
	"leadintake/internal/submission"
	mocksubmission "leadintake/internal/submission/mock"
	"leadintake/pkg/domain"
	"leadintake/pkg/serrors"
	"leadintake/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type readersFunc func(identity domain.Identity) leads.ScopedReader

func (f readersFunc) As(identity domain.Identity) leads.ScopedReader { return f(identity) }

type apiFixture struct {
	router   http.Handler
	writer   *mockleads.MockPublicWriter
	notifier *mocksubmission.MockNotifier
	reader   *mockleads.MockScopedReader
	identity domain.Identity
	token    string
}

func newAPI(t *testing.T) apiFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	priv, pubPEM := genRSAKeys(t)

	f := apiFixture{
		writer:   mockleads.NewMockPublicWriter(ctrl),
		notifier: mocksubmission.NewMockNotifier(ctrl),
		reader:   mockleads.NewMockScopedReader(ctrl),
		identity: domain.Identity{Subject: uuid.NewString(), Role: domain.RoleAdmin},
	}
	now := time.Now()
	f.token = signJWTRS256(t, priv, f.identity.Subject, f.identity.Role, now, now.Add(time.Hour))

	submitter := submission.New(f.writer, f.notifier, submission.Options{NotificationEmail: "ops@example.com"})
	h := v1handler.New(v1handler.Deps{
		Leads: readersFunc(func(identity domain.Identity) leads.ScopedReader {
			require.Equal(t, f.identity, identity)

			return f.reader
		}),
		Submitter: submitter,
	})

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.Routes(r, newSecHandlerForTest(t, pubPEM), nil)
	})
	f.router = r

	return f
}

func (f apiFixture) do(method, target, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func storedLead(n domain.NewLead) *domain.Lead {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	return &domain.Lead{
		ID:                 domain.LeadID(uuid.MustParse("5f0c6a8e-8a53-4bb8-9b61-1f3f0a4e2a10")),
		Name:               n.Name,
		Email:              n.Email,
		PhoneNumber:        n.PhoneNumber,
		InterestedTraining: n.InterestedTraining,
		Source:             n.SourceOrDefault(),
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}
}

func TestCreateLead_Success(t *testing.T) {
	f := newAPI(t)

	training := domain.TrainingDataAnalytics
	f.writer.EXPECT().Create(gomock.Any(), domain.NewLead{
		Name:               "Jane Roe",
		Email:              "jane@example.com",
		PhoneNumber:        "+1 555-010-0100",
		InterestedTraining: &training,
		Source:             domain.DefaultSource,
	}).DoAndReturn(func(_ context.Context, n domain.NewLead) (*domain.Lead, error) {
		return storedLead(n), nil
	})
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), domain.Notification{
		Name:               "Jane Roe",
		Email:              "jane@example.com",
		Phone:              "+1 555-010-0100",
		InterestedTraining: "data-analytics",
		NotificationEmail:  "ops@example.com",
	}).Return(nil)

	rec := f.do(http.MethodPost, "/v1/leads",
		`{"name":" Jane Roe ","email":"Jane@Example.com","phone":"+1 555-010-0100","interested_training":"data-analytics"}`,
		false)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"success":"`+submission.SuccessMessage+`"}`, rec.Body.String())
}

func TestCreateLead_Invalid(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodPost, "/v1/leads", `{"name":"J","email":"nope","phone":"call me"}`, false)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{
		"code": "VALIDATION",
		"message": "invalid lead form",
		"fields": {
			"name": "Name must be at least 2 characters.",
			"email": "Please enter a valid email address.",
			"phone": "Please enter a valid phone number."
		}
	}`, rec.Body.String())
}

func TestCreateLead_SaveFailed(t *testing.T) {
	f := newAPI(t)

	f.writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	rec := f.do(http.MethodPost, "/v1/leads", `{"name":"Jane Roe","email":"jane@example.com","phone":"5550100"}`, false)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"`+submission.SaveFailedMessage+`"}`, rec.Body.String())
}

func TestCreateLead_MalformedBody(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodPost, "/v1/leads", `{"name":`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodGet, "/v1/admin/leads", "", false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_ListLeads(t *testing.T) {
	f := newAPI(t)

	lead := storedLead(domain.NewLead{Name: "Jane Roe", Email: "jane@example.com", PhoneNumber: "5550100"})
	f.reader.EXPECT().List(gomock.Any(), leads.ListOptions{
		Source:    "spring-campaign",
		OrderBy:   "name",
		Direction: "asc",
		Limit:     10,
		Offset:    20,
	}).Return(storage.LeadPage{Leads: []domain.Lead{*lead}, Total: 21}, nil)

	rec := f.do(http.MethodGet,
		"/v1/admin/leads?source=spring-campaign&order_by=name&direction=asc&limit=10&offset=20", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"leads": [{
			"id": "5f0c6a8e-8a53-4bb8-9b61-1f3f0a4e2a10",
			"name": "Jane Roe",
			"email": "jane@example.com",
			"phone_number": "5550100",
			"interested_training": null,
			"source": "website-lead-form",
			"created_at": "2025-03-10T12:00:00Z",
			"updated_at": "2025-03-10T12:00:00Z"
		}],
		"total": 21
	}`, rec.Body.String())
}

func TestAdmin_ListLeads_EmptyPage(t *testing.T) {
	f := newAPI(t)

	f.reader.EXPECT().List(gomock.Any(), leads.ListOptions{}).Return(storage.LeadPage{}, nil)

	rec := f.do(http.MethodGet, "/v1/admin/leads", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"leads":[],"total":0}`, rec.Body.String())
}

func TestAdmin_ListLeads_BadLimit(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodGet, "/v1/admin/leads?limit=-1", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_GetLeadByEmail_NotFound(t *testing.T) {
	f := newAPI(t)

	f.reader.EXPECT().GetByEmail(gomock.Any(), "jane@example.com").
		Return(nil, serrors.With(serrors.ErrNotFound, "lead not found"))

	rec := f.do(http.MethodGet, "/v1/admin/leads/by-email?email=jane@example.com", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"code":"NOT_FOUND","message":"lead not found"}`, rec.Body.String())
}

func TestAdmin_ListLeadsByDateRange(t *testing.T) {
	f := newAPI(t)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	f.reader.EXPECT().ListByDateRange(gomock.Any(), start, end, "").Return(storage.LeadPage{Total: 0}, nil)

	rec := f.do(http.MethodGet, "/v1/admin/leads/range?start=2025-03-01T00:00:00Z&end=2025-03-31T23:59:59Z", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/v1/admin/leads/range?start=yesterday", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_LeadStats(t *testing.T) {
	f := newAPI(t)

	f.reader.EXPECT().Stats(gomock.Any()).Return(&domain.LeadStats{
		Total:       3,
		BySource:    map[string]int64{"website-lead-form": 2, "spring-campaign": 1},
		RecentCount: 1,
	}, nil)

	rec := f.do(http.MethodGet, "/v1/admin/leads/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"total":3,"bySource":{"website-lead-form":2,"spring-campaign":1},"recentCount":1}`,
		rec.Body.String())
}

func TestAdmin_GetLead(t *testing.T) {
	f := newAPI(t)

	lead := storedLead(domain.NewLead{Name: "Jane Roe", Email: "jane@example.com", PhoneNumber: "5550100"})
	f.reader.EXPECT().GetByID(gomock.Any(), lead.ID).Return(lead, nil)

	rec := f.do(http.MethodGet, "/v1/admin/leads/"+lead.ID.String(), "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Jane Roe"`)

	rec = f.do(http.MethodGet, "/v1/admin/leads/not-a-uuid", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_UpdateLead(t *testing.T) {
	f := newAPI(t)

	lead := storedLead(domain.NewLead{Name: "Jane Doe", Email: "jane@example.com", PhoneNumber: "5550100"})
	name := "Jane Doe"
	cleared := domain.Training("")
	f.reader.EXPECT().Update(gomock.Any(), lead.ID, storage.LeadUpdates{
		Name:               &name,
		InterestedTraining: &cleared,
	}).Return(lead, nil)

	rec := f.do(http.MethodPatch, "/v1/admin/leads/"+lead.ID.String(),
		`{"name":"Jane Doe","interested_training":null,"unknown":[1,2]}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_UpdateLead_Validation(t *testing.T) {
	f := newAPI(t)

	id := domain.LeadID(uuid.New())
	f.reader.EXPECT().Update(gomock.Any(), id, gomock.Any()).
		Return(nil, serrors.Wrap(serrors.ErrValidation, errors.New("invalid fields"), "invalid lead update"))

	rec := f.do(http.MethodPatch, "/v1/admin/leads/"+id.String(), `{"email":"nope"}`, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdmin_DeleteLead(t *testing.T) {
	f := newAPI(t)

	id := domain.LeadID(uuid.New())
	f.reader.EXPECT().Delete(gomock.Any(), id).Return(nil)

	rec := f.do(http.MethodDelete, "/v1/admin/leads/"+id.String(), "", true)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestDecodeLeadUpdates(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    storage.LeadUpdates
		wantErr bool
	}{
		{name: "empty object", body: `{}`, want: storage.LeadUpdates{}},
		{
			name: "training set",
			body: `{"interested_training":"web-development","phone_number":"5550100"}`,
			want: storage.LeadUpdates{
				InterestedTraining: ptr(domain.TrainingWebDevelopment),
				PhoneNumber:        ptr("5550100"),
			},
		},
		{name: "training cleared", body: `{"interested_training":null}`, want: storage.LeadUpdates{InterestedTraining: ptr(domain.Training(""))}},
		{name: "wrong type", body: `{"name":42}`, wantErr: true},
		{name: "not an object", body: `[]`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v1handler.DecodeLeadUpdates([]byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, serrors.ErrBadRequest)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func ptr[T any](v T) *T { return &v }
