package leads_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadintake/internal/leads"
	"leadintake/internal/validation"
	"leadintake/pkg/domain"
	"leadintake/pkg/serrors"
	"leadintake/pkg/storage"
	mockstorage "leadintake/pkg/storage/mock"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	admin = domain.Identity{Subject: "user-1", Role: domain.RoleAdmin}
	now   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	ctrl     *gomock.Controller
	elevated *mockstorage.MockStorage
	session  *mockstorage.MockStorage
	repo     *leads.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := fixture{
		ctrl:     ctrl,
		elevated: mockstorage.NewMockStorage(ctrl),
		session:  mockstorage.NewMockStorage(ctrl),
	}
	f.repo = leads.New(f.elevated, f.session)
	leads.SetClock(f.repo, func() time.Time { return now })

	return f
}

// expectIdentity wires Storage.WithIdentity to run its callback against a
// MockAllStorage after checking the identity and options.
func (f fixture) expectIdentity(readOnly bool, fn func(tx *mockstorage.MockAllStorage)) {
	f.session.EXPECT().
		WithIdentity(gomock.Any(), admin, storage.IdentityOptions{ReadOnly: readOnly}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Identity, _ storage.IdentityOptions,
			cb func(storage.AllStorage) error) error {
			tx := mockstorage.NewMockAllStorage(f.ctrl)
			if fn != nil {
				fn(tx)
			}

			return cb(tx)
		})
}

func sampleLead() *domain.Lead {
	return &domain.Lead{
		ID:          domain.LeadID(uuid.New()),
		Name:        "John Doe",
		Email:       "john@example.com",
		PhoneNumber: "+1234567890",
		Source:      domain.DefaultSource,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestWriter_Create_DefaultsSource(t *testing.T) {
	f := newFixture(t)
	stored := sampleLead()

	f.elevated.EXPECT().StoreLead(gomock.Any(), domain.NewLead{
		Name: "John Doe", Email: "john@example.com", PhoneNumber: "+1234567890", Source: domain.DefaultSource,
	}).Return(stored, nil)

	got, err := f.repo.Writer().Create(context.Background(), domain.NewLead{
		Name: "John Doe", Email: "john@example.com", PhoneNumber: "+1234567890",
	})
	require.NoError(t, err)
	require.Equal(t, stored, got)
}

func TestWriter_Create_StorageError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")

	f.elevated.EXPECT().StoreLead(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := f.repo.Writer().Create(context.Background(), domain.NewLead{Source: "ads"})
	require.ErrorIs(t, err, boom)
}

func TestScoped_GetByID(t *testing.T) {
	f := newFixture(t)
	lead := sampleLead()

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().LeadByID(gomock.Any(), lead.ID).Return(lead, nil)
	})

	got, err := f.repo.As(admin).GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(lead, got); diff != "" {
		t.Fatalf("lead mismatch (-want +got):\n%s", diff)
	}
}

func TestScoped_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().LeadByID(gomock.Any(), gomock.Any()).Return(nil, nil)
	})

	_, err := f.repo.As(admin).GetByID(context.Background(), domain.LeadID(uuid.New()))
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestScoped_GetByEmail_Normalizes(t *testing.T) {
	f := newFixture(t)
	lead := sampleLead()

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().LatestLeadByEmail(gomock.Any(), "john@example.com").Return(lead, nil)
	})

	got, err := f.repo.As(admin).GetByEmail(context.Background(), "  John@Example.com ")
	require.NoError(t, err)
	require.Equal(t, lead.ID, got.ID)
}

func TestScoped_GetByEmail_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.As(admin).GetByEmail(context.Background(), "  ")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScoped_List_Defaults(t *testing.T) {
	f := newFixture(t)
	page := storage.LeadPage{Leads: []domain.Lead{*sampleLead()}, Total: 1}

	f.expectIdentity(true, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().Leads(gomock.Any(), storage.LeadFilter{
			OrderBy:   storage.OrderByCreatedAt,
			Direction: storage.OrderDesc,
			Limit:     leads.DefaultLimit,
		}).Return(page, nil)
	})

	got, err := f.repo.As(admin).List(context.Background(), leads.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, page, got)
}

func TestScoped_List_OptionsAndCap(t *testing.T) {
	f := newFixture(t)

	f.expectIdentity(true, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().Leads(gomock.Any(), storage.LeadFilter{
			Source:    "ads",
			OrderBy:   storage.OrderByName,
			Direction: storage.OrderAsc,
			Limit:     leads.MaxLimit,
			Offset:    20,
		}).Return(storage.LeadPage{}, nil)
	})

	_, err := f.repo.As(admin).List(context.Background(), leads.ListOptions{
		Source: "ads", OrderBy: "name", Direction: "ASC", Limit: 10000, Offset: 20,
	})
	require.NoError(t, err)
}

func TestScoped_List_InvalidOrdering(t *testing.T) {
	f := newFixture(t)
	reader := f.repo.As(admin)

	_, err := reader.List(context.Background(), leads.ListOptions{OrderBy: "phone_number"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = reader.List(context.Background(), leads.ListOptions{Direction: "sideways"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScoped_ListByDateRange(t *testing.T) {
	f := newFixture(t)
	start, end := now.Add(-48*time.Hour), now

	f.expectIdentity(true, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().Leads(gomock.Any(), storage.LeadFilter{
			Source:      "ads",
			CreatedFrom: start,
			CreatedTo:   end,
			OrderBy:     storage.OrderByCreatedAt,
			Direction:   storage.OrderDesc,
		}).Return(storage.LeadPage{Total: 3}, nil)
	})

	page, err := f.repo.As(admin).ListByDateRange(context.Background(), start, end, "ads")
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
}

func TestScoped_ListByDateRange_Inverted(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.As(admin).ListByDateRange(context.Background(), now, now.Add(-time.Hour), "")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScoped_Update_EmptyPatch(t *testing.T) {
	f := newFixture(t)
	lead := sampleLead()
	touched := *lead
	touched.UpdatedAt = now.Add(time.Second)

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UpdateLead(gomock.Any(), lead.ID, storage.LeadUpdates{}).Return(&touched, nil)
	})

	got, err := f.repo.As(admin).Update(context.Background(), lead.ID, storage.LeadUpdates{})
	require.NoError(t, err)
	require.Equal(t, touched, *got)
}

func TestScoped_Update_NormalizesAndValidates(t *testing.T) {
	f := newFixture(t)
	lead := sampleLead()
	name, email := "  Jane Roe ", " JANE@example.com"

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UpdateLead(gomock.Any(), lead.ID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ domain.LeadID, u storage.LeadUpdates) (*domain.Lead, error) {
				require.Equal(t, "Jane Roe", *u.Name)
				require.Equal(t, "jane@example.com", *u.Email)

				return lead, nil
			})
	})

	_, err := f.repo.As(admin).Update(context.Background(), lead.ID, storage.LeadUpdates{Name: &name, Email: &email})
	require.NoError(t, err)
}

func TestScoped_Update_Invalid(t *testing.T) {
	f := newFixture(t)
	reader := f.repo.As(admin)
	id := domain.LeadID(uuid.New())

	short := "J"
	_, err := reader.Update(context.Background(), id, storage.LeadUpdates{Name: &short})
	require.ErrorIs(t, err, serrors.ErrValidation)
	var fields validation.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, validation.NameMessage, fields[validation.FieldName])

	unknown := domain.Training("basket-weaving")
	_, err = reader.Update(context.Background(), id, storage.LeadUpdates{InterestedTraining: &unknown})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScoped_Update_NotVisible(t *testing.T) {
	f := newFixture(t)

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UpdateLead(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	})

	_, err := f.repo.As(admin).Update(context.Background(), domain.LeadID(uuid.New()), storage.LeadUpdates{})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestScoped_Delete(t *testing.T) {
	f := newFixture(t)
	lead := sampleLead()

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().DeleteLead(gomock.Any(), lead.ID).Return(lead, nil)
	})
	require.NoError(t, f.repo.As(admin).Delete(context.Background(), lead.ID))

	f.expectIdentity(false, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().DeleteLead(gomock.Any(), lead.ID).Return(nil, nil)
	})
	require.ErrorIs(t, f.repo.As(admin).Delete(context.Background(), lead.ID), serrors.ErrNotFound)
}

func TestScoped_Stats(t *testing.T) {
	f := newFixture(t)

	f.expectIdentity(true, func(tx *mockstorage.MockAllStorage) {
		gomock.InOrder(
			tx.EXPECT().LeadCount(gomock.Any(), time.Time{}).Return(int64(5), nil),
			tx.EXPECT().LeadCountBySource(gomock.Any()).Return(map[string]int64{"ads": 2, domain.DefaultSource: 3}, nil),
			tx.EXPECT().LeadCount(gomock.Any(), now.Add(-leads.RecentWindow)).Return(int64(4), nil),
		)
	})

	stats, err := f.repo.As(admin).Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &domain.LeadStats{
		Total:       5,
		BySource:    map[string]int64{"ads": 2, domain.DefaultSource: 3},
		RecentCount: 4,
	}, stats)
}

func TestScoped_Stats_ShortCircuits(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("statement timeout")

	f.expectIdentity(true, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().LeadCount(gomock.Any(), time.Time{}).Return(int64(5), nil)
		tx.EXPECT().LeadCountBySource(gomock.Any()).Return(nil, boom)
		// no recent count expected
	})

	_, err := f.repo.As(admin).Stats(context.Background())
	require.ErrorIs(t, err, boom)
}
