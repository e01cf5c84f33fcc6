package notify_test

import (
	"context"
	"errors"
	"testing"

	"leadintake/internal/notify"
	"leadintake/pkg/domain"
	mockstorage "leadintake/pkg/storage/mock"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestQueue_Notify_AddsJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)
	q := notify.NewQueue(st, notify.Options{MaxAttempts: 3})

	id := domain.LeadID(uuid.New())
	n := domain.Notification{Name: "John", Email: "john@example.com", NotificationEmail: "ops@institute.test"}

	st.EXPECT().AddJob(gomock.Any(), gomock.Any(), nil).DoAndReturn(
		func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			ja, ok := args.(notify.JobArgs)
			require.True(t, ok)
			require.Equal(t, "NotifyLeadJob", ja.Kind())
			require.Equal(t, id.String(), ja.LeadID)
			require.Equal(t, n, ja.Notification)
			require.Equal(t, 3, ja.InsertOpts().MaxAttempts)
			require.True(t, ja.InsertOpts().UniqueOpts.ByArgs)

			return true, nil
		})

	require.NoError(t, q.Notify(context.Background(), id, n))
}

func TestQueue_Notify_DefaultsToSingleAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)
	q := notify.NewQueue(st, notify.Options{})

	st.EXPECT().AddJob(gomock.Any(), gomock.Any(), nil).DoAndReturn(
		func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			require.Equal(t, 1, args.(notify.JobArgs).InsertOpts().MaxAttempts)

			return true, nil
		})

	require.NoError(t, q.Notify(context.Background(), domain.LeadID(uuid.New()), domain.Notification{}))
}

func TestQueue_Notify_DuplicateIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)
	q := notify.NewQueue(st, notify.Options{MaxAttempts: 1})

	st.EXPECT().AddJob(gomock.Any(), gomock.Any(), nil).Return(false, nil)

	require.NoError(t, q.Notify(context.Background(), domain.LeadID(uuid.New()), domain.Notification{}))
}

func TestQueue_Notify_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)
	q := notify.NewQueue(st, notify.Options{MaxAttempts: 1})
	boom := errors.New("pool closed")

	st.EXPECT().AddJob(gomock.Any(), gomock.Any(), nil).Return(false, boom)

	require.ErrorIs(t, q.Notify(context.Background(), domain.LeadID(uuid.New()), domain.Notification{}), boom)
}
