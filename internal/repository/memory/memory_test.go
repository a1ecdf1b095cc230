package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repository.ProfileRepository       = (*ProfileStore)(nil)
	_ repository.ManagerWorkerRepository = (*ManagerWorkerStore)(nil)
	_ repository.MessageRepository       = (*MessageStore)(nil)
	_ repository.MonitoringLogRepository = (*MonitoringLogStore)(nil)
	_ repository.FeedbackRepository      = (*FeedbackStore)(nil)
)

func mustProfile(t *testing.T, s *Store, name, email string) *models.Profile {
	t.Helper()
	p, err := s.Profiles().Create(context.Background(), &models.Profile{FullName: name, Email: email, Role: models.RoleWorker})
	require.NoError(t, err)
	return p
}

func TestProfileStore(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	ana := mustProfile(t, s, "Ana", "ana@x.com")

	_, err := s.Profiles().Create(ctx, &models.Profile{Email: "ana@x.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.Profiles().GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	got, err = s.Profiles().GetByEmail(ctx, "ANA@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	dept := "Finishing"
	updated, err := s.Profiles().Update(ctx, ana.ID, models.ProfilePatch{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Finishing", *updated.Department)
	assert.Equal(t, "Ana", updated.FullName)

	missing, err := s.Profiles().Update(ctx, uuid.New(), models.ProfilePatch{Department: &dept})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessageStore_ListInboxOrderAndCursor(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	stamps := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(2 * time.Minute)}
	s := New()
	ctx := context.Background()

	sender := mustProfile(t, s, "Sender", "s@x.com")
	receiver := mustProfile(t, s, "Receiver", "r@x.com")

	s.WithClock(func() time.Time {
		ts := stamps[tick]
		tick++
		return ts
	})

	for _, content := range []string{"first", "second", "third", "fourth"} {
		_, err := s.Messages().Create(ctx, &models.Message{SenderID: sender.ID, ReceiverID: receiver.ID, Content: content})
		require.NoError(t, err)
	}

	all, err := s.Messages().ListInbox(ctx, receiver.ID, models.InboxQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "fourth", all[0].Content)
	assert.Equal(t, "first", all[3].Content)
	assert.Equal(t, "Sender", all[0].SenderName)

	// The two middle rows share a timestamp; lower id comes first.
	assert.True(t, all[1].CreatedAt.Equal(all[2].CreatedAt))
	assert.Negative(t, compareIDs(all[1].ID, all[2].ID))

	page1, err := s.Messages().ListInbox(ctx, receiver.ID, models.InboxQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)

	last := page1[1]
	page2, err := s.Messages().ListInbox(ctx, receiver.ID, models.InboxQuery{
		Limit: 2,
		After: &models.InboxCursor{CreatedAt: last.CreatedAt, ID: last.ID},
	})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, all[2].ID, page2[0].ID)
	assert.Equal(t, all[3].ID, page2[1].ID)

	empty, err := s.Messages().ListInbox(ctx, sender.ID, models.InboxQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func compareIDs(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func TestMessageStore_ReadDeleteCount(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	a := mustProfile(t, s, "A", "a@x.com")
	b := mustProfile(t, s, "B", "b@x.com")

	_, err := s.Messages().Create(ctx, &models.Message{SenderID: a.ID, ReceiverID: uuid.New(), Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	m, err := s.Messages().Create(ctx, &models.Message{SenderID: a.ID, ReceiverID: b.ID, Content: "Hello"})
	require.NoError(t, err)
	assert.False(t, m.Read)

	n, err := s.Messages().CountUnread(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unread, err := s.Messages().ListInbox(ctx, b.ID, models.InboxQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	read, err := s.Messages().MarkRead(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	unread, err = s.Messages().ListInbox(ctx, b.ID, models.InboxQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread)

	deleted, err := s.Messages().Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Messages().Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	gone, err := s.Messages().MarkRead(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Zero(t, s.Messages().MessageCount())
}

func TestProfileStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	dept := "Sewing"
	in := &models.Profile{FullName: "Ana", Email: "ana@x.com", Role: models.RoleWorker, Department: &dept, Skills: []string{"overlock"}}

	created, err := s.Profiles().Create(ctx, in)
	require.NoError(t, err)
	created.Skills[0] = "changed"
	*created.Department = "changed"
	in.Skills[0] = "changed"
	dept = "changed"

	mgr := mustProfile(t, s, "Mgr", "m@x.com")
	require.NoError(t, s.ManagerWorkers().AddWorker(ctx, mgr.ID, created.ID))

	byID, err := s.Profiles().GetByID(ctx, created.ID)
	require.NoError(t, err)
	byID.Skills[0] = "changed"

	byEmail, err := s.Profiles().GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	byEmail.Skills[0] = "changed"

	workers, err := s.ManagerWorkers().ListWorkers(ctx, mgr.ID)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	workers[0].Skills[0] = "changed"
	*workers[0].Department = "changed"

	got, err := s.Profiles().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"overlock"}, got.Skills)
	require.NotNil(t, got.Department)
	assert.Equal(t, "Sewing", *got.Department)
}

func TestManagerWorkerStore(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	mgr := mustProfile(t, s, "Mgr", "m@x.com")
	zed := mustProfile(t, s, "Zed", "z@x.com")
	amy := mustProfile(t, s, "Amy", "amy@x.com")

	require.NoError(t, s.ManagerWorkers().AddWorker(ctx, mgr.ID, zed.ID))
	require.NoError(t, s.ManagerWorkers().AddWorker(ctx, mgr.ID, zed.ID))
	require.NoError(t, s.ManagerWorkers().AddWorker(ctx, mgr.ID, amy.ID))
	assert.ErrorIs(t, s.ManagerWorkers().AddWorker(ctx, mgr.ID, uuid.New()), apperr.ErrNotFound)

	workers, err := s.ManagerWorkers().ListWorkers(ctx, mgr.ID)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "Amy", workers[0].FullName)

	require.NoError(t, s.ManagerWorkers().RemoveWorker(ctx, mgr.ID, zed.ID))
	ok, err := s.ManagerWorkers().IsManagerOf(ctx, mgr.ID, zed.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitoringLogStore(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	w := mustProfile(t, s, "W", "w@x.com")

	first, err := s.MonitoringLogs().Create(ctx, &models.MonitoringLog{WorkerID: w.ID, ActivityType: models.ActivityLogin})
	require.NoError(t, err)
	second, err := s.MonitoringLogs().Create(ctx, &models.MonitoringLog{WorkerID: w.ID, ActivityType: models.ActivityPageView})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	logs, err := s.MonitoringLogs().ListByWorker(ctx, w.ID, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = s.MonitoringLogs().Create(ctx, &models.MonitoringLog{WorkerID: uuid.New(), ActivityType: models.ActivityLogin})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Messages().CountUnread(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}
