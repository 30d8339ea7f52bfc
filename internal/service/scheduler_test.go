package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

type fakeRounds struct {
	round *model.LotteryRound
	err   error
	token string
}

func (f *fakeRounds) CurrentRound(ctx context.Context, token string) (*model.LotteryRound, error) {
	f.token = token
	return f.round, f.err
}

type fakeCleaner struct {
	calls int
}

func (f *fakeCleaner) CleanupExpired() (int64, error) {
	f.calls++
	return 2, nil
}

const group = "120363000000000000@g.us"

func TestAnnounceOpenRound(t *testing.T) {
	s := NewScheduler(logger.Nop())
	messenger := newFakeMessenger()
	rounds := &fakeRounds{round: &model.LotteryRound{
		ID:          "r5",
		Status:      model.RoundOpen,
		DrawAt:      time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC),
		TicketPrice: 100,
		PrizePool:   25000,
		TicketsSold: 250,
	}}

	s.announceRound(context.Background(), group, rounds, messenger)

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, group, messenger.sent[0].chat)
	assert.Contains(t, messenger.sent[0].text, "Grande Roue* #r5")
	assert.Contains(t, messenger.sent[0].text, "25 000 pts")
	assert.Contains(t, messenger.sent[0].text, "/ticket")
	assert.Empty(t, rounds.token)
}

func TestAnnounceSkipsClosedRoundAndErrors(t *testing.T) {
	s := NewScheduler(logger.Nop())
	messenger := newFakeMessenger()

	s.announceRound(context.Background(), group, &fakeRounds{round: &model.LotteryRound{ID: "r4", Status: model.RoundDrawn}}, messenger)
	s.announceRound(context.Background(), group, &fakeRounds{err: errors.New("boom")}, messenger)

	assert.Empty(t, messenger.sent)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())

	assert.Error(t, s.ScheduleSessionCleanup("every now and then", &fakeCleaner{}))
	assert.Error(t, s.ScheduleLotteryAnnouncement("61 * * * *", group, &fakeRounds{}, newFakeMessenger()))
	assert.NoError(t, s.ScheduleSessionCleanup("@hourly", &fakeCleaner{}))
}

func TestCleanupSessions(t *testing.T) {
	s := NewScheduler(logger.Nop())
	cleaner := &fakeCleaner{}

	s.cleanupSessions(cleaner)
	assert.Equal(t, 1, cleaner.calls)
}
