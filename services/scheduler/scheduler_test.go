package schedsvc

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

type reminderMock struct {
	calls    int
	cooldown time.Duration
	err      error
}

func (r *reminderMock) SendReviewReminders(ctx context.Context, cooldown time.Duration) (int, error) {
	r.calls++
	r.cooldown = cooldown
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 2, r.err
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		jobs    int
	}{
		{"enabled", true, 1},
		{"disabled", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testutil.Config()
			conf.Reminder = core.ReminderConfig{Enabled: tt.enabled, Interval: time.Hour}
			s := New(conf, new(reminderMock), testutil.NewLogger(t))
			require.NoError(t, s.Start())
			defer s.Stop()
			assert.Equal(t, tt.jobs, s.Jobs())
		})
	}
}

func TestScheduler_RunReminders(t *testing.T) {
	logger := testutil.NewLogger(t)
	rem := new(reminderMock)
	s := New(testutil.Config(), rem, logger)

	s.RunReminders()
	assert.Equal(t, 1, rem.calls)
	assert.Equal(t, 24*time.Hour, rem.cooldown)
	assert.Empty(t, logger.Errors)

	rem.err = errors.New("smtp down")
	s.RunReminders()
	assert.Equal(t, 2, rem.calls)
	assert.Len(t, logger.Errors, 1)
}
