package commitment_test

import (
	"testing"
	"time"

	"github.com/herohde/chesslens/pkg/commitment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	topT      int
	topBindT  int
	committed []int
	failNext  error
}

func (f *fakeEngine) TopT() int     { return f.topT }
func (f *fakeEngine) TopBindT() int { return f.topBindT }
func (f *fakeEngine) Commit(t int) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.committed = append(f.committed, t)
	f.topBindT = t
	return nil
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPollDoesNotCommitCurrentFrontier(t *testing.T) {
	eng := &fakeEngine{topT: 3, topBindT: 0}
	c := commitment.NewController(eng, time.Second)
	c.Observe(1, epoch)
	c.Observe(2, epoch)
	c.Observe(3, epoch)

	committed, err := c.Poll(epoch.Add(10 * time.Second))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 2, eng.topBindT, "must not commit up to top_t")
}

func TestPollWaitsForDelay(t *testing.T) {
	eng := &fakeEngine{topT: 2, topBindT: 0}
	c := commitment.NewController(eng, 5*time.Second)
	c.Observe(1, epoch)

	committed, err := c.Poll(epoch.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, 0, eng.topBindT)

	committed, err = c.Poll(epoch.Add(6 * time.Second))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 1, eng.topBindT)
}

func TestPollPicksNewestEligibleTimestep(t *testing.T) {
	eng := &fakeEngine{topT: 4, topBindT: 0}
	c := commitment.NewController(eng, time.Second)
	c.Observe(1, epoch)
	c.Observe(2, epoch.Add(500*time.Millisecond))
	c.Observe(3, epoch.Add(900*time.Millisecond))

	committed, err := c.Poll(epoch.Add(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 2, eng.topBindT, "timestep 3 is not old enough yet")
}

func TestPollPropagatesCommitError(t *testing.T) {
	sentinel := assert.AnError
	eng := &fakeEngine{topT: 2, topBindT: 0, failNext: sentinel}
	c := commitment.NewController(eng, time.Second)
	c.Observe(1, epoch)

	committed, err := c.Poll(epoch.Add(10 * time.Second))
	assert.False(t, committed)
	assert.ErrorIs(t, err, sentinel)
}
