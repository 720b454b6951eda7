package rewards

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scan2share/scan2share/internal/store"
)

var baseTime = time.UnixMilli(1_700_000_000_000).UTC()

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: baseTime} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) Notify(_ context.Context, a Activity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, a.Kind)
}

type failingPersister struct{}

func (failingPersister) Load(context.Context, string) ([]byte, error) { return nil, nil }

func (failingPersister) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func setupStore(t *testing.T, opts ...Option) (*Store, *fakeClock, *store.MemoryStore) {
	t.Helper()

	clk := newFakeClock()
	mem := store.NewMemoryStore()
	s, err := Open(context.Background(), mem, append([]Option{WithClock(clk.Now)}, opts...)...)
	require.NoError(t, err)
	return s, clk, mem
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	assert.True(t, want.Equal(got), "got %s, want %s", got, want)
}

func eventInput(title string, start, end time.Time) EventInput {
	return EventInput{
		Title:       title,
		Description: "Demo day",
		Date:        start.Format("Jan 2, 2006"),
		Location:    "Berlin",
		Hashtags:    []string{"web3", "#jobs"},
		Start:       start,
		End:         end,
	}
}

func TestCreateEvent(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, eventInput("Launch", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Len(t, e.ShortCode, shortCodeLength)
	assert.Equal(t, "Launch", e.Title)
	assert.Equal(t, []string{"web3", "#jobs"}, e.Hashtags)
	assert.Equal(t, "https://scan2.share/share/"+e.ShortCode, ShareURL("https://scan2.share/", e.ShortCode))

	second, err := s.CreateEvent(ctx, eventInput("Meetup", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID, "newest event first")
	assert.Equal(t, e.ID, events[1].ID)
}

func TestCreateEventShortCodesUnique(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		e, err := s.CreateEvent(ctx, eventInput("Event", baseTime, baseTime))
		require.NoError(t, err)
		require.False(t, seen[e.ShortCode], "duplicate short code %q", e.ShortCode)
		seen[e.ShortCode] = true
		for _, r := range e.ShortCode {
			require.True(t, strings.ContainsRune(shortCodeAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestShortCodesNotReusedAfterDelete(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	gen := func(n int) (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	s, _, _ := setupStore(t, withCodeGenerator(gen))
	ctx := context.Background()

	first, err := s.CreateEvent(ctx, eventInput("One", baseTime, baseTime))
	require.NoError(t, err)
	require.NoError(t, s.DeleteEvent(ctx, first.ID))

	second, err := s.CreateEvent(ctx, eventInput("Two", baseTime, baseTime))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.ShortCode)
	assert.Equal(t, "BBBBBB", second.ShortCode)
}

func TestUniqueCodeGrowsAfterCollisions(t *testing.T) {
	taken := map[string]struct{}{"XXXXXX": {}}
	gen := func(n int) (string, error) {
		return strings.Repeat("X", n), nil
	}

	code, err := uniqueCode(gen, taken)
	require.NoError(t, err)
	assert.Equal(t, "XXXXXXX", code)
}

func TestPurgeExpiredEvents(t *testing.T) {
	s, clk, _ := setupStore(t)
	ctx := context.Background()

	short, err := s.CreateEvent(ctx, eventInput("Short", baseTime, baseTime.Add(time.Second)))
	require.NoError(t, err)
	long, err := s.CreateEvent(ctx, eventInput("Long", baseTime, baseTime.Add(24*time.Hour)))
	require.NoError(t, err)
	open, err := s.CreateEvent(ctx, EventInput{Title: "Open ended", Start: baseTime})
	require.NoError(t, err)

	assert.Equal(t, 0, s.PurgeExpiredEvents(ctx))

	clk.Advance(2 * time.Second)
	assert.Equal(t, 1, s.PurgeExpiredEvents(ctx))

	events := s.Events()
	past := s.PastEvents()
	require.Len(t, past, 1)
	assert.Equal(t, short.ID, past[0].ID)
	require.Len(t, events, 2)
	assert.Equal(t, open.ID, events[0].ID)
	assert.Equal(t, long.ID, events[1].ID)

	// A second sweep with no time elapsed changes nothing.
	assert.Equal(t, 0, s.PurgeExpiredEvents(ctx))
	assert.Equal(t, events, s.Events())
	assert.Equal(t, past, s.PastEvents())

	// Newly expired events go after the ones already past.
	clk.Advance(48 * time.Hour)
	assert.Equal(t, 1, s.PurgeExpiredEvents(ctx))
	past = s.PastEvents()
	require.Len(t, past, 2)
	assert.Equal(t, short.ID, past[0].ID)
	assert.Equal(t, long.ID, past[1].ID)
	assert.Len(t, s.Events(), 1)
}

func TestDeleteEvents(t *testing.T) {
	s, clk, _ := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, eventInput("Gone", baseTime, baseTime.Add(time.Second)))
	require.NoError(t, err)
	kept, err := s.CreateEvent(ctx, eventInput("Kept", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)

	// Past events can only be deleted once they are past.
	require.NoError(t, s.DeletePastEvent(ctx, e.ID))
	assert.Len(t, s.Events(), 2)

	clk.Advance(time.Minute)
	s.PurgeExpiredEvents(ctx)
	require.NoError(t, s.DeletePastEvent(ctx, e.ID))
	assert.Empty(t, s.PastEvents())

	require.NoError(t, s.DeleteEvent(ctx, kept.ID))
	require.NoError(t, s.DeleteEvent(ctx, kept.ID))
	assert.Empty(t, s.Events())
}

func TestAttachShareImage(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, eventInput("Poster", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, s.AttachShareImage(ctx, e.ID, "data:image/png;base64,AAAA"))
	assert.Equal(t, "data:image/png;base64,AAAA", s.Events()[0].ShareImage)
	assert.NoError(t, s.AttachShareImage(ctx, "missing", "x"))
}

func TestRecordAndVerifyShare(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	rec, err := s.RecordShare(ctx, "e1", PlatformTwitter, "https://x.com/p/1")
	require.NoError(t, err)
	assert.False(t, rec.Verified)
	assertDecimal(t, decimal.Zero, rec.Reward)
	assert.Equal(t, "e1", rec.EventID)
	assert.Equal(t, baseTime, rec.CreatedAt)

	before := s.Balance()
	verified, err := s.VerifyShare(ctx, rec.ID, dec("10"))
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assertDecimal(t, dec("10"), verified.Reward)
	assertDecimal(t, before.Add(dec("10")), s.Balance())
	assertDecimal(t, dec("10"), s.TotalEarned())

	other, err := s.RecordShare(ctx, "e1", PlatformLinkedIn, "https://linkedin.com/p/2")
	require.NoError(t, err)
	shares := s.Shares()
	require.Len(t, shares, 2)
	assert.Equal(t, other.ID, shares[0].ID, "newest share first")
}

func TestVerifyShareCreditsOnce(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr error
	}{
		{name: "permissive", policy: Policy{}},
		{name: "strict", policy: Policy{Strict: true}, wantErr: ErrAlreadyVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := setupStore(t, WithPolicy(tt.policy))
			ctx := context.Background()

			rec, err := s.RecordShare(ctx, "e1", PlatformTwitter, "https://x.com/p/1")
			require.NoError(t, err)
			_, err = s.VerifyShare(ctx, rec.ID, dec("10"))
			require.NoError(t, err)

			again, err := s.VerifyShare(ctx, rec.ID, dec("25"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assertDecimal(t, dec("10"), again.Reward)
			assertDecimal(t, dec("10"), s.Balance())
			assertDecimal(t, dec("10"), s.Shares()[0].Reward)
		})
	}
}

func TestStake(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	before := s.Balance()
	first, err := s.Stake(ctx, dec("50"))
	require.NoError(t, err)
	second, err := s.Stake(ctx, dec("25"))
	require.NoError(t, err)

	staked := s.Staked()
	require.Len(t, staked, 2)
	assert.Equal(t, second.ID, staked[0].ID, "newest position first")
	assert.Equal(t, first.ID, staked[1].ID)
	assertDecimal(t, DefaultDailyRate, first.RatePerDay)
	assert.Equal(t, baseTime, first.Start)
	assertDecimal(t, before.Sub(dec("75")), s.Balance())
}

func TestStakeUnstakeRoundTrip(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	before := s.Balance()
	pos, err := s.Stake(ctx, dec("100"))
	require.NoError(t, err)

	res, err := s.Unstake(ctx, pos.ID)
	require.NoError(t, err)
	assertDecimal(t, decimal.Zero, res.Reward)
	assertDecimal(t, dec("100"), res.Payout)
	assertDecimal(t, before, s.Balance())
	assert.Empty(t, s.Staked())
}

func TestAccrueRewardsLinear(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		rate    string
		elapsed time.Duration
		want    string
	}{
		{name: "three days", amount: "100", rate: "0.02", elapsed: 72 * time.Hour, want: "6"},
		{name: "half day", amount: "100", rate: "0.02", elapsed: 12 * time.Hour, want: "1"},
		{name: "one and a half days", amount: "250", rate: "0.04", elapsed: 36 * time.Hour, want: "15"},
		{name: "no time", amount: "80", rate: "0.02", elapsed: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clk, _ := setupStore(t, WithDailyRate(dec(tt.rate)))
			ctx := context.Background()

			_, err := s.Stake(ctx, dec(tt.amount))
			require.NoError(t, err)
			clk.Advance(tt.elapsed)

			assertDecimal(t, dec(tt.want), s.AccrueRewards())
			// Reading accrual twice does not change it or the balance.
			assertDecimal(t, dec(tt.want), s.AccrueRewards())
			assertDecimal(t, dec(tt.amount).Neg(), s.Balance())
		})
	}
}

func TestAccrueRewardsMatchesUnstake(t *testing.T) {
	s, clk, _ := setupStore(t)
	ctx := context.Background()

	pos, err := s.Stake(ctx, dec("123.45"))
	require.NoError(t, err)
	clk.Advance(37*time.Hour + 17*time.Minute + 3*time.Second)

	pending := s.AccrueRewards()
	before := s.Balance()
	res, err := s.Unstake(ctx, pos.ID)
	require.NoError(t, err)

	assertDecimal(t, pending, res.Reward)
	assertDecimal(t, before.Add(dec("123.45")).Add(pending), s.Balance())
	assert.True(t, res.Reward.IsPositive())
}

func TestAccrueRewardsSumsPositions(t *testing.T) {
	s, clk, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Stake(ctx, dec("100"))
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)
	_, err = s.Stake(ctx, dec("50"))
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)

	// 100 * 0.02 * 2 + 50 * 0.02 * 1
	assertDecimal(t, dec("5"), s.AccrueRewards())
}

func TestUnstakeUnknownPosition(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Stake(ctx, dec("10"))
	require.NoError(t, err)

	res, err := s.Unstake(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, res.Payout.IsZero())
	assert.Len(t, s.Staked(), 1)
	assertDecimal(t, dec("-10"), s.Balance())
}

func TestPermissivePolicyAcceptsAnything(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, EventInput{Start: baseTime, End: baseTime.Add(-time.Hour)})
	assert.NoError(t, err)

	_, err = s.Stake(ctx, dec("-5"))
	assert.NoError(t, err)

	_, err = s.RecordShare(ctx, "", Platform("myspace"), "")
	assert.NoError(t, err)

	assert.NoError(t, s.DeleteEvent(ctx, "missing"))
	assert.NoError(t, s.DeletePastEvent(ctx, "missing"))
	_, err = s.VerifyShare(ctx, "missing", dec("1"))
	assert.NoError(t, err)
	_, err = s.Unstake(ctx, "missing")
	assert.NoError(t, err)
}

func TestStrictPolicy(t *testing.T) {
	s, _, _ := setupStore(t, WithPolicy(Policy{Strict: true}))
	ctx := context.Background()

	rec, err := s.RecordShare(ctx, "e1", PlatformTwitter, "https://x.com/p/1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{
			name: "empty title",
			op: func() error {
				_, err := s.CreateEvent(ctx, EventInput{Start: baseTime, End: baseTime})
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "end before start",
			op: func() error {
				_, err := s.CreateEvent(ctx, EventInput{Title: "Backwards", Start: baseTime, End: baseTime.Add(-time.Hour)})
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "zero stake",
			op: func() error {
				_, err := s.Stake(ctx, decimal.Zero)
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "negative reward",
			op: func() error {
				_, err := s.VerifyShare(ctx, rec.ID, dec("-1"))
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "unknown platform",
			op: func() error {
				_, err := s.RecordShare(ctx, "e1", Platform("myspace"), "https://myspace.com/p/1")
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "malformed url",
			op: func() error {
				_, err := s.RecordShare(ctx, "e1", PlatformTwitter, "not a url")
				return err
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "delete unknown event",
			op:      func() error { return s.DeleteEvent(ctx, "missing") },
			wantErr: ErrNotFound,
		},
		{
			name:    "delete unknown past event",
			op:      func() error { return s.DeletePastEvent(ctx, "missing") },
			wantErr: ErrNotFound,
		},
		{
			name: "verify unknown share",
			op: func() error {
				_, err := s.VerifyShare(ctx, "missing", dec("1"))
				return err
			},
			wantErr: ErrNotFound,
		},
		{
			name: "unstake unknown position",
			op: func() error {
				_, err := s.Unstake(ctx, "missing")
				return err
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "attach to unknown event",
			op:      func() error { return s.AttachShareImage(ctx, "missing", "x") },
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// The store stays usable and unchanged after failed operations.
	assert.Empty(t, s.Events())
	assert.Empty(t, s.Staked())
	assert.True(t, s.Balance().IsZero())
	assert.False(t, s.Shares()[0].Verified)
}

func TestRequireKnownEvent(t *testing.T) {
	s, clk, _ := setupStore(t, WithPolicy(Policy{RequireKnownEvent: true}))
	ctx := context.Background()

	_, err := s.RecordShare(ctx, "orphan", PlatformTwitter, "https://x.com/p/1")
	assert.ErrorIs(t, err, ErrNotFound)

	e, err := s.CreateEvent(ctx, eventInput("Known", baseTime, baseTime.Add(time.Second)))
	require.NoError(t, err)
	_, err = s.RecordShare(ctx, e.ID, PlatformTwitter, "https://x.com/p/1")
	assert.NoError(t, err)

	clk.Advance(time.Minute)
	s.PurgeExpiredEvents(ctx)
	_, err = s.RecordShare(ctx, e.ID, PlatformLinkedIn, "https://linkedin.com/p/1")
	assert.NoError(t, err, "past events are still known")
}

func TestEventByShortCode(t *testing.T) {
	s, clk, _ := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, eventInput("Lookup", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)

	found, err := s.EventByShortCode(e.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)

	_, err = s.EventByShortCode("nope00")
	assert.ErrorIs(t, err, ErrNotFound)

	clk.Advance(2 * time.Hour)
	_, err = s.EventByShortCode(e.ShortCode)
	assert.ErrorIs(t, err, ErrEventEnded)

	s.PurgeExpiredEvents(ctx)
	_, err = s.EventByShortCode(e.ShortCode)
	assert.ErrorIs(t, err, ErrEventEnded)
}

func TestSetAddress(t *testing.T) {
	s, _, _ := setupStore(t)
	ctx := context.Background()

	err := s.SetAddress(ctx, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, s.Address())

	lower := "0x3c276c70ad0447f5fbbebc297793be2a750704ae"
	require.NoError(t, s.SetAddress(ctx, lower))
	assert.Equal(t, common.HexToAddress(lower).Hex(), s.Address())
	assert.True(t, strings.EqualFold(lower, s.Address()))
}

func TestReloadRestoresState(t *testing.T) {
	s, clk, mem := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAddress(ctx, "0x3c276c70Ad0447f5FbbeBC297793Be2A750704aE"))
	past, err := s.CreateEvent(ctx, eventInput("Past", baseTime, baseTime.Add(time.Second)))
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, eventInput("Active", baseTime, baseTime.Add(time.Hour)))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	s.PurgeExpiredEvents(ctx)
	require.NoError(t, s.DeletePastEvent(ctx, past.ID))

	rec, err := s.RecordShare(ctx, "e1", PlatformTwitter, "https://x.com/p/1")
	require.NoError(t, err)
	_, err = s.VerifyShare(ctx, rec.ID, dec("10"))
	require.NoError(t, err)
	_, err = s.RecordShare(ctx, "e1", PlatformLinkedIn, "https://linkedin.com/p/1")
	require.NoError(t, err)
	_, err = s.Stake(ctx, dec("4.5"))
	require.NoError(t, err)

	reopened, err := Open(ctx, mem, WithClock(clk.Now))
	require.NoError(t, err)

	want := s.Snapshot()
	got := reopened.Snapshot()
	assert.Equal(t, want.Address, got.Address)
	assert.Equal(t, want.Events, got.Events)
	assert.Equal(t, want.PastEvents, got.PastEvents)
	require.Len(t, got.Shares, 2)
	for i := range want.Shares {
		assert.Equal(t, want.Shares[i].ID, got.Shares[i].ID)
		assert.Equal(t, want.Shares[i].Verified, got.Shares[i].Verified)
		assert.True(t, want.Shares[i].CreatedAt.Equal(got.Shares[i].CreatedAt))
		assertDecimal(t, want.Shares[i].Reward, got.Shares[i].Reward)
	}
	require.Len(t, got.Staked, 1)
	assert.Equal(t, want.Staked[0].ID, got.Staked[0].ID)
	assertDecimal(t, want.Staked[0].Amount, got.Staked[0].Amount)
	assertDecimal(t, want.Balance, got.Balance)

	// The deleted event's code stays reserved after reload.
	_, reserved := reopened.st.codes[past.ShortCode]
	assert.True(t, reserved)
}

func TestLoadBrowserBlob(t *testing.T) {
	mem := store.NewMemoryStore()
	blob := `{"state":{"events":[{"id":"e1","title":"Hack night","description":"Bring a laptop","date":"11/14/2023","location":"Lisbon","hashtags":["eth"],"shortCode":"1a2b3c","startMs":1700000000000,"endMs":1700003600000}],"pastEvents":[],"shares":[{"id":"s1","eventId":"e1","platform":"twitter","url":"https://x.com/p/1","timestamp":1700000100000,"verified":true,"reward":10}],"balance":10,"staked":[{"id":"p1","amount":5,"startMs":1700000000000,"rewardPerDay":0.02}]},"version":0}`
	require.NoError(t, mem.Save(context.Background(), DefaultKey, []byte(blob)))

	clk := newFakeClock()
	clk.Advance(24 * time.Hour)
	s, err := Open(context.Background(), mem, WithClock(clk.Now))
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "1a2b3c", events[0].ShortCode)
	assert.Equal(t, baseTime.Add(time.Hour), events[0].End)
	assertDecimal(t, dec("10"), s.Balance())
	assertDecimal(t, dec("10"), s.TotalEarned())
	assertDecimal(t, dec("0.1"), s.AccrueRewards())
}

func TestOpenRejectsCorruptState(t *testing.T) {
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Save(context.Background(), DefaultKey, []byte("{not json")))

	_, err := Open(context.Background(), mem)
	assert.Error(t, err)
}

func TestPersistFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s, err := Open(context.Background(), failingPersister{}, WithLogger(zap.New(core)))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Stake(ctx, dec("1"))
	require.NoError(t, err, "persistence is best effort")
	assert.Len(t, s.Staked(), 1)
	assert.Equal(t, 1, logs.FilterMessage("persist store").Len())

	assert.Error(t, s.Flush(ctx))
}

func TestNotifierReceivesActivity(t *testing.T) {
	n := &recordingNotifier{}
	s, clk, _ := setupStore(t, WithNotifier(n))
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, eventInput("Notify", baseTime, baseTime.Add(time.Second)))
	require.NoError(t, err)
	rec, err := s.RecordShare(ctx, e.ID, PlatformTwitter, "https://x.com/p/1")
	require.NoError(t, err)
	_, err = s.VerifyShare(ctx, rec.ID, dec("10"))
	require.NoError(t, err)
	pos, err := s.Stake(ctx, dec("5"))
	require.NoError(t, err)
	_, err = s.Unstake(ctx, pos.ID)
	require.NoError(t, err)
	clk.Advance(time.Minute)
	s.PurgeExpiredEvents(ctx)

	assert.Equal(t, []string{
		ActivityEventCreated,
		ActivityShareRecorded,
		ActivityShareVerified,
		ActivityStakeOpened,
		ActivityStakeClosed,
		ActivityEventExpired,
	}, n.kinds)
}
