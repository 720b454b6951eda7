package rewards

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultKey is the persistence key the store is saved under.
const DefaultKey = "scan2share-store"

// Persister is the key-value medium the store writes through to. Load
// returns nil data when nothing has been saved under key.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Notifier receives an Activity after every successful mutation.
type Notifier interface {
	Notify(ctx context.Context, a Activity)
}

// Policy selects how the store reacts to unknown ids and bad arguments.
//
// With Strict unset, unknown ids are silent no-ops and arguments are taken
// as given. With Strict set, they surface as ErrNotFound, ErrInvalidArgument
// and ErrAlreadyVerified. RequireKnownEvent rejects shares whose event id
// was never seen, independent of Strict.
type Policy struct {
	Strict            bool
	RequireKnownEvent bool
}

type state struct {
	address    string
	events     []Event
	pastEvents []Event
	shares     []ShareRecord
	staked     []Position
	balance    decimal.Decimal
	codes      map[string]struct{}
}

func newState() *state {
	return &state{
		events:     []Event{},
		pastEvents: []Event{},
		shares:     []ShareRecord{},
		staked:     []Position{},
		codes:      make(map[string]struct{}),
	}
}

// Store owns events, past events, share records, staking positions and
// the spendable balance of one user.
type Store struct {
	mu sync.Mutex
	st *state

	persister Persister
	key       string
	policy    Policy
	dailyRate decimal.Decimal
	now       func() time.Time
	genCode   func(int) (string, error)
	notifier  Notifier
	logger    *zap.Logger
	validate  *validator.Validate
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithDailyRate(rate decimal.Decimal) Option {
	return func(s *Store) { s.dailyRate = rate }
}

// WithClock replaces time.Now as the store's source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func withCodeGenerator(gen func(int) (string, error)) Option {
	return func(s *Store) { s.genCode = gen }
}

// Open builds a store and loads any state previously saved by p.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		st:        newState(),
		persister: p,
		key:       DefaultKey,
		dailyRate: DefaultDailyRate,
		now:       time.Now,
		genCode:   randomCode,
		logger:    zap.NewNop(),
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if p == nil {
		return s, nil
	}

	data, err := p.Load(ctx, s.key)
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", s.key)
	}
	if len(data) == 0 {
		return s, nil
	}

	st, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	s.st = st

	s.logger.Info("store loaded",
		zap.String("key", s.key),
		zap.Int("events", len(st.events)),
		zap.Int("past_events", len(st.pastEvents)),
		zap.Int("shares", len(st.shares)),
		zap.Int("positions", len(st.staked)),
	)
	return s, nil
}

func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Now returns the store's current time, at millisecond precision.
func (s *Store) Now() time.Time {
	return s.clock()
}

// save writes the full state. Failures are logged only; Flush reports them.
// Callers hold s.mu.
func (s *Store) save(ctx context.Context) {
	if err := s.write(ctx); err != nil {
		s.logger.Error("persist store", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) write(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, err := encodeState(s.st)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	return errors.Wrapf(s.persister.Save(ctx, s.key, data), "save %q", s.key)
}

// Flush writes the current state and returns any persistence error.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx)
}

func (s *Store) notify(ctx context.Context, kind, subject string, amount decimal.Decimal, at time.Time) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Activity{Kind: kind, Subject: subject, Amount: amount, At: at})
}

func (s *Store) missing(what, id string) error {
	if !s.policy.Strict {
		return nil
	}
	return errors.Wrapf(ErrNotFound, "%s %s", what, id)
}

func (s *Store) invalid(err error) error {
	if !s.policy.Strict {
		return nil
	}
	return errors.Wrap(ErrInvalidArgument, err.Error())
}

// Address

func (s *Store) SetAddress(ctx context.Context, addr string) error {
	if !common.IsHexAddress(addr) {
		return errors.Wrapf(ErrInvalidArgument, "address %q", addr)
	}
	checksummed := common.HexToAddress(addr).Hex()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.address = checksummed
	s.save(ctx)
	s.notify(ctx, ActivityAddressSet, checksummed, decimal.Zero, s.clock())
	return nil
}

func (s *Store) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.address
}

// Events

// CreateEvent stores a new event with a generated id and short code and
// returns it.
func (s *Store) CreateEvent(ctx context.Context, in EventInput) (Event, error) {
	if s.policy.Strict {
		if err := s.validate.Struct(in); err != nil {
			return Event{}, errors.Wrap(ErrInvalidArgument, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := uniqueCode(s.genCode, s.st.codes)
	if err != nil {
		return Event{}, err
	}

	e := Event{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Hashtags:    slices.Clone(in.Hashtags),
		ShortCode:   code,
		Start:       in.Start,
		End:         in.End,
	}
	if e.Hashtags == nil {
		e.Hashtags = []string{}
	}

	s.st.codes[code] = struct{}{}
	s.st.events = append([]Event{e}, s.st.events...)
	s.save(ctx)
	s.notify(ctx, ActivityEventCreated, e.ID, decimal.Zero, s.clock())
	return e, nil
}

// AttachShareImage records a rendered share image reference on an active
// event.
func (s *Store) AttachShareImage(ctx context.Context, eventID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.st.events, func(e Event) bool { return e.ID == eventID })
	if i < 0 {
		return s.missing("event", eventID)
	}
	s.st.events[i].ShareImage = ref
	s.save(ctx)
	return nil
}

// PurgeExpiredEvents moves every event whose end time has passed to the
// past events, after the ones already there, and returns how many moved.
func (s *Store) PurgeExpiredEvents(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	active := make([]Event, 0, len(s.st.events))
	var expired []Event
	for _, e := range s.st.events {
		if e.Ended(now) {
			expired = append(expired, e)
		} else {
			active = append(active, e)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	s.st.events = active
	s.st.pastEvents = append(s.st.pastEvents, expired...)
	s.save(ctx)
	for _, e := range expired {
		s.notify(ctx, ActivityEventExpired, e.ID, decimal.Zero, now)
	}
	return len(expired)
}

func (s *Store) DeleteEvent(ctx context.Context, eventID string) error {
	return s.deleteFrom(ctx, &s.st.events, "event", eventID)
}

func (s *Store) DeletePastEvent(ctx context.Context, eventID string) error {
	return s.deleteFrom(ctx, &s.st.pastEvents, "past event", eventID)
}

func (s *Store) deleteFrom(ctx context.Context, list *[]Event, what, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(*list, func(e Event) bool { return e.ID == eventID })
	if i < 0 {
		return s.missing(what, eventID)
	}
	*list = slices.Delete(*list, i, i+1)
	s.save(ctx)
	s.notify(ctx, ActivityEventDeleted, eventID, decimal.Zero, s.clock())
	return nil
}

// EventByShortCode resolves a public share code to its active event.
func (s *Store) EventByShortCode(code string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.st.events, func(e Event) bool { return e.ShortCode == code })
	if i < 0 {
		if slices.ContainsFunc(s.st.pastEvents, func(e Event) bool { return e.ShortCode == code }) {
			return Event{}, errors.Wrapf(ErrEventEnded, "short code %s", code)
		}
		return Event{}, errors.Wrapf(ErrNotFound, "short code %s", code)
	}
	e := s.st.events[i]
	if e.Ended(s.clock()) {
		return e, errors.Wrapf(ErrEventEnded, "short code %s", code)
	}
	return e, nil
}

func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.st.events)
}

func (s *Store) PastEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.st.pastEvents)
}

func cloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.Hashtags = slices.Clone(e.Hashtags)
		out[i] = e
	}
	return out
}

func (s *Store) knownEvent(eventID string) bool {
	match := func(e Event) bool { return e.ID == eventID }
	return slices.ContainsFunc(s.st.events, match) || slices.ContainsFunc(s.st.pastEvents, match)
}

// Shares

// RecordShare stores an unverified claim that url was posted about an event.
func (s *Store) RecordShare(ctx context.Context, eventID string, platform Platform, url string) (ShareRecord, error) {
	if s.policy.Strict {
		in := shareInput{EventID: eventID, Platform: platform, URL: url}
		if err := s.validate.Struct(in); err != nil {
			return ShareRecord{}, errors.Wrap(ErrInvalidArgument, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy.RequireKnownEvent && !s.knownEvent(eventID) {
		return ShareRecord{}, errors.Wrapf(ErrNotFound, "event %s", eventID)
	}

	rec := ShareRecord{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Platform:  platform,
		URL:       url,
		CreatedAt: s.clock(),
		Reward:    decimal.Zero,
	}
	s.st.shares = append([]ShareRecord{rec}, s.st.shares...)
	s.save(ctx)
	s.notify(ctx, ActivityShareRecorded, rec.ID, decimal.Zero, rec.CreatedAt)
	return rec, nil
}

// VerifyShare marks a share verified with the given reward and credits the
// balance. A share is credited at most once.
func (s *Store) VerifyShare(ctx context.Context, shareID string, reward decimal.Decimal) (ShareRecord, error) {
	if reward.IsNegative() {
		if err := s.invalid(errors.Errorf("reward %s is negative", reward)); err != nil {
			return ShareRecord{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.st.shares, func(r ShareRecord) bool { return r.ID == shareID })
	if i < 0 {
		return ShareRecord{}, s.missing("share", shareID)
	}

	rec := &s.st.shares[i]
	if rec.Verified {
		if s.policy.Strict {
			return *rec, errors.Wrapf(ErrAlreadyVerified, "share %s", shareID)
		}
		return *rec, nil
	}

	rec.Verified = true
	rec.Reward = reward
	s.st.balance = s.st.balance.Add(reward)
	s.save(ctx)
	s.notify(ctx, ActivityShareVerified, rec.ID, reward, s.clock())
	return *rec, nil
}

func (s *Store) Shares() []ShareRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.shares)
}

// TotalEarned sums the rewards of verified shares.
func (s *Store) TotalEarned() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, r := range s.st.shares {
		if r.Verified {
			total = total.Add(r.Reward)
		}
	}
	return total
}

// Staking

// Stake locks amount from the balance into a new position.
func (s *Store) Stake(ctx context.Context, amount decimal.Decimal) (Position, error) {
	if !amount.IsPositive() {
		if err := s.invalid(errors.Errorf("stake amount %s must be positive", amount)); err != nil {
			return Position{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := Position{
		ID:         uuid.New().String(),
		Amount:     amount,
		Start:      s.clock(),
		RatePerDay: s.dailyRate,
	}
	s.st.staked = append([]Position{pos}, s.st.staked...)
	s.st.balance = s.st.balance.Sub(amount)
	s.save(ctx)
	s.notify(ctx, ActivityStakeOpened, pos.ID, amount, pos.Start)
	return pos, nil
}

// Unstake closes a position, crediting its principal plus the reward accrued
// up to now.
func (s *Store) Unstake(ctx context.Context, positionID string) (UnstakeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.st.staked, func(p Position) bool { return p.ID == positionID })
	if i < 0 {
		return UnstakeResult{}, s.missing("position", positionID)
	}

	now := s.clock()
	pos := s.st.staked[i]
	reward := pos.RewardAt(now)
	payout := pos.Amount.Add(reward)

	s.st.staked = slices.Delete(s.st.staked, i, i+1)
	s.st.balance = s.st.balance.Add(payout)
	s.save(ctx)
	s.notify(ctx, ActivityStakeClosed, pos.ID, payout, now)
	return UnstakeResult{Position: pos, Reward: reward, Payout: payout}, nil
}

// AccrueRewards returns the reward every open position would pay if
// unstaked now. It does not change any state.
func (s *Store) AccrueRewards() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	total := decimal.Zero
	for _, p := range s.st.staked {
		total = total.Add(p.RewardAt(now))
	}
	return total
}

func (s *Store) Staked() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.staked)
}

func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.balance
}

// Snapshot copies the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Address:    s.st.address,
		Events:     cloneEvents(s.st.events),
		PastEvents: cloneEvents(s.st.pastEvents),
		Shares:     slices.Clone(s.st.shares),
		Staked:     slices.Clone(s.st.staked),
		Balance:    s.st.balance,
	}
}
