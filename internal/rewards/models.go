package rewards

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform is a social network a share can be posted to.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
)

func (p Platform) Valid() bool {
	return p == PlatformTwitter || p == PlatformLinkedIn
}

// DefaultDailyRate is the fraction of a staked amount earned per day.
var DefaultDailyRate = decimal.RequireFromString("0.02")

const msPerDay = 24 * 60 * 60 * 1000

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Hashtags    []string  `json:"hashtags"`
	ShortCode   string    `json:"short_code"`
	ShareImage  string    `json:"share_image,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Ended reports whether the event's end time has passed. Events without an
// end time never end.
func (e Event) Ended(now time.Time) bool {
	return !e.End.IsZero() && e.End.Before(now)
}

// EventInput carries the caller-supplied fields of a new event.
type EventInput struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Hashtags    []string  `json:"hashtags"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end" validate:"gtefield=Start"`
}

type ShareRecord struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Platform  Platform        `json:"platform"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
	Verified  bool            `json:"verified"`
	Reward    decimal.Decimal `json:"reward"`
}

type shareInput struct {
	EventID  string   `validate:"required"`
	Platform Platform `validate:"oneof=twitter linkedin"`
	URL      string   `validate:"required,url"`
}

// Position is a locked amount accruing a linear daily reward until unstaked.
type Position struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Start      time.Time       `json:"start"`
	RatePerDay decimal.Decimal `json:"rate_per_day"`
}

// RewardAt returns the reward accrued by the position at now:
// amount * rate * elapsed days, with fractional days counted.
func (p Position) RewardAt(now time.Time) decimal.Decimal {
	elapsed := now.Sub(p.Start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	days := decimal.NewFromInt(elapsed).Div(decimal.NewFromInt(msPerDay))
	return p.Amount.Mul(p.RatePerDay).Mul(days)
}

type UnstakeResult struct {
	Position Position        `json:"position"`
	Reward   decimal.Decimal `json:"reward"`
	Payout   decimal.Decimal `json:"payout"`
}

// Snapshot is a point-in-time copy of the whole store.
type Snapshot struct {
	Address    string          `json:"address,omitempty"`
	Events     []Event         `json:"events"`
	PastEvents []Event         `json:"past_events"`
	Shares     []ShareRecord   `json:"shares"`
	Staked     []Position      `json:"staked"`
	Balance    decimal.Decimal `json:"balance"`
}

// Activity describes a completed store mutation.
type Activity struct {
	Kind    string          `json:"kind"`
	Subject string          `json:"subject"`
	Amount  decimal.Decimal `json:"amount"`
	At      time.Time       `json:"at"`
}

const (
	ActivityEventCreated  = "event.created"
	ActivityEventExpired  = "event.expired"
	ActivityEventDeleted  = "event.deleted"
	ActivityShareRecorded = "share.recorded"
	ActivityShareVerified = "share.verified"
	ActivityStakeOpened   = "stake.opened"
	ActivityStakeClosed   = "stake.closed"
	ActivityAddressSet    = "address.set"
)
