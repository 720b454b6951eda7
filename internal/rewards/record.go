package rewards

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// The persisted layout keeps the field names and millisecond timestamps of
// the browser store so existing blobs load unchanged.

const recordVersion = 0

type persistedState struct {
	State   stateRecord `json:"state"`
	Version int         `json:"version"`
}

type stateRecord struct {
	Address    string           `json:"address,omitempty"`
	Events     []eventRecord    `json:"events"`
	PastEvents []eventRecord    `json:"pastEvents"`
	Shares     []shareRecord    `json:"shares"`
	Balance    decimal.Decimal  `json:"balance"`
	Staked     []positionRecord `json:"staked"`
	ShortCodes []string         `json:"shortCodes,omitempty"`
}

type eventRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Hashtags    []string `json:"hashtags"`
	ShortCode   string   `json:"shortCode"`
	QRDataURL   string   `json:"qrDataUrl,omitempty"`
	StartMs     int64    `json:"startMs"`
	EndMs       int64    `json:"endMs"`
}

type shareRecord struct {
	ID        string          `json:"id"`
	EventID   string          `json:"eventId"`
	Platform  string          `json:"platform"`
	URL       string          `json:"url"`
	Timestamp int64           `json:"timestamp"`
	Verified  bool            `json:"verified"`
	Reward    decimal.Decimal `json:"reward"`
}

type positionRecord struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	StartMs      int64           `json:"startMs"`
	RewardPerDay decimal.Decimal `json:"rewardPerDay"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func encodeEvents(events []Event) []eventRecord {
	out := make([]eventRecord, 0, len(events))
	for _, e := range events {
		out = append(out, eventRecord{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Location:    e.Location,
			Hashtags:    e.Hashtags,
			ShortCode:   e.ShortCode,
			QRDataURL:   e.ShareImage,
			StartMs:     toMillis(e.Start),
			EndMs:       toMillis(e.End),
		})
	}
	return out
}

func decodeEvents(records []eventRecord) []Event {
	out := make([]Event, 0, len(records))
	for _, r := range records {
		out = append(out, Event{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Date:        r.Date,
			Location:    r.Location,
			Hashtags:    r.Hashtags,
			ShortCode:   r.ShortCode,
			ShareImage:  r.QRDataURL,
			Start:       fromMillis(r.StartMs),
			End:         fromMillis(r.EndMs),
		})
	}
	return out
}

func encodeState(s *state) ([]byte, error) {
	rec := persistedState{Version: recordVersion}
	rec.State.Address = s.address
	rec.State.Events = encodeEvents(s.events)
	rec.State.PastEvents = encodeEvents(s.pastEvents)
	rec.State.Balance = s.balance

	rec.State.Shares = make([]shareRecord, 0, len(s.shares))
	for _, sh := range s.shares {
		rec.State.Shares = append(rec.State.Shares, shareRecord{
			ID:        sh.ID,
			EventID:   sh.EventID,
			Platform:  string(sh.Platform),
			URL:       sh.URL,
			Timestamp: toMillis(sh.CreatedAt),
			Verified:  sh.Verified,
			Reward:    sh.Reward,
		})
	}

	rec.State.Staked = make([]positionRecord, 0, len(s.staked))
	for _, p := range s.staked {
		rec.State.Staked = append(rec.State.Staked, positionRecord{
			ID:           p.ID,
			Amount:       p.Amount,
			StartMs:      toMillis(p.Start),
			RewardPerDay: p.RatePerDay,
		})
	}

	rec.State.ShortCodes = make([]string, 0, len(s.codes))
	for code := range s.codes {
		rec.State.ShortCodes = append(rec.State.ShortCodes, code)
	}
	slices.Sort(rec.State.ShortCodes)

	return json.Marshal(rec)
}

func decodeState(data []byte) (*state, error) {
	var rec persistedState
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decode persisted state")
	}

	s := newState()
	s.address = rec.State.Address
	s.events = decodeEvents(rec.State.Events)
	s.pastEvents = decodeEvents(rec.State.PastEvents)
	s.balance = rec.State.Balance

	for _, r := range rec.State.Shares {
		s.shares = append(s.shares, ShareRecord{
			ID:        r.ID,
			EventID:   r.EventID,
			Platform:  Platform(r.Platform),
			URL:       r.URL,
			CreatedAt: fromMillis(r.Timestamp),
			Verified:  r.Verified,
			Reward:    r.Reward,
		})
	}

	for _, r := range rec.State.Staked {
		s.staked = append(s.staked, Position{
			ID:         r.ID,
			Amount:     r.Amount,
			Start:      fromMillis(r.StartMs),
			RatePerDay: r.RewardPerDay,
		})
	}

	for _, code := range rec.State.ShortCodes {
		s.codes[code] = struct{}{}
	}
	// Blobs written before codes were tracked still reserve every live code.
	for _, e := range s.events {
		s.codes[e.ShortCode] = struct{}{}
	}
	for _, e := range s.pastEvents {
		s.codes[e.ShortCode] = struct{}{}
	}

	return s, nil
}
