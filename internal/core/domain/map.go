package domain

import (
	"crypto/rand"
	"math/big"
	"slices"
	"time"

	"github.com/google/uuid"
)

type MapStatus string

const (
	MapStatusPending MapStatus = "pending"
	MapStatusSuccess MapStatus = "success"
	MapStatusFailed  MapStatus = "failed"
)

func (s MapStatus) IsValid() bool {
	return s == MapStatusPending || s == MapStatusSuccess || s == MapStatusFailed
}

type Location struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type Design struct {
	Style       string  `json:"style"`
	Composition string  `json:"composition"`
	Aspect      string  `json:"aspect"`
	Landscape   bool    `json:"landscape"`
	Zoom        float64 `json:"zoom"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// Map is a generated artifact. Votes is a denormalized count of Voters and
// the two must always agree.
type Map struct {
	UID             uuid.UUID  `json:"uid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Owner           string     `json:"owner"`
	Email           string     `json:"email"`
	Tier            Tier       `json:"tier"`
	Status          MapStatus  `json:"status"`
	Ticket          string     `json:"ticket"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	Location        Location   `json:"location"`
	Design          Design     `json:"design"`
	ImageURL        string     `json:"image_url"`
	Votes           int        `json:"votes"`
	Voters          []string   `json:"voters"`
	PurchasedFrom   *uuid.UUID `json:"purchased_from"`
	IsPurchasedCopy bool       `json:"is_purchased_copy"`
	ArchivedAt      *time.Time `json:"archived_at"`
}

func (m *Map) IsArchived() bool {
	return m.ArchivedAt != nil
}

func (m *Map) HasVoter(userID string) bool {
	return slices.Contains(m.Voters, userID)
}

func (m *Map) IsOwnedBy(userID string) bool {
	return userID != "" && m.Owner == userID
}

// CloneFor builds the purchased copy of m owned by buyer. Display and design
// attributes are copied; identity, ticket, votes and timestamps are fresh.
func (m *Map) CloneFor(buyer, buyerEmail string, now time.Time) (*Map, error) {
	ticket, err := NewTicket()
	if err != nil {
		return nil, err
	}
	from := m.UID
	return &Map{
		UID:             uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Owner:           buyer,
		Email:           buyerEmail,
		Tier:            m.Tier,
		Status:          m.Status,
		Ticket:          ticket,
		Title:           m.Title,
		Subtitle:        m.Subtitle,
		Location:        m.Location,
		Design:          m.Design,
		ImageURL:        m.ImageURL,
		Votes:           0,
		Voters:          []string{},
		PurchasedFrom:   &from,
		IsPurchasedCopy: true,
	}, nil
}

const (
	ticketLength   = 6
	ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewTicket returns a random correlation token.
func NewTicket() (string, error) {
	b := make([]byte, ticketLength)
	alphabet := big.NewInt(int64(len(ticketAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		b[i] = ticketAlphabet[n.Int64()]
	}
	return string(b), nil
}
