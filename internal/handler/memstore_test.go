package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/rental-listing-service/internal/model"
	"github.com/iliyamo/rental-listing-service/internal/queue"
	"github.com/iliyamo/rental-listing-service/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL repositories.  It follows
// the same error contract and cascade rules.
type memDB struct {
	mu       sync.Mutex
	clock    time.Time
	nextID   uint64
	seq      int
	accounts map[uint64]model.Account
	listings map[string]model.Listing
	bookings map[string]model.Booking
	reviews  map[string]model.Review
	tokens   map[string]memToken
}

type memToken struct {
	accountID uint64
	exp       time.Time
	revoked   bool
}

func newMemDB() *memDB {
	return &memDB{
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		accounts: map[uint64]model.Account{},
		listings: map[string]model.Listing{},
		bookings: map[string]model.Booking{},
		reviews:  map[string]model.Review{},
		tokens:   map[string]memToken{},
	}
}

// tick advances the clock so created_at orders like insertion order.
func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) newID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%04d", prefix, m.seq)
}

func (m *memDB) addAccount(username string, superuser bool) model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := model.Account{
		ID:          m.nextID,
		Username:    username,
		Email:       username + "@example.com",
		IsSuperuser: superuser,
		CreatedAt:   m.tick(),
	}
	m.accounts[a.ID] = a
	return a
}

func (m *memDB) listingDetail(l model.Listing) model.ListingDetail {
	return model.ListingDetail{Listing: l, Host: m.accounts[l.HostID]}
}

func (m *memDB) bookingDetail(b model.Booking) model.BookingDetail {
	return model.BookingDetail{Booking: b, Listing: m.listingDetail(m.listings[b.ListingID]), Guest: m.accounts[b.UserID]}
}

func (m *memDB) reviewDetail(rv model.Review) model.ReviewDetail {
	return model.ReviewDetail{Review: rv, Listing: m.listingDetail(m.listings[rv.ListingID]), Author: m.accounts[rv.UserID]}
}

// dropListing removes a listing with its bookings and reviews.
func (m *memDB) dropListing(id string) {
	for k, b := range m.bookings {
		if b.ListingID == id {
			delete(m.bookings, k)
		}
	}
	for k, rv := range m.reviews {
		if rv.ListingID == id {
			delete(m.reviews, k)
		}
	}
	delete(m.listings, id)
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ---- accounts ----

type memAccounts struct{ *memDB }

func (m memAccounts) Create(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.accounts {
		if other.Username == a.Username || strings.EqualFold(other.Email, a.Email) {
			return fmt.Errorf("%w: duplicate account", repository.ErrConflict)
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = m.tick()
	m.accounts[a.ID] = *a
	return nil
}

func (m memAccounts) GetByID(_ context.Context, id uint64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &a, nil
}

func (m memAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m memAccounts) Exists(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[id]
	return ok, nil
}

func (m memAccounts) DeleteCascade(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	for lid, l := range m.listings {
		if l.HostID == id {
			m.dropListing(lid)
		}
	}
	for k, b := range m.bookings {
		if b.UserID == id {
			delete(m.bookings, k)
		}
	}
	for k, rv := range m.reviews {
		if rv.UserID == id {
			delete(m.reviews, k)
		}
	}
	for k, t := range m.tokens {
		if t.accountID == id {
			delete(m.tokens, k)
		}
	}
	delete(m.accounts, id)
	return nil
}

// ---- listings ----

type memListings struct{ *memDB }

func (m memListings) Create(_ context.Context, l *model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[l.HostID]; !ok {
		return fmt.Errorf("%w: host", repository.ErrInvalidReference)
	}
	l.ID = m.newID("L")
	l.CreatedAt = m.tick()
	l.UpdatedAt = l.CreatedAt
	m.listings[l.ID] = *l
	return nil
}

func (m memListings) GetByID(_ context.Context, id string) (*model.ListingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	d := m.listingDetail(l)
	return &d, nil
}

func (m memListings) List(_ context.Context, f model.ListingFilter) ([]model.ListingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ListingDetail{}
	for _, l := range m.listings {
		switch {
		case f.HostID != nil && l.HostID != *f.HostID:
			continue
		case f.Location != "" && l.Location != f.Location:
			continue
		case f.Search != "" && !contains(l.Title+"\n"+l.Description+"\n"+l.Location, f.Search):
			continue
		}
		out = append(out, m.listingDetail(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memListings) Update(_ context.Context, l *model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.listings[l.ID]
	if !ok {
		return repository.ErrListingNotFound
	}
	if _, ok := m.accounts[l.HostID]; !ok {
		return fmt.Errorf("%w: host", repository.ErrInvalidReference)
	}
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = m.tick()
	m.listings[l.ID] = *l
	return nil
}

func (m memListings) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.listings[id]
	return ok, nil
}

func (m memListings) DeleteCascade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return repository.ErrListingNotFound
	}
	m.dropListing(id)
	return nil
}

// ---- bookings ----

type memBookings struct{ *memDB }

func (m memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.newID("B")
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	b.CreatedAt = m.tick()
	m.bookings[b.ID] = *b
	return nil
}

func (m memBookings) GetByID(_ context.Context, id string) (*model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	d := m.bookingDetail(b)
	return &d, nil
}

func (m memBookings) List(_ context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range m.bookings {
		switch {
		case f.ListingID != "" && b.ListingID != f.ListingID:
			continue
		case f.UserID != nil && b.UserID != *f.UserID:
			continue
		case f.Status != "" && b.Status != f.Status:
			continue
		}
		out = append(out, m.bookingDetail(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memBookings) Update(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m memBookings) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

// ---- reviews ----

type memReviews struct{ *memDB }

func (m memReviews) Create(_ context.Context, rv *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv.ID = m.newID("R")
	rv.CreatedAt = m.tick()
	m.reviews[rv.ID] = *rv
	return nil
}

func (m memReviews) GetByID(_ context.Context, id string) (*model.ReviewDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	d := m.reviewDetail(rv)
	return &d, nil
}

func (m memReviews) List(_ context.Context, f model.ReviewFilter) ([]model.ReviewDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReviewDetail{}
	for _, rv := range m.reviews {
		switch {
		case f.ListingID != "" && rv.ListingID != f.ListingID:
			continue
		case f.UserID != nil && rv.UserID != *f.UserID:
			continue
		case f.Rating != 0 && rv.Rating != f.Rating:
			continue
		}
		out = append(out, m.reviewDetail(rv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memReviews) Update(_ context.Context, rv *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[rv.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	m.reviews[rv.ID] = *rv
	return nil
}

func (m memReviews) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

// ---- refresh tokens ----

type memTokens struct{ *memDB }

func (m memTokens) StoreRefresh(_ context.Context, accountID uint64, tokenHash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = memToken{accountID: accountID, exp: exp}
	return nil
}

func (m memTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenHash]
	if !ok || t.revoked || !t.exp.After(time.Now()) {
		return 0, repository.ErrTokenInvalid
	}
	return t.accountID, nil
}

func (m memTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tokenHash]; ok {
		t.revoked = true
		m.tokens[tokenHash] = t
	}
	return nil
}

func (m memTokens) RevokeAllForAccount(_ context.Context, accountID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.accountID == accountID {
			t.revoked = true
			m.tokens[k] = t
		}
	}
	return nil
}

// ---- events ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}
