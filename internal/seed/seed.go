// Package seed loads a small, predictable demo dataset: five accounts, five
// listings, three bookings and five reviews.  Each run first clears the
// previous demo data, so repeated runs always end with the same counts.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-listing-service/internal/model"
	"github.com/iliyamo/rental-listing-service/internal/repository"
	"github.com/iliyamo/rental-listing-service/internal/utils"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Store is the persistence the seeder writes through.
type Store interface {
	ClearDemoData(ctx context.Context) error
	CreateAccount(ctx context.Context, a *model.Account) error
	CreateListing(ctx context.Context, l *model.Listing) error
	CreateBooking(ctx context.Context, b *model.Booking) error
	CreateReview(ctx context.Context, rv *model.Review) error
}

// Summary reports how many records a run created.
type Summary struct {
	Accounts int
	Listings int
	Bookings int
	Reviews  int
}

func (s Summary) String() string {
	return fmt.Sprintf("accounts=%d listings=%d bookings=%d reviews=%d", s.Accounts, s.Listings, s.Bookings, s.Reviews)
}

// Options tune a run.  Today anchors booking dates; zero means the current
// UTC date.
type Options struct {
	Today      time.Time
	BcryptCost int
}

type listingFixture struct {
	title, description, location, price string
}

var listingFixtures = []listingFixture{
	{"Cozy Apartment in Downtown", "A beautiful apartment in the heart of the city with amazing views.", "New York, NY", "150.00"},
	{"Beach House Paradise", "Luxurious beach house with private access to the beach.", "Miami, FL", "300.00"},
	{"Mountain Cabin Retreat", "Peaceful cabin in the mountains, perfect for a getaway.", "Aspen, CO", "200.00"},
	{"Modern Loft in Tech Hub", "Stylish loft in the tech district with all amenities.", "San Francisco, CA", "250.00"},
	{"Historic Townhouse", "Charming townhouse with historical significance.", "Boston, MA", "180.00"},
}

var reviewFixtures = []struct {
	rating  int
	comment string
}{
	{5, "Amazing place! Highly recommended."},
	{4, "Great location, very comfortable."},
	{5, "Perfect for a weekend getaway."},
	{3, "Good but could be cleaner."},
	{4, "Nice amenities and friendly host."},
}

const (
	accountCount  = 5
	bookingCount  = 3
	bookingNights = 3
	bookingStride = 7 // days between consecutive booking start dates
)

// Run clears the demo data and writes the fixtures.  It stops at the first
// storage error.
func Run(ctx context.Context, st Store, opt Options) (Summary, error) {
	var sum Summary
	today := opt.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	log.Info().Msg("seed: clearing existing data")
	if err := st.ClearDemoData(ctx); err != nil {
		return sum, fmt.Errorf("clear demo data: %w", err)
	}

	accounts := make([]model.Account, 0, accountCount)
	for i := 1; i <= accountCount; i++ {
		hash, err := utils.HashPassword(DemoPassword, opt.BcryptCost)
		if err != nil {
			return sum, err
		}
		a := model.Account{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			FirstName:    fmt.Sprintf("First%d", i),
			LastName:     fmt.Sprintf("Last%d", i),
			PasswordHash: hash,
		}
		if err := st.CreateAccount(ctx, &a); err != nil {
			return sum, fmt.Errorf("create account %s: %w", a.Username, err)
		}
		accounts = append(accounts, a)
		sum.Accounts++
	}
	log.Info().Int("count", sum.Accounts).Msg("seed: accounts created")

	listings := make([]model.Listing, 0, len(listingFixtures))
	for i, f := range listingFixtures {
		l := model.Listing{
			HostID:        accounts[i%len(accounts)].ID,
			Title:         f.title,
			Description:   f.description,
			Location:      f.location,
			PricePerNight: decimal.RequireFromString(f.price),
		}
		if err := st.CreateListing(ctx, &l); err != nil {
			return sum, fmt.Errorf("create listing %q: %w", l.Title, err)
		}
		listings = append(listings, l)
		sum.Listings++
	}
	log.Info().Int("count", sum.Listings).Msg("seed: listings created")

	for i, l := range listings[:bookingCount] {
		start := today.AddDate(0, 0, i*bookingStride)
		status := model.BookingConfirmed
		if i%2 == 1 {
			status = model.BookingPending
		}
		b := model.Booking{
			ListingID:  l.ID,
			UserID:     accounts[(i+1)%len(accounts)].ID,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, bookingNights),
			TotalPrice: l.PricePerNight.Mul(decimal.NewFromInt(bookingNights)),
			Status:     status,
		}
		if err := st.CreateBooking(ctx, &b); err != nil {
			return sum, fmt.Errorf("create booking for %q: %w", l.Title, err)
		}
		sum.Bookings++
	}
	log.Info().Int("count", sum.Bookings).Msg("seed: bookings created")

	for i, f := range reviewFixtures {
		rv := model.Review{
			ListingID: listings[i%len(listings)].ID,
			UserID:    accounts[(i+2)%len(accounts)].ID,
			Rating:    f.rating,
			Comment:   f.comment,
		}
		if err := st.CreateReview(ctx, &rv); err != nil {
			return sum, fmt.Errorf("create review %d: %w", i+1, err)
		}
		sum.Reviews++
	}
	log.Info().Int("count", sum.Reviews).Msg("seed: reviews created")

	return sum, nil
}

// repoStore adapts the MySQL repositories to Store.
type repoStore struct{ s *repository.Store }

// FromRepository seeds through the MySQL repositories.
func FromRepository(s *repository.Store) Store { return repoStore{s: s} }

func (r repoStore) ClearDemoData(ctx context.Context) error { return r.s.ClearDemoData(ctx) }

func (r repoStore) CreateAccount(ctx context.Context, a *model.Account) error {
	return r.s.Accounts.Create(ctx, a)
}

func (r repoStore) CreateListing(ctx context.Context, l *model.Listing) error {
	return r.s.Listings.Create(ctx, l)
}

func (r repoStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	return r.s.Bookings.Create(ctx, b)
}

func (r repoStore) CreateReview(ctx context.Context, rv *model.Review) error {
	return r.s.Reviews.Create(ctx, rv)
}
