package repository

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // registers the "mysql" dialect

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// dialect builds MySQL-flavoured, prepared (placeholder) statements.
var dialect = goqu.Dialect("mysql")

// Column lists per table.  Detail reads join the related tables under
// fixed aliases: l (listing), h (host), b (booking), g (guest),
// r (review), u (review author).  The password hash is never selected.
var (
	accountColumns = []string{"id", "username", "email", "first_name", "last_name"}
	listingColumns = []string{"listing_id", "host_id", "title", "description", "location", "price_per_night", "created_at", "updated_at"}
	bookingColumns = []string{"booking_id", "listing_id", "user_id", "start_date", "end_date", "total_price", "status", "created_at"}
	reviewColumns  = []string{"review_id", "listing_id", "user_id", "rating", "comment", "created_at"}

	listingDetailColumns = concat(qualify("l", listingColumns), qualify("h", accountColumns))
	bookingDetailColumns = concat(qualify("b", bookingColumns), listingDetailColumns, qualify("g", accountColumns))
	reviewDetailColumns  = concat(qualify("r", reviewColumns), listingDetailColumns, qualify("u", accountColumns))
)

func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func identifiers(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = goqu.I(c)
	}
	return out
}

// joins shared by the detail datasets
func withListingHost(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.InnerJoin(goqu.T("accounts").As("h"), goqu.On(goqu.I("h.id").Eq(goqu.I("l.host_id"))))
}

func listingDetailDataset() *goqu.SelectDataset {
	ds := dialect.From(goqu.T("listings").As("l"))
	return withListingHost(ds).Select(identifiers(listingDetailColumns)...)
}

func bookingDetailDataset() *goqu.SelectDataset {
	ds := dialect.From(goqu.T("bookings").As("b")).
		InnerJoin(goqu.T("listings").As("l"), goqu.On(goqu.I("l.listing_id").Eq(goqu.I("b.listing_id"))))
	return withListingHost(ds).
		InnerJoin(goqu.T("accounts").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("b.user_id")))).
		Select(identifiers(bookingDetailColumns)...)
}

func reviewDetailDataset() *goqu.SelectDataset {
	ds := dialect.From(goqu.T("reviews").As("r")).
		InnerJoin(goqu.T("listings").As("l"), goqu.On(goqu.I("l.listing_id").Eq(goqu.I("r.listing_id"))))
	return withListingHost(ds).
		InnerJoin(goqu.T("accounts").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Select(identifiers(reviewDetailColumns)...)
}

// likePattern turns a free-text search into a LIKE pattern that matches the
// term literally anywhere in the column.
func likePattern(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func accountDest(a *model.Account) []any {
	return []any{&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName}
}

func listingDest(l *model.Listing) []any {
	return []any{&l.ID, &l.HostID, &l.Title, &l.Description, &l.Location, &l.PricePerNight, &l.CreatedAt, &l.UpdatedAt}
}

func listingDetailDest(d *model.ListingDetail) []any {
	return append(listingDest(&d.Listing), accountDest(&d.Host)...)
}

func bookingDest(b *model.Booking) []any {
	return []any{&b.ID, &b.ListingID, &b.UserID, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status, &b.CreatedAt}
}

func reviewDest(r *model.Review) []any {
	return []any{&r.ID, &r.ListingID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt}
}

func scanListingDetail(s rowScanner) (model.ListingDetail, error) {
	var d model.ListingDetail
	err := s.Scan(listingDetailDest(&d)...)
	return d, err
}

func scanBookingDetail(s rowScanner) (model.BookingDetail, error) {
	var d model.BookingDetail
	dest := concatDest(bookingDest(&d.Booking), listingDetailDest(&d.Listing), accountDest(&d.Guest))
	err := s.Scan(dest...)
	return d, err
}

func scanReviewDetail(s rowScanner) (model.ReviewDetail, error) {
	var d model.ReviewDetail
	dest := concatDest(reviewDest(&d.Review), listingDetailDest(&d.Listing), accountDest(&d.Author))
	err := s.Scan(dest...)
	return d, err
}

func concatDest(groups ...[]any) []any {
	var out []any
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
