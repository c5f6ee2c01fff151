package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/rental-listing-service/internal/model"
)

// Query parameters accepted by the list endpoints.  Dates use DateLayout.
// created_before and start_before include the named day.

// ListingFilterFrom parses location, created_after, created_before and
// search.
func ListingFilterFrom(q url.Values) (model.ListingFilter, error) {
	out := NewValidationError()
	f := model.ListingFilter{
		Location: strings.TrimSpace(q.Get("location")),
		Search:   q.Get("search"),
	}
	f.CreatedAfter = dateParam(q, "created_after", out)
	if t := dateParam(q, "created_before", out); t != nil {
		next := t.AddDate(0, 0, 1)
		f.CreatedBefore = &next
	}
	return f, out.OrNil()
}

// BookingFilterFrom parses status, start_after, start_before and search.
func BookingFilterFrom(q url.Values) (model.BookingFilter, error) {
	out := NewValidationError()
	f := model.BookingFilter{Search: q.Get("search")}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		s := model.BookingStatus(v)
		if s.Valid() {
			f.Status = s
		} else {
			out.Add("status", "Select a valid choice. "+v+" is not one of the available choices.")
		}
	}
	f.StartAfter = dateParam(q, "start_after", out)
	f.StartBefore = dateParam(q, "start_before", out)
	return f, out.OrNil()
}

// ReviewFilterFrom parses rating, listing_id and search.
func ReviewFilterFrom(q url.Values) (model.ReviewFilter, error) {
	out := NewValidationError()
	f := model.ReviewFilter{
		ListingID: strings.TrimSpace(q.Get("listing_id")),
		Search:    q.Get("search"),
	}
	if v := strings.TrimSpace(q.Get("rating")); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			out.Add("rating", MsgInvalidInteger)
		case !model.RatingInRange(n):
			out.Add("rating", MsgRatingRange)
		default:
			f.Rating = n
		}
	}
	return f, out.OrNil()
}

func dateParam(q url.Values, name string, out *ValidationError) *time.Time {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	t, ok := parseDate(v)
	if !ok {
		out.Add(name, MsgInvalidDate)
		return nil
	}
	return &t
}
