package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/middleware"
	"github.com/iliyamo/rental-listing-service/internal/model"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	db     *memDB
	e      *echo.Echo
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newMemDB()
	a, l, b, r, tk := memAccounts{db}, memListings{db}, memBookings{db}, memReviews{db}, memTokens{db}
	events := &recordingPublisher{}
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}

	e := echo.New()
	e.Validator = dto.Validator{}

	lh := NewListingHandler(a, l, b, r)
	e.GET("/v1/listings", lh.List)
	e.POST("/v1/listings", lh.Create)
	e.GET("/v1/listings/:id", lh.Get)
	e.PUT("/v1/listings/:id", lh.Update)
	e.PATCH("/v1/listings/:id", lh.Update)
	e.DELETE("/v1/listings/:id", lh.Delete)
	e.GET("/v1/listings/:id/bookings", lh.ListBookings)
	e.GET("/v1/listings/:id/reviews", lh.ListReviews)

	bh := NewBookingHandler(a, l, b, events)
	e.GET("/v1/bookings", bh.List)
	e.POST("/v1/bookings", bh.Create)
	e.GET("/v1/bookings/:id", bh.Get)
	e.PUT("/v1/bookings/:id", bh.Update)
	e.PATCH("/v1/bookings/:id", bh.Update)
	e.DELETE("/v1/bookings/:id", bh.Delete)

	rh := NewReviewHandler(a, l, r)
	e.GET("/v1/reviews", rh.List)
	e.POST("/v1/reviews", rh.Create)
	e.GET("/v1/reviews/:id", rh.Get)
	e.PUT("/v1/reviews/:id", rh.Update)
	e.PATCH("/v1/reviews/:id", rh.Update)
	e.DELETE("/v1/reviews/:id", rh.Delete)

	ah := NewAccountHandler(a, l, b, r)
	e.GET("/v1/accounts/:id", ah.Get)
	e.DELETE("/v1/accounts/:id", ah.Delete)
	e.GET("/v1/accounts/:id/listings", ah.ListListings)
	e.GET("/v1/accounts/:id/bookings", ah.ListBookings)
	e.GET("/v1/accounts/:id/reviews", ah.ListReviews)

	auth := NewAuthHandler(cfg, a, tk)
	e.POST("/v1/auth/register", auth.Register)
	e.POST("/v1/auth/login", auth.Login)
	e.POST("/v1/auth/refresh", auth.Refresh)
	e.POST("/v1/auth/refresh-access", auth.RefreshAccess)
	e.POST("/v1/auth/logout", auth.Logout, middleware.OptionalJWT(testSecret))
	e.GET("/v1/me", auth.Me, middleware.JWTAuth(testSecret))

	return &testEnv{db: db, e: e, events: events}
}

func (env *testEnv) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

type itemsBody[T any] struct {
	Items []T `json:"items"`
}

func (env *testEnv) createListing(t *testing.T, hostID uint64, title string) dto.ListingResponse {
	t.Helper()
	body := fmt.Sprintf(`{"host_id":%d,"title":%q,"description":"Ocean view","location":"Malibu, CA","price_per_night":"150.00"}`, hostID, title)
	rec := env.do(http.MethodPost, "/v1/listings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.ListingResponse](t, rec)
}

func (env *testEnv) createBooking(t *testing.T, listingID string, userID uint64) dto.BookingResponse {
	t.Helper()
	body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"start_date":"2024-06-10","end_date":"2024-06-13","total_price":"450.00"}`, listingID, userID)
	rec := env.do(http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.BookingResponse](t, rec)
}

func (env *testEnv) createReview(t *testing.T, listingID string, userID uint64, rating int) dto.ReviewResponse {
	t.Helper()
	body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"rating":%d,"comment":"Nice"}`, listingID, userID, rating)
	rec := env.do(http.MethodPost, "/v1/reviews", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.ReviewResponse](t, rec)
}

func TestListingRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)

	created := env.createListing(t, host.ID, "Cozy Beach House")
	assert.NotEmpty(t, created.ListingID)
	assert.Equal(t, "Cozy Beach House", created.Title)
	assert.Equal(t, "150.00", created.PricePerNight)
	assert.Equal(t, host.ID, created.Host.ID)
	assert.Equal(t, "host", created.Host.Username)
	assert.False(t, created.CreatedAt.IsZero())

	rec := env.do(http.MethodGet, "/v1/listings/"+created.ListingID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[dto.ListingResponse](t, rec))

	// repeated reads are stable
	again := env.do(http.MethodGet, "/v1/listings/"+created.ListingID, "")
	assert.JSONEq(t, rec.Body.String(), again.Body.String())
}

func TestListingCreateUnknownHost(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/listings",
		`{"host_id":99,"title":"T","description":"D","location":"L","price_per_night":10}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, []string{`Invalid pk "99" - object does not exist.`}, body.Fields["host_id"])
}

func TestListingCreateMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/listings", `{"host_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[errorBody](t, rec).Error)
}

func TestListingGetMissing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/listings/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "listing not found", decode[errorBody](t, rec).Error)
}

func TestListingPatchKeepsOtherFields(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	l := env.createListing(t, host.ID, "Old title")

	rec := env.do(http.MethodPatch, "/v1/listings/"+l.ListingID, `{"title":"New title"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.ListingResponse](t, rec)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, l.Description, got.Description)
	assert.Equal(t, l.PricePerNight, got.PricePerNight)
	assert.Equal(t, l.CreatedAt, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(l.UpdatedAt))
}

func TestListingPutRequiresAllFields(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	l := env.createListing(t, host.ID, "Title")

	rec := env.do(http.MethodPut, "/v1/listings/"+l.ListingID, `{"title":"Only title"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Fields, "host_id")
	assert.Contains(t, body.Fields, "price_per_night")
}

func TestListingListFilters(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	env.createListing(t, host.ID, "Mountain Cabin")
	env.createListing(t, host.ID, "Beach House")

	rec := env.do(http.MethodGet, "/v1/listings?search=beach", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[itemsBody[dto.ListingResponse]](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Beach House", got.Items[0].Title)

	rec = env.do(http.MethodGet, "/v1/listings", "")
	all := decode[itemsBody[dto.ListingResponse]](t, rec)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Beach House", all.Items[0].Title, "newest first")

	rec = env.do(http.MethodGet, "/v1/listings?created_after=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "created_after")
}

func TestBookingDateOrdering(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")

	body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"start_date":"2024-06-10","end_date":"2024-06-10","total_price":"450.00"}`, l.ListingID, guest.ID)
	rec := env.do(http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{dto.MsgEndBeforeStart}, decode[errorBody](t, rec).Fields["end_date"])
	assert.Empty(t, env.db.bookings)

	b := env.createBooking(t, l.ListingID, guest.ID)
	assert.Equal(t, "2024-06-10", b.StartDate)
	assert.Equal(t, "2024-06-13", b.EndDate)
	assert.Equal(t, "450.00", b.TotalPrice)
	assert.Equal(t, "pending", b.Status)
	assert.Equal(t, l.ListingID, b.Listing.ListingID)
	assert.Equal(t, "host", b.Listing.Host.Username)
	assert.Equal(t, guest.ID, b.User.ID)
}

func TestBookingCreatePublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")

	b := env.createBooking(t, l.ListingID, guest.ID)

	require.Len(t, env.events.events, 1)
	ev := env.events.events[0]
	assert.Equal(t, b.BookingID, ev.BookingID)
	assert.Equal(t, 3, ev.Nights)
	assert.Equal(t, "guest", ev.GuestUsername)
}

func TestBookingCreateSurvivesPublishFailure(t *testing.T) {
	env := newTestEnv(t)
	env.events.err = errors.New("broker down")
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")

	b := env.createBooking(t, l.ListingID, guest.ID)

	assert.Contains(t, env.db.bookings, b.BookingID)
}

func TestBookingPatchValidatesMergedDates(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	b := env.createBooking(t, l.ListingID, guest.ID)

	rec := env.do(http.MethodPatch, "/v1/bookings/"+b.BookingID, `{"end_date":"2024-06-09"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "end_date")

	rec = env.do(http.MethodPatch, "/v1/bookings/"+b.BookingID, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.BookingResponse](t, rec)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, b.EndDate, got.EndDate)

	rec = env.do(http.MethodPatch, "/v1/bookings/"+b.BookingID, `{"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "status")
}

func TestBookingPutWithoutStatusKeepsStored(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	b := env.createBooking(t, l.ListingID, guest.ID)
	require.Equal(t, "pending", b.Status)

	rec := env.do(http.MethodPatch, "/v1/bookings/"+b.BookingID, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"start_date":"2024-06-10","end_date":"2024-06-14","total_price":"600.00"}`, l.ListingID, guest.ID)
	rec = env.do(http.MethodPut, "/v1/bookings/"+b.BookingID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.BookingResponse](t, rec)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "2024-06-14", got.EndDate)
	assert.Equal(t, "600.00", got.TotalPrice)

	rec = env.do(http.MethodPut, "/v1/bookings/"+b.BookingID, strings.TrimSuffix(body, "}")+`,"status":"canceled"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "canceled", decode[dto.BookingResponse](t, rec).Status)
}

func TestBookingDelete(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	b := env.createBooking(t, l.ListingID, guest.ID)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/v1/bookings/"+b.BookingID, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/bookings/"+b.BookingID, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/v1/bookings/"+b.BookingID, "").Code)
}

func TestReviewRatingBounds(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")

	for _, rating := range []int{0, 6} {
		body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"rating":%d,"comment":"x"}`, l.ListingID, guest.ID, rating)
		rec := env.do(http.MethodPost, "/v1/reviews", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
		assert.Equal(t, []string{dto.MsgRatingRange}, decode[errorBody](t, rec).Fields["rating"])
	}
	assert.Empty(t, env.db.reviews)

	rv := env.createReview(t, l.ListingID, guest.ID, 5)
	assert.Equal(t, 5, rv.Rating)

	rec := env.do(http.MethodPatch, "/v1/reviews/"+rv.ReviewID, `{"rating":6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewPutReplaces(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	rv := env.createReview(t, l.ListingID, guest.ID, 4)

	for _, rating := range []int{0, 6} {
		body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"rating":%d,"comment":"x"}`, l.ListingID, guest.ID, rating)
		rec := env.do(http.MethodPut, "/v1/reviews/"+rv.ReviewID, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
		assert.Equal(t, []string{dto.MsgRatingRange}, decode[errorBody](t, rec).Fields["rating"])
	}

	rec := env.do(http.MethodPut, "/v1/reviews/"+rv.ReviewID, `{"comment":"only a comment"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "rating")

	body := fmt.Sprintf(`{"listing_id":%q,"user_id":%d,"rating":2,"comment":"Noisy street"}`, l.ListingID, guest.ID)
	rec = env.do(http.MethodPut, "/v1/reviews/"+rv.ReviewID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.ReviewResponse](t, rec)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, "Noisy street", got.Comment)
	assert.Equal(t, rv.ReviewID, got.ReviewID)
}

func TestListingReviewsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	first := env.createReview(t, l.ListingID, guest.ID, 4)
	second := env.createReview(t, l.ListingID, guest.ID, 5)

	rec := env.do(http.MethodGet, "/v1/listings/"+l.ListingID+"/reviews", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[itemsBody[dto.ReviewResponse]](t, rec)
	require.Len(t, got.Items, 2)
	assert.Equal(t, second.ReviewID, got.Items[0].ReviewID)
	assert.Equal(t, first.ReviewID, got.Items[1].ReviewID)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/listings/missing/reviews", "").Code)
}

func TestListingDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	doomed := env.createListing(t, host.ID, "Doomed")
	kept := env.createListing(t, host.ID, "Kept")
	env.createBooking(t, doomed.ListingID, guest.ID)
	env.createReview(t, doomed.ListingID, guest.ID, 3)
	keptBooking := env.createBooking(t, kept.ListingID, guest.ID)
	keptReview := env.createReview(t, kept.ListingID, guest.ID, 4)

	rec := env.do(http.MethodDelete, "/v1/listings/"+doomed.ListingID, "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.db.listings, doomed.ListingID)
	assert.Len(t, env.db.bookings, 1)
	assert.Contains(t, env.db.bookings, keptBooking.BookingID)
	assert.Len(t, env.db.reviews, 1)
	assert.Contains(t, env.db.reviews, keptReview.ReviewID)
	assert.Len(t, env.db.accounts, 2)
}

func TestAccountDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	other := env.db.addAccount("other", false)
	hostListing := env.createListing(t, host.ID, "Host's")
	otherListing := env.createListing(t, other.ID, "Other's")
	env.createBooking(t, hostListing.ListingID, guest.ID)
	env.createReview(t, hostListing.ListingID, guest.ID, 5)
	env.createBooking(t, otherListing.ListingID, host.ID)
	env.createReview(t, otherListing.ListingID, host.ID, 2)
	surviving := env.createBooking(t, otherListing.ListingID, guest.ID)

	rec := env.do(http.MethodDelete, fmt.Sprintf("/v1/accounts/%d", host.ID), "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.db.accounts, host.ID)
	assert.Len(t, env.db.listings, 1)
	assert.Contains(t, env.db.listings, otherListing.ListingID)
	assert.Len(t, env.db.bookings, 1)
	assert.Contains(t, env.db.bookings, surviving.BookingID)
	assert.Empty(t, env.db.reviews)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, fmt.Sprintf("/v1/accounts/%d", host.ID), "").Code)
}

func TestAccountCollections(t *testing.T) {
	env := newTestEnv(t)
	host := env.db.addAccount("host", false)
	guest := env.db.addAccount("guest", false)
	l := env.createListing(t, host.ID, "Cozy")
	env.createBooking(t, l.ListingID, guest.ID)
	env.createReview(t, l.ListingID, guest.ID, 5)

	rec := env.do(http.MethodGet, fmt.Sprintf("/v1/accounts/%d/listings", host.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[itemsBody[dto.ListingResponse]](t, rec).Items, 1)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/accounts/%d/bookings", host.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[itemsBody[dto.BookingResponse]](t, rec).Items)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/accounts/%d/bookings", guest.ID), "")
	assert.Len(t, decode[itemsBody[dto.BookingResponse]](t, rec).Items, 1)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/accounts/%d/reviews", guest.ID), "")
	assert.Len(t, decode[itemsBody[dto.ReviewResponse]](t, rec).Items, 1)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/accounts/%d", guest.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/accounts/999/listings", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/accounts/abc", "").Code)
}

func TestAuthRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"username":"alice","email":"Alice@Example.com","password":"password123","first_name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[dto.AuthResponse](t, rec)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.Role)
	assert.NotEmpty(t, reg.Access.Token)
	assert.NotEmpty(t, reg.Refresh.Token)

	rec = env.do(http.MethodPost, "/v1/auth/register",
		`{"username":"alice","email":"other@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[dto.AuthResponse](t, rec)

	rec = env.do(http.MethodGet, "/v1/me", "", echo.HeaderAuthorization, "Bearer "+login.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestAuthRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"username":"bob","email":"not-an-email","password":"short"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	assert.Empty(t, env.db.accounts)
}

func TestAuthRefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/register", `{"username":"carol","email":"carol@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode[dto.AuthResponse](t, rec)
	old := fmt.Sprintf(`{"refresh_token":%q}`, reg.Refresh.Token)

	rec = env.do(http.MethodPost, "/v1/auth/refresh-access", old)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access"`)

	rec = env.do(http.MethodPost, "/v1/auth/refresh", old)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode[dto.AuthResponse](t, rec)
	assert.NotEqual(t, reg.Refresh.Token, rotated.Refresh.Token)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/auth/refresh", old).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/auth/refresh", `{}`).Code)
}

func TestAuthLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/register", `{"username":"dave","email":"dave@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[dto.AuthResponse](t, rec)
	rec = env.do(http.MethodPost, "/v1/auth/login", `{"username":"dave","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[dto.AuthResponse](t, rec)

	// single session
	rec = env.do(http.MethodPost, "/v1/auth/logout", fmt.Sprintf(`{"refresh_token":%q}`, first.Refresh.Token))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized,
		env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, first.Refresh.Token)).Code)

	// all sessions of the bearer
	rec = env.do(http.MethodPost, "/v1/auth/logout", "", echo.HeaderAuthorization, "Bearer "+second.Access.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized,
		env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, second.Refresh.Token)).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/auth/logout", "").Code)
}
