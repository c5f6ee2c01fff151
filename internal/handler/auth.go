package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/dto"
	"github.com/iliyamo/rental-listing-service/internal/middleware"
	"github.com/iliyamo/rental-listing-service/internal/model"
	"github.com/iliyamo/rental-listing-service/internal/repository"
	"github.com/iliyamo/rental-listing-service/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Tokens   TokenStore
}

func NewAuthHandler(cfg config.Config, a AccountStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: a, Tokens: t}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}

// issue signs an access token and stores a fresh refresh token for a.
func (h *AuthHandler) issue(ctx context.Context, a *model.Account) (dto.AuthResponse, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, a.Role(), h.Cfg.AccessTTLMin)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, a.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return dto.AuthResponse{}, err
	}
	return dto.AuthResponse{
		User:    dto.NewAccountResponse(*a),
		Role:    a.Role(),
		Access:  dto.TokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: dto.TokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a regular account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	a := &model.Account{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := h.Accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
		}
		return respondError(c, err)
	}

	resp, err := h.issue(ctx, a)
	if err != nil {
		return respondError(c, err)
	}
	log.Info().Uint64("account_id", a.ID).Str("username", a.Username).Msg("account registered")
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies username and password and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c, "invalid credentials")
		}
		return respondError(c, err)
	}
	if !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return unauthorized(c, "invalid credentials")
	}

	resp, err := h.issue(ctx, a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// refreshOwner resolves a raw refresh token to its live account.
func (h *AuthHandler) refreshOwner(ctx context.Context, raw string) (*model.Account, string, error) {
	hash := utils.HashRefreshRaw(raw)
	accountID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return nil, hash, err
	}
	a, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, hash, repository.ErrTokenInvalid
		}
		return nil, hash, err
	}
	return a, hash, nil
}

func (h *AuthHandler) bindRefresh(c echo.Context) (string, error) {
	var req dto.RefreshRequest
	if err := bindBody(c, &req); err != nil {
		return "", err
	}
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if err := c.Validate(&req); err != nil {
		return "", err
	}
	return req.RefreshToken, nil
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := h.bindRefresh(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, hash, err := h.refreshOwner(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return unauthorized(c, "invalid refresh")
		}
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return respondError(c, err)
	}

	resp, err := h.issue(ctx, a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	raw, err := h.bindRefresh(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, _, err := h.refreshOwner(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return unauthorized(c, "invalid refresh")
		}
		return respondError(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, a.Role(), h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": dto.TokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one refresh token when the body carries it, otherwise
// every session of the bearer.  Mount behind OptionalJWT.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req dto.RefreshRequest
	_ = bindBody(c, &req) // body is optional when a bearer is present
	raw := strings.TrimSpace(req.RefreshToken)
	callerID, authed := middleware.AccountID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	switch {
	case raw != "":
		hash := utils.HashRefreshRaw(raw)
		ownerID, err := h.Tokens.ValidateRefresh(ctx, hash)
		if err != nil {
			if errors.Is(err, repository.ErrTokenInvalid) {
				return unauthorized(c, "invalid refresh")
			}
			return respondError(c, err)
		}
		if authed && ownerID != callerID {
			return respondError(c, repository.ErrForbidden)
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return respondError(c, err)
		}
	case authed:
		if err := h.Tokens.RevokeAllForAccount(ctx, callerID); err != nil {
			return respondError(c, err)
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token or bearer token required"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.AccountID(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c, "unauthorized")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": dto.NewAccountResponse(*a), "role": a.Role()})
}
