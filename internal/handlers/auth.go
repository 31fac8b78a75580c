package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vaughan-dsouza/notes/internal/auth"
	"github.com/vaughan-dsouza/notes/internal/models"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

const (
	maxUsernameLen = 50
	maxEmailLen    = 100
)

type AuthHandler struct {
	store     store.Store
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenService
	ttl       time.Duration
	logger    *slog.Logger
	dummyHash string
}

func NewAuthHandler(d Deps) *AuthHandler {
	h := &AuthHandler{
		store:  d.Store,
		hasher: d.Hasher,
		tokens: d.Tokens,
		ttl:    d.AccessTokenTTL,
		logger: d.Logger,
	}
	// Compared against on unknown usernames so both login failures cost the same.
	if hash, err := d.Hasher.Hash("not-a-real-password"); err == nil {
		h.dummyHash = hash
	}
	return h
}

// ----------- Request/Response DTOs -------------

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// -------------- REGISTER ----------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", slog.Int64("user_id", user.ID))
	utils.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) register(ctx context.Context, req registerReq) (*models.User, error) {
	req.Username = normalizeUsername(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := h.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, validationError(err.Error())
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	err = h.store.WithTx(ctx, func(ctx context.Context, q store.Queries) error {
		return q.CreateUser(ctx, user)
	})
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return nil, conflictError("Username already registered")
	case errors.Is(err, store.ErrEmailTaken):
		return nil, conflictError("Email already registered")
	case err != nil:
		return nil, err
	}

	return user, nil
}

// normalizeUsername is applied on both register and login so stored and
// presented usernames compare equal.
func normalizeUsername(s string) string {
	return strings.TrimSpace(s)
}

func validateRegistration(req registerReq) error {
	switch {
	case req.Username == "":
		return validationError("username is required")
	case utf8.RuneCountInString(req.Username) > maxUsernameLen:
		return validationError("username must be at most 50 characters")
	case req.Email == "":
		return validationError("email is required")
	case utf8.RuneCountInString(req.Email) > maxEmailLen:
		return validationError("email must be at most 100 characters")
	case !validEmail(req.Email):
		return validationError("email is not a valid email address")
	case req.Password == "":
		return validationError("password is required")
	}
	return nil
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Extra keys in a login body are ignored.
	var req loginReq
	if err := utils.DecodeJSONLenient(w, r, &req); err != nil {
		return
	}

	token, err := h.login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, tokenResp{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) login(ctx context.Context, req loginReq) (string, error) {
	req.Username = normalizeUsername(req.Username)
	if req.Username == "" || req.Password == "" {
		return "", validationError("Username and password required")
	}

	var user *models.User
	err := h.store.WithTx(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		user, err = q.UserByUsername(ctx, req.Username)
		return err
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// Unknown user and wrong password are indistinguishable to the caller.
	if user == nil {
		h.hasher.Verify(req.Password, h.dummyHash)
		return "", unauthenticated("Incorrect username or password")
	}
	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		return "", unauthenticated("Incorrect username or password")
	}

	token, _, err := h.tokens.Issue(user.Username, h.ttl)
	if err != nil {
		return "", err
	}
	return token, nil
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, h.logger, unauthenticated("Could not validate credentials"))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
