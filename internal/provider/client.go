package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/logger"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type Options struct {
	URL              string
	AnonKey          string
	JWTSecret        string
	ResetRedirectURL string
	HTTPClient       *http.Client
	Storage          SessionStorage
	// Profiles defaults to the provider's REST endpoint.
	Profiles ProfileSource
	Logger   *logger.Logger
}

// Client is the auth gateway to the hosted provider. It owns the cached
// provider session and announces every session change on its hub.
type Client struct {
	baseURL       string
	anonKey       string
	resetRedirect string
	httpClient    *http.Client
	storage       SessionStorage
	profiles      ProfileSource
	tokens        *TokenParser
	hub           *Hub
	log           *logger.Logger

	// sessionMu serializes session reads so a stale token is refreshed once.
	sessionMu sync.Mutex
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(opts.URL, "/"),
		anonKey:       opts.AnonKey,
		resetRedirect: opts.ResetRedirectURL,
		httpClient:    opts.HTTPClient,
		storage:       opts.Storage,
		profiles:      opts.Profiles,
		tokens:        NewTokenParser(opts.JWTSecret),
		hub:           NewHub(),
		log:           opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage()
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.profiles == nil {
		c.profiles = NewRESTProfiles(c.baseURL, c.anonKey, c.httpClient, c)
	}
	return c
}

type authResponse struct {
	AccessToken  string           `json:"access_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	ExpiresAt    int64            `json:"expires_at"`
	RefreshToken string           `json:"refresh_token"`
	User         *models.Identity `json:"user"`
	// Without a session the provider returns the user at the top level.
	models.Identity
}

func (r *authResponse) identity() models.Identity {
	if r.User != nil {
		return *r.User
	}
	return r.Identity
}

func (c *Client) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	scope := in.UserScope
	if scope == "" {
		scope = models.ScopeExternal
	}

	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data": map[string]string{
			"full_name":  in.FullName,
			"user_scope": scope,
		},
	}

	var resp authResponse
	if err := c.call(ctx, c.anonSource(), http.MethodPost, "/auth/v1/signup", nil, body, &resp); err != nil {
		return nil, err
	}

	result := &models.SignUpResult{User: resp.identity()}
	if resp.AccessToken == "" {
		c.log.Info("sign up accepted, confirmation pending", "user_id", result.User.ID)
		return result, nil
	}

	session := c.sessionFrom(&resp)
	if err := c.installSession(ctx, models.EventSignedIn, session); err != nil {
		return nil, err
	}
	result.Session = session
	return result, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.call(ctx, c.anonSource(), http.MethodPost, "/auth/v1/token", query, body, &resp); err != nil {
		return nil, asAuthentication(err)
	}

	session := c.sessionFrom(&resp)
	if err := c.installSession(ctx, models.EventSignedIn, session); err != nil {
		return nil, err
	}
	return session, nil
}

// VerifyRecovery exchanges the token from a password-recovery email for a
// session, after which UpdatePassword can be called.
func (c *Client) VerifyRecovery(ctx context.Context, tokenHash string) (*models.Session, error) {
	body := map[string]string{"type": "recovery", "token_hash": tokenHash}

	var resp authResponse
	if err := c.call(ctx, c.anonSource(), http.MethodPost, "/auth/v1/verify", nil, body, &resp); err != nil {
		return nil, asAuthentication(err)
	}

	session := c.sessionFrom(&resp)
	if err := c.installSession(ctx, models.EventPasswordRecovery, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes the session at the provider and forgets it locally. With
// no session it does nothing. A session the provider no longer knows is
// still forgotten.
func (c *Client) SignOut(ctx context.Context) error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	session, err := c.storage.Load(ctx)
	if err != nil {
		return apperror.NewProvider(0, "failed to read stored session", err)
	}
	if session == nil {
		return nil
	}

	query := url.Values{"scope": {"global"}}
	err = c.call(ctx, oauth2.StaticTokenSource(session.Token()), http.MethodPost, "/auth/v1/logout", query, nil, nil)
	if err != nil && !isSessionGone(err) {
		return err
	}

	if err := c.storage.Clear(ctx); err != nil {
		return apperror.NewProvider(0, "failed to clear stored session", err)
	}
	c.hub.Publish(models.EventSignedOut, nil)
	return nil
}

// GetSession returns the current provider session, refreshing an expired
// access token first. It returns nil when there is no usable session.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	session, err := c.storage.Load(ctx)
	if err != nil {
		return nil, apperror.NewProvider(0, "failed to read stored session", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired() {
		if session.RefreshToken == "" {
			return nil, c.dropSession(ctx, "session expired without refresh token")
		}
		refreshed, err := c.refresh(ctx, session.RefreshToken)
		if err != nil {
			if apperror.IsAuthentication(err) {
				return nil, c.dropSession(ctx, "refresh token rejected")
			}
			return nil, err
		}
		if err := c.storage.Save(ctx, refreshed); err != nil {
			return nil, apperror.NewProvider(0, "failed to store session", err)
		}
		c.hub.Publish(models.EventTokenRefreshed, refreshed)
		session = refreshed
	}

	claims, err := c.tokens.Parse(session.AccessToken)
	if err != nil || claims.Subject != session.User.ID.String() {
		return nil, c.dropSession(ctx, "stored access token does not match session")
	}

	return session, nil
}

func (c *Client) GetCurrentIdentity(ctx context.Context) (*models.Identity, error) {
	session, err := c.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	var identity models.Identity
	if err := c.call(ctx, oauth2.StaticTokenSource(session.Token()), http.MethodGet, "/auth/v1/user", nil, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetUserProfile returns nil, nil when the identity has no profile row yet,
// which is the normal state until sign-up is confirmed.
func (c *Client) GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	profile, err := c.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, wrapProvider(err)
	}
	return profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error) {
	profile, err := c.profiles.Update(ctx, id, updates)
	if err != nil {
		return nil, wrapProvider(err)
	}
	return profile, nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	var query url.Values
	if c.resetRedirect != "" {
		query = url.Values{"redirect_to": {c.resetRedirect}}
	}
	return c.call(ctx, c.anonSource(), http.MethodPost, "/auth/v1/recover", query, map[string]string{"email": email}, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, newPassword string) error {
	session, err := c.GetSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NewPrecondition("no user logged in")
	}

	var identity models.Identity
	body := map[string]string{"password": newPassword}
	if err := c.call(ctx, oauth2.StaticTokenSource(session.Token()), http.MethodPut, "/auth/v1/user", nil, body, &identity); err != nil {
		return err
	}

	session.User = identity
	return c.installSession(ctx, models.EventUserUpdated, session)
}

// OnAuthStateChange registers fn for every provider session change and
// returns the function that releases the registration.
func (c *Client) OnAuthStateChange(fn func(models.AuthChange)) func() {
	return c.hub.Subscribe(fn)
}

// TokenSource yields the current session's access token, or the anonymous
// key when signed out.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, client: c}
}

type sessionTokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	session, err := s.client.GetSession(s.ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return s.client.anonToken(), nil
	}
	return session.Token(), nil
}

func (c *Client) anonToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: c.anonKey, TokenType: "Bearer"}
}

func (c *Client) anonSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.anonToken())
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var resp authResponse
	if err := c.call(ctx, c.anonSource(), http.MethodPost, "/auth/v1/token", query, body, &resp); err != nil {
		return nil, asAuthentication(err)
	}
	return c.sessionFrom(&resp), nil
}

func (c *Client) installSession(ctx context.Context, event models.AuthEvent, session *models.Session) error {
	if err := c.storage.Save(ctx, session); err != nil {
		return apperror.NewProvider(0, "failed to store session", err)
	}
	c.hub.Publish(event, session)
	return nil
}

// dropSession forgets an unusable session. Callers hold sessionMu.
func (c *Client) dropSession(ctx context.Context, reason string) error {
	c.log.Warn("dropping stored session", "reason", reason)
	if err := c.storage.Clear(ctx); err != nil {
		return apperror.NewProvider(0, "failed to clear stored session", err)
	}
	c.hub.Publish(models.EventSignedOut, nil)
	return nil
}

func (c *Client) sessionFrom(resp *authResponse) *models.Session {
	session := &models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.identity(),
	}
	if session.TokenType == "" {
		session.TokenType = "bearer"
	}

	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	default:
		if claims, err := c.tokens.Parse(resp.AccessToken); err == nil && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return session
}

func (c *Client) call(ctx context.Context, src oauth2.TokenSource, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), src)
	client.Timeout = c.httpClient.Timeout
	resp, err := client.Do(req)
	if err != nil {
		return apperror.NewProvider(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp).toAppError()
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewProvider(resp.StatusCode, "failed to decode provider response", err)
	}
	return nil
}

// providerError covers both the auth server's and the REST server's error
// bodies.
type providerError struct {
	status           int
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorName        string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeError(resp *http.Response) *providerError {
	perr := &providerError{status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		_ = json.Unmarshal(data, perr)
	}
	return perr
}

func (e *providerError) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return strings.Trim(string(e.Code), `"`)
}

func (e *providerError) message() string {
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Message, e.ErrorName} {
		if m != "" {
			return m
		}
	}
	return http.StatusText(e.status)
}

func (e *providerError) toAppError() *apperror.AppError {
	return apperror.NewProvider(e.status, e.message(), fmt.Errorf("provider returned status %d %s", e.status, e.code()))
}

// asAuthentication turns a rejected grant into an authentication error.
func asAuthentication(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperror.KindProvider {
		return err
	}
	switch appErr.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return apperror.NewAuthentication(appErr.Status, appErr.Message)
	}
	return err
}

func isSessionGone(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func wrapProvider(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewProvider(0, "", err)
}
