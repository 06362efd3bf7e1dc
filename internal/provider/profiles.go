package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ProfileSource reads and writes users rows. GetByID returns nil, nil when no
// row matches.
type ProfileSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error)
}

// TokenSourcer yields the credentials row requests run under.
type TokenSourcer interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

const (
	singleObjectMediaType = "application/vnd.pgrst.object+json"
	noRowsCode            = "PGRST116"
)

// RESTProfiles talks to the provider's PostgREST endpoint. Row-level security
// applies, so requests carry the signed-in user's access token.
type RESTProfiles struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	tokens     TokenSourcer
}

func NewRESTProfiles(baseURL, anonKey string, httpClient *http.Client, tokens TokenSourcer) *RESTProfiles {
	return &RESTProfiles{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

func (p *RESTProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	query := url.Values{}
	query.Set("id", "eq."+id.String())
	query.Set("select", "*")

	resp, err := p.send(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		perr := decodeError(resp)
		if isNoRows(resp.StatusCode, perr) {
			return nil, nil
		}
		return nil, perr.toAppError()
	}

	var row profileRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, apperror.NewProvider(resp.StatusCode, "failed to decode profile", err)
	}
	return row.toProfile(), nil
}

func (p *RESTProfiles) Update(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error) {
	cols := updateColumns(updates)
	cols["updated_at"] = time.Now().UTC()

	body, err := json.Marshal(cols)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile update: %w", err)
	}

	query := url.Values{}
	query.Set("id", "eq."+id.String())

	resp, err := p.send(ctx, http.MethodPatch, query, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		perr := decodeError(resp)
		if isNoRows(resp.StatusCode, perr) {
			return nil, apperror.NewNotFound("profile not found")
		}
		return nil, perr.toAppError()
	}

	var row profileRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, apperror.NewProvider(resp.StatusCode, "failed to decode profile", err)
	}
	return row.toProfile(), nil
}

func (p *RESTProfiles) send(ctx context.Context, method string, query url.Values, body []byte) (*http.Response, error) {
	endpoint := p.baseURL + "/rest/v1/users?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Accept", singleObjectMediaType)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient), p.tokens.TokenSource(ctx))
	client.Timeout = p.httpClient.Timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.NewProvider(0, "", err)
	}
	return resp, nil
}

func isNoRows(status int, perr *providerError) bool {
	return status == http.StatusNotAcceptable || perr.code() == noRowsCode
}
