// Package client is the Go API client for a trusthire server. Listing
// reads are sequenced per view: when responses arrive out of order,
// the stale one is discarded instead of overwriting newer data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/trusthire/trusthire/internal/domain"
)

const defaultTimeout = 10 * time.Second

// ErrStaleResponse marks a listing response that was overtaken by a
// newer request for the same view. The caller should drop the result.
var ErrStaleResponse = errors.New("stale response discarded")

// APIError carries a non-2xx server answer.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string

	mu    sync.Mutex
	token string
	seq   map[string]uint64
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(time.Minute, 5*time.Minute),
		baseURL: baseURL,
		seq:     map[string]uint64{},
	}
}

// SetToken attaches a session token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// nextSeq stamps a new request against the view's slot.
func (c *Client) nextSeq(slot string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq[slot]++
	return c.seq[slot]
}

// isCurrent reports whether a response with the given stamp is still
// the newest request issued for the slot.
func (c *Client) isCurrent(slot string, stamp uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq[slot] == stamp
}

func (c *Client) do(ctx context.Context, method, path string, body, response any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return APIError{Status: resp.StatusCode, Message: failure.Error}
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// Session is the token plus profile a sign-in or sign-up returns.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type SignUpRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &session); err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

func (c *Client) SignIn(ctx context.Context, login, password string) (Session, error) {
	var session Session
	body := map[string]string{"login": login, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signin", body, &session); err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me fetches the current profile from the server. There is no cached
// session object; this is always a fresh read.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListJobs fetches the public board, or the caller's own postings when
// mine is set. Responses that lost the race to a newer listing request
// for the same view come back as ErrStaleResponse.
func (c *Client) ListJobs(ctx context.Context, mine bool) ([]domain.JobPosting, error) {
	slot := "jobs:public"
	path := "/api/v1/jobs"
	if mine {
		slot = "jobs:mine"
		path += "?mine=true"
	}
	stamp := c.nextSeq(slot)

	var jobs []domain.JobPosting
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	if !c.isCurrent(slot, stamp) {
		return nil, ErrStaleResponse
	}
	return jobs, nil
}

// GetJob reads a posting, serving repeated lookups from a short cache.
func (c *Client) GetJob(ctx context.Context, id string) (domain.JobPosting, error) {
	cacheKey := "job:" + id
	if x, found := c.cache.Get(cacheKey); found {
		return x.(domain.JobPosting), nil
	}

	var job domain.JobPosting
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+id, nil, &job); err != nil {
		return domain.JobPosting{}, err
	}
	c.cache.Set(cacheKey, job, cache.DefaultExpiration)
	return job, nil
}

type CreateJobRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	SalaryRange    string    `json:"salaryRange"`
	EmploymentType string    `json:"employmentType"`
	Skills         []string  `json:"skills"`
	Deadline       time.Time `json:"deadline"`
	Tier           string    `json:"tier"`
}

// CreateJobResponse is the stored posting plus, for paid tiers, the
// payment intent to settle with the provider.
type CreateJobResponse struct {
	Job    domain.JobPosting     `json:"Job"`
	Intent *domain.PaymentIntent `json:"Intent"`
}

func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (CreateJobResponse, error) {
	var result CreateJobResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", req, &result); err != nil {
		return CreateJobResponse{}, err
	}
	return result, nil
}

func (c *Client) Apply(ctx context.Context, jobID, coverLetter, resumeKey string) (domain.Application, error) {
	var app domain.Application
	body := map[string]string{"coverLetter": coverLetter, "resumeKey": resumeKey}
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs/"+jobID+"/applications", body, &app); err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// ListApplications fetches the caller's application view, sequenced
// like the job listings.
func (c *Client) ListApplications(ctx context.Context) ([]domain.Application, error) {
	stamp := c.nextSeq("applications")

	var apps []domain.Application
	if err := c.do(ctx, http.MethodGet, "/api/v1/applications", nil, &apps); err != nil {
		return nil, err
	}
	if !c.isCurrent("applications", stamp) {
		return nil, ErrStaleResponse
	}
	return apps, nil
}

func (c *Client) Rate(ctx context.Context, ratedID string, score int, comment string) (domain.Rating, error) {
	var rating domain.Rating
	body := map[string]any{"ratedId": ratedID, "score": score, "comment": comment}
	if err := c.do(ctx, http.MethodPost, "/api/v1/ratings", body, &rating); err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}

func (c *Client) Reputation(ctx context.Context, address string) (domain.Reputation, error) {
	var rep domain.Reputation
	if err := c.do(ctx, http.MethodGet, "/api/v1/reputation/"+address, nil, &rep); err != nil {
		return domain.Reputation{}, err
	}
	return rep, nil
}
