package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/identity"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected status")
	// ErrFailed is returned when a listing comes back as {success:false}.
	ErrFailed = errors.New("request failed")
)

// Config controls the client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	VisitorID string
	SessionID string
}

// Client calls the intake API on behalf of one visitor.
type Client struct {
	base      string
	timeout   time.Duration
	visitorID string
	sessionID string
	http      *fasthttp.Client
}

// sharedHTTP is reused by every client so connections are pooled across visits.
var sharedHTTP = &fasthttp.Client{
	Name:                "swasthya-intake",
	MaxConnsPerHost:     256,
	MaxIdleConnDuration: 90 * time.Second,
	ReadTimeout:         30 * time.Second,
	WriteTimeout:        30 * time.Second,
}

// New creates a client. A zero Timeout means 10s.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   timeout,
		visitorID: cfg.VisitorID,
		sessionID: cfg.SessionID,
		http:      sharedHTTP,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.visitorID != "" {
		req.Header.SetCookie(identity.AnonCookieName, c.visitorID)
	}
	if c.sessionID != "" {
		req.Header.Set(identity.SessionHeaderName, c.sessionID)
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(data)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s %s: %w %d", method, path, ErrStatus, status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// SetLanguage persists the visitor's language.
func (c *Client) SetLanguage(ctx context.Context, lang domain.Language) error {
	var res Result
	return c.do(ctx, fasthttp.MethodPost, "/set_language", LanguageRequest{Language: lang}, &res)
}

// Translations fetches the translation table for lang. A missing table
// decodes to an empty map.
func (c *Client) Translations(ctx context.Context, lang domain.Language) (map[string]string, error) {
	var res TranslationsResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/get_translations/"+url.PathEscape(string(lang)), nil, &res); err != nil {
		return nil, err
	}
	if res.Translations == nil {
		res.Translations = map[string]string{}
	}
	return res.Translations, nil
}

// Register submits the registration form.
func (c *Client) Register(ctx context.Context, username, phone string) (Result, error) {
	var res Result
	err := c.do(ctx, fasthttp.MethodPost, "/register", RegisterRequest{Username: username, PhoneNumber: phone}, &res)
	return res, err
}

// Chat sends a free-text message for server-side classification.
func (c *Client) Chat(ctx context.Context, message string) (ChatReply, error) {
	var res ChatReply
	err := c.do(ctx, fasthttp.MethodPost, "/chat", ChatRequest{Message: message}, &res)
	return res, err
}

// Doctors lists doctors for specialist.
func (c *Client) Doctors(ctx context.Context, specialist string) ([]domain.Doctor, error) {
	var res DoctorsResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/get_doctors/"+url.PathEscape(specialist), nil, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("doctors %q: %w: %s", specialist, ErrFailed, res.Message)
	}
	return res.Doctors, nil
}

// Doctor looks up one doctor by id.
func (c *Client) Doctor(ctx context.Context, id int) (*domain.Doctor, error) {
	var res DoctorResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/get_doctor_location/"+strconv.Itoa(id), nil, &res); err != nil {
		return nil, err
	}
	if !res.Success || res.Doctor == nil {
		return nil, fmt.Errorf("doctor %d: %s", id, res.Message)
	}
	return res.Doctor, nil
}

// Caretakers lists available caretakers.
func (c *Client) Caretakers(ctx context.Context) ([]domain.Caretaker, error) {
	var res CaretakersResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/get_caretakers", nil, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("caretakers: %w: %s", ErrFailed, res.Message)
	}
	return res.Caretakers, nil
}

// FamilyMembers lists the visitor's family members. A {success:false}
// response is returned as a Result with a nil list.
func (c *Client) FamilyMembers(ctx context.Context) ([]domain.FamilyMember, Result, error) {
	var res FamilyResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/get_family_members", nil, &res); err != nil {
		return nil, Result{}, err
	}
	return res.FamilyMembers, res.Result, nil
}

// AddFamilyMember creates a family member for the visitor.
func (c *Client) AddFamilyMember(ctx context.Context, m FamilyMemberRequest) (Result, error) {
	var res Result
	err := c.do(ctx, fasthttp.MethodPost, "/add_family_member", m, &res)
	return res, err
}

// BookAppointment books a slot.
func (c *Client) BookAppointment(ctx context.Context, b BookingRequest) (BookingResult, error) {
	var res BookingResult
	err := c.do(ctx, fasthttp.MethodPost, "/book_appointment", b, &res)
	return res, err
}
