package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/identity"
	json "github.com/goccy/go-json"
)

type recorded struct {
	method  string
	path    string
	body    string
	cookie  string
	session string
}

type fakeAPI struct {
	mu   sync.Mutex
	reqs []recorded
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recorded{method: r.Method, path: r.URL.EscapedPath(), body: string(body), session: r.Header.Get(identity.SessionHeaderName)}
	if c, err := r.Cookie(identity.AnonCookieName); err == nil {
		rec.cookie = c.Value
	}
	f.mu.Lock()
	f.reqs = append(f.reqs, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/get_doctors/Cardiologist":
		_, _ = io.WriteString(w, `{"success":true,"doctors":[{"id":1,"name":"Dr. Rajesh Sharma","hospital":"Apollo Hospital","experience":15,"consultation_fee":500,"phone_number":"9876543210","lat":17.4065,"lng":78.4772}]}`)
	case r.URL.Path == "/get_translations/hindi":
		_, _ = io.WriteString(w, `{"success":true,"translations":{"next":"अगला"}}`)
	case r.URL.Path == "/get_translations/none":
		_, _ = io.WriteString(w, `{"success":true}`)
	case r.URL.Path == "/chat":
		_, _ = io.WriteString(w, `{"success":true,"response":"See a doctor","specialist":"General Physician"}`)
	case r.URL.Path == "/book_appointment":
		_, _ = io.WriteString(w, `{"success":false,"message":"Slot already booked"}`)
	case r.URL.Path == "/get_caretakers":
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	default:
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	}
}

func (f *fakeAPI) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, VisitorID: "anon_abc", SessionID: "tab-1"}), api
}

func TestClient_Doctors(t *testing.T) {
	t.Parallel()

	c, api := newTestClient(t)
	docs, err := c.Doctors(context.Background(), "Cardiologist")
	if err != nil {
		t.Fatalf("Doctors failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ConsultationFee != 500 || docs[0].Lat != 17.4065 {
		t.Fatalf("unexpected doctors: %+v", docs)
	}

	req := api.last()
	if req.method != http.MethodGet || req.cookie != "anon_abc" || req.session != "tab-1" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestClient_PathEscaping(t *testing.T) {
	t.Parallel()

	c, api := newTestClient(t)
	_, _ = c.Doctors(context.Background(), "General Physician")
	if got := api.last().path; got != "/get_doctors/General%20Physician" {
		t.Errorf("path = %q", got)
	}
}

func TestClient_Translations(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	tr, err := c.Translations(context.Background(), "hindi")
	if err != nil || tr["next"] != "अगला" {
		t.Fatalf("unexpected translations: %v, %v", tr, err)
	}

	empty, err := c.Translations(context.Background(), "none")
	if err != nil {
		t.Fatalf("Translations failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("missing table must decode to an empty map, got %v", empty)
	}
}

func TestClient_ChatAndBooking(t *testing.T) {
	t.Parallel()

	c, api := newTestClient(t)
	reply, err := c.Chat(context.Background(), "I feel unwell")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !reply.Success || reply.Specialist != "General Physician" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	var sent ChatRequest
	if err := json.Unmarshal([]byte(api.last().body), &sent); err != nil || sent.Message != "I feel unwell" {
		t.Fatalf("unexpected chat body %q: %v", api.last().body, err)
	}

	res, err := c.BookAppointment(context.Background(), BookingRequest{DoctorID: 1, Date: "2024-06-10", Time: "09:30"})
	if err != nil {
		t.Fatalf("BookAppointment failed: %v", err)
	}
	if res.Success || res.Message != "Slot already booked" {
		t.Fatalf("unexpected booking result: %+v", res)
	}
	if body := api.last().body; !strings.Contains(body, `"doctor_id":1`) || !strings.Contains(body, `"time":"09:30"`) {
		t.Errorf("unexpected booking body: %s", body)
	}
}

func TestClient_StatusError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	if _, err := c.Caretakers(context.Background()); !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
}

func TestClient_FailureEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":false,"message":"Something went wrong"}`)
	}))
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})

	docs, err := c.Doctors(context.Background(), "Cardiologist")
	if !errors.Is(err, ErrFailed) || docs != nil {
		t.Errorf("Doctors = %v, %v; want ErrFailed", docs, err)
	}
	if err != nil && !strings.Contains(err.Error(), "Something went wrong") {
		t.Errorf("error should carry the server message: %v", err)
	}

	list, err := c.Caretakers(context.Background())
	if !errors.Is(err, ErrFailed) || list != nil {
		t.Errorf("Caretakers = %v, %v; want ErrFailed", list, err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Chat(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: 500 * time.Millisecond})
	if err := c.SetLanguage(context.Background(), "hindi"); err == nil {
		t.Fatal("expected an error for a closed server")
	}
}
