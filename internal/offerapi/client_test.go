package offerapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http://example.com:1234", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestFilter_ValuesAndEquality(t *testing.T) {
	yes := true
	no := false

	tests := []struct {
		name   string
		filter Filter
		want   url.Values
		zero   bool
	}{
		{"empty", Filter{}, url.Values{}, true},
		{"blank keyword", Filter{Keyword: "   "}, url.Values{}, true},
		{"status", Filter{Status: StatusQnA}, url.Values{"status": {"QNA"}}, false},
		{"read true", Filter{Read: &yes}, url.Values{"read": {"true"}}, false},
		{"read false", Filter{Read: &no}, url.Values{"read": {"false"}}, false},
		{
			"all",
			Filter{Status: StatusClosed, Read: &no, Keyword: "  acme "},
			url.Values{"status": {"CLOSED"}, "read": {"false"}, "keyword": {"acme"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Values()
			if got.Encode() != tt.want.Encode() {
				t.Fatalf("Values() = %q, want %q", got.Encode(), tt.want.Encode())
			}
			if tt.filter.IsZero() != tt.zero {
				t.Fatalf("IsZero() = %v, want %v", tt.filter.IsZero(), tt.zero)
			}
		})
	}

	yesAgain := true
	if !(Filter{Read: &yes}).Equal(Filter{Read: &yesAgain}) {
		t.Fatalf("filters with equal read pointers should be equal")
	}
	if (Filter{Read: &yes}).Equal(Filter{Read: &no}) {
		t.Fatalf("filters with different read values should differ")
	}
	if (Filter{}).Equal(Filter{Read: &no}) {
		t.Fatalf("nil read and false read should differ")
	}
	if !(Filter{Keyword: " a "}).Equal(Filter{Keyword: "a"}) {
		t.Fatalf("keyword comparison should ignore surrounding space")
	}
}

func TestClient_FetchesEndpointsWithSessionCookie(t *testing.T) {
	t.Parallel()

	var (
		mu         sync.Mutex
		gotQuery   url.Values
		gotCookie  string
		gotAgent   string
		gotReqIDs  []string
		gotBodies  = map[string]string{}
		gotMethods = map[string]string{}
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if c, err := r.Cookie("JSESSIONID"); err == nil {
			gotCookie = c.Value
		}
		gotAgent = r.Header.Get("User-Agent")
		gotReqIDs = append(gotReqIDs, r.Header.Get("X-Request-ID"))
		body, _ := io.ReadAll(r.Body)
		gotBodies[r.URL.Path] = string(body)
		gotMethods[r.URL.Path] = r.Method
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/me":
			_ = json.NewEncoder(w).Encode(Me{Authenticated: true, Nickname: "kim", Email: "kim@example.com", Role: "USER"})
		case "/api/offers":
			if r.Method == http.MethodPost {
				_ = json.NewEncoder(w).Encode(Offer{ID: 9, CompanyName: "Acme"})
				return
			}
			mu.Lock()
			gotQuery = r.URL.Query()
			mu.Unlock()
			_, _ = w.Write([]byte(`[{"offerId":42,"companyName":"Acme","status":"REVIEWED","adminRead":true,"read":false}]`))
		case "/api/offers/42":
			_, _ = w.Write([]byte(`{"offerId":42,"companyName":"Acme"}`))
		case "/api/offers/unread-count":
			_, _ = w.Write([]byte(`{"count":3}`))
		case "/api/offers/confirm":
			_, _ = w.Write([]byte(`{"confirmedCount":2}`))
		case "/api/offers/42/read", "/api/offers/42/confirm", "/api/offers/42/status":
			_, _ = w.Write([]byte(`{"offerId":42}`))
		case "/api/auth/logout":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, SessionCookie: "abc123"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if !me.Authenticated || me.Email != "kim@example.com" {
		t.Fatalf("Me payload = %#v, want authenticated kim", me)
	}

	read := false
	offers, err := c.ListOffers(ctx, Filter{Status: StatusReviewed, Read: &read, Keyword: " acme "})
	if err != nil {
		t.Fatalf("ListOffers returned error: %v", err)
	}
	if len(offers) != 1 || offers[0].ID != 42 || !offers[0].AdminRead || offers[0].Read {
		t.Fatalf("ListOffers = %#v, want offer 42 adminRead", offers)
	}
	mu.Lock()
	query := gotQuery
	mu.Unlock()
	if query.Get("status") != "REVIEWED" || query.Get("read") != "false" || query.Get("keyword") != "acme" {
		t.Fatalf("ListOffers query = %v, want filters encoded", query)
	}

	offer, err := c.GetOffer(ctx, 42)
	if err != nil || offer.ID != 42 {
		t.Fatalf("GetOffer = %#v, %v; want offer 42", offer, err)
	}

	count, err := c.UnreadCount(ctx)
	if err != nil || count != 3 {
		t.Fatalf("UnreadCount = %d, %v; want 3", count, err)
	}

	if err := c.MarkRead(ctx, 42, true); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if err := c.Confirm(ctx, 42); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if err := c.UpdateStatus(ctx, 42, StatusInterview); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	confirmed, err := c.ConfirmAll(ctx)
	if err != nil || confirmed != 2 {
		t.Fatalf("ConfirmAll = %d, %v; want 2", confirmed, err)
	}
	created, err := c.CreateOffer(ctx, CreateRequest{CompanyName: "Acme", PositionTitle: "Backend", EmploymentType: EmploymentFullTime, WorkType: WorkRemote})
	if err != nil || created.ID != 9 {
		t.Fatalf("CreateOffer = %#v, %v; want offer 9", created, err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotCookie != "abc123" {
		t.Fatalf("session cookie = %q, want abc123", gotCookie)
	}
	if !strings.HasPrefix(gotAgent, "offerwatch/") {
		t.Fatalf("User-Agent = %q, want offerwatch/*", gotAgent)
	}
	seen := map[string]bool{}
	for _, id := range gotReqIDs {
		if id == "" || seen[id] {
			t.Fatalf("X-Request-ID %q missing or reused", id)
		}
		seen[id] = true
	}
	if gotMethods["/api/offers/42/read"] != http.MethodPatch || gotBodies["/api/offers/42/read"] != `{"read":true}` {
		t.Fatalf("read update = %s %s, want PATCH {\"read\":true}", gotMethods["/api/offers/42/read"], gotBodies["/api/offers/42/read"])
	}
	if gotBodies["/api/offers/42/status"] != `{"status":"INTERVIEW"}` {
		t.Fatalf("status body = %s", gotBodies["/api/offers/42/status"])
	}
	if gotMethods["/api/offers/42/confirm"] != http.MethodPatch || gotBodies["/api/offers/42/confirm"] != "" {
		t.Fatalf("confirm = %s %q, want PATCH with no body", gotMethods["/api/offers/42/confirm"], gotBodies["/api/offers/42/confirm"])
	}
	if gotMethods["/api/auth/logout"] != http.MethodPost {
		t.Fatalf("logout method = %s, want POST", gotMethods["/api/auth/logout"])
	}
}

func TestClient_UnreadCountDefaultsToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	count, err := c.UnreadCount(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("UnreadCount = %d, %v; want 0, nil", count, err)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/offers":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/api/offers/unread-count":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Me(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("Me error = %v, want decode response error", err)
	}

	_, err = c.ListOffers(context.Background(), Filter{})
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("ListOffers error = %v, want status 500 error", err)
	}
	if IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized(500) = true, want false")
	}

	_, err = c.UnreadCount(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized(%v) = false, want true", err)
	}
}

func TestClient_RejectsInvalidArguments(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()
	if err := c.MarkRead(ctx, 0, true); err == nil {
		t.Fatalf("MarkRead(0) returned nil error")
	}
	if err := c.Confirm(ctx, -1); err == nil {
		t.Fatalf("Confirm(-1) returned nil error")
	}
	if err := c.UpdateStatus(ctx, 1, ""); err == nil {
		t.Fatalf("UpdateStatus with empty status returned nil error")
	}
	if _, err := c.CreateOffer(ctx, CreateRequest{CompanyName: " "}); err == nil {
		t.Fatalf("CreateOffer without company returned nil error")
	}
}
