package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sustechcourse-backend/lib/scrapers/sustech"
	"sustechcourse-backend/lib/serviceutil"
	"sustechcourse-backend/lib/telemetry"
	"sustechcourse-backend/lib/textutil"
	"time"

	"github.com/mazen160/go-random"
)

const (
	report_relay_query   = "relay.query"
	report_relay_encode  = "relay.encode"
	report_relay_request = "relay.request-id"
)

const (
	DefaultRequestTimeout = time.Minute
	maxBodyBytes          = 1 << 16
)

// QueryRequest is the body of a POST to the relay. Terms are (year, term)
// pairs, a missing or null Terms queries every term.
type QueryRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Terms    [][2]int `json:"terms"`
	Match    string   `json:"match"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Options struct {
	// options of the session created for each request
	Client sustech.ClientOptions
	// defaults to DefaultRequestTimeout
	RequestTimeout time.Duration
	// requests must carry it as a bearer token when set
	AccessToken string
	// defaults to telemetry.SlogAPI
	Telemetry telemetry.API
}

// Relay logs in on behalf of the caller and returns their grades as JSON,
// every request gets a fresh session.
type Relay struct {
	client  sustech.ClientOptions
	timeout time.Duration
	token   string
	tel     telemetry.API
}

func NewRelay(opts Options) *Relay {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	return &Relay{
		client:  opts.Client,
		timeout: opts.RequestTimeout,
		token:   opts.AccessToken,
		tel:     telemetry.NewScopedAPI("relay", tel),
	}
}

// Handler serves the relay on `POST /`.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", r.handleQuery)
	return serviceutil.RequireAccessToken(r.token, mux)
}

func (r *Relay) requestTelemetry() telemetry.API {
	id, err := random.String(8)
	if err != nil {
		r.tel.ReportBroken(report_relay_request, err)
		return r.tel
	}
	return telemetry.NewScopedAPI(id, r.tel)
}

func (r *Relay) handleQuery(w http.ResponseWriter, req *http.Request) {
	tel := r.requestTelemetry()

	var body QueryRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	err := decoder.Decode(&body)
	if err != nil {
		writeError(w, tel, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, tel, http.StatusBadRequest, "username and password are required")
		return
	}
	terms, err := parseTerms(body.Terms)
	if err != nil {
		writeError(w, tel, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), r.timeout)
	defer cancel()

	courses, err := r.query(ctx, tel, body.Username, body.Password, terms)
	if err != nil {
		status, message := classify(ctx, err)
		if status != http.StatusUnauthorized {
			tel.ReportBroken(report_relay_query, err, status)
		}
		writeError(w, tel, status, message)
		return
	}

	if body.Match != "" {
		courses = textutil.FilterCourses(courses, body.Match)
	}
	tel.ReportDebug("query ok", body.Username, len(courses))
	writeJson(w, tel, http.StatusOK, courses)
}

func parseTerms(pairs [][2]int) ([]sustech.Term, error) {
	if pairs == nil {
		return nil, nil
	}
	terms := make([]sustech.Term, len(pairs))
	for i, p := range pairs {
		t := sustech.Term{Year: p[0], Term: p[1]}
		err := t.Validate()
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return terms, nil
}

// query runs the whole protocol, a nil terms means every term.
func (r *Relay) query(ctx context.Context, tel telemetry.API, username, password string, terms []sustech.Term) ([]sustech.Course, error) {
	opts := r.client
	opts.Telemetry = tel
	session, err := sustech.NewSession(opts)
	if err != nil {
		return nil, err
	}
	auth, err := session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if terms == nil {
		return auth.QueryAll(ctx)
	}
	return auth.QueryTerms(ctx, terms)
}

func classify(ctx context.Context, err error) (int, string) {
	var loginErr *sustech.LoginError
	if errors.As(err, &loginErr) {
		return http.StatusUnauthorized, loginErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "portal did not respond in time"
	}
	if errors.Is(err, sustech.ErrUnexpectedPage) {
		return http.StatusBadGateway, err.Error()
	}
	var transportErr *sustech.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJson(w http.ResponseWriter, tel telemetry.API, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		tel.ReportBroken(report_relay_encode, err)
	}
}

func writeError(w http.ResponseWriter, tel telemetry.API, status int, message string) {
	writeJson(w, tel, status, errorResponse{Error: message})
}
