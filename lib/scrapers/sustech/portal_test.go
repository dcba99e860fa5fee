package sustech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sustechcourse-backend/lib/telemetry"
	"sync"
	"testing"

	_ "embed"
)

//go:embed testdata/login_page.html
var loginPageHtml []byte

//go:embed testdata/login_rejected.html
var loginRejectedHtml []byte

//go:embed testdata/login_rejected_no_alert.html
var loginRejectedNoAlertHtml []byte

//go:embed testdata/query_form.html
var queryFormHtml []byte

//go:embed testdata/results.html
var resultsHtml []byte

//go:embed testdata/results_empty.html
var resultsEmptyHtml []byte

//go:embed testdata/results_all.html
var resultsAllHtml []byte

//go:embed testdata/maintenance.html
var maintenanceHtml []byte

const sessionCookie = "JSESSIONID"

// fakePortal serves both the CAS login endpoint and the grade pages from a
// single httptest server. A successful login redirects to the service url
// with a ticket, the same way the real CAS does, and the portal only serves
// grade pages to requests carrying the session cookie it set.
type fakePortal struct {
	server *httptest.Server
	start  sync.Once

	loginPageStatus int
	loginPage       []byte
	// status of the credential POST, 200 means accept and redirect
	loginStatus   int
	loginResponse []byte

	queryFormStatus int
	queryFormPage   []byte
	resultsStatus   int
	resultsPage     []byte
	allResultsPage  []byte

	mutex       sync.Mutex
	loginQuery  url.Values
	loginPosts  []url.Values
	queryPosts  []url.Values
	loginHeader http.Header
}

func newFakePortal(t testing.TB) *fakePortal {
	p := &fakePortal{
		loginPageStatus: http.StatusOK,
		loginPage:       loginPageHtml,
		loginStatus:     http.StatusOK,
		queryFormStatus: http.StatusOK,
		queryFormPage:   queryFormHtml,
		resultsStatus:   http.StatusOK,
		resultsPage:     resultsHtml,
		allResultsPage:  resultsAllHtml,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, p.handleLoginPage)
	mux.HandleFunc("POST "+loginPath, p.handleLoginPost)
	mux.HandleFunc("GET "+queryFormPath, p.handleQueryForm)
	mux.HandleFunc("POST "+queryListPath, p.handleQueryList)
	mux.HandleFunc("GET "+queryListPath, p.handleAllResults)

	p.server = httptest.NewUnstartedServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

// url starts the server on first use, fields must be configured before.
func (p *fakePortal) url() string {
	p.start.Do(p.server.Start)
	return p.server.URL
}

func (p *fakePortal) newSession(t testing.TB, tel telemetry.API) *Session {
	session, err := NewSession(ClientOptions{
		CasBaseUrl:    p.url(),
		PortalBaseUrl: p.url(),
		Telemetry:     tel,
	})
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func (p *fakePortal) login(t testing.TB) *AuthenticatedSession {
	session, err := p.newSession(t, &telemetry.Recorder{}).
		Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func hasSession(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	return err == nil && cookie.Value == "session-1"
}

func (p *fakePortal) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.loginQuery = r.URL.Query()
	p.mutex.Unlock()
	write(w, p.loginPageStatus, p.loginPage)
}

func (p *fakePortal) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		write(w, http.StatusBadRequest, nil)
		return
	}
	p.mutex.Lock()
	p.loginPosts = append(p.loginPosts, r.PostForm)
	p.loginHeader = r.Header.Clone()
	p.mutex.Unlock()

	if p.loginStatus != http.StatusOK {
		write(w, p.loginStatus, p.loginResponse)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "CASTGC", Value: "TGT-1", Path: "/cas"})
	http.Redirect(w, r, queryFormPath+"?ticket=ST-1", http.StatusFound)
}

func (p *fakePortal) handleQueryForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("ticket") == "ST-1" {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session-1", Path: "/"})
	} else if !hasSession(r) {
		write(w, http.StatusForbidden, nil)
		return
	}
	write(w, p.queryFormStatus, p.queryFormPage)
}

func (p *fakePortal) handleQueryList(w http.ResponseWriter, r *http.Request) {
	if !hasSession(r) {
		write(w, http.StatusForbidden, nil)
		return
	}
	err := r.ParseForm()
	if err != nil {
		write(w, http.StatusBadRequest, nil)
		return
	}
	p.mutex.Lock()
	p.queryPosts = append(p.queryPosts, r.PostForm)
	p.mutex.Unlock()
	write(w, p.resultsStatus, p.resultsPage)
}

func (p *fakePortal) handleAllResults(w http.ResponseWriter, r *http.Request) {
	if !hasSession(r) {
		write(w, http.StatusForbidden, nil)
		return
	}
	write(w, p.resultsStatus, p.allResultsPage)
}

func (p *fakePortal) logins() []url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return slices.Clone(p.loginPosts)
}

func (p *fakePortal) queries() []url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return slices.Clone(p.queryPosts)
}

func (p *fakePortal) lastLoginQuery() url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.loginQuery
}

func (p *fakePortal) lastLoginHeader() http.Header {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.loginHeader
}
