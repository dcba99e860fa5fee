// client.go contains the transport both session types share, login.go and
// query.go contain the protocols that run on top of it.

package sustech

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sustechcourse-backend/internal/assert"
	"sustechcourse-backend/lib/telemetry"
	"sync"
	"sync/atomic"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultCasBaseUrl    = "https://cas.sustech.edu.cn"
	DefaultPortalBaseUrl = "https://jwxt.sustech.edu.cn"
	DefaultTimeout       = time.Second * 30

	loginPath     = "/cas/login"
	queryFormPath = "/jsxsd/kscj/cjcx_query"
	queryListPath = "/jsxsd/kscj/cjcx_list"

	userAgent = "sustechcourse/0.1.0 (citric-acid.com.cn)"
)

const (
	report_client_login       = "client.login"
	report_client_query_term  = "client.query-term"
	report_client_query_all   = "client.query-all"
	report_client_course_rows = "client.course-rows"
)

type ClientOptions struct {
	// defaults to DefaultCasBaseUrl
	CasBaseUrl string
	// defaults to DefaultPortalBaseUrl
	PortalBaseUrl string
	// per request timeout, defaults to DefaultTimeout
	Timeout time.Duration
	// wraps the transport with a cloudflare fingerprint bypass
	BypassCloudflare bool
	// defaults to telemetry.SlogAPI
	Telemetry telemetry.API
}

type endpoints struct {
	login     string
	queryForm string
	queryList string
}

func newEndpoints(casBaseUrl, portalBaseUrl string) (endpoints, []string, error) {
	cas, err := url.Parse(casBaseUrl)
	if err != nil {
		return endpoints{}, nil, fmt.Errorf("parse cas base url: %w", err)
	}
	portal, err := url.Parse(portalBaseUrl)
	if err != nil {
		return endpoints{}, nil, fmt.Errorf("parse portal base url: %w", err)
	}
	if cas.Hostname() == "" || portal.Hostname() == "" {
		return endpoints{}, nil, fmt.Errorf("base urls must be absolute: %q, %q", casBaseUrl, portalBaseUrl)
	}
	e := endpoints{
		login:     cas.JoinPath(loginPath).String(),
		queryForm: portal.JoinPath(queryFormPath).String(),
		queryList: portal.JoinPath(queryListPath).String(),
	}
	return e, []string{cas.Hostname(), portal.Hostname()}, nil
}

func registrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// sameSiteRedirectPolicy only follows redirects to hosts that share a
// registrable domain with one of hosts, ex. cas.sustech.edu.cn allows any
// *.sustech.edu.cn host. IP addresses and single label hosts must match exactly.
func sameSiteRedirectPolicy(hosts ...string) resty.RedirectPolicy {
	domains := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		domains[registrableDomain(h)] = struct{}{}
	}
	return resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
		host := req.URL.Hostname()
		if _, ok := domains[registrableDomain(host)]; !ok {
			return fmt.Errorf("redirect to %s is not allowed", host)
		}
		return nil
	})
}

// Session is a transport that has not logged in yet, the only thing it can do
// is Login, which uses it up regardless of the outcome.
type Session struct {
	http      *resty.Client
	endpoints endpoints
	tel       telemetry.API
	consumed  atomic.Bool
}

// NewSession creates a Session with its own cookie jar, sessions must not be
// shared between users.
func NewSession(opts ClientOptions) (*Session, error) {
	if opts.CasBaseUrl == "" {
		opts.CasBaseUrl = DefaultCasBaseUrl
	}
	if opts.PortalBaseUrl == "" {
		opts.PortalBaseUrl = DefaultPortalBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("sustech_scraper", tel)

	e, hostnames, err := newEndpoints(opts.CasBaseUrl, opts.PortalBaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", userAgent)
	// the login POST redirects from the CAS host to the portal with a service ticket
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		sameSiteRedirectPolicy(hostnames...),
	)
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel, restyInstrumentOutput)

	return &Session{
		http:      httpClient,
		endpoints: e,
		tel:       tel,
	}, nil
}

// AuthenticatedSession is a transport whose cookie jar holds a portal
// session, it can only be obtained from Session.Login. Calls are serialized
// so the jar is never written to concurrently.
type AuthenticatedSession struct {
	http      *resty.Client
	endpoints endpoints
	tel       telemetry.API
	mutex     sync.Mutex
}

func newAuthenticatedSession(s *Session) *AuthenticatedSession {
	assert.NotNil("session http client", s.http)
	assert.NotNil("session telemetry", s.tel)
	assert.NotEmptyStr("query list endpoint", s.endpoints.queryList)
	return &AuthenticatedSession{
		http:      s.http,
		endpoints: s.endpoints,
		tel:       s.tel,
	}
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}
