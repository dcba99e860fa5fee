package sustech

import (
	"context"
	"fmt"
	"sustechcourse-backend/lib/htmlutil"

	"github.com/go-resty/resty/v2"
)

const (
	loginFormSelector  = "#fm1"
	loginAlertSelector = "#fm1 .alert"
)

// Login performs the CAS handshake: it scrapes the hidden tokens of the login
// form, posts them back with the credentials and classifies the response.
//
// A 2xx response yields an AuthenticatedSession, a 4xx response yields a
// *LoginError and anything else (5xx, a failed request) a *TransportError.
// The Session cannot be used again afterwards, whatever the outcome.
func (s *Session) Login(ctx context.Context, username, password string) (*AuthenticatedSession, error) {
	if !s.consumed.CompareAndSwap(false, true) {
		return nil, ErrSessionConsumed
	}

	s.tel.ReportDebug("login", username)

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("service", s.endpoints.queryForm).
		Get(s.endpoints.login)
	err = checkResponse("fetch login page", s.endpoints.login, res, err)
	if err != nil {
		s.tel.ReportBroken(report_client_login, err)
		return nil, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		s.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login page: %w", err),
		)
		return nil, err
	}

	form := ExtractForm(doc, loginFormSelector)
	if len(form) == 0 {
		err := fmt.Errorf("login page has no %s form: %w", loginFormSelector, ErrUnexpectedPage)
		s.tel.ReportBroken(report_client_login, err)
		return nil, err
	}
	s.tel.ReportDebug("login form retrieved", len(form))

	form["username"] = username
	form["password"] = password

	res, err = s.http.R().
		SetContext(ctx).
		SetHeader("referer", s.endpoints.login).
		SetFormData(form).
		Post(s.endpoints.login)
	if err != nil {
		err := &TransportError{Op: "post login form", Url: s.endpoints.login, Err: err}
		s.tel.ReportBroken(report_client_login, err)
		return nil, err
	}

	err = s.classifyLogin(res)
	if err != nil {
		return nil, err
	}
	return newAuthenticatedSession(s), nil
}

func (s *Session) classifyLogin(res *resty.Response) error {
	status := res.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 400 && status < 500:
		err := &LoginError{Message: loginFailureMessage(res)}
		s.tel.ReportWarning(report_client_login, err, status)
		return err
	default:
		err := &TransportError{
			Op:         "post login form",
			Url:        s.endpoints.login,
			StatusCode: status,
		}
		s.tel.ReportBroken(report_client_login, err)
		return err
	}
}

// loginFailureMessage returns the text of the error banner on a rejected
// login page, falling back to the status code.
func loginFailureMessage(res *resty.Response) string {
	fallback := fmt.Sprintf("server returned %d", res.StatusCode())
	doc, err := parseDocument(res)
	if err != nil {
		return fallback
	}
	message := htmlutil.SelectionText(doc.Find(loginAlertSelector).First())
	if message == "" {
		return fallback
	}
	return message
}
