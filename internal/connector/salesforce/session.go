package salesforce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"resty.dev/v3"
)

// Session is a logged-in REST session against one org.
type Session struct {
	client      *resty.Client
	loginURL    string
	instanceURL string
	accessToken string
	apiVersion  string

	closeOnce sync.Once
}

var _ connector.Session = (*Session)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
}

// Dialer opens sessions. Its zero value is ready to use.
type Dialer struct {
	// NewClient builds the HTTP client of each session. Defaults to resty.New.
	NewClient func() *resty.Client
}

// Dial logs in with conn's credentials and returns the session.
func (d Dialer) Dial(ctx context.Context, conn *config.Connection) (connector.Session, error) {
	newClient := d.NewClient
	if newClient == nil {
		newClient = resty.New
	}
	return Dial(ctx, newClient(), conn)
}

// Dial logs in on client with the OAuth 2.0 username-password flow. The
// password sent is the connection's password followed by its security token.
func Dial(ctx context.Context, client *resty.Client, conn *config.Connection) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	loginURL := strings.TrimRight(conn.LoginURL, "/")
	if loginURL == "" {
		loginURL = config.DefaultLoginURL
	}
	apiVersion := conn.APIVersion
	if apiVersion == "" {
		apiVersion = config.DefaultAPIVersion
	}

	form := map[string]string{
		"grant_type": "password",
		"username":   conn.Username,
		"password":   conn.Secret(),
	}
	if conn.ClientID != "" {
		form["client_id"] = conn.ClientID
	}
	if conn.ClientSecret != "" {
		form["client_secret"] = conn.ClientSecret
	}

	var token tokenResponse
	res, err := client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&token).
		Post(loginURL + "/services/oauth2/token")
	if err != nil {
		client.Close()
		return nil, &connector.Error{Op: "login", Target: conn.Username, Err: err}
	}
	if res.IsError() {
		client.Close()
		return nil, responseError("login", conn.Username, res.StatusCode(), res.Bytes())
	}
	if token.AccessToken == "" || token.InstanceURL == "" {
		client.Close()
		return nil, &connector.Error{Op: "login", Target: conn.Username, Status: res.StatusCode(), Err: errors.New("token response is missing access_token or instance_url")}
	}

	client.SetBaseURL(token.InstanceURL).SetAuthToken(token.AccessToken)
	logger.Debug("Salesforce session opened.", "instance_url", token.InstanceURL, "api_version", apiVersion)

	return &Session{
		client:      client,
		loginURL:    loginURL,
		instanceURL: token.InstanceURL,
		accessToken: token.AccessToken,
		apiVersion:  apiVersion,
	}, nil
}

// InstanceURL returns the org's instance URL reported at login.
func (s *Session) InstanceURL() string {
	return s.instanceURL
}

// dataPath builds a path under the versioned REST root.
func (s *Session) dataPath(format string, args ...any) string {
	return fmt.Sprintf("/services/data/v%s", s.apiVersion) + fmt.Sprintf(format, args...)
}

// Logout revokes the access token and releases the client.
func (s *Session) Logout(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		res, postErr := s.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{"token": s.accessToken}).
			Post(s.loginURL + "/services/oauth2/revoke")
		switch {
		case postErr != nil:
			err = &connector.Error{Op: "logout", Err: postErr}
		case res.IsError():
			err = responseError("logout", "", res.StatusCode(), res.Bytes())
		}
		s.client.Close()
	})
	return err
}
