package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
	"alpha_miner/internal/constant"
)

type token struct {
	Expiry float64 `json:"expiry"`
}

type user struct {
	ID string `json:"id"`
}

type loginResponse struct {
	User        user     `json:"user"`
	Token       token    `json:"token"`
	Permissions []string `json:"permissions"`
}

// AuthError carries the status code of a failed authentication exchange.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return "authentication failed with status " + http.StatusText(e.StatusCode) + ": " + e.Body
}

// Session is an authenticated client handle for the Brain API. Callers treat it
// as replaceable: on a transport failure Relogin swaps the underlying client
// wholesale and re-authenticates with the same credentials.
type Session struct {
	httpClient *http.Client
	baseUrl    string
	timeout    time.Duration
	email      string
	password   string
	expireAt   time.Time
}

// Login authenticates against the Brain API with basic credentials.
// A usable session is returned on 200/201, otherwise *AuthError.
func Login(baseUrl string, timeout time.Duration, email, password string) (*Session, error) {
	s := &Session{
		baseUrl:  baseUrl,
		timeout:  timeout,
		email:    email,
		password: password,
	}
	if err := s.login(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoginFromConfig builds a session from the local credentials file. Used by the
// web handlers, which create a fresh session per request.
func LoginFromConfig() (*Session, error) {
	conf := configs.GetGlobalConfig()
	email, password, err := LoadUserConfig(conf.CredentialConfig.UserConfigFile)
	if err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, errors.New("username and password are required, check user_config.json")
	}
	return Login(conf.BrainConfig.BaseUrl, time.Duration(conf.BrainConfig.TimeoutSecond)*time.Second, email, password)
}

func (s *Session) login() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Errorf("Failed to create cookie jar: %s", err.Error())
		return errors.Wrap(err, "create cookie jar")
	}
	s.httpClient = &http.Client{Jar: jar, Timeout: s.timeout}

	req, err := http.NewRequest(http.MethodPost, s.baseUrl+constant.AuthUri, nil)
	if err != nil {
		return errors.Wrap(err, "new authentication request")
	}
	req.SetBasicAuth(s.email, s.password)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Errorf("authentication request Failed {%s}", err.Error())
		return errors.Wrap(err, "send authentication request")
	}
	defer resp.Body.Close()

	log.Infof("login response status: %d", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("read login response Failed {%s}", err.Error())
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Errorf("Code: %d, Message: %s", resp.StatusCode, string(body))
		return &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var responseData loginResponse
	if err = json.Unmarshal(body, &responseData); err != nil {
		// some deployments answer 201 with an empty body, the cookie is enough
		log.Warnf("parse login response Failed {%s}", err.Error())
		return nil
	}
	if responseData.Token.Expiry > 0 {
		s.expireAt = time.Now().Add(time.Duration(0.9*responseData.Token.Expiry) * time.Second)
	}
	return nil
}

// Relogin obtains a fresh session in place, replacing cookies and client state.
func (s *Session) Relogin() error {
	if err := s.login(); err != nil {
		log.Errorf("Relogin Failed {%s}", err.Error())
		return err
	}
	log.Info("Relogin success")
	return nil
}

func (s *Session) Expired() bool {
	if s.expireAt.IsZero() {
		return false
	}
	return time.Now().After(s.expireAt)
}

func (s *Session) BaseUrl() string {
	return s.baseUrl
}

func (s *Session) Email() string {
	return s.email
}

// Do sends a request through the authenticated client.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.httpClient.Do(req)
}
