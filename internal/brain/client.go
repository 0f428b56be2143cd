package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"alpha_miner/configs"
	"alpha_miner/internal/auth"
	"alpha_miner/internal/constant"
	"alpha_miner/internal/viewer"
)

// ErrAlphaNotFound marks a 404 on GET /alphas/{id}.
var ErrAlphaNotFound = errors.New("alpha not found")

// Client wraps an authenticated session with the Brain API operations the
// tools need. All calls are sequential; pacing between paged requests is done
// with a rate limiter instead of bare sleeps.
type Client struct {
	session     *auth.Session
	base        string
	pageLimiter *rate.Limiter
	sleep       func(time.Duration)
}

func NewClient(session *auth.Session) *Client {
	conf := configs.GetGlobalConfig()
	pageDelay := time.Duration(conf.SubmitConfig.PageDelayMs) * time.Millisecond
	return &Client{
		session:     session,
		base:        session.BaseUrl(),
		pageLimiter: rate.NewLimiter(rate.Every(pageDelay), 1),
		sleep:       time.Sleep,
	}
}

// Relogin replaces the session state after a transport failure.
func (c *Client) Relogin() error {
	return c.session.Relogin()
}

func (c *Client) do(method, url string, payload []byte) (int, []byte, http.Header, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, nil, errors.Wrapf(err, "new %s request", method)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return 0, nil, nil, errors.Wrapf(err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("read response body Failed {%s}", err.Error())
	}
	return resp.StatusCode, respBody, resp.Header, nil
}

type DatasetQuery struct {
	InstrumentType string
	Region         string
	Delay          int64
	Universe       string
}

type resultsPage struct {
	Count   int64             `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// GetDatasets lists datasets for one theme flag of the fixed query tuple.
func (c *Client) GetDatasets(query DatasetQuery, theme bool) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s%s?instrumentType=%s&region=%s&delay=%d&universe=%s&theme=%t",
		c.base, constant.DataSetsUri,
		query.InstrumentType, query.Region, query.Delay, query.Universe, theme)

	code, body, _, err := c.do(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("get datasets code: %d, message: %s", code, string(body))
	}

	var page resultsPage
	if err = json.Unmarshal(body, &page); err != nil {
		return nil, errors.Wrap(err, "parse datasets response")
	}
	return page.Results, nil
}

// GetUserProfile fetches /users/self and derives the submission capability flags.
func (c *Client) GetUserProfile() (viewer.Profile, error) {
	profile := viewer.Profile{CanSubmitRegular: true}

	code, body, _, err := c.do(http.MethodGet, c.base+constant.UserSelfUri, nil)
	if err != nil {
		return profile, err
	}
	if code != http.StatusOK {
		return profile, fmt.Errorf("get user profile code: %d", code)
	}

	var raw struct {
		Username          string      `json:"username"`
		Rank              interface{} `json:"rank"`
		PowerPoolEligible bool        `json:"powerPoolEligible"`
	}
	if err = json.Unmarshal(body, &raw); err != nil {
		return profile, errors.Wrap(err, "parse user profile")
	}
	profile.Username = raw.Username
	profile.Rank = raw.Rank
	profile.CanSubmitPowerPool = raw.PowerPoolEligible
	return profile, nil
}

// GetAlpha fetches one alpha by its server-assigned id.
func (c *Client) GetAlpha(alphaId string) (*viewer.Alpha, error) {
	code, body, _, err := c.do(http.MethodGet, c.base+constant.AlphasUri+"/"+alphaId, nil)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, errors.Wrapf(ErrAlphaNotFound, "alphaId %s", alphaId)
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("get alpha %s code: %d, message: %s", alphaId, code, string(body))
	}

	var alpha viewer.Alpha
	if err = json.Unmarshal(body, &alpha); err != nil {
		return nil, errors.Wrapf(err, "parse alpha %s", alphaId)
	}
	if alpha.Status == "" {
		alpha.Status = constant.StatusPending
	}
	return &alpha, nil
}

// GetRecordsets returns the raw record-set listing of an alpha.
func (c *Client) GetRecordsets(alphaId string) (json.RawMessage, error) {
	code, body, _, err := c.do(http.MethodGet, c.base+constant.AlphasUri+"/"+alphaId+constant.RecordSetsUri, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("get recordsets for %s code: %d", alphaId, code)
	}
	return body, nil
}

type createAlphaRequest struct {
	Type     string                    `json:"type"`
	Name     string                    `json:"name,omitempty"`
	Settings viewer.SimulationSettings `json:"settings"`
	Regular  string                    `json:"regular"`
}

// CreateAlpha requests alpha creation and returns the server-assigned id.
func (c *Client) CreateAlpha(regular string, name string, settings viewer.SimulationSettings) (string, error) {
	payload, err := json.Marshal(createAlphaRequest{
		Type:     "REGULAR",
		Name:     name,
		Settings: settings,
		Regular:  regular,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal create alpha request")
	}

	code, body, _, err := c.do(http.MethodPost, c.base+constant.AlphasUri, payload)
	if err != nil {
		return "", err
	}
	if code >= http.StatusBadRequest {
		return "", fmt.Errorf("create alpha code: %d, message: %s", code, string(body))
	}

	var created struct {
		Id string `json:"id"`
	}
	if err = json.Unmarshal(body, &created); err != nil {
		return "", errors.Wrap(err, "parse create alpha response")
	}
	if created.Id == "" {
		return "", fmt.Errorf("create alpha returned no id, message: %s", string(body))
	}
	log.Infof("CreateAlpha success, alphaId: {%s}", created.Id)
	return created.Id, nil
}

// Simulate requests simulation start for an already created alpha.
// The returned simulation id may be empty when the server does not assign one.
func (c *Client) Simulate(alphaId string) (string, error) {
	code, body, _, err := c.do(http.MethodPost, c.base+constant.AlphasUri+"/"+alphaId, nil)
	if err != nil {
		return "", err
	}
	if code >= http.StatusBadRequest {
		return "", fmt.Errorf("simulate alpha %s code: %d, message: %s", alphaId, code, string(body))
	}

	var started struct {
		Id string `json:"id"`
	}
	if len(body) > 0 {
		if err = json.Unmarshal(body, &started); err != nil {
			log.Warnf("parse simulate response Failed {%s}", err.Error())
		}
	}
	return started.Id, nil
}

type alphaPage struct {
	Count   int64          `json:"count"`
	Results []viewer.Alpha `json:"results"`
}

// ListAlphas pages through the user's alphas until a short page or the caller
// limit is reached. A failed page stops the listing, what was fetched so far
// is returned.
func (c *Client) ListAlphas(ctx context.Context, limit int64) ([]viewer.Alpha, error) {
	allAlphas := make([]viewer.Alpha, 0)
	offset := int64(0)

	for {
		if err := c.pageLimiter.Wait(ctx); err != nil {
			return allAlphas, err
		}

		url := fmt.Sprintf("%s%s?limit=%d&offset=%d", c.base, constant.AlphasUri, constant.ListPageSize, offset)
		code, body, _, err := c.do(http.MethodGet, url, nil)
		if err != nil {
			return allAlphas, err
		}
		if code != http.StatusOK {
			log.Warnf("list alphas Failed, code: %d", code)
			break
		}

		var page alphaPage
		if err = json.Unmarshal(body, &page); err != nil {
			return allAlphas, errors.Wrap(err, "parse alpha list page")
		}
		if len(page.Results) == 0 {
			break
		}

		allAlphas = append(allAlphas, page.Results...)
		log.Infof("fetched %d alphas (total: %d)", len(page.Results), len(allAlphas))

		if int64(len(page.Results)) < constant.ListPageSize || (limit > 0 && int64(len(allAlphas)) >= limit) {
			break
		}
		offset += constant.ListPageSize
	}

	log.Infof("total alphas fetched: %d", len(allAlphas))
	return allAlphas, nil
}

// CheckSubmission runs the server-side submission checks for one alpha.
// A non-200 answer yields a nil payload, not an error: the caller skips the
// alpha and moves on.
func (c *Client) CheckSubmission(alphaId string) (*viewer.CheckPayload, error) {
	code, body, _, err := c.do(http.MethodPost, c.base+constant.AlphasUri+"/"+alphaId+constant.SubmitUri, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, nil
	}

	var payload viewer.CheckPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrapf(err, "parse check payload for %s", alphaId)
	}
	return &payload, nil
}

// SubmitResult is the final response of one submit exchange, after any
// Retry-After polling has been drained.
type SubmitResult struct {
	StatusCode int
	Body       []byte
}

// SubmitOnce POSTs a submission and, while the response carries a Retry-After
// header, sleeps the advertised seconds and re-polls the same endpoint with
// GET. The first response without the header is returned.
func (c *Client) SubmitOnce(alphaId string) (*SubmitResult, error) {
	url := c.base + constant.AlphasUri + "/" + alphaId + constant.SubmitUri

	code, body, header, err := c.do(http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	log.Infof("alpha submit, alphaId=%s, code=%d", alphaId, code)

	for {
		retryAfter := header.Get("Retry-After")
		if retryAfter == "" {
			break
		}
		waitSecond, err := strconv.ParseFloat(retryAfter, 64)
		if err != nil {
			log.Errorf("parse Retry-After Failed {%s}", err.Error())
			break
		}
		log.Infof("rate limited, waiting %.1f seconds", waitSecond)
		c.sleep(time.Duration(waitSecond * float64(time.Second)))

		code, body, header, err = c.do(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		log.Infof("submit re-poll, alphaId=%s, code=%d", alphaId, code)
	}

	return &SubmitResult{StatusCode: code, Body: body}, nil
}
