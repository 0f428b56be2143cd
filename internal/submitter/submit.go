package submitter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
	"alpha_miner/internal/brain"
	"alpha_miner/internal/viewer"
)

// Policy makes the retry behavior of the submit loop explicit. MaxAttempts 0
// keeps the historical retry-forever behavior; MaxRelogin bounds how often a
// transport failure may trigger a re-login before the alpha is given up.
type Policy struct {
	Cooldown    time.Duration
	MaxAttempts int64
	MaxRelogin  int64
	Pause       time.Duration
}

func DefaultPolicy() Policy {
	conf := configs.GetGlobalConfig().SubmitConfig
	return Policy{
		Cooldown:    time.Duration(conf.CooldownSecond) * time.Second,
		MaxAttempts: conf.MaxAttempts,
		MaxRelogin:  conf.MaxRelogin,
		Pause:       time.Duration(conf.PauseSecond) * time.Second,
	}
}

// Recorder persists submission outcomes. A nil Recorder disables persistence.
type Recorder interface {
	Record(alphaId string, outcome string, reasons []viewer.FailReason)
}

type Result struct {
	Outcome    Outcome
	Reasons    []viewer.FailReason
	StatusCode int
}

type Submitter struct {
	client   *brain.Client
	policy   Policy
	recorder Recorder
	sleep    func(time.Duration)
}

func NewSubmitter(client *brain.Client, policy Policy, recorder Recorder) *Submitter {
	return &Submitter{
		client:   client,
		policy:   policy,
		recorder: recorder,
		sleep:    time.Sleep,
	}
}

// Submit drives one alpha to a terminal outcome. 200 is classified from the
// body checks, 403 is a final rejection, anything else waits the cooldown and
// retries. A transport failure replaces the session and replays the call, at
// most MaxRelogin times.
func (s *Submitter) Submit(alphaId string) (Result, error) {
	for attempt := int64(1); ; attempt++ {
		log.Infof("submit attempt %d for alpha %s", attempt, alphaId)

		submitResult, err := s.submitWithRelogin(alphaId)
		if err != nil {
			log.Errorf("submit alpha %s Failed {%s}", alphaId, err.Error())
			return Result{Outcome: OutcomeConnectionError}, err
		}

		switch {
		case submitResult.StatusCode == http.StatusOK:
			return s.classifyBody(alphaId, submitResult.Body)
		case submitResult.StatusCode == http.StatusForbidden:
			log.Warnf("alpha %s submit forbidden", alphaId)
			return Result{Outcome: OutcomeForbidden, StatusCode: submitResult.StatusCode}, nil
		default:
			log.Warnf("alpha %s submit fail, code=%d, attempt %d", alphaId, submitResult.StatusCode, attempt)
			if s.policy.MaxAttempts > 0 && attempt >= s.policy.MaxAttempts {
				return Result{Outcome: OutcomeFailed, StatusCode: submitResult.StatusCode},
					fmt.Errorf("alpha %s still rejected after %d attempts", alphaId, attempt)
			}
			log.Infof("waiting %s before retry", s.policy.Cooldown)
			s.sleep(s.policy.Cooldown)
		}
	}
}

// submitWithRelogin turns the historical unbounded re-login recursion into a
// bounded loop.
func (s *Submitter) submitWithRelogin(alphaId string) (*brain.SubmitResult, error) {
	submitResult, err := s.client.SubmitOnce(alphaId)
	if err == nil {
		return submitResult, nil
	}

	for relogin := int64(0); relogin < s.policy.MaxRelogin; relogin++ {
		log.Warnf("connection error {%s}, attempting to re-login", err.Error())
		if loginErr := s.client.Relogin(); loginErr != nil {
			err = loginErr
			continue
		}
		submitResult, err = s.client.SubmitOnce(alphaId)
		if err == nil {
			return submitResult, nil
		}
	}
	return nil, err
}

func (s *Submitter) classifyBody(alphaId string, body []byte) (Result, error) {
	if len(body) == 0 {
		return Result{Outcome: OutcomeFailed, StatusCode: http.StatusOK},
			fmt.Errorf("alpha %s submit response has no content", alphaId)
	}

	var payload viewer.CheckPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{Outcome: OutcomeFailed, StatusCode: http.StatusOK},
			fmt.Errorf("alpha %s submit response is not JSON: %s", alphaId, err.Error())
	}
	if payload.Detail == "Not found." {
		return Result{Outcome: OutcomeFailed, StatusCode: http.StatusOK},
			fmt.Errorf("alpha %s not found", alphaId)
	}

	classification := Classify(&payload)
	switch classification.Outcome {
	case OutcomeAlreadySubmitted:
		log.Infof("%s - already submitted", alphaId)
		return Result{Outcome: OutcomeAlreadySubmitted, StatusCode: http.StatusOK}, nil
	case OutcomeCheckFailed:
		for _, reason := range classification.Reasons {
			log.Infof("%s - %s check failed, limit = %v, value = %v", alphaId, reason.Name, reason.Limit, reason.Value)
		}
		return Result{Outcome: OutcomeCheckFailed, Reasons: classification.Reasons, StatusCode: http.StatusOK}, nil
	default:
		log.Infof("%s - submission successful", alphaId)
		return Result{Outcome: OutcomeSubmitted, StatusCode: http.StatusOK}, nil
	}
}
