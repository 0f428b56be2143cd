package submitter

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"alpha_miner/internal/brain"
	"alpha_miner/internal/constant"
	"alpha_miner/internal/viewer"
)

// Outcome is the terminal state of one alpha in the submission flow.
type Outcome string

const (
	OutcomeEligible         Outcome = "eligible"
	OutcomeSubmitted        Outcome = "submitted"
	OutcomeAlreadySubmitted Outcome = "already-submitted"
	OutcomeCheckFailed      Outcome = "check-failed"
	OutcomeForbidden        Outcome = "forbidden"
	OutcomeFailed           Outcome = "failed"
	OutcomeConnectionError  Outcome = "connection-error"
)

type Classification struct {
	Outcome Outcome
	Reasons []viewer.FailReason
}

// Classify walks the is.checks list. ALREADY_SUBMITTED short-circuits: no
// further checks are inspected. Otherwise every FAIL is accumulated; an alpha
// with no failing check is eligible.
func Classify(payload *viewer.CheckPayload) Classification {
	reasons := make([]viewer.FailReason, 0)
	for _, check := range payload.Is.Checks {
		if check.Name == constant.CheckAlreadySubmitted {
			return Classification{Outcome: OutcomeAlreadySubmitted}
		}
		if check.Result == constant.CheckResultFail {
			reasons = append(reasons, viewer.FailReason{
				Name:  check.Name,
				Limit: check.Limit,
				Value: check.Value,
			})
		}
	}
	if len(reasons) > 0 {
		return Classification{Outcome: OutcomeCheckFailed, Reasons: reasons}
	}
	return Classification{Outcome: OutcomeEligible}
}

type FailedAlpha struct {
	Id      string
	Reasons []viewer.FailReason
}

type FilterResult struct {
	Eligible         []viewer.Alpha
	AlreadySubmitted []string
	Failed           []FailedAlpha
}

// FilterEligible runs the submission checks for every alpha in the list. One
// alpha's failure never aborts the loop; unclassifiable alphas (non-200 check
// response) are skipped. Per-alpha checks are paced by the limiter.
func FilterEligible(ctx context.Context, client *brain.Client, alphas []viewer.Alpha, checkLimiter *rate.Limiter) (FilterResult, error) {
	result := FilterResult{
		Eligible:         make([]viewer.Alpha, 0),
		AlreadySubmitted: make([]string, 0),
		Failed:           make([]FailedAlpha, 0),
	}

	log.Infof("checking %d alphas for submission eligibility", len(alphas))
	for i, alpha := range alphas {
		if alpha.Id == "" {
			continue
		}
		if err := checkLimiter.Wait(ctx); err != nil {
			return result, err
		}

		payload, err := client.CheckSubmission(alpha.Id)
		if err != nil {
			log.Errorf("check alpha %s Failed {%s}", alpha.Id, err.Error())
			continue
		}
		if payload == nil {
			log.Warnf("check alpha %s returned no result", alpha.Id)
			continue
		}

		switch classification := Classify(payload); classification.Outcome {
		case OutcomeAlreadySubmitted:
			result.AlreadySubmitted = append(result.AlreadySubmitted, alpha.Id)
		case OutcomeCheckFailed:
			result.Failed = append(result.Failed, FailedAlpha{Id: alpha.Id, Reasons: classification.Reasons})
		default:
			result.Eligible = append(result.Eligible, alpha)
		}

		if (i+1)%10 == 0 {
			log.Infof("progress: %d/%d", i+1, len(alphas))
		}
	}

	log.Infof("eligible: %d, already submitted: %d, failed checks: %d",
		len(result.Eligible), len(result.AlreadySubmitted), len(result.Failed))
	return result, nil
}
