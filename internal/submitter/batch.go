package submitter

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alpha_miner/internal/brain"
)

type BatchResult struct {
	Success []string
	Failed  []string
	Total   int
}

// SubmitAlpha checks that the alpha exists, then drives it through the submit
// loop. True means the alpha was accepted by the platform.
func (s *Submitter) SubmitAlpha(alphaId string) bool {
	if _, err := s.client.GetAlpha(alphaId); err != nil {
		if errors.Is(err, brain.ErrAlphaNotFound) {
			log.Warnf("cannot submit alpha %s - it does not exist", alphaId)
		} else {
			log.Errorf("check alpha %s Failed {%s}", alphaId, err.Error())
		}
		return false
	}

	result, err := s.Submit(alphaId)
	if err != nil {
		log.Errorf("submit alpha %s Failed {%s}", alphaId, err.Error())
	}
	if s.recorder != nil {
		s.recorder.Record(alphaId, string(result.Outcome), result.Reasons)
	}
	return result.Outcome == OutcomeSubmitted
}

// BatchSubmit applies the submit loop to a list of alpha ids sequentially,
// pausing between alphas and reporting aggregate counts at the end.
func (s *Submitter) BatchSubmit(alphaIds []string) BatchResult {
	result := BatchResult{
		Success: make([]string, 0),
		Failed:  make([]string, 0),
		Total:   len(alphaIds),
	}

	log.Infof("starting batch submission of %d alphas", len(alphaIds))
	for i, alphaId := range alphaIds {
		log.Infof("[%d/%d] submitting alpha %s", i+1, len(alphaIds), alphaId)

		if s.SubmitAlpha(alphaId) {
			result.Success = append(result.Success, alphaId)
		} else {
			result.Failed = append(result.Failed, alphaId)
		}

		log.Infof("progress: %d/%d processed, %d succeeded, %d failed",
			i+1, len(alphaIds), len(result.Success), len(result.Failed))

		if i < len(alphaIds)-1 {
			s.sleep(s.policy.Pause)
		}
	}

	log.Infof("batch submission complete: %d succeeded, %d failed", len(result.Success), len(result.Failed))
	return result
}
