package repo

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"alpha_miner/internal/model"
	"alpha_miner/internal/viewer"
)

type SubmissionRepo struct {
}

func NewSubmissionRepo() *SubmissionRepo {
	return &SubmissionRepo{}
}

func (submissionRepo *SubmissionRepo) Add(_ context.Context, submission *model.Submission) (int64, error) {
	result := getDb().Create(submission)
	if result.Error != nil {
		log.Errorf("failed to add submission: %v", result.Error)
		return -1, result.Error
	}
	return submission.ID, nil
}

func (submissionRepo *SubmissionRepo) FindByAlphaCode(_ context.Context, alphaCode string) ([]model.Submission, error) {
	var submissions []model.Submission
	result := getDb().Where("alpha_code = ?", alphaCode).Find(&submissions)
	if result.Error != nil {
		log.Errorf("failed to find submissions by alpha_code %s: %v", alphaCode, result.Error)
		return nil, result.Error
	}
	return submissions, nil
}

// Record implements submitter.Recorder. It is a no-op until the store is
// enabled; a failed insert is logged, never surfaced to the submit loop.
func (submissionRepo *SubmissionRepo) Record(alphaId string, outcome string, reasons []viewer.FailReason) {
	if !Enabled() {
		return
	}
	reasonsJson, err := json.Marshal(reasons)
	if err != nil {
		log.Errorf("marshal fail reasons Failed {%s}", err.Error())
		reasonsJson = nil
	}
	_, err = submissionRepo.Add(context.Background(), &model.Submission{
		AlphaCode: alphaId,
		Outcome:   outcome,
		Reasons:   datatypes.JSON(reasonsJson),
	})
	if err != nil {
		log.Errorf("record submission Failed {%s}", err.Error())
	}
}
