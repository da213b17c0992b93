package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"monalert/internal/logger"
	"monalert/internal/model"
	"monalert/internal/repositories"
)

// CaseStatusMonitor follows a USCIS receipt number and alerts when the status
// title changes.
type CaseStatusMonitor struct {
	receiptNum string
	source     CaseStatusSource
	repo       repositories.CaseStatusRepository
}

func NewCaseStatusMonitor(receiptNum string, source CaseStatusSource, repo repositories.CaseStatusRepository) *CaseStatusMonitor {
	return &CaseStatusMonitor{receiptNum: receiptNum, source: source, repo: repo}
}

func (m *CaseStatusMonitor) Name() string {
	return "uscis " + Mask(m.receiptNum)
}

func (m *CaseStatusMonitor) Previous(ctx context.Context) (*model.CaseStatus, error) {
	status, err := m.repo.LatestCaseStatus(ctx, m.receiptNum)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (m *CaseStatusMonitor) Observe(ctx context.Context) (*model.CaseStatus, error) {
	logger.Infof(ctx, "Checking USCIS<%s>...", Mask(m.receiptNum))
	status, err := m.source.FetchStatus(ctx, m.receiptNum)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "=> Current status: %s", status.Status)
	return &status, nil
}

// Save appends every observation, changed or not.
func (m *CaseStatusMonitor) Save(ctx context.Context, _ *model.CaseStatus, current model.CaseStatus) error {
	if err := m.repo.AppendCaseStatus(ctx, current); err != nil {
		return err
	}
	logger.Info(ctx, "=> Status saved")
	return nil
}

func (m *CaseStatusMonitor) ShouldAlert(previous *model.CaseStatus, current model.CaseStatus) bool {
	return previous == nil || previous.Status != current.Status
}

func (m *CaseStatusMonitor) Notification(_ *model.CaseStatus, current model.CaseStatus) model.Notification {
	masked := Mask(m.receiptNum)
	message := current.Description
	if m.receiptNum != "" {
		message = strings.ReplaceAll(message, m.receiptNum, masked)
	}
	return model.Notification{
		Title:   fmt.Sprintf("USCIS %s: %s", masked, current.Status),
		Message: message,
	}
}

var _ Monitor[model.CaseStatus] = (*CaseStatusMonitor)(nil)
