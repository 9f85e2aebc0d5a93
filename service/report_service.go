package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"diligence-backend/models"
	"diligence-backend/registry"
	"diligence-backend/repository"
	"diligence-backend/storage"

	"github.com/google/uuid"
)

// ReportDataProvider is the slice of the registry client the report
// pipeline consumes beyond the risk profile
type ReportDataProvider interface {
	GetCompany(ctx context.Context, taxID string) (*registry.Company, error)
	GetOwner(ctx context.Context, taxID string) (*registry.Owner, error)
	WaitForGraph(ctx context.Context, taxID string) (*registry.GraphNode, error)
}

// ReportService drives due-diligence report generation
type ReportService struct {
	activityRepo *repository.ActivityRepository
	jobRepo      *repository.ReportJobRepository
	fileRepo     *repository.ReportFileRepository
	riskService  *RiskService
	provider     ReportDataProvider
	store        storage.Storage
}

// ReportServiceOption is a functional option for ReportService
type ReportServiceOption func(*ReportService)

// ReportWithActivityRepository sets the activity repository
func ReportWithActivityRepository(repo *repository.ActivityRepository) ReportServiceOption {
	return func(s *ReportService) {
		s.activityRepo = repo
	}
}

// ReportWithJobRepository sets the report job repository
func ReportWithJobRepository(repo *repository.ReportJobRepository) ReportServiceOption {
	return func(s *ReportService) {
		s.jobRepo = repo
	}
}

// ReportWithFileRepository sets the report file repository
func ReportWithFileRepository(repo *repository.ReportFileRepository) ReportServiceOption {
	return func(s *ReportService) {
		s.fileRepo = repo
	}
}

// ReportWithRiskService sets the risk profile service
func ReportWithRiskService(rs *RiskService) ReportServiceOption {
	return func(s *ReportService) {
		s.riskService = rs
	}
}

// ReportWithProvider sets the registry data provider
func ReportWithProvider(p ReportDataProvider) ReportServiceOption {
	return func(s *ReportService) {
		s.provider = p
	}
}

// ReportWithStorage sets the artifact storage backend
func ReportWithStorage(st storage.Storage) ReportServiceOption {
	return func(s *ReportService) {
		s.store = st
	}
}

// NewReportService creates a new report service
func NewReportService(opts ...ReportServiceOption) *ReportService {
	s := &ReportService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrMissingTaxID       = errors.New("activity missing applicant tax id")
	ErrJobCreationFailed  = errors.New("failed to create report job")
	ErrJobNotFound        = errors.New("report job not found")
	ErrReportStoreFailed  = errors.New("failed to store report artifact")
	ErrReportRenderFailed = errors.New("failed to render report")
)

// Named pipeline steps, in execution order
const (
	stepCompanyProfile    = "Fetching Company Profile"
	stepOwnershipData     = "Fetching Ownership Data"
	stepRiskProfile       = "Building Risk Profile"
	stepRelationshipGraph = "Building Relationship Graph"
	stepRenderReport      = "Rendering Report"
	stepStoreArtifact     = "Storing Artifact"
)

// GenerateReportRequest identifies the activity to report on
type GenerateReportRequest struct {
	ActivityID uuid.UUID
}

// GenerateReportResult carries the created job id
type GenerateReportResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest identifies a report job
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult carries the job state
type GetJobStatusResult struct {
	Job *models.ReportJob
}

// GenerateReport validates the activity and creates a pending report job,
// returning immediately. The actual pipeline runs in ProcessReport.
func (s *ReportService) GenerateReport(
	ctx context.Context,
	req GenerateReportRequest,
) (*GenerateReportResult, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("report job repository not set")
	}

	activity, err := s.activityRepo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, ErrActivityNotFound
	}
	if activity.TaxID == "" {
		return nil, ErrMissingTaxID
	}

	job := &models.ReportJob{
		ActivityID: req.ActivityID,
		Status:     models.JobStatusPending,
		Steps:      initializeSteps(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrJobCreationFailed
	}

	return &GenerateReportResult{JobID: job.ID}, nil
}

// GetJobStatus retrieves the status of a report job
func (s *ReportService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("report job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{Job: job}, nil
}

func initializeSteps() models.ReportSteps {
	names := []string{
		stepCompanyProfile,
		stepOwnershipData,
		stepRiskProfile,
		stepRelationshipGraph,
		stepRenderReport,
		stepStoreArtifact,
	}
	steps := make(models.ReportSteps, 0, len(names))
	for _, name := range names {
		steps = append(steps, models.ReportStep{Name: name, Status: "pending"})
	}
	return steps
}

// ProcessReport runs the report pipeline for a job in the background.
// A failed step marks the job failed and produces no partial artifact.
func (s *ReportService) ProcessReport(ctx context.Context, jobID uuid.UUID) error {
	if s.jobRepo == nil || s.activityRepo == nil {
		return errors.New("repositories not set")
	}
	if s.riskService == nil {
		return errors.New("risk service not set")
	}
	if s.provider == nil {
		return errors.New("registry provider not set")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load report job: %w", err)
	}

	activity, err := s.activityRepo.GetByID(ctx, job.ActivityID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load activity: "+err.Error())
		return err
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	var company *registry.Company
	err = s.runStep(ctx, jobID, stepCompanyProfile, func() error {
		company, err = s.provider.GetCompany(ctx, activity.TaxID)
		return err
	})
	if err != nil {
		return err
	}

	var owner *registry.Owner
	err = s.runStep(ctx, jobID, stepOwnershipData, func() error {
		owner, err = s.provider.GetOwner(ctx, activity.TaxID)
		return err
	})
	if err != nil {
		return err
	}

	var profile *BuildRiskProfileResult
	err = s.runStep(ctx, jobID, stepRiskProfile, func() error {
		profile, err = s.riskService.BuildRiskProfile(ctx, BuildRiskProfileRequest{
			TaxID: activity.TaxID,
		})
		return err
	})
	if err != nil {
		return err
	}

	var graph *registry.GraphNode
	err = s.runStep(ctx, jobID, stepRelationshipGraph, func() error {
		graph, err = s.provider.WaitForGraph(ctx, activity.TaxID)
		if err != nil {
			// The graph is supplementary evidence; its absence does not
			// invalidate the reconciled risk profile.
			log.Printf("Warning: relationship graph for %s unavailable: %v", activity.TaxID, err)
			graph = nil
		}
		return nil
	})
	if err != nil {
		return err
	}

	var content string
	err = s.runStep(ctx, jobID, stepRenderReport, func() error {
		content = renderReport(activity, company, owner, profile, graph)
		if content == "" {
			return ErrReportRenderFailed
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.runStep(ctx, jobID, stepStoreArtifact, func() error {
		if err := s.activityRepo.UpdateReportContent(ctx, activity.ID, content); err != nil {
			return err
		}
		return s.storeArtifact(ctx, activity, content)
	})
	if err != nil {
		return err
	}

	if err := s.jobRepo.Complete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// runStep wraps one pipeline step with progress bookkeeping
func (s *ReportService) runStep(ctx context.Context, jobID uuid.UUID, stepName string, fn func() error) error {
	if err := s.updateStepStatus(ctx, jobID, stepName, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := fn(); err != nil {
		s.markJobFailed(ctx, jobID, fmt.Sprintf("%s: %v", stepName, err))
		return fmt.Errorf("%s: %w", stepName, err)
	}

	if err := s.updateStepStatus(ctx, jobID, stepName, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	return nil
}

// updateStepStatus updates the status of a specific step in the report job
func (s *ReportService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *ReportService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Warning: failed to mark job %s failed: %v", jobID, err)
	}
}

// storeArtifact saves the rendered report as a text artifact
func (s *ReportService) storeArtifact(ctx context.Context, activity *models.Activity, content string) error {
	if s.store == nil || s.fileRepo == nil {
		// Persisted on the activity row already; artifact storage is optional.
		return nil
	}

	fileID := uuid.New()
	filename := fmt.Sprintf("due_diligence_%s.txt", activity.GuaranteeID)
	path, err := s.store.Upload(ctx, fileID, filename, strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrReportStoreFailed)
	}

	file := &models.ReportFile{
		ID:          fileID,
		ActivityID:  &activity.ID,
		Filename:    filename,
		MimeType:    "text/plain",
		Size:        int64(len(content)),
		StoragePath: path,
	}
	return s.fileRepo.Create(ctx, file)
}
