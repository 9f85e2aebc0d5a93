package service

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"path/filepath"

	"diligence-backend/models"
	"diligence-backend/repository"
	"diligence-backend/storage"

	"github.com/google/uuid"
)

// CRMProvider is the slice of the CRM client the activity service consumes
type CRMProvider interface {
	GetUnfinishedActivities(ctx context.Context) ([]models.Activity, error)
	GetGuarantee(ctx context.Context, guaranteeID string) (*models.Guarantee, error)
	GetParticipants(ctx context.Context, guaranteeID string) (models.ParticipantList, error)
	GetGuaranteeFiles(ctx context.Context, guaranteeID string) ([]models.GuaranteeFile, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// ActivityService handles business logic for activities
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	fileRepo     *repository.ReportFileRepository
	crm          CRMProvider
	store        storage.Storage
}

// ActivityServiceOption is a functional option for ActivityService
type ActivityServiceOption func(*ActivityService)

// WithActivityRepository sets the activity repository
func WithActivityRepository(repo *repository.ActivityRepository) ActivityServiceOption {
	return func(s *ActivityService) {
		s.activityRepo = repo
	}
}

// WithCRM sets the CRM provider
func WithCRM(crm CRMProvider) ActivityServiceOption {
	return func(s *ActivityService) {
		s.crm = crm
	}
}

// WithFileRepository sets the file metadata repository
func WithFileRepository(repo *repository.ReportFileRepository) ActivityServiceOption {
	return func(s *ActivityService) {
		s.fileRepo = repo
	}
}

// WithStorage sets the attachment storage backend
func WithStorage(st storage.Storage) ActivityServiceOption {
	return func(s *ActivityService) {
		s.store = st
	}
}

// NewActivityService creates a new activity service
func NewActivityService(opts ...ActivityServiceOption) *ActivityService {
	s := &ActivityService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrCRMNotSet          = errors.New("crm provider not set")
	ErrMissingGuaranteeID = errors.New("activity missing guarantee id")
)

// CreateActivityRequest carries the fields for a manually registered activity
type CreateActivityRequest struct {
	GuaranteeID       string
	ResponsiblePerson string
	TaxID             string
	Guarantee         *models.Guarantee
	Participants      models.ParticipantList
}

// CreateActivityResult carries the stored activity
type CreateActivityResult struct {
	Activity *models.Activity
}

// CreateActivity registers (or refreshes) one activity
func (s *ActivityService) CreateActivity(ctx context.Context, req CreateActivityRequest) (*CreateActivityResult, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}
	if req.GuaranteeID == "" {
		return nil, ErrMissingGuaranteeID
	}

	activity := &models.Activity{
		GuaranteeID:       req.GuaranteeID,
		ResponsiblePerson: req.ResponsiblePerson,
		TaxID:             req.TaxID,
		Guarantee:         req.Guarantee,
		Participants:      req.Participants,
	}

	if err := s.activityRepo.Upsert(ctx, activity); err != nil {
		return nil, err
	}

	return &CreateActivityResult{Activity: activity}, nil
}

// GetActivityRequest identifies an activity
type GetActivityRequest struct {
	ID uuid.UUID
}

// GetActivityResult carries the activity
type GetActivityResult struct {
	Activity *models.Activity
}

// GetActivity retrieves an activity by ID
func (s *ActivityService) GetActivity(ctx context.Context, req GetActivityRequest) (*GetActivityResult, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}

	activity, err := s.activityRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &GetActivityResult{Activity: activity}, nil
}

// ListUnfinishedResult carries the activities still awaiting a report
type ListUnfinishedResult struct {
	Activities []*models.Activity
}

// ListUnfinished lists stored activities without a report
func (s *ActivityService) ListUnfinished(ctx context.Context) (*ListUnfinishedResult, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}

	activities, err := s.activityRepo.ListUnfinished(ctx)
	if err != nil {
		return nil, err
	}

	return &ListUnfinishedResult{Activities: activities}, nil
}

// SyncFromCRMResult reports how many activities the sync touched
type SyncFromCRMResult struct {
	Synced int
}

// SyncFromCRM pulls unfinished guarantee applications from the CRM and
// upserts them locally. An activity whose guarantee terms cannot be
// fetched is stored without them and logged, not dropped.
func (s *ActivityService) SyncFromCRM(ctx context.Context) (*SyncFromCRMResult, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}
	if s.crm == nil {
		return nil, ErrCRMNotSet
	}

	activities, err := s.crm.GetUnfinishedActivities(ctx)
	if err != nil {
		return nil, err
	}

	synced := 0
	for i := range activities {
		activity := activities[i]

		guarantee, err := s.crm.GetGuarantee(ctx, activity.GuaranteeID)
		if err != nil {
			log.Printf("Warning: guarantee %s terms not fetched: %v", activity.GuaranteeID, err)
		} else {
			activity.Guarantee = guarantee
		}

		participants, err := s.crm.GetParticipants(ctx, activity.GuaranteeID)
		if err != nil {
			log.Printf("Warning: guarantee %s participants not fetched: %v", activity.GuaranteeID, err)
		} else {
			activity.Participants = participants
		}

		if err := s.activityRepo.Upsert(ctx, &activity); err != nil {
			return nil, err
		}

		if err := s.archiveAttachments(ctx, &activity); err != nil {
			log.Printf("Warning: guarantee %s attachments not archived: %v", activity.GuaranteeID, err)
		}

		synced++
	}

	return &SyncFromCRMResult{Synced: synced}, nil
}

// archiveAttachments copies the application's CRM attachments into our own
// storage so the evidence survives CRM-side cleanup. Skipped entirely when
// no storage backend is configured.
func (s *ActivityService) archiveAttachments(ctx context.Context, activity *models.Activity) error {
	if s.store == nil || s.fileRepo == nil {
		return nil
	}

	files, err := s.crm.GetGuaranteeFiles(ctx, activity.GuaranteeID)
	if err != nil {
		return err
	}

	for _, f := range files {
		reader, err := s.crm.DownloadFile(ctx, f.ID)
		if err != nil {
			return err
		}

		fileID := uuid.New()
		counted := &countingReader{r: reader}
		path, err := s.store.Upload(ctx, fileID, f.Name, counted)
		reader.Close()
		if err != nil {
			return err
		}

		mimeType := mime.TypeByExtension(filepath.Ext(f.Name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		record := &models.ReportFile{
			ID:          fileID,
			ActivityID:  &activity.ID,
			Filename:    f.Name,
			MimeType:    mimeType,
			Size:        counted.n,
			StoragePath: path,
		}
		if err := s.fileRepo.Create(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// countingReader tallies the bytes pulled through it. The CRM does not
// report attachment sizes up front, so the byte count recorded on the
// stored file is measured during the upload copy.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
