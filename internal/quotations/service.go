package quotations

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/metrics"
	"github.com/mepex/cotizador-backend/pkg/pagination"
	"go.uber.org/multierr"
)

const defaultUploadTimeout = 60 * time.Second

// Source tells where a listing came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

type ListResult struct {
	Records []Record `json:"records"`
	Source  Source   `json:"source"`
}

// ServiceParams groups dependencies for the quotation service. Remote and
// Sequencer are optional.
type ServiceParams struct {
	Remote        *RemoteStore
	Local         *LocalStore
	Sequencer     *Sequencer
	Metrics       *metrics.RemoteMetrics
	Logger        *logger.Logger
	UploadTimeout time.Duration
}

// Service saves and loads quotation records, remote first with the local
// store as fallback and backup.
type Service struct {
	remote        *RemoteStore
	local         *LocalStore
	seq           *Sequencer
	metrics       *metrics.RemoteMetrics
	logg          *logger.Logger
	uploadTimeout time.Duration

	uploads sync.WaitGroup
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Local == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "local quotation store is required")
	}
	timeout := params.UploadTimeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &Service{
		remote:        params.Remote,
		local:         params.Local,
		seq:           params.Sequencer,
		metrics:       params.Metrics,
		logg:          params.Logger,
		uploadTimeout: timeout,
	}, nil
}

// NextCotNumber issues the next quotation number.
func (s *Service) NextCotNumber(ctx context.Context, now time.Time) (string, error) {
	if s.seq == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnavailable, "quotation numbering not configured")
	}
	return s.seq.Next(ctx, now)
}

// Save stores rec remotely, adopting the remote id on success, then always
// keeps a local copy. A PDF is attached in the background once the remote
// row exists; its outcome never affects the returned record.
func (s *Service) Save(ctx context.Context, rec Record, pdf []byte) (Record, error) {
	ctx = s.logg.WithQuotation(ctx, rec.ID, rec.CotNumber)

	var remoteErr error
	savedRemotely := false
	if s.remote.Configured() {
		id, url, err := s.remote.Create(ctx, rec)
		if err == nil {
			rec.ID = id
			rec.NotionURL = url
			savedRemotely = true
			ctx = s.logg.WithQuotation(ctx, rec.ID, rec.CotNumber)
			s.logg.Info(ctx, "quotation saved to workspace")
		} else {
			remoteErr = err
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "workspace save failed, keeping local copy")
		}
	}
	if !savedRemotely {
		s.metrics.IncFallback("quotations.save")
	}

	if err := s.local.Upsert(ctx, rec); err != nil {
		if !savedRemotely {
			return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, multierr.Combine(remoteErr, err), "quotation could not be saved")
		}
		s.logg.Error(ctx, "local quotation backup failed", err)
	}

	if savedRemotely && len(pdf) > 0 {
		s.uploadDetached(ctx, rec.ID, rec.CotNumber+".pdf", pdf)
	}
	return rec, nil
}

// uploadDetached attaches the PDF on a context that survives the request.
func (s *Service) uploadDetached(ctx context.Context, pageID, filename string, pdf []byte) {
	data := append([]byte(nil), pdf...)
	bg := context.WithoutCancel(ctx)
	s.uploads.Add(1)
	go func() {
		defer s.uploads.Done()
		uctx, cancel := context.WithTimeout(bg, s.uploadTimeout)
		defer cancel()
		uctx = s.logg.WithField(uctx, "filename", filename)
		if err := s.remote.AttachPDF(uctx, pageID, filename, data); err != nil {
			s.logg.Warn(s.logg.WithField(uctx, "error", err.Error()), "pdf upload failed")
			return
		}
		s.logg.Info(uctx, "pdf attached to quotation")
	}()
}

// Wait blocks until background uploads finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.uploads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns the remote listing, or the local one when the remote is
// unavailable. The two are never merged.
func (s *Service) List(ctx context.Context) (ListResult, error) {
	if s.remote.Configured() {
		records, err := s.remote.List(ctx)
		if err == nil {
			sortNewestFirst(records)
			return ListResult{Records: records, Source: SourceRemote}, nil
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "workspace listing failed, using local store")
	}
	s.metrics.IncFallback("quotations.list")

	records, err := s.local.List(ctx)
	if err != nil {
		return ListResult{}, err
	}
	sortNewestFirst(records)
	return ListResult{Records: records, Source: SourceLocal}, nil
}

// GetByID loads a full record by remote id, local id or quotation number.
func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}
	if s.remote.Configured() {
		rec, err := s.remote.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"quotation_id": id, "error": err.Error()}), "workspace lookup failed, using local store")
	}
	s.metrics.IncFallback("quotations.get")
	return s.local.Get(ctx, id)
}

// Update rewrites the record stored under id in both stores.
func (s *Service) Update(ctx context.Context, id string, rec Record) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}
	rec.ID = id
	ctx = s.logg.WithQuotation(ctx, rec.ID, rec.CotNumber)

	var remoteErr error
	updatedRemotely := false
	if s.remote.Configured() {
		if err := s.remote.Update(ctx, id, rec, true); err != nil {
			remoteErr = err
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "workspace update failed, keeping local copy")
		} else {
			updatedRemotely = true
		}
	}
	if !updatedRemotely {
		s.metrics.IncFallback("quotations.update")
	}

	if err := s.local.Upsert(ctx, rec); err != nil {
		if !updatedRemotely {
			return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, multierr.Combine(remoteErr, err), "quotation could not be updated")
		}
		s.logg.Error(ctx, "local quotation backup failed", err)
	}
	return rec, nil
}

// UploadPDF attaches a PDF to a remotely stored quotation.
func (s *Service) UploadPDF(ctx context.Context, id, filename string, pdf []byte) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}
	if len(pdf) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pdf file is required")
	}
	if !s.remote.Configured() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "quotations workspace not configured")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "cotizacion-" + id + ".pdf"
	}
	return s.remote.AttachPDF(ctx, id, filename, pdf)
}

func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return pagination.Less(PageKey(records[i]), PageKey(records[j]))
	})
}

// PageKey positions rec in a newest-first listing.
func PageKey(rec Record) pagination.Cursor {
	return pagination.Cursor{SavedAt: recordTime(rec), ID: rec.ID}
}

func recordTime(rec Record) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, rec.SavedAt); err == nil {
		return t
	}
	if t, err := time.Parse(dateLayout, rec.Date); err == nil {
		return t
	}
	return time.Time{}
}
