package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Ensure UploadPipeline implements the interfaces.
var (
	_ driving.UploadPipeline  = (*UploadPipeline)(nil)
	_ driving.SessionListener = (*UploadPipeline)(nil)
)

// UploadPipeline validates and uploads files one at a time.
type UploadPipeline struct {
	api       driven.KnowledgeAPI
	cache     driven.ItemCache
	state     driven.UploadState
	validator driven.FileValidator
	now       func() time.Time

	mu         sync.Mutex
	generation uint64
}

// NewUploadPipeline creates an upload pipeline.
// state and validator are optional.
func NewUploadPipeline(
	api driven.KnowledgeAPI,
	cache driven.ItemCache,
	state driven.UploadState,
	validator driven.FileValidator,
) *UploadPipeline {
	return &UploadPipeline{
		api:       api,
		cache:     cache,
		state:     state,
		validator: validator,
		now:       time.Now,
	}
}

// Upload transmits files sequentially.
//
// Progress is reported as (i+0.5)/n before file i is sent and (i+1)/n after.
// A failed file is recorded and the batch continues, except that an
// authentication failure or a logout fails every remaining file unsent.
// The processing flag and progress are reset to idle when the batch ends,
// however many files failed.
func (p *UploadPipeline) Upload(
	ctx context.Context,
	files []driving.UploadFile,
	categoryID string,
	onProgress driving.ProgressFunc,
) (*driving.BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: no files: %w", domain.ErrInvalidInput)
	}
	if categoryID == "" {
		categoryID = domain.CategoryAll
	}

	gen := p.currentGeneration()
	epoch := p.cache.Epoch()
	result := &driving.BatchResult{}
	total := float64(len(files))

	report := func(progress float64) {
		result.Progress = progress
		if p.state != nil {
			p.state.SetUploadProgress(true, progress)
		}
		if onProgress != nil {
			onProgress(progress)
		}
	}
	defer func() {
		if p.state != nil {
			p.state.SetUploadProgress(false, 0)
		}
	}()

	logger.Section("Upload")
	var abort error
	for i, file := range files {
		if abort == nil {
			abort = ctx.Err()
		}
		if abort == nil && !p.alive(gen) {
			abort = domain.ErrStaleGeneration
		}
		if abort != nil {
			result.Failed = append(result.Failed, driving.FileFailure{Name: file.Name, Err: abort})
			continue
		}

		for _, w := range p.validate(file) {
			result.Warnings = append(result.Warnings, w)
			if p.state != nil {
				p.state.AddWarning(w)
			}
		}

		report((float64(i) + 0.5) / total)
		item, err := p.uploadOne(ctx, file, categoryID)
		report(float64(i+1) / total)

		if err != nil {
			logger.Warn("upload %s failed: %v", file.Name, err)
			result.Failed = append(result.Failed, driving.FileFailure{Name: file.Name, Err: err})
			p.cache.SetError(fmt.Sprintf("%s: %v", file.Name, err))
			if errors.Is(err, domain.ErrAuthRequired) {
				abort = err
			}
			continue
		}

		if !p.commit(gen, epoch, *item) {
			logger.Debug("upload %s finished after session reset, not cached", file.Name)
			continue
		}
		result.Uploaded = append(result.Uploaded, *item)
		logger.Info("uploaded %s as %s", file.Name, item.ID)
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%d of %d uploads failed: %w",
			len(result.Failed), len(files), joinFailures(result.Failed))
	}
	return result, nil
}

func (p *UploadPipeline) validate(file driving.UploadFile) []string {
	if p.validator == nil {
		return nil
	}
	warnings := p.validator.Validate(file.Name, file.Content)
	for i, w := range warnings {
		warnings[i] = fmt.Sprintf("%s: %s", file.Name, w)
	}
	return warnings
}

// uploadOne sends a single file and builds its cache row.
func (p *UploadPipeline) uploadOne(
	ctx context.Context,
	file driving.UploadFile,
	categoryID string,
) (*domain.KnowledgeItem, error) {
	title := TitleFromFilename(file.Name)

	resp, err := p.api.UploadDocument(ctx, driven.UploadRequest{
		FileName: file.Name,
		Content:  file.Content,
		Category: categoryID,
		Title:    title,
	})
	if err != nil {
		return nil, err
	}

	id := resp.ItemID
	if id == "" {
		id = uuid.NewString()
	}

	return &domain.KnowledgeItem{
		ID:        id,
		Title:     title,
		Category:  categoryID,
		Type:      domain.ClassifyFilename(file.Name),
		CreatedAt: p.now(),
		FileURL:   resp.FileURL,
	}, nil
}

// TitleFromFilename strips directory and extension from a file name.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return base
	}
	return title
}

func joinFailures(failures []driving.FileFailure) error {
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = fmt.Errorf("%s: %w", f.Name, f.Err)
	}
	return errors.Join(errs...)
}

// OnOrganizationChanged is a no-op for uploads.
func (p *UploadPipeline) OnOrganizationChanged(_ context.Context, _ string) {}

// OnLogout starts a new generation so in-flight uploads are not cached.
func (p *UploadPipeline) OnLogout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
}

func (p *UploadPipeline) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

func (p *UploadPipeline) alive(gen uint64) bool {
	return p.currentGeneration() == gen
}

// commit caches item unless a logout happened since the batch started.
// The generation check and the append hold the pipeline lock, and the
// cache refuses the append if it was cleared in between.
func (p *UploadPipeline) commit(gen, epoch uint64, item domain.KnowledgeItem) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return false
	}
	return p.cache.AppendIf(item, epoch)
}
