package services

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/runsheet/core/internal/adapters/render/home"
	"github.com/runsheet/core/internal/adapters/render/htmlview"
	"github.com/runsheet/core/internal/adapters/render/pdfview"
	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/domain/schedule"
	"github.com/runsheet/core/internal/domain/styles"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/infrastructure/metrics"
	"github.com/runsheet/core/internal/ports"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePDF  = "application/pdf"
	indexFile       = "index.html"
)

// RenderDeps are the collaborators of the render service. Profiles may be
// nil when every payload carries inline styles.
type RenderDeps struct {
	Presets  ports.PresetSource
	Profiles ports.ProfileRepository
	Blobs    ports.BlobStore
	HTML     *htmlview.Renderer
	PDF      *pdfview.Renderer
	Home     *home.Renderer
	Metrics  *metrics.Metrics
}

// RenderConfig tunes a render service.
type RenderConfig struct {
	Workers  int
	Location *time.Location
	Now      func() time.Time
}

// RenderService runs the render pipeline: resolve the profile, prepare one
// view per preset, render and upload every snapshot, then the home page.
type RenderService struct {
	deps   RenderDeps
	cfg    RenderConfig
	logger *logger.Logger
}

// NewRenderService creates a new render service
func NewRenderService(deps RenderDeps, cfg RenderConfig, logger *logger.Logger) *RenderService {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RenderService{deps: deps, cfg: cfg, logger: logger}
}

var _ ports.RenderService = (*RenderService)(nil)

// Presets lists the loaded group presets
func (s *RenderService) Presets() []entities.GroupPreset {
	return s.deps.Presets.Presets()
}

// Generate renders every snapshot of payload and the home page linking
// them. A failed snapshot is recorded in the summary and never stops its
// siblings. Configuration errors and a failed home page upload fail the
// whole request; the returned summary then carries the error.
func (s *RenderService) Generate(ctx context.Context, payload entities.Payload) (*ports.RenderSummary, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := s.logger.WithFields("run_id", runID, "event", payload.Event.Name)

	log.Infow("Render started",
		"snapshots", len(payload.Snapshots),
		"entries", len(payload.Data.ScheduleDetail),
		"profile_id", payload.ProfileID,
	)

	summary := &ports.RenderSummary{RunID: runID, Snapshots: []ports.SnapshotResult{}}
	err := s.generate(ctx, log, payload, runID, summary)

	elapsed := time.Since(started)
	summary.ExecutionTimeSeconds = elapsed.Seconds()

	if err != nil {
		summary.Success = false
		summary.Error = err.Error()
		s.deps.Metrics.ObserveRun(metrics.OutcomeFailure, elapsed)
		log.LogRenderOutcome(summary.ExecutionTimeSeconds, err)
		return summary, err
	}

	summary.Success = true
	failed := 0
	for _, snap := range summary.Snapshots {
		if snap.Error != "" {
			failed++
		}
	}
	outcome := metrics.OutcomeSuccess
	if failed > 0 {
		outcome = metrics.OutcomePartial
	}
	s.deps.Metrics.ObserveRun(outcome, elapsed)

	log.LogRenderOutcome(summary.ExecutionTimeSeconds, nil,
		"html_url", summary.HTMLURL,
		"snapshots", len(summary.Snapshots),
		"failed_snapshots", failed,
	)
	return summary, nil
}

func (s *RenderService) generate(ctx context.Context, log *logger.Logger, payload entities.Payload, runID string, summary *ports.RenderSummary) error {
	profile, err := s.resolveProfile(ctx, payload)
	if err != nil {
		return err
	}
	if err := profile.Document.ValidateGeometry(); err != nil {
		return err
	}

	snapshots := payload.Snapshots
	if len(snapshots) == 0 {
		snapshots = s.defaultSnapshots()
	}
	presets, err := s.presetsFor(snapshots)
	if err != nil {
		return err
	}

	views := schedule.PrepareViews(payload, presets)
	base := path.Join(entities.ToSlug(payload.Event.Name, "event"), runID)
	now := s.cfg.Now()

	slugs := entities.NewSlugSet()
	results := make([]ports.SnapshotResult, len(snapshots))
	for i, snap := range snapshots {
		results[i] = ports.SnapshotResult{Name: snap.Name, Slug: slugs.Next(snap.Name)}
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range snapshots {
		i := i
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i].HTMLURL, results[i].PDFURL = "", ""
					results[i].Error = fmt.Sprintf("panic: %v", r)
					log.Errorw("Snapshot render panicked", "snapshot", results[i].Name, "panic", r)
				}
			}()
			job := snapshotJob{
				snapshot: snapshots[i],
				view:     views[snapshots[i].GroupPresetID],
				profile:  profile,
				event:    payload.Event,
				base:     base,
				now:      now,
			}
			s.renderSnapshot(ctx, log, job, &results[i])
			return nil
		})
	}
	_ = g.Wait()
	summary.Snapshots = results

	links := make([]home.Link, len(snapshots))
	for i, snap := range snapshots {
		links[i] = home.Link{
			Name:      results[i].Name,
			Group:     snap.Group,
			SortOrder: snap.SortOrder,
			HTMLURL:   results[i].HTMLURL,
			PDFURL:    results[i].PDFURL,
		}
	}

	event := payload.Event
	if event.LogoURL == "" && profile.Document.Header.Logo != nil {
		event.LogoURL = profile.Document.Header.Logo.URL
	}
	page, err := s.deps.Home.Render(links, event, home.Options{Now: now, Location: s.cfg.Location})
	if err != nil {
		return fmt.Errorf("render home page: %w", err)
	}

	indexPath := path.Join(base, indexFile)
	if err := s.upload(ctx, indexPath, contentTypeHTML, []byte(page), "index"); err != nil {
		return fmt.Errorf("upload home page: %w", err)
	}
	summary.HTMLURL = s.deps.Blobs.PublicURL(indexPath)
	return nil
}

type snapshotJob struct {
	snapshot entities.Snapshot
	view     entities.View
	profile  entities.StyleProfile
	event    entities.Event
	base     string
	now      time.Time
}

// renderSnapshot writes the PDF first so the HTML page can link to it. A
// PDF failure still produces the HTML page, without the link.
func (s *RenderService) renderSnapshot(ctx context.Context, log *logger.Logger, job snapshotJob, res *ports.SnapshotResult) {
	started := time.Now()
	view := schedule.ApplySnapshotFiltersToView(job.view, job.snapshot.EntryFilter)
	log = log.WithFields("snapshot", res.Name, "slug", res.Slug)

	var errs []string

	pdfPath := path.Join(job.base, res.Slug+".pdf")
	data, err := s.deps.PDF.Render(ctx, view, job.profile, pdfview.Options{
		Title:       job.snapshot.Name,
		EventName:   job.event.Name,
		HeaderLines: job.event.Header,
		Now:         job.now,
		Location:    s.cfg.Location,
	})
	if err == nil {
		err = s.upload(ctx, pdfPath, contentTypePDF, data, "pdf")
	}
	if err != nil {
		errs = append(errs, "pdf: "+err.Error())
		log.Warnw("Snapshot PDF failed", "error", err)
	} else {
		res.PDFURL = s.deps.Blobs.PublicURL(pdfPath)
	}

	opts := htmlview.Options{
		Title:       job.snapshot.Name,
		EventName:   job.event.Name,
		HeaderLines: job.event.Header,
		PDFURL:      res.PDFURL,
		Now:         job.now,
		Location:    s.cfg.Location,
	}
	if job.event.ShowKeyInfo {
		opts.KeyInfo = job.event.KeyInfo
	}
	htmlPath := path.Join(job.base, res.Slug+".html")
	page, err := s.deps.HTML.Render(view, job.profile, opts)
	if err == nil {
		err = s.upload(ctx, htmlPath, contentTypeHTML, []byte(page), "html")
	}
	if err != nil {
		errs = append(errs, "html: "+err.Error())
		log.Warnw("Snapshot HTML failed", "error", err)
	} else {
		res.HTMLURL = s.deps.Blobs.PublicURL(htmlPath)
	}

	elapsed := time.Since(started)
	outcome := metrics.OutcomeSuccess
	switch {
	case len(errs) == 2:
		outcome = metrics.OutcomeFailure
	case len(errs) == 1:
		outcome = metrics.OutcomePartial
	}
	s.deps.Metrics.ObserveSnapshot(outcome, elapsed)

	if len(errs) > 0 {
		res.Error = strings.Join(errs, "; ")
		return
	}
	log.Infow("Snapshot rendered", "html_url", res.HTMLURL, "pdf_url", res.PDFURL, "duration_seconds", elapsed.Seconds())
}

// Preview renders one view as HTML without uploading anything.
func (s *RenderService) Preview(ctx context.Context, req ports.PreviewRequest) (string, error) {
	preset, ok := s.deps.Presets.Preset(req.GroupPresetID)
	if !ok {
		return "", fmt.Errorf("%w: %q", entities.ErrPresetNotFound, req.GroupPresetID)
	}
	payload := req.Payload
	profile, err := s.resolveProfile(ctx, payload)
	if err != nil {
		return "", err
	}
	if err := profile.Document.ValidateGeometry(); err != nil {
		return "", err
	}

	view := schedule.PrepareView(payload.Data.ScheduleDetail, preset, schedule.ParseGroupMeta(payload), payload.Columns)
	view = schedule.ApplySnapshotFiltersToView(view, req.EntryFilter)

	opts := htmlview.Options{
		EventName:   payload.Event.Name,
		HeaderLines: payload.Event.Header,
		Now:         s.cfg.Now(),
		Location:    s.cfg.Location,
	}
	if payload.Event.ShowKeyInfo {
		opts.KeyInfo = payload.Event.KeyInfo
	}
	return s.deps.HTML.Render(view, profile, opts)
}

// resolveProfile loads the stored profile named by the payload, or uses its
// inline styles. A payload document replaces the profile's page settings;
// the event logo fills in when the profile has none.
func (s *RenderService) resolveProfile(ctx context.Context, payload entities.Payload) (entities.StyleProfile, error) {
	var raw map[string]any
	switch {
	case payload.ProfileID != "":
		if s.deps.Profiles == nil {
			return entities.StyleProfile{}, fmt.Errorf("%w: no profile store configured", entities.ErrProfileNotFound)
		}
		stored, err := s.deps.Profiles.Get(ctx, payload.ProfileID)
		if err != nil {
			return entities.StyleProfile{}, fmt.Errorf("load profile %s: %w", payload.ProfileID, err)
		}
		raw = stored.Document
	case payload.Styles != nil:
		raw = payload.Styles
	default:
		return entities.StyleProfile{}, fmt.Errorf("%w: payload has neither profileId nor styles", entities.ErrProfileNotFound)
	}

	if payload.Document != nil {
		merged := make(map[string]any, len(raw)+1)
		for k, v := range raw {
			merged[k] = v
		}
		delete(merged, "documentSettings")
		merged["document"] = payload.Document
		raw = merged
	}

	profile := styles.Normalize(raw)
	if profile.Document.Header.Logo == nil {
		if logoURL := strings.TrimSpace(payload.Event.LogoURL); logoURL != "" {
			profile.Document.Header.Logo = &entities.Logo{URL: logoURL}
		}
	}
	return profile, nil
}

// defaultSnapshots renders every preset unfiltered.
func (s *RenderService) defaultSnapshots() []entities.Snapshot {
	presets := s.deps.Presets.Presets()
	snapshots := make([]entities.Snapshot, len(presets))
	for i, p := range presets {
		name := p.Label
		if name == "" {
			name = p.ID
		}
		snapshots[i] = entities.Snapshot{
			Name:          name,
			SortOrder:     entities.NewSortKey(float64(i)),
			GroupPresetID: p.ID,
		}
	}
	return snapshots
}

func (s *RenderService) presetsFor(snapshots []entities.Snapshot) ([]entities.GroupPreset, error) {
	var presets []entities.GroupPreset
	seen := make(map[string]bool)
	for _, snap := range snapshots {
		if snap.GroupPresetID == "" {
			return nil, fmt.Errorf("%w: snapshot %q has no groupPresetId", entities.ErrInvalidPayload, snap.Name)
		}
		if seen[snap.GroupPresetID] {
			continue
		}
		preset, ok := s.deps.Presets.Preset(snap.GroupPresetID)
		if !ok {
			return nil, fmt.Errorf("%w: %q (snapshot %q)", entities.ErrPresetNotFound, snap.GroupPresetID, snap.Name)
		}
		seen[snap.GroupPresetID] = true
		presets = append(presets, preset)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: no presets configured", entities.ErrPresetNotFound)
	}
	return presets, nil
}

func (s *RenderService) upload(ctx context.Context, p, contentType string, data []byte, kind string) error {
	if err := s.deps.Blobs.Put(ctx, p, contentType, data); err != nil {
		return err
	}
	s.deps.Metrics.ObserveUpload(kind, len(data))
	return nil
}
