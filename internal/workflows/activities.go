package workflows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/ports"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/metrics"
)

// ErrTypeFanNotFound marks a render failure retries cannot fix.
const ErrTypeFanNotFound = "FanNotFound"

// ArchivedFormats are the exports stored for every fan. The format doubles as file extension.
var ArchivedFormats = []string{usecases.FormatGeoJSON, usecases.FormatKML, usecases.FormatCSV}

// Artifact is one rendered export on its way to object storage.
type Artifact struct {
	Key         string
	ContentType string
	Body        []byte
}

// FanSource loads stored fans.
type FanSource interface {
	Get(ctx context.Context, id string) (*domain.Fan, error)
}

// ArchiveActivities holds the activity implementations for the archive workflow.
type ArchiveActivities struct {
	Fans      FanSource
	Store     ports.ArtifactStore
	Publisher ports.EventPublisher
	Now       func() time.Time
}

// ArtifactKey returns the object key of a fan export, e.g. fans/<id>/fan.kml.
func ArtifactKey(fanID, ext string) string {
	return "fans/" + fanID + "/fan." + ext
}

func (a *ArchiveActivities) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// RenderArtifacts renders every archived format of a fan.
func (a *ArchiveActivities) RenderArtifacts(ctx context.Context, fanID string) ([]Artifact, error) {
	f, err := a.Fans.Get(ctx, fanID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("fan %s not found", fanID), ErrTypeFanNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load fan %s: %w", fanID, err)
	}

	generatedAt := a.now()
	out := make([]Artifact, 0, len(ArchivedFormats))
	for _, format := range ArchivedFormats {
		body, ct, err := usecases.Render(f, format, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out = append(out, Artifact{Key: ArtifactKey(fanID, format), ContentType: ct, Body: body})
	}
	return out, nil
}

// UploadArtifacts writes artifacts to the store and returns their keys.
func (a *ArchiveActivities) UploadArtifacts(ctx context.Context, artifacts []Artifact) ([]string, error) {
	keys := make([]string, 0, len(artifacts))
	for _, art := range artifacts {
		if err := a.Store.Put(ctx, art.Key, art.ContentType, bytes.NewReader(art.Body), int64(len(art.Body))); err != nil {
			return nil, fmt.Errorf("upload %s: %w", art.Key, err)
		}
		keys = append(keys, art.Key)
	}
	return keys, nil
}

// PublishArchived announces that a fan's artifacts are stored.
func (a *ArchiveActivities) PublishArchived(ctx context.Context, fanID string, objects []string) error {
	event := &domain.FanArchivedEvent{FanID: fanID, Objects: objects, ArchivedAt: a.now().UTC()}
	if err := a.Publisher.PublishFanArchived(ctx, event); err != nil {
		metrics.FanArchives.WithLabelValues("error").Inc()
		return fmt.Errorf("publish archived %s: %w", fanID, err)
	}
	metrics.FanArchives.WithLabelValues("ok").Inc()
	return nil
}

// RemoveArtifacts deletes stored objects (saga compensation / rollback).
// Every key is attempted; the first failure is returned.
func (a *ArchiveActivities) RemoveArtifacts(ctx context.Context, keys []string) error {
	metrics.FanArchives.WithLabelValues("compensated").Inc()
	var firstErr error
	for _, k := range keys {
		if err := a.Store.Remove(ctx, k); err != nil {
			slog.WarnContext(ctx, "remove artifact", "key", k, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr == nil {
		slog.InfoContext(ctx, "artifacts removed (saga compensation)", "count", len(keys))
	}
	return firstErr
}
