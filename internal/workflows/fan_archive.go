package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ArchiveInput is the input for the fan archive workflow.
type ArchiveInput struct {
	FanID string
}

// ArchiveResult lists the object keys written for a fan.
type ArchiveResult struct {
	FanID   string
	Objects []string
}

// ArchiveWorkflowID keeps one archive run per fan: redelivered events reuse the ID.
func ArchiveWorkflowID(fanID string) string {
	return "fan-archive-" + fanID
}

// ArchiveFanWorkflow renders a fan's exports, uploads them to object storage and
// announces the archive. If uploading or announcing fails, the uploaded objects
// are removed again (saga compensation).
func ArchiveFanWorkflow(ctx workflow.Context, input ArchiveInput) (*ArchiveResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting fan archive workflow", "fanID", input.FanID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeFanNotFound},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Render exports
	var artifacts []Artifact
	if err := workflow.ExecuteActivity(ctx, "RenderArtifacts", input.FanID).Get(ctx, &artifacts); err != nil {
		return nil, err
	}
	keys := make([]string, len(artifacts))
	for i, a := range artifacts {
		keys[i] = a.Key
	}

	// Step 2: Upload
	var uploaded []string
	if err := workflow.ExecuteActivity(ctx, "UploadArtifacts", artifacts).Get(ctx, &uploaded); err != nil {
		logger.Warn("upload failed, compensating", "error", err)
		// Some objects may have landed before the failure.
		_ = workflow.ExecuteActivity(ctx, "RemoveArtifacts", keys).Get(ctx, nil)
		return nil, err
	}

	// Step 3: Announce
	if err := workflow.ExecuteActivity(ctx, "PublishArchived", input.FanID, uploaded).Get(ctx, nil); err != nil {
		logger.Warn("publish failed, compensating", "error", err)
		_ = workflow.ExecuteActivity(ctx, "RemoveArtifacts", uploaded).Get(ctx, nil)
		return nil, err
	}

	logger.Info("Fan archived", "fanID", input.FanID, "objects", len(uploaded))
	return &ArchiveResult{FanID: input.FanID, Objects: uploaded}, nil
}
