package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/mamisoa/lego/internal/stack"
)

// buildImage tars the build context and asks the daemon to build it under
// the given tag. Build errors arrive inside the response stream, so the
// stream is decoded to surface them.
func (e *Engine) buildImage(ctx context.Context, svc *stack.Service, tag string) error {
	e.progressf("building %s from %s", tag, svc.Build.Context)

	buildCtx, err := archive.TarWithOptions(svc.Build.Context, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("packing build context: %w", err)
	}
	defer buildCtx.Close()

	resp, err := e.api.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: svc.Build.DockerfileName(),
		Remove:     true,
		Labels:     e.resourceLabels(),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// ensurePulled fetches an image unless the daemon already has it. The pull
// stream is drained before the follow-up inspect so a truncated transfer
// shows up as a missing image rather than a silent success.
func (e *Engine) ensurePulled(ctx context.Context, ref string) error {
	if _, _, err := e.api.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return err
	}

	e.progressf("pulling %s", ref)
	rc, err := e.api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, rc); err != nil {
		rc.Close()
		return fmt.Errorf("reading pull stream: %w", err)
	}
	if err := rc.Close(); err != nil {
		return err
	}

	if _, _, err := e.api.ImageInspectWithRaw(ctx, ref); err != nil {
		return fmt.Errorf("image missing after pull: %w", err)
	}
	return nil
}
