package vcs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/thiagokokada/vcs-go/internal/workingcopy"
)

type mergeState uint8

const (
	mergeInitiated mergeState = iota
	mergeClean
	mergeConflicted
	mergeCorrupted
)

func (s mergeState) String() string {
	switch s {
	case mergeInitiated:
		return "initiated"
	case mergeClean:
		return "clean"
	case mergeConflicted:
		return "conflicted"
	case mergeCorrupted:
		return "corrupted"
	default:
		return fmt.Sprintf("mergeState(%d)", uint8(s))
	}
}

// Merge merges src into dst and commits the result with message. A
// conflicting merge commits nothing and reports the conflicting paths; if
// the working copy cannot be restored afterwards it is discarded on release.
func (v *VCS) Merge(ctx context.Context, src, dst BranchRef, message string) (MergeResult, error) {
	srcName, dstName, err := v.mergeBranches(ctx, src, dst)
	if err != nil {
		return MergeResult{}, err
	}
	wc, err := v.ws.Acquire(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	defer v.release(wc)
	return v.runMerge(ctx, wc, srcName, dstName, message, true)
}

// PreviewMerge reports whether merging src into dst would conflict without
// touching either branch. It runs in a disposable working copy, so it never
// waits on the shared one.
func (v *VCS) PreviewMerge(ctx context.Context, src, dst BranchRef) (MergeResult, error) {
	srcName, dstName, err := v.mergeBranches(ctx, src, dst)
	if err != nil {
		return MergeResult{}, err
	}
	wc, err := v.ws.AcquireTemp(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	defer v.release(wc)
	return v.runMerge(ctx, wc, srcName, dstName, "", false)
}

func (v *VCS) mergeBranches(ctx context.Context, src, dst BranchRef) (string, string, error) {
	srcName, dstName := v.branchName(src), v.branchName(dst)
	for _, name := range []string{srcName, dstName} {
		if _, err := v.engine.ResolveBranch(ctx, v.location(), name); err != nil {
			return "", "", fmt.Errorf("merge %s into %s: %w", srcName, dstName, err)
		}
	}
	return srcName, dstName, nil
}

func (v *VCS) runMerge(ctx context.Context, wc *workingcopy.LockedWorkingCopy, src, dst, message string, commit bool) (MergeResult, error) {
	state := mergeInitiated
	logger := v.logger.With(
		slog.String("src", src),
		slog.String("dst", dst),
		slog.String("folder", wc.Folder()),
	)
	logger.Debug("merge started", slog.String("state", state.String()))

	if err := v.engine.CheckoutBranch(ctx, v.location(), wc.Folder(), dst); err != nil {
		wc.SetCorrupted(true)
		return MergeResult{}, fmt.Errorf("merge %s into %s: checkout: %w", src, dst, err)
	}
	outcome, err := v.engine.Merge(ctx, wc.Folder(), src, dst)
	if err != nil {
		wc.SetCorrupted(true)
		return MergeResult{}, fmt.Errorf("merge %s into %s: %w", src, dst, err)
	}

	if len(outcome.Conflicts) == 0 {
		state = mergeClean
		if commit {
			if _, err := v.commit(ctx, wc, dst, message); err != nil {
				return MergeResult{}, fmt.Errorf("merge %s into %s: %w", src, dst, err)
			}
		}
		logger.Info("merge finished", slog.String("state", state.String()), slog.Bool("committed", commit))
		return MergeResult{Success: true}, nil
	}

	conflicts := append([]string(nil), outcome.Conflicts...)
	sort.Strings(conflicts)
	state = mergeConflicted
	if err := v.engine.Revert(ctx, wc.Folder()); err != nil {
		wc.SetCorrupted(true)
		state = mergeCorrupted
		logger.Warn("revert after conflict failed", slog.Any("error", err))
	}
	logger.Info("merge finished",
		slog.String("state", state.String()),
		slog.Any("conflicts", conflicts),
	)
	return MergeResult{Success: false, ConflictingFiles: conflicts}, nil
}
