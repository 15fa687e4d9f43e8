package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/thiagokokada/vcs-go/internal/workingcopy"
)

func (v *VCS) FileContent(ctx context.Context, branch BranchRef, filePath string, opts ...ReadOption) ([]byte, error) {
	name := v.branchName(branch)
	rev, err := v.revisionFor(ctx, name, collectReadOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("read %s on %s: %w", filePath, name, err)
	}
	content, err := v.engine.FileContent(ctx, v.location(), rev, cleanPath(filePath))
	if err != nil {
		return nil, fmt.Errorf("read %s on %s: %w", filePath, name, err)
	}
	return content, nil
}

// FileText reads a file and decodes it from the named encoding (any WHATWG
// label such as "utf-8", "windows-1252" or "latin1"). An empty encoding
// means UTF-8.
func (v *VCS) FileText(ctx context.Context, branch BranchRef, filePath, encoding string, opts ...ReadOption) (string, error) {
	content, err := v.FileContent(ctx, branch, filePath, opts...)
	if err != nil {
		return "", err
	}
	if encoding == "" || strings.EqualFold(encoding, "utf-8") || strings.EqualFold(encoding, "utf8") {
		return string(content), nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode %s as %s: %w", filePath, encoding, err)
	}
	return string(decoded), nil
}

func (v *VCS) FileExists(ctx context.Context, branch BranchRef, filePath string) (bool, error) {
	_, err := v.FileContent(ctx, branch, filePath)
	if errors.Is(err, ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetFileContent writes content to filePath on branch and records exactly
// one commit.
func (v *VCS) SetFileContent(ctx context.Context, branch BranchRef, filePath string, content []byte, message string) (Commit, error) {
	commit, err := v.SetFileContents(ctx, branch, []FileWrite{{Path: filePath, Content: content, Message: message}})
	if err != nil {
		return Commit{}, err
	}
	return *commit, nil
}

// SetFileContents applies every write in a single commit whose message is
// the writes' messages joined by newlines. An empty batch is a no-op and
// returns nil.
func (v *VCS) SetFileContents(ctx context.Context, branch BranchRef, writes []FileWrite) (*Commit, error) {
	if len(writes) == 0 {
		return nil, nil
	}
	name := v.branchName(branch)
	messages := make([]string, 0, len(writes))
	for _, w := range writes {
		if err := validatePath(w.Path); err != nil {
			return nil, err
		}
		if w.Message != "" {
			messages = append(messages, w.Message)
		}
	}
	if _, err := v.engine.ResolveBranch(ctx, v.location(), name); err != nil {
		return nil, fmt.Errorf("write files on %s: %w", name, err)
	}

	var commit Commit
	err := v.withWorkingCopy(ctx, name, func(wc *workingcopy.LockedWorkingCopy) error {
		for _, w := range writes {
			target := filepath.Join(wc.Folder(), filepath.FromSlash(cleanPath(w.Path)))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("write %s: %w", w.Path, err)
			}
			if err := os.WriteFile(target, w.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", w.Path, err)
			}
		}
		var err error
		commit, err = v.commit(ctx, wc, name, strings.Join(messages, "\n"))
		return err
	})
	if err != nil {
		return nil, err
	}
	v.logger.Debug("files written",
		slog.String("branch", name),
		slog.Int("files", len(writes)),
		slog.String("revision", commit.Revision),
	)
	return &commit, nil
}

func (v *VCS) RemoveFile(ctx context.Context, branch BranchRef, filePath, message string) (Commit, error) {
	if err := validatePath(filePath); err != nil {
		return Commit{}, err
	}
	name := v.branchName(branch)
	if _, err := v.engine.ResolveBranch(ctx, v.location(), name); err != nil {
		return Commit{}, fmt.Errorf("remove %s on %s: %w", filePath, name, err)
	}

	var commit Commit
	err := v.withWorkingCopy(ctx, name, func(wc *workingcopy.LockedWorkingCopy) error {
		target := filepath.Join(wc.Folder(), filepath.FromSlash(cleanPath(filePath)))
		info, err := os.Stat(target)
		if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
			return fmt.Errorf("remove %s on %s: %w", filePath, name, ErrFileNotFound)
		}
		if err != nil {
			return fmt.Errorf("remove %s: %w", filePath, err)
		}
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove %s: %w", filePath, err)
		}
		commit, err = v.commit(ctx, wc, name, message)
		return err
	})
	if err != nil {
		return Commit{}, err
	}
	return commit, nil
}

// commit records the working copy state on branch. A failed commit leaves
// unpublished changes behind, so the folder is marked corrupted.
func (v *VCS) commit(ctx context.Context, wc *workingcopy.LockedWorkingCopy, branch, message string) (Commit, error) {
	commit, err := v.engine.Commit(ctx, wc.Folder(), branch, message)
	if err != nil {
		wc.SetCorrupted(true)
		return Commit{}, fmt.Errorf("commit on %s: %w", branch, err)
	}
	return commit, nil
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
}

func validatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("file path not specified")
	}
	if !filepath.IsLocal(filepath.FromSlash(cleanPath(p))) || cleanPath(p) == "." {
		return fmt.Errorf("file path %q escapes the repository", p)
	}
	return nil
}
