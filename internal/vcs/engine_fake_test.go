package vcs

import (
	"context"
	"errors"
)

type fakeEngine struct {
	checkoutBranchFunc   func(repo, folder, branch string) error
	checkoutRevisionFunc func(repo, folder, revision string) error
	commitFunc           func(folder, branch, message string) (Commit, error)
	mergeFunc            func(folder, src, dst string) (MergeOutcome, error)
	revertFunc           func(folder string) error
	branchesFunc         func(repo string) ([]string, error)
	createBranchFunc     func(repo, from, name string) error
	deleteBranchFunc     func(repo, name string) error
	tagsFunc             func(repo string) ([]Tag, error)
	createTagFunc        func(repo, name, message, revision string) (Tag, error)
	deleteTagFunc        func(repo, name string) error
	diffFunc             func(repo, from, to string) ([]FileChange, error)
	logFunc              func(repo, branch string) ([]Commit, error)
	resolveBranchFunc    func(repo, branch string) (string, error)
	commitInfoFunc       func(repo, revision string) (Commit, error)
	fileContentFunc      func(repo, revision, path string) ([]byte, error)

	commits []string
	reverts int
}

var _ Engine = (*fakeEngine)(nil)

func (f *fakeEngine) CheckoutBranch(_ context.Context, repo, folder, branch string) error {
	if f.checkoutBranchFunc != nil {
		return f.checkoutBranchFunc(repo, folder, branch)
	}
	return errors.New("unexpected CheckoutBranch call")
}

func (f *fakeEngine) CheckoutRevision(_ context.Context, repo, folder, revision string) error {
	if f.checkoutRevisionFunc != nil {
		return f.checkoutRevisionFunc(repo, folder, revision)
	}
	return errors.New("unexpected CheckoutRevision call")
}

func (f *fakeEngine) Commit(_ context.Context, folder, branch, message string) (Commit, error) {
	f.commits = append(f.commits, message)
	if f.commitFunc != nil {
		return f.commitFunc(folder, branch, message)
	}
	return Commit{}, errors.New("unexpected Commit call")
}

func (f *fakeEngine) Merge(_ context.Context, folder, src, dst string) (MergeOutcome, error) {
	if f.mergeFunc != nil {
		return f.mergeFunc(folder, src, dst)
	}
	return MergeOutcome{}, errors.New("unexpected Merge call")
}

func (f *fakeEngine) Revert(_ context.Context, folder string) error {
	f.reverts++
	if f.revertFunc != nil {
		return f.revertFunc(folder)
	}
	return errors.New("unexpected Revert call")
}

func (f *fakeEngine) Branches(_ context.Context, repo string) ([]string, error) {
	if f.branchesFunc != nil {
		return f.branchesFunc(repo)
	}
	return nil, errors.New("unexpected Branches call")
}

func (f *fakeEngine) CreateBranch(_ context.Context, repo, from, name string) error {
	if f.createBranchFunc != nil {
		return f.createBranchFunc(repo, from, name)
	}
	return errors.New("unexpected CreateBranch call")
}

func (f *fakeEngine) DeleteBranch(_ context.Context, repo, name string) error {
	if f.deleteBranchFunc != nil {
		return f.deleteBranchFunc(repo, name)
	}
	return errors.New("unexpected DeleteBranch call")
}

func (f *fakeEngine) Tags(_ context.Context, repo string) ([]Tag, error) {
	if f.tagsFunc != nil {
		return f.tagsFunc(repo)
	}
	return nil, errors.New("unexpected Tags call")
}

func (f *fakeEngine) CreateTag(_ context.Context, repo, name, message, revision string) (Tag, error) {
	if f.createTagFunc != nil {
		return f.createTagFunc(repo, name, message, revision)
	}
	return Tag{}, errors.New("unexpected CreateTag call")
}

func (f *fakeEngine) DeleteTag(_ context.Context, repo, name string) error {
	if f.deleteTagFunc != nil {
		return f.deleteTagFunc(repo, name)
	}
	return errors.New("unexpected DeleteTag call")
}

func (f *fakeEngine) Diff(_ context.Context, repo, from, to string) ([]FileChange, error) {
	if f.diffFunc != nil {
		return f.diffFunc(repo, from, to)
	}
	return nil, errors.New("unexpected Diff call")
}

func (f *fakeEngine) Log(_ context.Context, repo, branch string) ([]Commit, error) {
	if f.logFunc != nil {
		return f.logFunc(repo, branch)
	}
	return nil, errors.New("unexpected Log call")
}

func (f *fakeEngine) ResolveBranch(_ context.Context, repo, branch string) (string, error) {
	if f.resolveBranchFunc != nil {
		return f.resolveBranchFunc(repo, branch)
	}
	return "", errors.New("unexpected ResolveBranch call")
}

func (f *fakeEngine) CommitInfo(_ context.Context, repo, revision string) (Commit, error) {
	if f.commitInfoFunc != nil {
		return f.commitInfoFunc(repo, revision)
	}
	return Commit{}, errors.New("unexpected CommitInfo call")
}

func (f *fakeEngine) FileContent(_ context.Context, repo, revision, path string) ([]byte, error) {
	if f.fileContentFunc != nil {
		return f.fileContentFunc(repo, revision, path)
	}
	return nil, errors.New("unexpected FileContent call")
}

// knownBranches makes ResolveBranch and Branches answer for the given
// branch tips.
func (f *fakeEngine) knownBranches(tips map[string]string) {
	f.resolveBranchFunc = func(_, branch string) (string, error) {
		if tip, ok := tips[branch]; ok {
			return tip, nil
		}
		return "", ErrBranchNotFound
	}
	f.branchesFunc = func(string) ([]string, error) {
		names := make([]string, 0, len(tips))
		for name := range tips {
			names = append(names, name)
		}
		return names, nil
	}
}
