package vcs

import "errors"

var (
	ErrBranchExists     = errors.New("branch already exists")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrRevisionNotFound = errors.New("revision not found")
)
