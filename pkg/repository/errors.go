package repository

import "errors"

// 命令级的前置条件错误：这些都会让整条命令 fail-fast
var (
	ErrAlreadyExists  = errors.New("repository already exists")
	ErrNotARepository = errors.New("not a contextvault repository")
	ErrNothingStaged  = errors.New("nothing staged for commit")
	ErrNotLinked      = errors.New("repository is not linked to a remote")
)
