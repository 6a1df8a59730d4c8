package service

import "errors"

var (
	// ErrProfileNotFound 在 URL 指定的资料不存在或未发布时返回
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileInvalidInput 在资料字段取值非法时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
	// ErrContentNotFound 在内容不存在或未发布时返回
	ErrContentNotFound = errors.New("content not found")
	// ErrContentInvalidInput 在内容字段不完整时返回
	ErrContentInvalidInput = errors.New("invalid content input")
	// ErrInvalidCategory 在类别无法识别时返回
	ErrInvalidCategory = errors.New("invalid content category")
	// ErrSectionNotFound 在区块不存在时返回
	ErrSectionNotFound = errors.New("section not found")
	// ErrSectionInvalidInput 在区块字段不完整时返回
	ErrSectionInvalidInput = errors.New("invalid section input")
)

// maxSlugAttempts bounds the retries after a unique-constraint race on slug.
const maxSlugAttempts = 3
