package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrorNoSuchKey  = errors.New("no such key")
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrCodeTaken       = errors.New("project code already taken")
	ErrAlbumNotFound   = errors.New("album not found")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrUploadFailed    = errors.New("upload failed")
)
