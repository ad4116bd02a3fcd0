package service

import "errors"

var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrNoteExists        = errors.New("note already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrUnsupportedFrame  = errors.New("unsupported frame type")
	ErrFrameTooLarge     = errors.New("frame exceeds upload limit")
)
