package errors

import "fmt"

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrPasswordMismatch   = fmt.Errorf("passwords don't match")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrGroupNotFound     = fmt.Errorf("group not found")
	ErrGroupNameRequired = fmt.Errorf("group name is required")
	ErrNotGroupMember    = fmt.Errorf("user is not a member of the group")
	ErrNotGroupAdmin     = fmt.Errorf("only the group admin can perform this action")
	ErrCannotRemoveAdmin = fmt.Errorf("cannot remove the admin from the group")

	ErrEmptyMessage     = fmt.Errorf("message has no text and no image")
	ErrUnsupportedImage = fmt.Errorf("unsupported image format")
	ErrEmptyWords       = fmt.Errorf("no words have been found")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
