package rewards

import "github.com/pkg/errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyVerified = errors.New("share already verified")
	ErrEventEnded      = errors.New("event has ended")
)
