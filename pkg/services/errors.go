package services

import "errors"

var ErrRunNotFound = errors.New("run not found")

func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
