package service

import "errors"

// Виды ошибок ядра. Операции оборачивают их через %w, HTTP-слой различает их через errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid request parameters")
	ErrUnauthenticated = errors.New("user does not exist or is invalid")
	ErrUnauthorized    = errors.New("insufficient rights to perform the action")
	ErrInvalidState    = errors.New("invalid state transition")
)
