package domain

import "errors"

var (
	ErrEmptyFrame       = errors.New("frame payload is empty")
	ErrConnectionClosed = errors.New("connection is closed")
	ErrSendBufferFull   = errors.New("send buffer is full")
)
