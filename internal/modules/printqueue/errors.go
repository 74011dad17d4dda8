package printqueue

import "errors"

var (
	ErrNoBarcode  = errors.New("barcode is missing")
	ErrEmptyQueue = errors.New("print queue is empty")
	ErrSending    = errors.New("print queue is already being sent")
)
