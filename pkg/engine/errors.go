package engine

import (
	"context"
	"errors"

	"github.com/Fepozopo/imgbench/pkg/imgproc"
	"github.com/Fepozopo/imgbench/pkg/pixel"
)

var (
	// ErrSourceIndexOutOfRange reports a history index that does not exist.
	ErrSourceIndexOutOfRange = errors.New("source index is out of range")
	// ErrBusy is returned when an operator is invoked while another runs.
	ErrBusy = errors.New("engine is busy")
	// ErrEmptyHistory is returned by PopLast on an empty history.
	ErrEmptyHistory = errors.New("history is empty")
)

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindSourceIndexOutOfRange
	KindDimensionMismatch
	KindInvalidParameter
	KindBusy
	KindCanceled
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSourceIndexOutOfRange:
		return "source-index-out-of-range"
	case KindDimensionMismatch:
		return "dimension-mismatch"
	case KindInvalidParameter:
		return "invalid-parameter"
	case KindBusy:
		return "busy"
	case KindCanceled:
		return "canceled"
	}
	return "internal"
}

// Kind maps err onto the engine's error taxonomy.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSourceIndexOutOfRange), errors.Is(err, ErrEmptyHistory):
		return KindSourceIndexOutOfRange
	case errors.Is(err, imgproc.ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, imgproc.ErrInvalidParameter),
		errors.Is(err, pixel.ErrEmptyGrid),
		errors.Is(err, pixel.ErrBufferSize):
		return KindInvalidParameter
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}
