package io

import (
	"errors"

	"github.com/ezrec/minvm/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull  = errors.New(f("channel full"))
	ErrChannelEmpty = errors.New(f("channel empty"))
	ErrNoTape       = errors.New(f("no tape"))
)
