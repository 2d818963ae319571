package trace

import "errors"

var ErrDeviceMissing = errors.New("trace: mp3 module not connected")
