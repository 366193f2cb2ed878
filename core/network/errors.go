package network

import "errors"

var errOutsideBounds = errors.New("coordinates outside configured bounds")
