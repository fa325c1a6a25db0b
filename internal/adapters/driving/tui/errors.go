package tui

import "errors"

// ErrMissingQuerySession is returned when the query session is not provided.
var ErrMissingQuerySession = errors.New("tui: query session is required")
