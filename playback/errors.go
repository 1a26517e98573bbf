package playback

import "errors"

// ErrSpeakerClosed is returned when playing on a closed Speaker.
var ErrSpeakerClosed = errors.New("playback: speaker closed")
