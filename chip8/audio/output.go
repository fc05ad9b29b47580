package audio

import "errors"

// ErrNotAvailable is returned when the binary was built without audio support.
var ErrNotAvailable = errors.New("audio support not compiled in; rebuild with -tags oto")

// Output is a sound device streaming a Beeper.
type Output interface {
	SetActive(active bool)
	Close() error
}
