package exception

import "errors"

var (
	ErrEventMissingTopic = errors.New("event: missing topic")
	ErrEventUnknownTopic = errors.New("event: unknown topic")
	ErrEventMalformed    = errors.New("event: malformed payload")
)
