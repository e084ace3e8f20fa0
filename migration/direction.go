package migration

import (
	"github.com/pkg/errors"
	"strings"
)

var ErrInvalidDirection = errors.New("invalid migration direction")

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", errors.Wrapf(ErrInvalidDirection, "[%s], expected [%s] or [%s]", s, Up, Down)
	}
}

func (d Direction) String() string {
	return string(d)
}
