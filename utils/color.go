package utils

import (
	"fmt"
)

const (
	ColorDarkGray = 90
	ColorGreen    = 32
	ColorYellow   = 33
)

func Colorize(s interface{}, c int, enabled bool) string {
	if !enabled || c == 0 {
		return fmt.Sprintf("%v", s)
	}

	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
