package cmd

import (
	"fmt"
	"io"
	"strings"
)

var ANSWERS = map[string]bool{
	"y":   true,
	"yes": true,
	"n":   false,
	"no":  false,
}

func prompt(w io.Writer, r io.Reader, q string) bool {
	_, _ = fmt.Fprint(w, "> "+q+" [Y/N] ")
	var answer string
	_, _ = fmt.Fscan(r, &answer)
	return ANSWERS[strings.ToLower(answer)]
}
