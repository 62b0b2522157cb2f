package internal

import (
	"bufio"
	"io"
	"strings"
)

// ReadLines reads all lines of the input, with trailing carriage returns removed.
func ReadLines(input io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}

	err = scanner.Err()
	return
}
