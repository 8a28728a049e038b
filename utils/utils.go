package utils

import (
	"bufio"
	"io"
	"strings"

	"github.com/twmb/murmur3"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

type Row struct {
	Line   int
	Text   string
	Fields []string
}

// ReadRows splits every non-blank line of r on sep. Lines starting with
// '#' are comments.
func ReadRows(r io.Reader, sep string) ([]Row, error) {
	scanner := bufio.NewScanner(r)

	var result []Row
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		result = append(result, Row{Line: line, Text: text, Fields: strings.Split(text, sep)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
