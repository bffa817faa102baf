// Package bulkload ingests pipe-delimited flat files into users and books.
//
// Each non-empty line is one record with positional fields and no escaping:
//
//	users.txt  username|...        (fields after the first are ignored)
//	books.txt  title|author|genre|image
//
// Every well-formed line leads to exactly one insert, committed on its own.
// Malformed lines and duplicates are reported per line and never abort the load.
package bulkload

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/utils"
)

// Delimiter separates fields within a line.
const Delimiter = "|"

const bookFields = 4

// Kind names the entity a file seeds.
type Kind string

const (
	KindUsers Kind = "users"
	KindBooks Kind = "books"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindUsers || k == KindBooks
}

// Line is one non-empty input line with its 1-based position in the file.
type Line struct {
	Number int
	Text   string
}

// ReadLines returns the non-blank lines of r.
func ReadLines(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, Line{Number: number, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return lines, nil
}

// ParseUser extracts the username from a users line.
func ParseUser(text string) (string, error) {
	fields := strings.Split(text, Delimiter)
	username := utils.NormalizeField(fields[0])
	if username == "" {
		return "", apperrors.Validation("missing username")
	}
	if utf8.RuneCountInString(username) > entities.MaxUsernameLength {
		return "", apperrors.Validation(fmt.Sprintf("username %q exceeds %d characters", username, entities.MaxUsernameLength))
	}
	return username, nil
}

// ParseBook builds an unrated book from a books line.
func ParseBook(text string) (*entities.Book, error) {
	fields := strings.Split(text, Delimiter)
	if len(fields) != bookFields {
		return nil, apperrors.Validation(fmt.Sprintf("expected %d fields title|author|genre|image, got %d", bookFields, len(fields)))
	}

	book := &entities.Book{
		Title:  utils.NormalizeField(fields[0]),
		Author: utils.NormalizeField(fields[1]),
		Genre:  utils.NormalizeField(fields[2]),
		Image:  utils.NormalizeField(fields[3]),
	}
	if book.Title == "" {
		return nil, apperrors.Validation("missing title")
	}
	return book, nil
}
