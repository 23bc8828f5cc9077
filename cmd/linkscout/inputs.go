package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amosWeiskopf/linkscout/internal/models"
)

const defaultResults = 100

var (
	errNoKeywords   = errors.New("no keywords given")
	errInvalidCount = errors.New("number of search results must be an integer")
)

// inputs holds the keyword and result count flags as given on the command line
type inputs struct {
	keywords    string
	keywordsSet bool
	results     int
	resultsSet  bool
}

// resolve returns the keywords and per-keyword result count, prompting on
// in for anything the flags left out. With --keywords alone the count
// defaults to 100.
func (i inputs) resolve(in io.Reader, out io.Writer) ([]models.Keyword, int, error) {
	reader := bufio.NewReader(in)

	raw := i.keywords
	if !i.keywordsSet {
		line, err := prompt(reader, out, "Enter the keywords to search for (separated by commas): ")
		if err != nil {
			return nil, 0, err
		}
		raw = line
	}
	keywords := models.ParseKeywords(raw)
	if len(keywords) == 0 {
		return nil, 0, errNoKeywords
	}

	switch {
	case i.resultsSet:
		return keywords, i.results, nil
	case i.keywordsSet:
		return keywords, defaultResults, nil
	}

	line, err := prompt(reader, out, "Enter the number of desired search results per keyword: ")
	if err != nil {
		return nil, 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", errInvalidCount, strings.TrimSpace(line))
	}
	return keywords, n, nil
}

func prompt(reader *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
