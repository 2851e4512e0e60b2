// Package corpus checks the gram parser against conformance cases written
// in the tree-sitter corpus format:
//
//	==================
//	Case name
//	:error
//	==================
//
//	(a)-->(b)
//
//	---
//
//	(gram_pattern (relationship_pattern ...))
//
// Attribute lines such as ":error" are optional. A case is expected to fail
// when it carries the error attribute or its tree contains ERROR or MISSING
// nodes.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
)

// Case is a single conformance case.
type Case struct {
	Name       string
	File       string
	Line       int // 1-based line of the opening header
	Input      string
	Expected   string // S-expression
	Attributes []string
}

// ID returns "file::name".
func (c *Case) ID() string {
	if c.File == "" {
		return c.Name
	}

	return filepath.Base(c.File) + "::" + c.Name
}

// ExpectError reports whether the parser must reject the input.
func (c *Case) ExpectError() bool {
	if slices.Contains(c.Attributes, "error") {
		return true
	}

	return strings.Contains(c.Expected, "(ERROR") || strings.Contains(c.Expected, "(MISSING")
}

// ParseFile reads the cases in a corpus file.
func ParseFile(path string) ([]*Case, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return Parse(path, string(data))
}

// Parse splits corpus content into cases. file is recorded on each case.
func Parse(file, content string) ([]*Case, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var cases []*Case

	for i := 0; i < len(lines); {
		if !isHeader(lines[i]) {
			i++

			continue
		}

		c, next, err := parseCase(file, lines, i)
		if err != nil {
			return nil, err
		}

		cases = append(cases, c)
		i = next
	}

	return cases, nil
}

func parseCase(file string, lines []string, start int) (*Case, int, error) {
	c := &Case{File: file, Line: start + 1}
	i := start + 1

	if i >= len(lines) {
		return nil, 0, malformed(file, start, "header without a name")
	}

	c.Name = strings.TrimSpace(lines[i])
	i++

	for ; i < len(lines) && !isHeader(lines[i]); i++ {
		attr := strings.TrimSpace(lines[i])

		switch {
		case attr == "":
		case strings.HasPrefix(attr, ":"):
			c.Attributes = append(c.Attributes, strings.TrimPrefix(attr, ":"))
		default:
			return nil, 0, malformed(file, i, "expected closing header after %q", c.Name)
		}
	}

	if i >= len(lines) {
		return nil, 0, malformed(file, start, "case %q has no closing header", c.Name)
	}

	i++

	inputStart := i
	for i < len(lines) && !isSeparator(lines[i]) {
		i++
	}

	if i >= len(lines) {
		return nil, 0, malformed(file, start, "case %q has no '---' separator", c.Name)
	}

	c.Input = trimBlankLines(lines[inputStart:i])
	i++

	expectedStart := i
	for i < len(lines) && !isHeader(lines[i]) {
		i++
	}

	c.Expected = strings.TrimSpace(strings.Join(lines[expectedStart:i], "\n"))

	return c, i, nil
}

func malformed(file string, line int, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %w: %s", file, line+1, ErrMalformedCorpus, fmt.Sprintf(format, args...))
}

func isHeader(line string) bool {
	return isRule(line, '=')
}

func isSeparator(line string) bool {
	return isRule(line, '-')
}

// isRule reports whether line is three or more of ch and nothing else.
func isRule(line string, ch rune) bool {
	line = strings.TrimSpace(line)
	if len(line) < 3 {
		return false
	}

	return strings.Trim(line, string(ch)) == ""
}

func trimBlankLines(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

// LoadDir reads every .txt corpus file under dir, in path order.
func LoadDir(dir string) ([]*Case, error) {
	var paths []string

	err := walkDir(dir, []string{"txt"}, func(path string) {
		paths = append(paths, path)
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)

	var cases []*Case

	for _, path := range paths {
		fileCases, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		cases = append(cases, fileCases...)
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoCases)
	}

	return cases, nil
}

func walkDir(root string, extensions []string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = extensions

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e

		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}
