package main

import (
	"os"
	"slices"
	"sync"

	"github.com/boyter/gocodewalker"
)

// collectFiles expands args into file paths. Directories are walked for
// files with one of the given extensions, honoring .gitignore and .ignore
// files. Named files are kept whatever their extension, and "-" is passed
// through for stdin.
func collectFiles(args, extensions []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)

			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		found, err := walkDir(arg, extensions)
		if err != nil {
			return nil, err
		}

		files = append(files, found...)
	}

	return files, nil
}

// walkDir returns the matching files under root in path order.
func walkDir(root string, extensions []string) ([]string, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = extensions

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e

		return false
	})

	var (
		wg    sync.WaitGroup
		files []string
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			files = append(files, f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return nil, err
	}

	wg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	slices.Sort(files)

	return files, nil
}
