package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Flyclops/htmlstream"
)

// watchDebounce coalesces the bursts of write events editors produce
// into one re-parse.
const watchDebounce = 150 * time.Millisecond

// watch dumps every file once, then re-dumps a file whenever it
// changes. Directories are watched rather than the files themselves so
// that atomic-rename saves keep working.
func watch(parser *htmlstream.Parser, cli *CLI) error {
	watched := make(map[string]string) // absolute path -> path as given
	dirs := make(map[string]struct{})
	for _, path := range cli.Paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = path
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	for _, path := range cli.Paths {
		if err := dump(parser, cli, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	var (
		timer   *time.Timer
		pending = make(map[string]struct{})
		fire    = make(chan struct{}, 1)
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := watched[abs]; !ok {
				continue
			}
			pending[abs] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, err)
		case <-fire:
			for abs := range pending {
				delete(pending, abs)
				if err := dump(parser, cli, watched[abs]); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
		}
	}
}
