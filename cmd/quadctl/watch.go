package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultWatchDebounce = 300 * time.Millisecond

func newWatchCommand(logger func() *slog.Logger) *cobra.Command {
	opts := renderOptions{mode: modeOutline}
	var out string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a file whenever it changes",
		Long:  "Watch a text file and rewrite the outline or chunk output after each burst of edits.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if out != "" {
				same, err := samePath(args[0], out)
				if err != nil {
					return err
				}
				if same {
					return fmt.Errorf("--out must differ from the watched file %s", args[0])
				}
			}
			log := logger()
			w := &fileWatcher{
				path:     args[0],
				debounce: debounce,
				log:      log,
				onChange: func() error {
					data, err := os.ReadFile(args[0])
					if err != nil {
						return err
					}
					rendered, err := render(string(data), opts)
					if err != nil {
						return err
					}
					if out == "" {
						_, err = cmd.OutOrStdout().Write(rendered)
						return err
					}
					if err := writeFileAtomic(out, rendered); err != nil {
						return err
					}
					log.Info("rendered", "mode", opts.mode, "out", out, "bytes", len(rendered))
					return nil
				},
			}
			return w.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", modeOutline, "transform to run: outline or segment")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultWatchDebounce, "quiet period before re-rendering")
	opts.addSegmentFlags(cmd)
	return cmd
}

// fileWatcher calls onChange once at start and again after each burst of
// writes to path settles for the debounce period.
type fileWatcher struct {
	path     string
	debounce time.Duration
	log      *slog.Logger
	onChange func() error
}

func (w *fileWatcher) run(ctx context.Context) error {
	path, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if w.debounce <= 0 {
		w.debounce = defaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so editors that replace the file are still seen.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	if err := w.onChange(); err != nil {
		return err
	}
	w.log.Debug("watching", "path", path, "debounce", w.debounce)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-fire:
			if err := w.onChange(); err != nil {
				w.log.Warn("render failed", "path", path, "error", err)
			}
		}
	}
}

// samePath reports whether a and b name the same file after resolving both
// to absolute paths.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}

// writeFileAtomic replaces path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".quadctl-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
