package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout reports).
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// ReadDocument reads a service document from path, or from stdin when path is "-".
// The format follows the file extension; stdin is read as JSON unless format is set.
func ReadDocument(path string, format document.Format) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
		if format == "" {
			format = document.FormatFromPath(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if format == "" {
		format = document.FormatJSON
	}
	return document.ParseRaw(data, format)
}

// WriteDocument writes doc to path, or to w when path is empty or "-".
func WriteDocument(w io.Writer, path string, doc *document.Document, format document.Format) error {
	if format == "" {
		format = document.FormatFromPath(path)
	}
	data, err := doc.Marshal(format)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ParseAnswers turns repeated key=value flags into an answer set.
// A key given more than once collects its values in order, as checkboxes do.
func ParseAnswers(pairs []string) (domain.AnswerSet, error) {
	answers := domain.AnswerSet{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid answer %q: expected component=value", pair)
		}
		switch prev := answers[key].(type) {
		case nil:
			answers[key] = value
		case string:
			answers[key] = []string{prev, value}
		case []string:
			answers[key] = append(prev, value)
		}
	}
	return answers, nil
}

// PrintSystemMessage prints a standardized system message to w.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
