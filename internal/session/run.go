package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/logging"
)

// ShutdownTimeout bounds how long Run waits for the peer to answer the
// closing handshake after the screen exits.
const ShutdownTimeout = 2 * time.Second

// Options configures an interactive session
type Options struct {
	// Client options passed to client.New
	Client []client.Option

	// Tap also receives every frame, e.g. a capture.Writer
	Tap client.Tap

	// Binary sends typed input as binary frames
	Binary bool

	// HistorySize caps the frame log, DefaultHistorySize if zero
	HistorySize int
}

// Run opens a full-screen session to url and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, url string, opts Options) error {
	b := newBridge()
	taps := client.Taps{b}
	if opts.Tap != nil {
		taps = append(taps, opts.Tap)
	}

	clientOpts := append([]client.Option{}, opts.Client...)
	clientOpts = append(clientOpts, client.WithTap(taps))
	c := client.New(b, clientOpts...)

	m := NewModel(url, c, opts.HistorySize)
	m.Binary = opts.Binary

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	bridgeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go b.run(bridgeCtx, p.Send)

	final, err := p.Run()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if serr := c.Shutdown(shutdownCtx); serr != nil {
		logging.Warn("Connection did not close cleanly", zap.String("url", url), zap.Error(serr))
	}

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("session error: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		logging.Debug("Session ended with error", zap.Error(fm.Err()))
	}
	return nil
}

// Pick runs the discovery picker and returns the chosen URL. ok is false
// when the user quit without choosing.
func Pick(ctx context.Context, scan ScanFunc, timeout time.Duration) (url string, ok bool, err error) {
	p := tea.NewProgram(NewPickerModel(scan, timeout), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("picker error: %w", err)
	}

	m, _ := final.(PickerModel)
	svc := m.SelectedService()
	if svc == nil {
		return "", false, nil
	}
	return svc.URL(), true, nil
}
