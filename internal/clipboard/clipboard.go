package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var (
	// ErrUnavailable means no clipboard tool could be found for this
	// platform; the text-based endpoints still work.
	ErrUnavailable = errors.New("no clipboard tool available")
	// ErrNoHTML means the clipboard holds no HTML-format data.
	ErrNoHTML = errors.New("clipboard does not contain HTML data")
)

// Payload is pre-rendered clipboard content. Both formats are offered so the
// word processor can pick the richest one it understands.
type Payload struct {
	HTML string // CF_HTML fragment (without the CF_HTML header)
	RTF  string
}

// Provider is the platform clipboard boundary. The core treats it as an
// opaque string producer/consumer.
type Provider interface {
	// ReadHTML returns the clipboard's HTML content, or ErrNoHTML.
	ReadHTML(ctx context.Context) (string, error)
	// Write replaces the clipboard with the payload's formats.
	Write(ctx context.Context, p Payload) error
	// Formats lists the clipboard's currently available format names.
	Formats(ctx context.Context) ([]string, error)
}

// CommandProvider drives the clipboard through external tools (wl-paste,
// xclip, or PowerShell depending on platform). The clipboard is a systemwide
// exclusive resource, so every operation retries briefly on transient
// failure instead of surfacing lock contention to the caller.
type CommandProvider struct {
	// GOOS overrides runtime.GOOS, for tests.
	GOOS string
}

const clipboardRetries = 5

func retryDelay(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
	return base + time.Duration(rand.Int63n(int64(base)/2 + 1))
}

func (p *CommandProvider) goos() string {
	if p.GOOS != "" {
		return p.GOOS
	}
	return runtime.GOOS
}

type tool struct {
	name string
	args []string
}

func (p *CommandProvider) readTools() []tool {
	switch p.goos() {
	case "windows":
		return []tool{{"powershell", []string{"-NoProfile", "-Command", "Get-Clipboard -TextFormatType Html"}}}
	case "darwin":
		return nil // pbpaste has no HTML target
	default:
		return []tool{
			{"wl-paste", []string{"-t", "text/html"}},
			{"xclip", []string{"-selection", "clipboard", "-t", "text/html", "-o"}},
		}
	}
}

func (p *CommandProvider) writeTools() []tool {
	switch p.goos() {
	case "darwin", "windows":
		return nil
	default:
		return []tool{
			{"wl-copy", []string{"-t", "text/html"}},
			{"xclip", []string{"-selection", "clipboard", "-t", "text/html"}},
		}
	}
}

func (p *CommandProvider) formatTools() []tool {
	switch p.goos() {
	case "darwin", "windows":
		return nil
	default:
		return []tool{
			{"wl-paste", []string{"--list-types"}},
			{"xclip", []string{"-selection", "clipboard", "-t", "TARGETS", "-o"}},
		}
	}
}

func (p *CommandProvider) ReadHTML(ctx context.Context) (string, error) {
	out, err := runFirst(ctx, p.readTools(), nil)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		// The tools exit non-zero when the requested target is absent.
		return "", ErrNoHTML
	}
	html := DecodeCFHTML(string(out))
	if strings.TrimSpace(html) == "" {
		return "", ErrNoHTML
	}
	return html, nil
}

func (p *CommandProvider) Write(ctx context.Context, payload Payload) error {
	if payload.HTML == "" {
		return fmt.Errorf("nothing to write")
	}
	blob := EncodeCFHTML(payload.HTML)
	_, err := runFirst(ctx, p.writeTools(), blob)
	return err
}

func (p *CommandProvider) Formats(ctx context.Context) ([]string, error) {
	out, err := runFirst(ctx, p.formatTools(), nil)
	if err != nil {
		return nil, err
	}
	var formats []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			formats = append(formats, line)
		}
	}
	return formats, nil
}

// runFirst tries each tool in order and retries transient failures of the
// one that is actually installed.
func runFirst(ctx context.Context, tools []tool, stdin []byte) ([]byte, error) {
	for _, t := range tools {
		if _, err := exec.LookPath(t.name); err != nil {
			continue
		}
		var lastErr error
		for attempt := 0; attempt < clipboardRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay(attempt - 1)):
				}
			}
			cmd := exec.CommandContext(ctx, t.name, t.args...)
			if stdin != nil {
				cmd.Stdin = bytes.NewReader(stdin)
			}
			out, err := cmd.Output()
			if err == nil {
				return out, nil
			}
			lastErr = err
			// A missing target is not transient; only keep retrying
			// when the tool was killed or could not grab the selection.
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
				break
			}
		}
		return nil, fmt.Errorf("%s: %w", t.name, lastErr)
	}
	return nil, ErrUnavailable
}
