package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"market-alerts/internal/message"
)

// TerminalChannel prints notifications to a terminal, colored by caution
// level, optionally ringing the bell.
type TerminalChannel struct {
	mu          sync.Mutex
	out         io.Writer
	bellEnabled bool
}

// NewTerminalChannel creates a TerminalChannel writing to out.
func NewTerminalChannel(out io.Writer, bell bool) *TerminalChannel {
	return &TerminalChannel{out: out, bellEnabled: bell}
}

// Name returns the name of the channel.
func (tc *TerminalChannel) Name() string {
	return "terminal"
}

// IsEnabled returns whether the channel is enabled.
func (tc *TerminalChannel) IsEnabled() bool {
	return tc.out != nil
}

// Send prints the notification.
func (tc *TerminalChannel) Send(_ context.Context, n Notification) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.bellEnabled {
		fmt.Fprint(tc.out, "\a")
	}

	stamp := n.Timestamp.Format("15:04:05")
	fmt.Fprintf(tc.out, "%s %s\n", color.HiBlackString(stamp), color.New(color.Bold).Sprint(n.Title))
	for _, line := range strings.Split(n.Message, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(tc.out, "  %s\n", line)
	}
	fmt.Fprintf(tc.out, "  %s\n\n", CautionColor(n.Caution).Sprint(n.Caution))
	return nil
}

// CautionColor returns the display color of a caution level.
func CautionColor(caution string) *color.Color {
	switch caution {
	case message.CautionHigh:
		return color.New(color.FgRed, color.Bold)
	case message.CautionAligned:
		return color.New(color.FgGreen, color.Bold)
	case message.CautionModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
