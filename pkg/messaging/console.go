package messaging

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleMessenger prints replies, used by the interactive chat command.
type ConsoleMessenger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleMessenger writes replies to out.
func NewConsoleMessenger(out io.Writer) *ConsoleMessenger {
	return &ConsoleMessenger{out: out}
}

// Send writes the reply followed by a blank line.
func (m *ConsoleMessenger) Send(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := fmt.Fprintf(m.out, "%s\n\n", body)
	return err
}
