package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmMsg asks the model to show prompt and answer on reply.
type confirmMsg struct {
	prompt string
	reply  chan<- bool
}

// promptConfirmer routes a controller confirmation through the running
// program: the request blocks until the user answers y or n.
type promptConfirmer struct {
	send func(tea.Msg)
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if c.send == nil {
		return false
	}
	reply := make(chan bool, 1)
	c.send(confirmMsg{prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}
