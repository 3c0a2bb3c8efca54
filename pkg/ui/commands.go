package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wepoker/tablesync/pkg/client"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// connErrorMsg carries an asynchronous transport failure into the UI loop.
type connErrorMsg struct{ err error }

// actionResultMsg is the outcome of a dispatched action; err is nil on
// acceptance.
type actionResultMsg struct{ err error }

// connStateMsg refreshes the lifecycle badge.
type connStateMsg struct{ state client.ConnState }

// listenCmd blocks on the client's channels and converts whatever arrives
// into a tea message. Re-issued after every receive.
func listenCmd(c *client.TableClient) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-c.UpdatesCh:
			return msg
		case err := <-c.ErrorsCh:
			return connErrorMsg{err: err}
		}
	}
}

// connStateTicker polls the lifecycle state for the status badge; the
// transports expose no state-change channel.
func connStateTicker(c *client.TableClient) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return connStateMsg{state: c.ConnState()}
	})
}

func dispatchCmd(ctx context.Context, c *client.TableClient, kind protocol.ActionKind, amount int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{err: c.Dispatch(ctx, kind, amount)}
	}
}

func potFractionCmd(ctx context.Context, c *client.TableClient, fraction float64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{err: c.DispatchPotFraction(ctx, fraction)}
	}
}

func startGameCmd(ctx context.Context, c *client.TableClient) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{err: c.StartGame(ctx)}
	}
}

func rebuyCmd(ctx context.Context, c *client.TableClient, amount int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{err: c.Rebuy(ctx, amount)}
	}
}
