// Package ui is the terminal front end: a bubbletea model rendering the
// reconciled table view and feeding user actions to the dispatcher. The menu
// is advisory; a greyed-out action is a hint, the server stays the authority.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/client"
	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/offline"
	"github.com/wepoker/tablesync/pkg/protocol"
)

var (
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).MarginLeft(2)
	gameInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("140")).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

type menuOption string

const (
	optionCheck     menuOption = "Check"
	optionCall      menuOption = "Call"
	optionFold      menuOption = "Fold"
	optionBet       menuOption = "Bet..."
	optionRaise     menuOption = "Raise..."
	optionThirdPot  menuOption = "1/3 Pot"
	optionHalfPot   menuOption = "1/2 Pot"
	optionFullPot   menuOption = "Pot"
	optionOverPot   menuOption = "1.5x Pot"
	optionAllIn     menuOption = "All In"
	optionStartGame menuOption = "Start Game"
	optionRebuy     menuOption = "Rebuy"
	optionPractice  menuOption = "Practice Hand"
	optionNextCard  menuOption = "Next Street"
	optionNewHand   menuOption = "New Hand"
	optionBack      menuOption = "Back To Table"
	optionQuit      menuOption = "Quit"
)

// Model is the UI state over one table session.
type Model struct {
	ctx context.Context
	c   *client.TableClient
	log slog.Logger

	view      gamestate.TableView
	connState client.ConnState
	degraded  bool

	message string
	errText string

	selectedItem int
	options      []menuOption

	// Amount entry for Bet/Raise.
	inputMode   bool
	inputKind   protocol.ActionKind
	amountInput string

	// Local practice hand while degraded.
	practiceMode  bool
	practice      *offline.Table
	practiceStore *gamestate.Store
	practiceRec   *gamestate.Reconciler
}

// NewModel builds the UI over a connected client.
func NewModel(ctx context.Context, c *client.TableClient, log slog.Logger) Model {
	m := Model{
		ctx:       ctx,
		c:         c,
		log:       log,
		view:      c.View(),
		connState: c.ConnState(),
	}
	m.rebuildMenu()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenCmd(m.c), connStateTicker(m.c))
}

// currentView is the live view, or the practice table's while it is open.
func (m *Model) currentView() gamestate.TableView {
	if m.practiceMode {
		return m.practiceStore.View()
	}
	return m.view
}

func (m *Model) rebuildMenu() {
	var opts []menuOption
	switch {
	case m.practiceMode:
		if m.practice.State() == protocol.StateShowdown {
			opts = append(opts, optionNewHand)
		} else {
			opts = append(opts, optionNextCard)
		}
		opts = append(opts, optionBack)
	default:
		if m.view.ActionsEnabled() {
			if m.view.MyToCall > 0 {
				opts = append(opts, optionCall)
			} else {
				opts = append(opts, optionCheck)
			}
			if m.view.CurrentBetThisStreet > 0 {
				opts = append(opts, optionRaise)
			} else {
				opts = append(opts, optionBet)
			}
			opts = append(opts, optionThirdPot, optionHalfPot,
				optionFullPot, optionOverPot, optionAllIn, optionFold)
		}
		if m.view.State == protocol.StateWaiting {
			opts = append(opts, optionStartGame)
		}
		if m.view.MySeat != gamestate.NoSeat && m.view.MyStack == 0 {
			opts = append(opts, optionRebuy)
		}
		if m.degraded {
			opts = append(opts, optionPractice)
		}
	}
	opts = append(opts, optionQuit)
	m.options = opts
	if m.selectedItem >= len(opts) {
		m.selectedItem = len(opts) - 1
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputMode {
			return m.updateAmountInput(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.c.Leave()
			return m, tea.Quit
		case "up", "k":
			if m.selectedItem > 0 {
				m.selectedItem--
			}
		case "down", "j":
			if m.selectedItem < len(m.options)-1 {
				m.selectedItem++
			}
		case "enter":
			return m.execute(m.options[m.selectedItem])
		}

	case client.StateUpdateMsg:
		m.view = msg.View
		m.errText = ""
		m.rebuildMenu()
		cmds = append(cmds, listenCmd(m.c))

	case connErrorMsg:
		if errors.Is(msg.err, client.ErrReconnectExhausted) {
			m.degraded = true
			m.view = m.c.View()
			m.message = "Connection lost. Showing last known state; practice hands available."
		} else {
			m.errText = msg.err.Error()
		}
		m.rebuildMenu()
		cmds = append(cmds, listenCmd(m.c))

	case actionResultMsg:
		if msg.err != nil {
			var verr *client.ValidationError
			var rerr *client.RejectedError
			switch {
			case errors.As(msg.err, &verr):
				m.errText = verr.Reason
			case errors.As(msg.err, &rerr):
				m.errText = rerr.Reason
			default:
				m.errText = msg.err.Error()
			}
		} else {
			m.message = ""
			m.errText = ""
		}

	case connStateMsg:
		m.connState = msg.state
		cmds = append(cmds, connStateTicker(m.c))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateAmountInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = false
		m.amountInput = ""
	case "enter":
		amount, err := parseAmount(m.amountInput)
		m.inputMode = false
		m.amountInput = ""
		if err != nil {
			m.errText = err.Error()
			return m, nil
		}
		return m, dispatchCmd(m.ctx, m.c, m.inputKind, amount)
	case "backspace":
		if len(m.amountInput) > 0 {
			m.amountInput = m.amountInput[:len(m.amountInput)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 && (s[0] >= '0' && s[0] <= '9' || s[0] == '.') {
			m.amountInput += s
		}
	}
	return m, nil
}

// parseAmount converts a display amount like "123.45" into minor units.
func parseAmount(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(f*100 + 0.5), nil
}

func (m Model) execute(opt menuOption) (tea.Model, tea.Cmd) {
	switch opt {
	case optionCheck:
		return m, dispatchCmd(m.ctx, m.c, protocol.ActionCheck, 0)
	case optionCall:
		return m, dispatchCmd(m.ctx, m.c, protocol.ActionCall, 0)
	case optionFold:
		return m, dispatchCmd(m.ctx, m.c, protocol.ActionFold, 0)
	case optionAllIn:
		return m, dispatchCmd(m.ctx, m.c, protocol.ActionAllIn, 0)
	case optionBet, optionRaise:
		m.inputMode = true
		m.inputKind = protocol.ActionBet
		if opt == optionRaise {
			m.inputKind = protocol.ActionRaise
		}
		m.amountInput = ""
		return m, nil
	case optionThirdPot:
		return m, potFractionCmd(m.ctx, m.c, 1.0/3.0)
	case optionHalfPot:
		return m, potFractionCmd(m.ctx, m.c, 0.5)
	case optionFullPot:
		return m, potFractionCmd(m.ctx, m.c, 1.0)
	case optionOverPot:
		return m, potFractionCmd(m.ctx, m.c, 1.5)
	case optionStartGame:
		return m, startGameCmd(m.ctx, m.c)
	case optionRebuy:
		return m, rebuyCmd(m.ctx, m.c, m.view.BigBlind*100)
	case optionPractice:
		return m.startPractice()
	case optionNextCard:
		return m.advancePractice()
	case optionNewHand:
		return m.newPracticeHand()
	case optionBack:
		m.practiceMode = false
		m.message = ""
		m.rebuildMenu()
		return m, nil
	case optionQuit:
		m.c.Leave()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startPractice() (tea.Model, tea.Cmd) {
	nickname := "you"
	if p := m.view.PlayerByID(m.view.ViewerID); p != nil && p.Nickname != "" {
		nickname = p.Nickname
	}
	tbl, err := offline.NewTable(m.view.ViewerID, nickname, 3,
		time.Now().UnixNano(), m.log)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.practice = tbl
	m.practiceStore = gamestate.NewStore(m.view.ViewerID, m.view.TableID)
	m.practiceRec = gamestate.NewReconciler(m.practiceStore, m.log)
	if err := tbl.Deal(); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.applyPractice()
	m.practiceMode = true
	m.message = "Practice hand. No chips move and nothing is server-confirmed."
	m.rebuildMenu()
	return m, nil
}

func (m Model) advancePractice() (tea.Model, tea.Cmd) {
	state, err := m.practice.Advance()
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.applyPractice()
	if state == protocol.StateShowdown {
		if results, err := m.practice.Showdown(); err == nil && len(results) > 0 {
			m.message = fmt.Sprintf("%s wins with %s",
				results[0].Nickname, results[0].Description)
		}
	}
	m.rebuildMenu()
	return m, nil
}

func (m Model) newPracticeHand() (tea.Model, tea.Cmd) {
	if _, err := m.practice.Advance(); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	if err := m.practice.Deal(); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.applyPractice()
	m.message = ""
	m.rebuildMenu()
	return m, nil
}

func (m *Model) applyPractice() {
	m.practiceRec.ApplySnapshot(m.practice.Snapshot())
	m.practiceRec.MarkUnverified()
}

// View renders the table.
func (m Model) View() string {
	v := m.currentView()
	var s string

	title := fmt.Sprintf("Table %d", v.TableID)
	if m.practiceMode {
		title = "Practice Table"
	}
	s += titleStyle.Render(title) + "  " + m.renderBadge(v) + "\n\n"

	if m.message != "" {
		s += warnStyle.Render(m.message) + "\n\n"
	}
	if m.errText != "" {
		s += errorStyle.Render("Error: "+m.errText) + "\n\n"
	}

	s += gameInfoStyle.Render(fmt.Sprintf("Pot: %s | To Call: %s | Phase: %s | Acting: %s",
		protocol.FormatAmount(v.PotSize), protocol.FormatAmount(v.MyToCall),
		v.State, v.CurrentPlayerName())) + "\n"
	for _, share := range v.PotBreakdown {
		s += blurredStyle.Render(fmt.Sprintf("  %s: %s",
			share.Name, protocol.FormatAmount(share.Amount))) + "\n"
	}
	s += "\n"

	s += fmt.Sprintf("Board: %s\n", protocol.FormatCards(v.CommunityCards))
	s += fmt.Sprintf("Your Cards: %s\n\n", protocol.FormatCards(v.MyHoleCards))

	for _, p := range v.Players {
		line := fmt.Sprintf("  seat %d %-12s %10s  bet %s",
			p.Seat, p.Nickname, protocol.FormatAmount(p.Stack),
			protocol.FormatAmount(p.CurrentBet))
		if p.IsDealer {
			line += " [D]"
		}
		if p.IsSmallBlind {
			line += " [SB]"
		}
		if p.IsBigBlind {
			line += " [BB]"
		}
		if p.Status == protocol.StatusFolded {
			line += " (folded)"
		}
		if p.Status == protocol.StatusAllIn {
			line += " (all in)"
		}
		if cards, ok := v.RevealedHoleCards[p.ID]; ok && p.ID != v.ViewerID {
			line += "  " + protocol.FormatCards(cards)
		}
		if p.Seat == v.NextToActSeat && v.State.IsBettingStreet() {
			line += " <- acting"
		}
		if p.ID == v.ViewerID {
			s += focusedStyle.Render(line+" (you)") + "\n"
		} else {
			s += blurredStyle.Render(line) + "\n"
		}
	}
	s += "\n"

	if v.RecentAction != "-" {
		s += gameInfoStyle.Render("Last: "+v.RecentAction) + "\n"
	}
	if v.LastResult != nil {
		if p := v.PlayerByID(v.LastResult.Winner); p != nil {
			s += gameInfoStyle.Render(fmt.Sprintf("%s won %s", p.Nickname,
				protocol.FormatAmount(v.LastResult.Amount))) + "\n"
		}
	}
	if deadline := v.ActionDeadline; deadline > 0 && v.MyTurn() {
		left := time.Until(time.UnixMilli(deadline)).Round(time.Second)
		if left > 0 {
			s += warnStyle.Render(fmt.Sprintf("Act within %s", left)) + "\n"
		}
	}
	s += "\n"

	if m.inputMode {
		s += focusedStyle.Render(fmt.Sprintf("%s amount: %s_",
			m.inputKind, m.amountInput)) + "\n"
		s += helpStyle.Render("Enter to send, Esc to cancel")
		return s
	}

	for i, option := range m.options {
		if i == m.selectedItem {
			s += focusedStyle.Render(fmt.Sprintf("> %s", option)) + "\n"
		} else {
			s += blurredStyle.Render(fmt.Sprintf("  %s", option)) + "\n"
		}
	}
	s += "\n" + helpStyle.Render("Arrows to move, Enter to select, 'q' to leave")
	return s
}

func (m Model) renderBadge(v gamestate.TableView) string {
	if m.practiceMode || !v.Verified {
		return errorStyle.Render("[UNVERIFIED]")
	}
	switch m.connState {
	case client.StateConnected:
		return gameInfoStyle.Render("[" + m.connState.String() + "]")
	case client.StateDegraded:
		return errorStyle.Render("[" + m.connState.String() + "]")
	default:
		return warnStyle.Render("[" + m.connState.String() + "]")
	}
}

// Run drives the UI until the user quits.
func Run(ctx context.Context, c *client.TableClient, log slog.Logger) error {
	p := tea.NewProgram(NewModel(ctx, c, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
