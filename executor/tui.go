package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

const recentGames = 10

type model struct {
	gamesPlayed int
	moves       int64
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
}

func initialModel(updates chan GameUpdate) model {
	return model{
		startTime: time.Now(),
		updates:   updates,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.recentGames = append([]string{describeGame(msg)}, m.recentGames...)
		if len(m.recentGames) > recentGames {
			m.recentGames = m.recentGames[:recentGames]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	var gamesPerMin, movesPerSec float64
	if s := duration.Seconds(); s >= 1 {
		gamesPerMin = float64(m.gamesPlayed) / s * 60
		movesPerSec = float64(m.moves) / s
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + value + "\n"
	}
	var stats strings.Builder
	stats.WriteString(row("Games played", fmt.Sprint(m.gamesPlayed)))
	stats.WriteString(row("Black wins", fmt.Sprintf("%.1f%%", blackWinPercent())))
	stats.WriteString(row("Moves", fmt.Sprint(m.moves)))
	stats.WriteString(row("Duration", duration.Round(time.Second).String()))
	stats.WriteString(row("Games/min", fmt.Sprintf("%.2f", gamesPerMin)))
	stats.WriteString(row("Moves/sec", fmt.Sprintf("%.2f", movesPerSec)))

	recent := "waiting for the first game..."
	if len(m.recentGames) > 0 {
		recent = strings.Join(m.recentGames, "\n")
	}

	return titleStyle.Render("gouct self-play") + "\n" +
		boxStyle.Render(strings.TrimRight(stats.String(), "\n")) + "\n" +
		titleStyle.Render("Recent games") + "\n" +
		boxStyle.Render(recent) + "\n" +
		helpStyle.Render("Press q to quit.") + "\n"
}
