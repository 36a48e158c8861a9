package service

import (
	"fmt"
	"strings"

	"github.com/wricardo/foxandgeese/game/engine"
)

// Board cell symbols
const (
	cellEmpty    = '.'
	cellFox      = 'F'
	cellGoose    = 'G'
	cellCrowded  = '*'
	cellDead     = 'x'
	cellUnknown  = '?'
	boardRowSize = 2
)

// RenderBoard draws the grid as text, top row first. Since U increases y
// the first line is y = height-1.
func RenderBoard(grid engine.Grid, entities []engine.EntityState) []string {
	if grid.Width <= 0 || grid.Height <= 0 {
		return nil
	}

	cells := make([][]rune, grid.Height)
	living := make([][]int, grid.Height)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(string(cellEmpty), grid.Width))
		living[y] = make([]int, grid.Width)
	}

	for _, e := range entities {
		p := e.Position
		if !grid.Contains(p) {
			continue
		}
		if e.IsDead {
			if living[p.Y][p.X] == 0 {
				cells[p.Y][p.X] = cellDead
			}
			continue
		}
		living[p.Y][p.X]++
		if living[p.Y][p.X] > 1 {
			cells[p.Y][p.X] = cellCrowded
			continue
		}
		cells[p.Y][p.X] = symbolFor(e.Type)
	}

	rows := make([]string, 0, grid.Height)
	for y := grid.Height - 1; y >= 0; y-- {
		var b strings.Builder
		b.Grow(grid.Width * boardRowSize)
		for x, r := range cells[y] {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
		}
		rows = append(rows, b.String())
	}
	return rows
}

func symbolFor(t engine.EntityType) rune {
	switch t {
	case engine.Fox:
		return cellFox
	case engine.Goose:
		return cellGoose
	}
	return cellUnknown
}

// FormatStatus renders a session status as a short human-readable report
func FormatStatus(status *SessionStatus) string {
	if status == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s, mission %s\n", status.SessionID, status.MissionID)
	fmt.Fprintf(&b, "Round %d, %s, %s\n", status.Round, status.Phase, status.MissionStatus)
	for _, row := range status.Board {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteByte('\n')
	}
	for _, e := range status.Entities {
		state := "alive"
		if e.IsDead {
			state = "dead"
		}
		fmt.Fprintf(&b, "  %-10s (%d,%d) %s\n", e.ID, e.Position.X, e.Position.Y, state)
	}
	if status.Presenter.WaitingForPlayerInput {
		b.WriteString("Waiting for input: UL U UR L W R DL D DR\n")
	}
	return b.String()
}
