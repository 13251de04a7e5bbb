// Package tictactoe supplies the 3x3 game used by the CLI and the web
// front end. X always moves first; boards are immutable values so they
// work directly as statistics-table keys.
package tictactoe

import (
	"fmt"
	"strings"

	"playout/game"
)

type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Board is a complete position: 9 cells in row-major order, A1 at index
// 0. Whose turn it is follows from the cell counts.
type Board [9]Cell

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Game implements game.Rules for tic-tac-toe.
type Game struct{}

func (Game) InitialState() Board {
	return Board{}
}

// XToMove reports whether X makes the next move.
func (b Board) XToMove() bool {
	empties := 0
	for _, c := range b {
		if c == Empty {
			empties++
		}
	}
	return empties%2 == 1
}

// Successors returns every board reachable by the player to move, or
// the Outcome from that player's perspective when the game is over.
func (Game) Successors(b Board) ([]Board, error) {
	xToMove := b.XToMove()
	for _, line := range lines {
		c := b[line[0]]
		if c != Empty && c == b[line[1]] && c == b[line[2]] {
			if (c == X) == xToMove {
				return nil, game.Won
			}
			return nil, game.Lost
		}
	}

	full := true
	for _, c := range b {
		if c == Empty {
			full = false
			break
		}
	}
	if full {
		return nil, game.Tied
	}

	mover := O
	if xToMove {
		mover = X
	}
	var children []Board
	for i, c := range b {
		if c == Empty {
			next := b
			next[i] = mover
			children = append(children, next)
		}
	}
	return children, nil
}

const cellChars = "-XO"

// String renders the board as its 9-character wire form, e.g.
// "X--OX----".
func (b Board) String() string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteByte(cellChars[c])
	}
	return sb.String()
}

// Parse reads the 9-character wire form back into a board.
func Parse(s string) (Board, error) {
	var b Board
	if len(s) != 9 {
		return b, fmt.Errorf("board must be 9 characters, got %d", len(s))
	}
	for i := 0; i < 9; i++ {
		j := strings.IndexByte(cellChars, s[i])
		if j < 0 {
			return b, fmt.Errorf("invalid cell %q at index %d", s[i], i)
		}
		b[i] = Cell(j)
	}
	return b, nil
}

// Render draws the board for a terminal, with column letters and row
// numbers matching the A1..C3 move notation.
func (b Board) Render() string {
	cell := func(i int) string {
		if b[i] == Empty {
			return " "
		}
		return string(cellChars[b[i]])
	}
	var sb strings.Builder
	sb.WriteString("    A | B | C\n")
	for row := 0; row < 3; row++ {
		sb.WriteString("   -----------\n")
		sb.WriteString(fmt.Sprintf(" %d  %s | %s | %s\n",
			row+1, cell(row*3), cell(row*3+1), cell(row*3+2)))
	}
	return sb.String()
}

// ParseSquare converts a move like "A2" into a board index.
func ParseSquare(move string) (int, error) {
	move = strings.ToUpper(strings.TrimSpace(move))
	if len(move) != 2 {
		return 0, fmt.Errorf("moves look like A2, got %q", move)
	}
	col := strings.IndexByte("ABC", move[0])
	row := strings.IndexByte("123", move[1])
	if col < 0 || row < 0 {
		return 0, fmt.Errorf("moves look like A2, got %q", move)
	}
	return row*3 + col, nil
}

// Square names a board index in A1..C3 notation.
func Square(index int) string {
	return string([]byte{"ABC"[index%3], "123"[index/3]})
}

// Place returns a copy of the board with c placed at index, or an error
// if the square is taken.
func (b Board) Place(index int, c Cell) (Board, error) {
	if index < 0 || index > 8 {
		return b, fmt.Errorf("square index %d out of range", index)
	}
	if b[index] != Empty {
		return b, fmt.Errorf("square %s is already taken", Square(index))
	}
	next := b
	next[index] = c
	return next, nil
}

// Diff returns the index of the single square that changed between two
// boards, or -1 when there is none.
func Diff(before, after Board) int {
	for i := range before {
		if before[i] != after[i] {
			return i
		}
	}
	return -1
}
