package model

import (
	"bytes"
	"encoding/json"
)

// Symbol is a player's mark on the board
type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
)

// BoardSize is the number of cells on a tic-tac-toe board
const BoardSize = 9

// Board is the 3x3 grid, indexed 0-8 row-major. An empty cell holds the
// zero Symbol.
type Board [BoardSize]Symbol

// winningLines are the 8 cell triples that decide a game:
// 3 rows, 3 columns, 2 diagonals. Checked in this fixed order.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ValidCell reports whether idx addresses a board cell
func ValidCell(idx int) bool {
	return idx >= 0 && idx < BoardSize
}

// Winner returns the winning symbol and line if any triple is complete
func (b Board) Winner() (Symbol, []int, bool) {
	for _, line := range winningLines {
		s := b[line[0]]
		if s != "" && b[line[1]] == s && b[line[2]] == s {
			return s, []int{line[0], line[1], line[2]}, true
		}
	}
	return "", nil, false
}

// IsFull reports whether every cell is marked
func (b Board) IsFull() bool {
	for _, s := range b {
		if s == "" {
			return false
		}
	}
	return true
}

// MarshalJSON emits empty cells as null so the wire format matches the
// client's expectation of an array of "X" | "O" | null.
func (b Board) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, s := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		if s == "" {
			buf.WriteString("null")
		} else {
			buf.WriteByte('"')
			buf.WriteString(string(s))
			buf.WriteByte('"')
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the null-for-empty array form produced by MarshalJSON
func (b *Board) UnmarshalJSON(data []byte) error {
	var cells [BoardSize]*Symbol
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	for i, c := range cells {
		if c == nil {
			b[i] = ""
		} else {
			b[i] = *c
		}
	}
	return nil
}
