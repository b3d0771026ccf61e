package config

import (
	"fmt"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/mines"
)

var dec = schema.NewDecoder()

// Presets name the classic boards.
var Presets = map[string]string{
	"beginner":     "rows=9&cols=9&mines=10",
	"intermediate": "rows=16&cols=16&mines=40",
	"expert":       "rows=16&cols=30&mines=99",
}

type board struct {
	Rows  int `schema:"rows,required"`
	Cols  int `schema:"cols,required"`
	Mines int `schema:"mines,required"`
}

// DecodeBoard parses a preset name or a query string such as
// "rows=9&cols=9&mines=10".
func DecodeBoard(s string) (mines.Params, error) {
	if preset, ok := Presets[s]; ok {
		s = preset
	}
	values, err := url.ParseQuery(s)
	if err != nil {
		return mines.Params{}, fmt.Errorf("%w: board %q: %w", mines.ErrBadParams, s, err)
	}
	var b board
	if err := dec.Decode(&b, values); err != nil {
		return mines.Params{}, fmt.Errorf("%w: board %q: %w", mines.ErrBadParams, s, err)
	}
	params := mines.Params(b)
	if err := params.Validate(); err != nil {
		return mines.Params{}, err
	}
	return params, nil
}
