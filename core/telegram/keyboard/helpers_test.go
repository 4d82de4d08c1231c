package keyboard

import "testing"

func TestGrid(t *testing.T) {
	btns := []InlineBtn{
		{Text: "a", Unique: "region", Data: "0"},
		{Text: "b", Unique: "region", Data: "1"},
		{Text: "c", Unique: "region", Data: "2"},
		{Text: "back", Unique: "menu"},
	}
	markup := Grid(btns, 3)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("want 2 rows, got %d", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 3 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected row sizes %d/%d", len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[1]))
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "a" || first.Unique != "region" || first.Data != "0" {
		t.Fatalf("unexpected first button %+v", first)
	}
}

func TestGridClampsColumns(t *testing.T) {
	markup := Grid([]InlineBtn{{Text: "x", Unique: "x"}, {Text: "y", Unique: "y"}}, 0)
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected layout %+v", markup.InlineKeyboard)
	}
}

func TestRowsSkipsEmpty(t *testing.T) {
	markup := Rows([]InlineBtn{{Text: "prev", Unique: "prev"}, {Text: "next", Unique: "next"}}, nil, []InlineBtn{{Text: "menu", Unique: "menu"}})
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout %+v", markup.InlineKeyboard)
	}
}
