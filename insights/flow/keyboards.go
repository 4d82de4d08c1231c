package flow

import (
	"fmt"
	"strconv"

	"github.com/m3rciful/insightbot/insights/domain"
)

func mainMenu() *Keyboard {
	return &Keyboard{Columns: 1, Buttons: []KeyButton{
		{Label: "➕ Создать новый инсайт", Action: ActNew},
		{Label: "🔍 Поиск и просмотр", Action: ActSearch},
		{Label: "📊 Экспорт в Excel", Action: ActExport},
		{Label: "ℹ️ О боте", Action: ActAbout},
	}}
}

func backToMenu(label string) *Keyboard {
	return &Keyboard{Columns: 1, Buttons: []KeyButton{{Label: label, Action: ActMenu}}}
}

// regionKeyboard buttons carry the region index; Cyrillic codes would eat
// into the 64-byte callback limit.
func regionKeyboard(counts map[string]int) *Keyboard {
	kb := &Keyboard{Columns: 2}
	for i, r := range domain.Regions {
		kb.Buttons = append(kb.Buttons, KeyButton{
			Label:  fmt.Sprintf("%s (%d)", r, counts[r]),
			Action: ActRegion,
			Arg:    strconv.Itoa(i),
		})
	}
	kb.Buttons = append(kb.Buttons, KeyButton{Label: "⬅️ Назад", Action: ActMenu})
	return kb
}

func industryKeyboard(counts map[string]int) *Keyboard {
	kb := &Keyboard{Columns: 1}
	for i, ind := range domain.Industries {
		kb.Buttons = append(kb.Buttons, KeyButton{
			Label:  fmt.Sprintf("%s (%d)", ind, counts[ind]),
			Action: ActIndustry,
			Arg:    strconv.Itoa(i),
		})
	}
	kb.Buttons = append(kb.Buttons, KeyButton{Label: "⬅️ Назад", Action: ActBackRegions})
	return kb
}

func attachKeyboard() *Keyboard {
	return &Keyboard{Columns: 1, Buttons: []KeyButton{
		{Label: "📎 Прикрепить файл", Action: ActAttach},
		{Label: "⏭️ Пропустить", Action: ActSkip},
	}}
}

func viewingKeyboard(s *Search) *Keyboard {
	kb := &Keyboard{Columns: 2}
	if s.Cursor > 0 {
		kb.Buttons = append(kb.Buttons, KeyButton{Label: "⬅️ Пред.", Action: ActPrev})
	}
	if s.Cursor < len(s.Results)-1 {
		kb.Buttons = append(kb.Buttons, KeyButton{Label: "Сл. ➡️", Action: ActNext})
	}
	if cur, ok := s.current(); ok && cur.HasAttachment() {
		kb.Buttons = append(kb.Buttons, KeyButton{Label: "📎 Файл", Action: ActFile})
	}
	kb.Buttons = append(kb.Buttons,
		KeyButton{Label: "🔍 К фильтрам", Action: ActFilters},
		KeyButton{Label: "🔙 Меню", Action: ActMenu},
	)
	return kb
}

func filtersKeyboard() *Keyboard {
	return &Keyboard{Columns: 1, Buttons: []KeyButton{
		{Label: "✏️ Изменить фильтры", Action: ActSearch},
		{Label: "🔙 В меню", Action: ActMenu},
	}}
}

// pick resolves a button index argument against list.
func pick(list []string, arg string) (string, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(list) {
		return "", false
	}
	return list[i], true
}
