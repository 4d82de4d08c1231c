package flow

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/insightbot/insights/domain"
)

func TestTruncateIsRuneSafe(t *testing.T) {
	require.Equal(t, "абв", truncate("абв", 3))
	out := truncate(strings.Repeat("ж", 10), 4)
	require.True(t, utf8.ValidString(out))
	require.Equal(t, "жжжж…", out)
}

func TestInsightTextEscapesUserInput(t *testing.T) {
	in := domain.Insight{
		CreatedAt:   time.Date(2025, 2, 3, 23, 59, 0, 0, time.UTC),
		Theme:       "rate_cut *soon*",
		Description: strings.Repeat("x", maxShownDescription+10),
		MacroRegion: "ПФО",
		Industry:    "Нефть и газ",
	}
	txt := insightText(in, 1, 4)
	require.Contains(t, txt, "Инсайт 2 из 4")
	require.Contains(t, txt, "2025-02-03")
	require.Contains(t, txt, `rate\_cut \*soon\*`)
	require.Contains(t, txt, "…")
	require.Contains(t, txt, "Нефть и газ")
}

func TestStatsTextListsEveryAxisValue(t *testing.T) {
	txt := statsText(5, map[string]int{"УФО": 5}, map[string]int{"Торговля": 5})
	for _, r := range domain.Regions {
		require.Contains(t, txt, r+": ")
	}
	for _, ind := range domain.Industries {
		require.Contains(t, txt, ind+": ")
	}
	require.Contains(t, txt, "УФО: 5")
	require.Contains(t, txt, "СНГ: 0")
}
