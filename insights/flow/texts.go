package flow

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/insightbot/core/telegram/format"
	"github.com/m3rciful/insightbot/insights/domain"
)

// Messages use legacy Markdown; user-provided values go through format.MD.

const (
	textMainMenu        = "📌 Главное меню:\n\nВыберите действие:"
	textCancelled       = "❌ Операция отменена"
	textChooseRegion    = "🗺️ Выберите макрорегион:"
	textChooseRegionFor = "🗺️ Выберите макрорегион для поиска:"
	textChooseIndustry  = "🏭 Выберите отрасль:"
	textAskTheme        = "📝 Введите тему инсайта (максимум 255 символов):"
	textThemeTooLong    = "❌ Тема слишком длинная (максимум 255 символов)"
	textThemeEmpty      = "❌ Тема не может быть пустой"
	textAskDescription  = "📄 Введите подробное описание инсайта:"
	textDescEmpty       = "❌ Описание не может быть пустым"
	textAttachChoice    = "📎 *Финальный шаг*\n\nХотите прикрепить файл к инсайту?\nВы можете отправить документ или фотографию."
	textSendFile        = "📤 Отправьте файл (документ или фото).\nИспользуйте /cancel для отмены."
	textExpectText      = "✍️ Отправьте ответ текстом или используйте /cancel для отмены."
	textExpectFile      = "📤 Ожидается документ или фото. Используйте /cancel для отмены."
	textUseButtons      = "👆 Используйте кнопки выше или /cancel для отмены."
	textStale           = "⚠️ Кнопка устарела. Откройте меню: /start"
	textNoExportData    = "❌ Нет данных для экспорта"
	textExportFailed    = "❌ Ошибка при экспорте данных"
	textDownloadFailed  = "❌ Ошибка при скачивании файла"
	textNoFile          = "📎 У этого инсайта нет файла"
	textUnknown         = "🤔 Не понимаю. Откройте меню командой /start или /help."
	textAdminOnly       = "⛔ Команда доступна только администратору"
	textRateLimited     = "⏳ Слишком часто. Попробуйте через секунду."
)

const textHelp = `🤖 *Доступные команды:*

/start — Главное меню и приветствие
/help — Эта справка
/cancel — Отмена текущей операции

📌 *Основные функции:*

➕ *Создать новый инсайт*
   Пошаговое заполнение:
   1. Выберите макрорегион
   2. Выберите отрасль
   3. Введите тему
   4. Введите описание
   5. Прикрепите файл или пропустите
   ✅ Инсайт сохранен!

🔍 *Поиск и просмотр*
   1. Выберите макрорегион
   2. Выберите отрасль
   3. Просмотрите найденные инсайты
   4. Листайте результаты, скачивайте файлы

📊 *Экспорт в Excel*
   Выгрузите все сохраненные инсайты в один файл

ℹ️ *О боте*
   Получите подробную информацию о приложении`

const textAbout = `ℹ️ *О Insights Bot*

🎯 *Назначение:*
Управление и анализ деловых инсайтов по макрорегионам и отраслям экономики.

📊 *Функциональность:*
✅ Создание и сохранение инсайтов
✅ Гибкая фильтрация по регионам и отраслям
✅ Экспорт данных в Excel с форматированием
✅ Прикрепление файлов и документов

🌍 *Поддерживаемые макрорегионы:*
` + "МСК, ЦФО, СЗФО, УФО, ЮФО, ПФО, СДФО, СНГ" + `

🏭 *Поддерживаемые отрасли:*
` + "Оборона, Промышленность, Торговля, Банки, Нефть и газ, Энергетика"

// maxShownDescription keeps a rendered record under Telegram's message limit.
const maxShownDescription = 3000

func welcomeText(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "друг"
	}
	return "🎉 Добро пожаловать в Insights Bot!\n\n" +
		"👋 Привет, " + format.MD(name) + "!\n\n" +
		"Это приложение предназначено для управления деловыми инсайтами по макрорегионам и отраслям экономики.\n\n" +
		"✏️ *Создать инсайт* — добавить наблюдение, факт или аналитику\n" +
		"🔍 *Поиск и просмотр* — найти сохраненные инсайты\n" +
		"📊 *Экспорт в Excel* — выгрузить все данные в таблицу\n\n" +
		"⬇️ Выберите действие ниже, чтобы начать:"
}

func createdText(in domain.Insight) string {
	var b strings.Builder
	b.WriteString("✅ *Инсайт успешно создан!*\n\n")
	fmt.Fprintf(&b, "📝 Тема: %s\n", format.MD(in.Theme))
	fmt.Fprintf(&b, "🗺️ Макрорегион: %s\n", in.MacroRegion)
	fmt.Fprintf(&b, "🏭 Отрасль: %s", in.Industry)
	switch {
	case in.IsPhoto():
		b.WriteString("\n📸 Фото прикреплено")
	case in.HasAttachment():
		fmt.Fprintf(&b, "\n📎 Файл: %s", format.MD(format.StringOr(in.AttachmentFilename, "")))
	}
	return b.String()
}

func saveFailedText(err error) string {
	return "❌ Ошибка при сохранении инсайта:\n" + format.MD(err.Error())
}

func noRecordsText(f domain.Filter) string {
	return "😔 Записей не найдено\n\n" +
		"🗺️ Регион: " + f.MacroRegion + "\n" +
		"🏭 Отрасль: " + f.Industry + "\n\n" +
		"Создайте первый инсайт!"
}

func insightText(in domain.Insight, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 *Инсайт %d из %d*\n\n", index+1, total)
	fmt.Fprintf(&b, "📅 Дата: %s\n", in.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "📝 Тема: %s\n", format.MD(in.Theme))
	fmt.Fprintf(&b, "📄 Описание: %s\n", format.MD(truncate(in.Description, maxShownDescription)))
	fmt.Fprintf(&b, "🗺️ Макрорегион: %s\n", in.MacroRegion)
	fmt.Fprintf(&b, "🏭 Отрасль: %s", in.Industry)
	return b.String()
}

func filtersText(f domain.Filter) string {
	return "🔍 *Текущие фильтры:*\n\n" +
		"🗺️ Регион: " + f.MacroRegion + "\n" +
		"🏭 Отрасль: " + f.Industry + "\n\n" +
		"Хотите изменить фильтры?"
}

func attachmentCaption(in domain.Insight) string {
	return "📎 Файл из инсайта: " + in.Theme
}

func exportCaption(n int) string {
	return fmt.Sprintf("📊 Экспорт инсайтов (%d записей)\n\nФайл содержит все сохраненные данные с форматированием.", n)
}

func statsText(total int, regions, industries map[string]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Статистика*\n\nВсего инсайтов: %d\n\n🗺️ *По макрорегионам:*\n", total)
	for _, r := range domain.Regions {
		fmt.Fprintf(&b, "%s: %d\n", r, regions[r])
	}
	b.WriteString("\n🏭 *По отраслям:*\n")
	for i, ind := range domain.Industries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d", ind, industries[ind])
	}
	return b.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}

// UnknownText is the reply for messages outside any dialog.
func UnknownText() string { return textUnknown }

// AdminOnlyText is the reply for rejected admin commands.
func AdminOnlyText() string { return textAdminOnly }

// RateLimitedText is the reply for throttled updates.
func RateLimitedText() string { return textRateLimited }

// StaleText is the alert for buttons that no longer match the dialog.
func StaleText() string { return textStale }
