package handlers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/go-telegram/bot/models"
)

// Префиксы callback data. Длина данных ограничена 64 байтами,
// поэтому в кнопку кладётся не больше одного uuid.
const (
	cbWeek       = "week:"    // week:2024-06-02
	cbPick       = "pick:"    // pick:<slot_id>
	cbBook       = "book"     // подтвердить выбранные слоты
	cbClear      = "clear"    // сбросить выбор
	cbCancel     = "cancel:"  // cancel:<booking_id>
	cbReschedule = "resched:" // resched:<booking_id>
	cbMoveTo     = "moveto:"  // moveto:<slot_id>
	cbHomework   = "hw:"      // hw:<homework_id>
	cbDeleteSlot = "dslot:"   // dslot:<slot_id>
	cbForceSlot  = "fslot:"   // fslot:<slot_id>, удалить вместе с записями
	cbTeachWeek  = "tweek:"   // tweek:2024-06-02
	cbNoop       = "noop"
)

// keyboardBuilder упрощает создание inline клавиатур
type keyboardBuilder struct {
	rows [][]models.InlineKeyboardButton
}

func newKeyboard() *keyboardBuilder {
	return &keyboardBuilder{}
}

// Row добавляет ряд кнопок; пустые ряды пропускаются
func (k *keyboardBuilder) Row(buttons ...models.InlineKeyboardButton) *keyboardBuilder {
	if len(buttons) > 0 {
		k.rows = append(k.rows, buttons)
	}
	return k
}

// Grid раскладывает кнопки по perRow в ряд
func (k *keyboardBuilder) Grid(buttons []models.InlineKeyboardButton, perRow int) *keyboardBuilder {
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		k.Row(buttons[start:end]...)
	}
	return k
}

func (k *keyboardBuilder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: k.rows}
}

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func idButton(text, prefix string, id uuid.UUID) models.InlineKeyboardButton {
	return button(text, prefix+id.String())
}

// parseID извлекает uuid из callback data вида "prefix:<uuid>"
func parseID(data, prefix string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("callback %q: missing prefix %q", data, prefix)
	}
	return uuid.Parse(raw)
}
