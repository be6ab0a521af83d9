package dashboard

import "github.com/mesh-intelligence/mytree/pkg/types"

type msgKey int

const (
	msgConfirmDeleteOne msgKey = iota
	msgConfirmDeleteMany
	msgDeletedOne
	msgDeletedMany
	msgDeletedPartial
)

var messages = map[string]map[msgKey]string{
	types.LanguageThai: {
		msgConfirmDeleteOne:  "คุณต้องการลบต้นไม้ #%d ใช่หรือไม่?",
		msgConfirmDeleteMany: "คุณต้องการลบ %d รายการที่เลือกใช่หรือไม่?",
		msgDeletedOne:        "ลบต้นไม้ #%d สำเร็จ",
		msgDeletedMany:       "ลบ %d รายการสำเร็จ",
		msgDeletedPartial:    "ลบสำเร็จ %d จาก %d รายการ",
	},
	types.LanguageEnglish: {
		msgConfirmDeleteOne:  "Delete tree #%d?",
		msgConfirmDeleteMany: "Delete %d selected trees?",
		msgDeletedOne:        "Deleted tree #%d",
		msgDeletedMany:       "Deleted %d trees",
		msgDeletedPartial:    "Deleted %d of %d trees",
	},
}

func (d *Dashboard) text(k msgKey) string {
	if m, ok := messages[d.cfg.Language]; ok {
		return m[k]
	}
	return messages[types.DefaultLanguage][k]
}
