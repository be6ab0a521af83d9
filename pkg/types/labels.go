package types

import "strings"

var sexLabels = map[string]map[string]string{
	LanguageThai: {
		SexBisexual:   "สมบูรณ์เพศ",
		SexMale:       "ตัวผู้",
		SexFemale:     "ตัวเมีย",
		SexMonoecious: "แยกเพศในต้นเดียวกัน",
		SexMixed:      "ผสมหลายเพศ",
		SexUnknown:    "ไม่ระบุ/ไม่แน่ใจ",
	},
	LanguageEnglish: {
		SexBisexual:   "Bisexual",
		SexMale:       "Male",
		SexFemale:     "Female",
		SexMonoecious: "Monoecious",
		SexMixed:      "Mixed",
		SexUnknown:    "Unknown",
	},
}

var statusLabels = map[string]string{
	StatusAlive:     "Alive",
	StatusDead:      "Dead",
	StatusMoved:     "Moved",
	StatusOther:     "Other",
	StatusGrowing:   "Growing",
	StatusHarvested: "Harvested",
}

var actionLabels = map[string]map[string]string{
	LanguageThai: {
		ActionWater:       "รดน้ำ",
		ActionFeed:        "ให้ปุ๋ย",
		ActionFlush:       "ล้างราก",
		ActionPrune:       "ตัดแต่ง",
		ActionTrain:       "ดัดกิ่ง",
		ActionFlip:        "เปลี่ยนแสง",
		ActionHarvest:     "เก็บเกี่ยว",
		ActionDry:         "ตากแห้ง",
		ActionCure:        "บ่ม",
		ActionPhoto:       "ถ่ายรูป",
		ActionIssue:       "ปัญหา",
		ActionEnvironment: "สภาพแวดล้อม",
		ActionNote:        "บันทึก",
		ActionOther:       "อื่นๆ",
	},
	LanguageEnglish: {
		ActionWater:       "Water",
		ActionFeed:        "Feed",
		ActionFlush:       "Flush",
		ActionPrune:       "Prune",
		ActionTrain:       "Train",
		ActionFlip:        "Flip",
		ActionHarvest:     "Harvest",
		ActionDry:         "Dry",
		ActionCure:        "Cure",
		ActionPhoto:       "Photo",
		ActionIssue:       "Issue",
		ActionEnvironment: "Environment",
		ActionNote:        "Note",
		ActionOther:       "Other",
	},
}

// SexLabel returns the display label for sex in lang, or "-" when unknown.
func SexLabel(sex, lang string) string {
	if l, ok := sexLabels[lang][sex]; ok {
		return l
	}
	return "-"
}

// StatusLabel returns the display label for a status. Thai keeps the
// stored string; English translates the known values.
func StatusLabel(status, lang string) string {
	if lang == LanguageEnglish {
		if l, ok := statusLabels[status]; ok {
			return l
		}
	}
	if status == "" {
		return "-"
	}
	return status
}

// ActionLabel returns the display label for a log action type.
func ActionLabel(action, lang string) string {
	if l, ok := actionLabels[lang][action]; ok {
		return l
	}
	return action
}

// ParseStatus maps an English status label such as "alive" onto the stored
// value. Anything else is returned unchanged.
func ParseStatus(s string) string {
	for stored, label := range statusLabels {
		if strings.EqualFold(s, label) {
			return stored
		}
	}
	return s
}
