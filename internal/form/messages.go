package form

import "github.com/mesh-intelligence/mytree/pkg/types"

type msgKey int

const (
	msgStrainRequired msgKey = iota
	msgStrainUnknown
	msgStatusRequired
	msgSexRequired
	msgPlantDateRequired
	msgYieldNegative
	msgSeedCountNegative
	msgNameRequired
	msgNameDuplicate
	msgBatchCodeRequired
	msgBatchCodeDuplicate
	msgActionInvalid
	msgActionDateRequired
)

var messages = map[string]map[msgKey]string{
	types.LanguageThai: {
		msgStrainRequired:     "กรุณาเลือกสายพันธุ์",
		msgStrainUnknown:      "กรุณาเลือกสายพันธุ์ที่มีอยู่ในระบบ",
		msgStatusRequired:     "กรุณาเลือกสถานะ",
		msgSexRequired:        "กรุณาเลือกเพศ",
		msgPlantDateRequired:  "กรุณาเลือกวันที่ปลูก",
		msgYieldNegative:      "ปริมาณผลผลิตต้องไม่ติดลบ",
		msgSeedCountNegative:  "จำนวนเมล็ดต้องไม่ติดลบ",
		msgNameRequired:       "กรุณากรอกชื่อสายพันธุ์",
		msgNameDuplicate:      "ชื่อสายพันธุ์นี้มีอยู่แล้ว",
		msgBatchCodeRequired:  "กรุณากรอกรหัสชุด",
		msgBatchCodeDuplicate: "รหัสชุดนี้มีอยู่แล้ว",
		msgActionInvalid:      "ประเภทกิจกรรมไม่ถูกต้อง",
		msgActionDateRequired: "กรุณาเลือกวันที่",
	},
	types.LanguageEnglish: {
		msgStrainRequired:     "Please choose a strain",
		msgStrainUnknown:      "Please choose a strain that exists",
		msgStatusRequired:     "Please choose a status",
		msgSexRequired:        "Please choose a sex",
		msgPlantDateRequired:  "Please choose a plant date",
		msgYieldNegative:      "Yield must not be negative",
		msgSeedCountNegative:  "Seed count must not be negative",
		msgNameRequired:       "Strain name is required",
		msgNameDuplicate:      "A strain with this name already exists",
		msgBatchCodeRequired:  "Batch code is required",
		msgBatchCodeDuplicate: "A batch with this code already exists",
		msgActionInvalid:      "Unknown action type",
		msgActionDateRequired: "Please choose a date",
	},
}

func message(lang string, k msgKey) string {
	if m, ok := messages[lang]; ok {
		return m[k]
	}
	return messages[types.DefaultLanguage][k]
}

func invalid(lang, field string, k msgKey) error {
	return &types.ValidationError{Field: field, Message: message(lang, k)}
}

func duplicate(lang, field string, k msgKey) error {
	return &types.ValidationError{Field: field, Message: message(lang, k), Reason: types.ErrDuplicateName}
}
