package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "want").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "duplicate_field":
			return "フィールドが重複しています"
		case "missing_default":
			return "デフォルト値がありません"
		case "default_mismatch":
			return "デフォルト値の型がフィールド型と一致しません"
		case "unknown_capability":
			return "未知のケイパビリティです"
		case "not_orderable":
			return "順序付けできない型です"
		case "unbound_field":
			return "構造体フィールドに束縛されていません"
		case "unknown_field":
			return "未知のフィールドです"
		case "empty_record":
			return "フィールドがありません"
		case "invalid_type":
			return "型が不正です"
		case "unknown_key":
			return "未知のキーです"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "duplicate_field":
			return "duplicate field"
		case "missing_default":
			return "default value missing"
		case "default_mismatch":
			return "default value does not match field type"
		case "unknown_capability":
			return "unknown capability"
		case "not_orderable":
			return "field type does not support ordering"
		case "unbound_field":
			return "field is not bound to a struct field"
		case "unknown_field":
			return "unknown field"
		case "empty_record":
			return "record has no fields"
		case "invalid_type":
			return "invalid type"
		case "unknown_key":
			return "unknown key"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
