// Package i18n localizes the short messages attached to item issues.
package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes. data carries
// optional detail; the built-in translator appends data["detail"].
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"construction":      "cannot construct item",
		"invalid_type":      "invalid type",
		"invalid_format":    "no format matches",
		"conflict":          "conflicting relation",
		"configuration":     "invalid schema declaration",
		"invalid_reference": "invalid reference",
	},
	"ja": {
		"construction":      "アイテムを構築できません",
		"invalid_type":      "型が不正です",
		"invalid_format":    "一致する書式がありません",
		"conflict":          "リレーションが競合しています",
		"configuration":     "スキーマ定義が不正です",
		"invalid_reference": "参照が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		msg = code
	}
	if d := data["detail"]; d != "" {
		return msg + ": " + d
	}
	return msg
}

var current atomic.Value // Translator

func init() { current.Store(holder{dictTranslator{lang: "en"}}) }

// holder keeps the stored concrete type stable for atomic.Value.
type holder struct{ Translator }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := messages[lang]; !ok {
		lang = "en"
	}
	current.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation. nil restores the
// English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(holder).Message(code, data)
}
