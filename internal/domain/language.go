package domain

import "fmt"

// Language is a target language the user is practicing.
type Language string

const (
	LanguageEnglish Language = "us"
	LanguageSpanish Language = "sp"
	LanguageKorean  Language = "kr"
	LanguageChinese Language = "ch"
)

// DefaultLanguage is used when no settings have been stored yet.
const DefaultLanguage = LanguageKorean

// Languages lists every supported language in display order.
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageSpanish, LanguageKorean, LanguageChinese}
}

// ParseLanguage validates a stored or user-supplied language code.
func ParseLanguage(code string) (Language, error) {
	l := Language(code)
	if !l.Valid() {
		return "", fmt.Errorf("domain: unknown language %q", code)
	}
	return l, nil
}

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageSpanish, LanguageKorean, LanguageChinese:
		return true
	}
	return false
}

func (l Language) LocaleIdentifier() string {
	switch l {
	case LanguageSpanish:
		return "es_ES"
	case LanguageKorean:
		return "ko_KR"
	case LanguageChinese:
		return "zh_CN"
	default:
		return "en_US"
	}
}

// Description is the lowercase English name of the language.
func (l Language) Description() string {
	switch l {
	case LanguageSpanish:
		return "spanish"
	case LanguageKorean:
		return "korean"
	case LanguageChinese:
		return "chinese"
	default:
		return "english"
	}
}

// Title is Description with a leading capital.
func (l Language) Title() string {
	d := l.Description()
	return string(d[0]-'a'+'A') + d[1:]
}

// EnterMessage is the input placeholder shown to the user.
func (l Language) EnterMessage() string {
	switch l {
	case LanguageSpanish:
		return "Enter Message. Escribe un mensaje!"
	case LanguageKorean:
		return "Enter Message. 메시지 입력!"
	case LanguageChinese:
		return "Enter Message. 输入消息!"
	default:
		return "Enter Message"
	}
}
