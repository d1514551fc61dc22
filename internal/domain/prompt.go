package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// QuestionPrompt is one of the daily writing prompts. The value is the
// English prompt text.
type QuestionPrompt string

const (
	PromptGratitude        QuestionPrompt = "What are you grateful for?"
	PromptActivity         QuestionPrompt = "What are you going to do today?"
	PromptGoal             QuestionPrompt = "What is your goal for today?"
	PromptPrayer           QuestionPrompt = "What is your prayer for today?"
	PromptHabitImprovement QuestionPrompt = "What is a habit you want to improve today?"
	PromptSimpleJoy        QuestionPrompt = "What is something simple that brings you joy?"
	PromptBestPartOfDay    QuestionPrompt = "What was the best part of your day?"
	PromptNewLearning      QuestionPrompt = "What is something new you learned today?"
	PromptRecentChallenge  QuestionPrompt = "What is a challenge you faced today, and how did you overcome it?"
)

const DefaultPrompt = PromptGratitude

var promptTranslations = map[QuestionPrompt]map[Language]string{
	PromptGratitude: {
		LanguageEnglish: "What are you grateful for today?",
		LanguageKorean:  "오늘 당신이 감사한 것은 무엇인가요?",
		LanguageSpanish: "¿Por qué estás agradecido hoy?",
		LanguageChinese: "今天你为什么感激？",
	},
	PromptActivity: {
		LanguageEnglish: "What are you going to do today?",
		LanguageKorean:  "오늘 무엇을 할 예정인가요?",
		LanguageSpanish: "¿Qué vas a hacer hoy?",
		LanguageChinese: "今天你打算做什么？",
	},
	PromptGoal: {
		LanguageEnglish: "What is your goal for today?",
		LanguageKorean:  "오늘의 목표는 무엇인가요?",
		LanguageSpanish: "¿Cuál es tu objetivo para hoy?",
		LanguageChinese: "今天你的目标是什么？",
	},
	PromptPrayer: {
		LanguageEnglish: "What is your prayer for today?",
		LanguageKorean:  "오늘의 기도는 무엇인가요?",
		LanguageSpanish: "¿Cuál es tu oración para hoy?",
		LanguageChinese: "今天你的祈祷是什么？",
	},
	PromptHabitImprovement: {
		LanguageEnglish: "What habit did you improve today?",
		LanguageKorean:  "오늘 어떤 습관을 개선했나요?",
		LanguageSpanish: "¿Qué hábito mejoraste hoy?",
		LanguageChinese: "今天你改善了什么习惯？",
	},
	PromptSimpleJoy: {
		LanguageEnglish: "What is something simple that brings you joy?",
		LanguageKorean:  "당신에게 기쁨을 주는 간단한 것이 무엇인가요?",
		LanguageSpanish: "¿Qué cosa simple te da alegría?",
		LanguageChinese: "什么简单的事情能带给你快乐？",
	},
	PromptBestPartOfDay: {
		LanguageEnglish: "What was the best part of your day?",
		LanguageKorean:  "오늘 하루 중 가장 좋은 부분은 무엇인가요?",
		LanguageSpanish: "¿Cuál fue la mejor parte de tu día?",
		LanguageChinese: "今天你一天中最棒的部分是什么？",
	},
	PromptNewLearning: {
		LanguageEnglish: "What is something new you learned today?",
		LanguageKorean:  "오늘 새로 배운 것은 무엇인가요?",
		LanguageSpanish: "¿Qué aprendiste de nuevo hoy?",
		LanguageChinese: "今天你学到了什么新知识？",
	},
	PromptRecentChallenge: {
		LanguageEnglish: "What is a challenge you faced today, and how did you overcome it?",
		LanguageKorean:  "오늘 당신이 직면한 도전은 무엇이었고, 그것을 어떻게 극복했나요?",
		LanguageSpanish: "¿Cuál fue el desafío que enfrentaste hoy y cómo lo superaste?",
		LanguageChinese: "今天你面对的挑战是什么？你是如何克服它的？",
	},
}

// Prompts lists the catalog in display order.
func Prompts() []QuestionPrompt {
	return []QuestionPrompt{
		PromptGratitude,
		PromptActivity,
		PromptGoal,
		PromptPrayer,
		PromptHabitImprovement,
		PromptSimpleJoy,
		PromptBestPartOfDay,
		PromptNewLearning,
		PromptRecentChallenge,
	}
}

// RandomPrompt picks a prompt uniformly from the catalog.
func RandomPrompt() QuestionPrompt {
	all := Prompts()
	return all[rand.IntN(len(all))]
}

func ParsePrompt(s string) (QuestionPrompt, error) {
	p := QuestionPrompt(s)
	if !p.Valid() {
		return "", fmt.Errorf("domain: unknown prompt %q", s)
	}
	return p, nil
}

func (p QuestionPrompt) Valid() bool {
	_, ok := promptTranslations[p]
	return ok
}

// Translated returns the prompt in the given language, falling back to the
// English text.
func (p QuestionPrompt) Translated(l Language) string {
	if t, ok := promptTranslations[p][l]; ok {
		return t
	}
	return string(p)
}

// WelcomeText is the first bot message of a session.
func WelcomeText(l Language, p QuestionPrompt) string {
	text := fmt.Sprintf(
		"Hi there! I'm here to help you learn %s by asking you a prompt each day. "+
			"Don't worry if you get it wrong; I'll be here to help you out! Let's begin.\n\n%s",
		l.Title(),
		p.Translated(l),
	)
	return strings.TrimSpace(text)
}

// SystemInstruction steers the model toward correcting the user's answer.
func SystemInstruction(l Language, p QuestionPrompt) string {
	return fmt.Sprintf(
		"The user is trying to learn %s. Please provide them with corrections to their answer to the prompt '%s'. Please respond to them in English.",
		l.Description(),
		strings.ToLower(string(p)),
	)
}
