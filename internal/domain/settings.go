package domain

import (
	"errors"
	"fmt"
)

// RepeatSchedule controls how often a reminder fires.
type RepeatSchedule string

const (
	RepeatDaily  RepeatSchedule = "daily"
	RepeatWeekly RepeatSchedule = "weekly"
)

// NotificationSchedule is one stored reminder. Weekday uses 1 (Sunday)
// through 7 (Saturday) and is 0 for daily reminders.
type NotificationSchedule struct {
	Weekday int            `json:"weekday"`
	Hour    int            `json:"hour"`
	Minute  int            `json:"minute"`
	Repeat  RepeatSchedule `json:"repeatSchedule"`
}

func (s NotificationSchedule) Validate() error {
	switch s.Repeat {
	case RepeatDaily:
		if s.Weekday != 0 {
			return fmt.Errorf("domain: daily schedule must not set weekday (got %d)", s.Weekday)
		}
	case RepeatWeekly:
		if s.Weekday < 1 || s.Weekday > 7 {
			return fmt.Errorf("domain: weekly schedule weekday %d out of range", s.Weekday)
		}
	default:
		return fmt.Errorf("domain: unknown repeat schedule %q", s.Repeat)
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("domain: hour %d out of range", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("domain: minute %d out of range", s.Minute)
	}
	return nil
}

// Settings is everything the client persists locally.
type Settings struct {
	Language   Language
	Prompt     QuestionPrompt
	ReminderOn bool
	Schedules  []NotificationSchedule
	DeviceID   string
}

// DefaultSettings mirrors a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Prompt:   DefaultPrompt,
	}
}

func (s Settings) Validate() error {
	if !s.Language.Valid() {
		return fmt.Errorf("domain: unknown language %q", s.Language)
	}
	if !s.Prompt.Valid() {
		return fmt.Errorf("domain: unknown prompt %q", s.Prompt)
	}
	for i, sch := range s.Schedules {
		if err := sch.Validate(); err != nil {
			return fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	if s.ReminderOn && len(s.Schedules) == 0 {
		return errors.New("domain: reminders enabled without a schedule")
	}
	return nil
}
