package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// Константы валидации
const (
	MinEngagementTitleLength        = 3
	MaxEngagementTitleLength        = 200
	MaxEngagementDescriptionLength  = 5000
	MinDeliverableTitleLength       = 1
	MaxDeliverableTitleLength       = 200
	MaxDeliverableDescriptionLength = 5000
	MaxChangeNotesLength            = 2000
	MinFeedbackBodyLength           = 1
	MaxFeedbackBodyLength           = 5000
	MaxReasonLength                 = 1000
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return apperror.Validation(fmt.Sprintf("%s должен быть не менее %d символов", fieldName, min))
	}
	if max > 0 && length > max {
		return apperror.Validation(fmt.Sprintf("%s должен быть не более %d символов", fieldName, max))
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation(fmt.Sprintf("%s не может быть пустым", fieldName))
	}
	return nil
}

// ValidateOptional проверяет длину необязательного поля.
func ValidateOptional(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidateEngagement проверяет заголовок и описание проекта.
func ValidateEngagement(title, description string) error {
	if err := ValidateNonEmpty("заголовок проекта", title); err != nil {
		return err
	}
	if err := ValidateLength("заголовок проекта", strings.TrimSpace(title), MinEngagementTitleLength, MaxEngagementTitleLength); err != nil {
		return err
	}
	return ValidateLength("описание проекта", description, 0, MaxEngagementDescriptionLength)
}

// ValidateDeliverable проверяет метаданные версии результата.
func ValidateDeliverable(title string, description, changeNotes *string) error {
	if err := ValidateNonEmpty("заголовок версии", title); err != nil {
		return err
	}
	if err := ValidateLength("заголовок версии", strings.TrimSpace(title), MinDeliverableTitleLength, MaxDeliverableTitleLength); err != nil {
		return err
	}
	if err := ValidateOptional("описание версии", description, MaxDeliverableDescriptionLength); err != nil {
		return err
	}
	return ValidateOptional("описание изменений", changeNotes, MaxChangeNotesLength)
}

// ValidateFeedbackBody проверяет текст комментария.
func ValidateFeedbackBody(body string) error {
	if err := ValidateNonEmpty("текст комментария", body); err != nil {
		return err
	}
	return ValidateLength("текст комментария", strings.TrimSpace(body), MinFeedbackBodyLength, MaxFeedbackBodyLength)
}

// NormalizeOptional обрезает пробелы и превращает пустую строку в nil.
func NormalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
