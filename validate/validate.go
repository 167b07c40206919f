// Package validate wraps struct-tag validation with english translations
// and the uuid helpers used for record ids.
package validate

import (
	"errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var (
	checker *validator.Validate
	trans   ut.Translator
)

func init() {
	checker = validator.New()
	trans, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(checker, trans)
}

// Check validates val against its struct tags, surfacing the first
// violation as a translated error.
func Check(val any) error {
	err := checker.Struct(val)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	if len(verrs) == 0 {
		return nil
	}

	return errors.New(verrs[0].Translate(trans))
}

// GenerateID produces a new record id.
func GenerateID() string {
	return uuid.NewString()
}

// CheckID rejects ids that are not well-formed uuids.
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}
