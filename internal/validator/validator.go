package validator

import (
	"reflect"
	"strings"

	"github.com/examstack/exam-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with question-level rules.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct-tag validation plus question rules when s is a
// question.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}
	if q, ok := s.(*models.Question); ok {
		return v.questionValidator.ValidateQuestion(q)
	}
	return nil
}

// Question returns the question validator.
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("session_status", validateSessionStatus)

	// report json tag names in validation errors instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	_, ok := models.NormalizeQuestionType(fl.Field().String())
	return ok
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	return models.SessionStatus(fl.Field().String()).Valid()
}
