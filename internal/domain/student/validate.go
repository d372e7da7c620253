package student

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// recordValidate - движок валидации структур с пользовательскими тегами,
// привязанными к предикатам из validator.go.
var recordValidate *validator.Validate

// precedence - порядок, в котором сообщается первая ошибка:
// номер, возраст, пол, специальность, затем имя.
var precedence = []Field{FieldID, FieldAge, FieldGender, FieldMajor, FieldName}

func init() {
	recordValidate = validator.New(validator.WithRequiredStructEnabled())

	rules := map[string]func(fl validator.FieldLevel) bool{
		string(FieldID):     func(fl validator.FieldLevel) bool { return IsValidID(fl.Field().String()) },
		string(FieldName):   func(fl validator.FieldLevel) bool { return IsValidName(fl.Field().String()) },
		string(FieldGender): func(fl validator.FieldLevel) bool { return IsValidGender(fl.Field().String()) },
		string(FieldAge):    func(fl validator.FieldLevel) bool { return IsValidAge(int(fl.Field().Int())) },
		string(FieldMajor):  func(fl validator.FieldLevel) bool { return IsValidMajor(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := recordValidate.RegisterValidation(tag, fn); err != nil {
			panic("student: register validation " + tag + ": " + err.Error())
		}
	}
}

// Validate проверяет все пять полей записи.
// Возвращает *FieldError для первого неверного поля (в порядке precedence) или nil.
func (r Record) Validate() error {
	err := recordValidate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	failed := make(map[Field]any, len(verrs))
	for _, fe := range verrs {
		failed[Field(fe.Tag())] = fe.Value()
	}
	for _, f := range precedence {
		if v, ok := failed[f]; ok {
			return NewFieldError(f, v)
		}
	}
	return NewFieldError(Field(verrs[0].Tag()), verrs[0].Value())
}
