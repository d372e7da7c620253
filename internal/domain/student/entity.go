// Package student содержит доменную модель записи о студенте.
// Это ядро бизнес-логики - здесь нет внешних зависимостей, кроме движка валидации.
package student

import (
	"fmt"

	"github.com/alem-hub/student-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Field определяет поле записи. Значение совпадает с ключом в JSON-документе.
type Field string

const (
	FieldID     Field = "xh"
	FieldName   Field = "xm"
	FieldGender Field = "xb"
	FieldAge    Field = "nl"
	FieldMajor  Field = "zy"
)

// Label возвращает человекочитаемое название поля.
func (f Field) Label() string {
	switch f {
	case FieldID:
		return "id"
	case FieldName:
		return "name"
	case FieldGender:
		return "gender"
	case FieldAge:
		return "age"
	case FieldMajor:
		return "major"
	default:
		return string(f)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - запись о студенте. Порядок полей задаёт порядок ключей в JSON
// (xh, xm, xb, nl, zy) и не должен меняться: от него зависят старые файлы данных.
type Record struct {
	// ID - номер студента (xh), 12 цифр, уникален в хранилище.
	ID string `json:"xh" validate:"xh"`

	// Name - имя (xm); по нему идёт поиск "один ко многим".
	Name string `json:"xm" validate:"xm"`

	// Gender - пол (xb).
	Gender string `json:"xb" validate:"xb"`

	// Age - возраст (nl).
	Age int `json:"nl" validate:"nl"`

	// Major - специальность (zy).
	Major string `json:"zy" validate:"zy"`
}

// Update - частичное изменение записи. nil означает "поле не передано".
// Номер студента изменить нельзя.
type Update struct {
	Name   *string
	Gender *string
	Age    *int
	Major  *string
}

// IsEmpty возвращает true, если ни одно поле не передано.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Gender == nil && u.Age == nil && u.Major == nil
}

// ModifyReport описывает результат изменения по каждому полю.
type ModifyReport struct {
	// Applied - поля, которые прошли проверку и были записаны.
	Applied []Field

	// Rejected - поля, не прошедшие проверку; старое значение сохранено.
	Rejected map[Field]error
}

// Changed возвращает true, если хотя бы одно поле изменено.
func (r ModifyReport) Changed() bool {
	return len(r.Applied) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrDuplicateID - запись с таким номером уже существует.
	ErrDuplicateID = shared.NewDomainError("record", "Add", shared.ErrAlreadyExists, "duplicate id")

	// ErrRecordNotFound - запись с таким номером не найдена.
	ErrRecordNotFound = shared.NewDomainError("record", "Find", shared.ErrNotFound, "record not found")
)

// FieldError - ошибка проверки конкретного поля.
type FieldError struct {
	Field  Field
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field.Label(), fmt.Sprint(e.Value), e.Reason)
}

// Is позволяет проверять ошибку через errors.Is(err, shared.ErrValidation).
func (e *FieldError) Is(target error) bool {
	return target == shared.ErrValidation
}

// reasons - текст причины для каждого поля.
var reasons = map[Field]string{
	FieldID:     "must be exactly 12 digits",
	FieldName:   "must be non-empty without digits or punctuation",
	FieldGender: "must be one of 男/女/其他/M/m/F/f",
	FieldAge:    "must be between 1 and 150",
	FieldMajor:  "must be one of the listed majors",
}

// NewFieldError создаёт ошибку проверки поля со стандартной причиной.
func NewFieldError(field Field, value any) *FieldError {
	return &FieldError{Field: field, Value: value, Reason: reasons[field]}
}
