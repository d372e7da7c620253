package student

import (
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIELD PREDICATES
// Чистые функции без состояния: используются и хранилищем, и консолью
// (повторный ввод поля до тех пор, пока значение не станет корректным).
// ══════════════════════════════════════════════════════════════════════════════

const (
	// IDLength - длина номера студента (xh).
	IDLength = 12

	// MinAge и MaxAge - допустимый диапазон возраста (nl), включительно.
	MinAge = 1
	MaxAge = 150
)

// forbiddenNameRunes - знаки препинания, запрещённые в имени.
const forbiddenNameRunes = "!@#$%^&*()_=+[]{}|\\/<>?,.;:\"'"

var genders = []string{"男", "女", "其他", "M", "m", "F", "f"}

var majors = []string{
	"计算机科学与技术",
	"软件工程",
	"人工智能",
	"数据科学",
	"网络工程",
	"信息安全",
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func allASCIIDigits(s string) bool {
	for _, r := range s {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return true
}

// IsValidID проверяет номер студента: ровно 12 ASCII-цифр.
func IsValidID(s string) bool {
	return len(s) == IDLength && allASCIIDigits(s)
}

// IsValidName проверяет имя: непустое, без цифр и запрещённых знаков.
// Многобайтовые символы (например, китайские иероглифы) и пробелы допустимы.
func IsValidName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if isASCIIDigit(r) || strings.ContainsRune(forbiddenNameRunes, r) {
			return false
		}
	}
	return true
}

// IsValidAge проверяет, что возраст в диапазоне 1-150.
func IsValidAge(n int) bool {
	return n >= MinAge && n <= MaxAge
}

// IsValidAgeString проверяет, что строка возраста состоит только из цифр.
func IsValidAgeString(s string) bool {
	return s != "" && allASCIIDigits(s)
}

// ParseAge разбирает строку возраста. Возвращает false, если строка не из цифр
// или число не помещается в int. Диапазон здесь не проверяется.
func ParseAge(s string) (int, bool) {
	if !IsValidAgeString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsValidGender проверяет, что пол - один из 7 допустимых вариантов.
func IsValidGender(s string) bool {
	for _, g := range genders {
		if g == s {
			return true
		}
	}
	return false
}

// ValidMajors возвращает упорядоченный список допустимых специальностей.
// Каждый вызов возвращает новую копию.
func ValidMajors() []string {
	out := make([]string, len(majors))
	copy(out, majors)
	return out
}

// IsValidMajor проверяет, что специальность есть в списке ValidMajors.
func IsValidMajor(s string) bool {
	for _, m := range majors {
		if m == s {
			return true
		}
	}
	return false
}
