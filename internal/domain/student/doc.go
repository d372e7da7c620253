// Package student содержит доменную модель записи о студенте.
//
// Пакет определяет:
//
//   - Сущность Record (xh, xm, xb, nl, zy) и частичное изменение Update
//   - Предикаты проверки полей: IsValidID, IsValidName, IsValidAge,
//     IsValidAgeString, IsValidGender, IsValidMajor, ValidMajors
//   - Ошибки: FieldError, ErrDuplicateID, ErrRecordNotFound
//   - Интерфейс Gateway для сохранения набора записей
//
// # Проверка записи
//
// Предикаты - чистые функции без состояния. Record.Validate собирает их
// через go-playground/validator и возвращает ошибку первого неверного поля:
//
//	r := Record{ID: "202312345678", Name: "张三", Gender: "男", Age: 20, Major: "软件工程"}
//	if err := r.Validate(); err != nil {
//	    var fe *FieldError
//	    if errors.As(err, &fe) {
//	        fmt.Println("bad field:", fe.Field.Label())
//	    }
//	}
//
// Консоль использует те же предикаты для повторного ввода поля ещё до
// обращения к хранилищу.
package student
