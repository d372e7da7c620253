// Package console is the interactive text menu over the record store.
// It reads one line per prompt and writes prompts, results and the record
// table to the output stream.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/pkg/logger"
)

// Store is the part of the record store the menu drives.
type Store interface {
	Add(r student.Record) error
	FindByName(name string) []student.Record
	DeleteByID(id string) bool
	Modify(id string, u student.Update) (student.ModifyReport, error)
	SearchByMajor(major string) []student.Record
	ListAll() []student.Record
	Count() int
	Save(ctx context.Context) error
}

// errQuit is returned by prompts when the user types q.
var errQuit = errors.New("console: quit")

// Menu runs the main loop.
type Menu struct {
	store Store
	in    *bufio.Reader
	view  *presenter
	log   *logger.Logger
}

// New creates a Menu reading from in and writing to out.
func New(store Store, in io.Reader, out io.Writer, log *logger.Logger) *Menu {
	if log == nil {
		log = logger.Nop()
	}
	return &Menu{
		store: store,
		in:    bufio.NewReader(in),
		view:  newPresenter(out),
		log:   log.With(logger.Component("console")),
	}
}

// Run shows the menu until the user picks 0, types q, or input ends; each of
// those saves the store. A failed save is reported and returned.
func (m *Menu) Run(ctx context.Context) error {
	m.view.println(fmt.Sprintf("系统启动，已加载 %d 条数据", m.store.Count()))

	for {
		m.view.mainMenu()
		choice, err := m.readInt("请选择: ")
		if err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return m.saveAndExit(ctx)
			}
			return err
		}

		m.log.Debug("menu choice", logger.Int("choice", choice))

		switch choice {
		case 1:
			err = m.handleAdd()
		case 2:
			err = m.handleDelete()
		case 3:
			err = m.handleModify()
		case 4:
			err = m.handleSearch()
		case 5:
			m.view.records(m.store.ListAll())
		case 0:
			return m.saveAndExit(ctx)
		default:
			m.view.failure("无效选项，请输入 0-5")
		}

		switch {
		case err == nil, errors.Is(err, errQuit):
		case errors.Is(err, io.EOF):
			return m.saveAndExit(ctx)
		default:
			return err
		}
	}
}

func (m *Menu) saveAndExit(ctx context.Context) error {
	if err := m.store.Save(ctx); err != nil {
		m.view.warning("警告：保存失败！")
		return err
	}
	m.view.println("数据已保存，再见！")
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Input
// ─────────────────────────────────────────────────────────────────────────────

// readLine prints prompt and returns the next line without its terminator.
// A final line without a newline is still returned; io.EOF comes after it.
func (m *Menu) readLine(prompt string) (string, error) {
	m.view.print(prompt)

	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isQuit(s string) bool {
	return s == "q" || s == "Q"
}

// readField reads a line and maps q to errQuit.
func (m *Menu) readField(prompt string) (string, error) {
	s, err := m.readLine(prompt)
	if err != nil {
		return "", err
	}
	if isQuit(s) {
		return "", errQuit
	}
	return s, nil
}

// readInt re-prompts until the line is a number or q.
func (m *Menu) readInt(prompt string) (int, error) {
	for {
		s, err := m.readField(prompt)
		if err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			m.view.failure("不能为空，请重新输入")
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			m.view.failure("请输入有效数字")
			continue
		}
		return n, nil
	}
}

// readValid re-prompts until check accepts the line, printing the empty or
// invalid message otherwise.
func (m *Menu) readValid(prompt, emptyMsg, invalidMsg string, check func(string) bool) (string, error) {
	for {
		s, err := m.readField(prompt)
		if err != nil {
			return "", err
		}
		if s == "" {
			m.view.failure(emptyMsg)
			continue
		}
		if !check(s) {
			m.view.failure(invalidMsg)
			continue
		}
		return s, nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// 1. Add
// ─────────────────────────────────────────────────────────────────────────────

func (m *Menu) handleAdd() error {
	m.view.section("录入学生 (任意输入项输入 q 可退出)")

	for {
		r, err := m.readRecord()
		if err != nil {
			return err
		}

		switch err := m.store.Add(r); {
		case err == nil:
			m.view.success(fmt.Sprintf("添加成功，当前共 %d 人", m.store.Count()))
		case errors.Is(err, student.ErrDuplicateID):
			m.view.failure("失败: 学号已存在")
		default:
			m.view.failure("失败: " + addFailure(err))
		}
		m.view.println("")
	}
}

func (m *Menu) readRecord() (student.Record, error) {
	var (
		r   student.Record
		err error
	)

	r.ID, err = m.readValid("学号(12位数字): ",
		"学号不能为空，请重新输入", "学号必须是12位数字，请重新输入", student.IsValidID)
	if err != nil {
		return r, err
	}

	r.Name, err = m.readValid("姓名: ",
		"姓名不能为空，请重新输入", "姓名不能包含数字或特殊符号，请重新输入", student.IsValidName)
	if err != nil {
		return r, err
	}

	r.Gender, err = m.readValid("性别(男/女/其他/M/F): ",
		"性别不能为空，请重新输入", "性别只能是: 男/女/其他/M/F，请重新输入", student.IsValidGender)
	if err != nil {
		return r, err
	}

	r.Age, err = m.readAge()
	if err != nil {
		return r, err
	}

	for {
		m.view.majors()
		r.Major, err = m.readField("专业: ")
		if err != nil {
			return r, err
		}
		if r.Major == "" {
			m.view.failure("专业不能为空，请重新输入")
			continue
		}
		if !student.IsValidMajor(r.Major) {
			m.view.failure("专业必须从上述列表中选择，请重新输入")
			continue
		}
		return r, nil
	}
}

func (m *Menu) readAge() (int, error) {
	for {
		s, err := m.readField("年龄(1-150): ")
		if err != nil {
			return 0, err
		}
		if s == "" {
			m.view.failure("年龄不能为空，请重新输入")
			continue
		}
		if !student.IsValidAgeString(s) {
			m.view.failure("年龄必须是纯数字，请重新输入")
			continue
		}
		age, ok := student.ParseAge(s)
		if !ok || !student.IsValidAge(age) {
			m.view.failure("年龄必须在1-150之间，请重新输入")
			continue
		}
		return age, nil
	}
}

// addFailure maps a field error to the message the add form shows.
func addFailure(err error) string {
	var fe *student.FieldError
	if !errors.As(err, &fe) {
		return err.Error()
	}
	switch fe.Field {
	case student.FieldID:
		return "学号格式错误（需12位数字）"
	case student.FieldAge:
		return "年龄范围错误（1-150）"
	case student.FieldGender:
		return "性别格式错误（男/女/其他/M/F）"
	case student.FieldMajor:
		return "专业不在允许列表中"
	default:
		return "姓名格式错误"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// 2. Delete / 3. Modify
// ─────────────────────────────────────────────────────────────────────────────

// pick asks for a name, lists matches and returns the chosen record.
// ok is false when nothing was chosen.
func (m *Menu) pick(namePrompt, indexPrompt string, withMajor bool) (r student.Record, ok bool, err error) {
	name, err := m.readField(namePrompt)
	if err != nil {
		return r, false, err
	}

	matches := m.store.FindByName(name)
	if len(matches) == 0 {
		m.view.println(fmt.Sprintf("未找到姓名为「%s」的学生", name))
		return r, false, nil
	}
	m.view.matches(matches, withMajor)

	idx, err := m.readInt(indexPrompt)
	if err != nil {
		return r, false, err
	}
	if idx == 0 {
		return r, false, nil
	}
	if idx < 1 || idx > len(matches) {
		m.view.failure("无效序号")
		return r, false, nil
	}
	return matches[idx-1], true, nil
}

func (m *Menu) handleDelete() error {
	m.view.section("删除学生 (输入 q 可退出)")

	r, ok, err := m.pick("输入要删除的学生姓名: ", "输入序号删除 (0取消, q退出): ", true)
	if err != nil || !ok {
		return err
	}

	confirm, err := m.readLine(fmt.Sprintf("确认删除学号 %s ? (y/n): ", r.ID))
	if err != nil {
		return err
	}
	if confirm != "y" && confirm != "Y" {
		m.view.println("已取消删除")
		return nil
	}

	if m.store.DeleteByID(r.ID) {
		m.view.success("已删除")
	} else {
		m.view.failure("记录不存在")
	}
	return nil
}

func (m *Menu) handleModify() error {
	m.view.section("修改学生 (输入 q 可退出)")

	r, ok, err := m.pick("输入要修改的学生姓名: ", "输入序号修改 (0取消, q退出): ", false)
	if err != nil || !ok {
		return err
	}

	m.view.current(r)
	m.view.println("(直接回车保持原值, 输入 q 退出修改)")

	gender, err := m.readField("新性别(男/女/其他/M/F): ")
	if err != nil {
		return err
	}
	if gender != "" {
		m.submit(r.ID, student.Update{Gender: &gender}, student.FieldGender,
			"性别已更新", "性别格式错误，保持原值")
	}

	ageText, err := m.readField("新年龄(1-150): ")
	if err != nil {
		return err
	}
	if ageText != "" {
		age, parsed := student.ParseAge(ageText)
		switch {
		case !student.IsValidAgeString(ageText):
			m.view.failure("年龄必须是纯数字，保持原值")
		case !parsed:
			m.view.failure("年龄范围错误(1-150)，保持原值")
		default:
			m.submit(r.ID, student.Update{Age: &age}, student.FieldAge,
				"年龄已更新", "年龄范围错误(1-150)，保持原值")
		}
	}

	m.view.majors()
	major, err := m.readField("新专业: ")
	if err != nil {
		return err
	}
	if major != "" {
		m.submit(r.ID, student.Update{Major: &major}, student.FieldMajor,
			"专业已更新", "专业不在列表中，保持原值")
	}

	m.view.success("修改完成")
	return nil
}

// submit applies a single-field update and reports its outcome.
func (m *Menu) submit(id string, u student.Update, field student.Field, okMsg, rejectMsg string) {
	report, err := m.store.Modify(id, u)
	if err != nil {
		m.view.failure("记录不存在")
		return
	}
	if _, rejected := report.Rejected[field]; rejected {
		m.view.failure(rejectMsg)
		return
	}
	m.view.success(okMsg)
}

// ─────────────────────────────────────────────────────────────────────────────
// 4. Search
// ─────────────────────────────────────────────────────────────────────────────

func (m *Menu) handleSearch() error {
	m.view.section("查询学生 (输入 q 可退出)")
	m.view.majors()

	major, err := m.readField("输入要查询的专业: ")
	if err != nil {
		return err
	}
	m.view.searchResults(m.store.SearchByMajor(major))
	return nil
}
