package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alem-hub/student-records/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorTitle   = lipgloss.Color("#20B9B4")
	colorBorder  = lipgloss.Color("#16858E")
)

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

// newStyles binds styles to a renderer for w, so colour is only emitted when
// w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		success: r.NewStyle().Foreground(colorSuccess),
		failure: r.NewStyle().Foreground(colorError),
		warning: r.NewStyle().Bold(true).Foreground(colorWarning),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		border:  r.NewStyle().Foreground(colorBorder),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// ══════════════════════════════════════════════════════════════════════════════

// presenter formats everything the menu writes.
type presenter struct {
	out    io.Writer
	styles styles
}

func newPresenter(out io.Writer) *presenter {
	return &presenter{out: out, styles: newStyles(out)}
}

func (p *presenter) print(s string) {
	fmt.Fprint(p.out, s)
}

func (p *presenter) println(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *presenter) success(msg string) {
	p.println(p.styles.success.Render("√ " + msg))
}

func (p *presenter) failure(msg string) {
	p.println(p.styles.failure.Render("× " + msg))
}

func (p *presenter) warning(msg string) {
	p.println(p.styles.warning.Render(msg))
}

func (p *presenter) section(title string) {
	p.println("")
	p.println(p.styles.title.Render("--- " + title + " ---"))
}

func (p *presenter) mainMenu() {
	p.println("")
	p.println(p.styles.title.Render("====== 学生信息管理系统 ======"))
	p.println("1. 录入学生信息")
	p.println("2. 删除学生（按姓名）")
	p.println("3. 修改学生（按姓名）")
	p.println("4. 查询学生（按专业）")
	p.println("5. 显示全部学生")
	p.println("0. 保存并退出")
	p.println("==============================")
}

func (p *presenter) majors() {
	var b strings.Builder
	b.WriteString("可选专业: ")
	for _, m := range student.ValidMajors() {
		b.WriteString(m)
		b.WriteString(" | ")
	}
	p.println(b.String())
}

// matches lists name matches numbered from 1.
func (p *presenter) matches(recs []student.Record, withMajor bool) {
	p.println(fmt.Sprintf("找到 %d 条记录:", len(recs)))
	for i, r := range recs {
		line := fmt.Sprintf("%d. %s - %s", i+1, r.ID, r.Name)
		if withMajor {
			line += " - " + r.Major
		}
		p.println(line)
	}
}

func (p *presenter) current(r student.Record) {
	p.println(fmt.Sprintf("当前: %s, %s, %s, %d, %s", r.ID, r.Name, r.Gender, r.Age, r.Major))
}

func (p *presenter) searchResults(recs []student.Record) {
	if len(recs) == 0 {
		p.println("未找到该专业的学生")
		return
	}
	p.println(fmt.Sprintf("找到 %d 人:", len(recs)))
	for _, r := range recs {
		p.println(fmt.Sprintf("%s - %s - %s - %d岁", r.ID, r.Name, r.Gender, r.Age))
	}
}

// records renders the full listing as a table; recs are already sorted.
func (p *presenter) records(recs []student.Record) {
	if len(recs) == 0 {
		p.println("暂无学生数据")
		return
	}

	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.ID, r.Name, r.Gender, strconv.Itoa(r.Age), r.Major}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header
			}
			return p.styles.cell
		}).
		Headers("学号", "姓名", "性别", "年龄", "专业").
		Rows(rows...)

	p.println(t.String())
	p.println(fmt.Sprintf("共 %d 人", len(recs)))
}
