// Package shell drives the contact manager page from a terminal. Each
// command is turned into the document event a browser user would produce,
// and the visible page is printed afterwards.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/pbaille/contacts/internal/dom"
	"github.com/pbaille/contacts/internal/view"
)

// Prompter reads one command line.
type Prompter interface {
	Line(prompt string) (string, error)
}

// SurveyPrompter reads lines with a survey input prompt.
type SurveyPrompter struct {
	Opts []survey.AskOpt
}

func (p SurveyPrompter) Line(prompt string) (string, error) {
	var line string
	if err := survey.AskOne(&survey.Input{Message: prompt}, &line, p.Opts...); err != nil {
		return "", err
	}
	return line, nil
}

// Shell is an interactive session over a rendered page.
type Shell struct {
	view   *view.Renderer
	doc    *dom.Document
	out    io.Writer
	prompt Prompter
}

// New creates a shell writing to out.
func New(r *view.Renderer, out io.Writer, p Prompter) *Shell {
	if p == nil {
		p = SurveyPrompter{}
	}
	return &Shell{view: r, doc: r.Document(), out: out, prompt: p}
}

// Run prints the page and executes commands until quit, end of input,
// an interrupt, or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.Show()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := s.prompt.Line("contacts>")
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		quit, err := s.Exec(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line. It reports whether the session should end.
func (s *Shell) Exec(line string) (bool, error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprint(s.out, usage)
		return false, nil
	case "html":
		out, err := s.doc.HTML()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, out)
		return false, nil
	case "show", "ls":
	case "new", "add":
		err = s.clickVisible(".add_contact")
	case "edit":
		err = s.clickContact(rest, ".edit_contact")
	case "delete", "rm":
		err = s.clickContact(rest, ".delete_contact")
	case "tag":
		err = s.clickTag(rest)
	case "clear":
		err = s.click("#clear_tag")
	case "type":
		err = s.typeText(rest)
	case "backspace", "bs":
		err = s.backspace(rest)
	case "fill":
		err = s.fill(rest)
	case "submit":
		err = s.submit()
	case "cancel":
		err = s.click("#cancel_contact_form")
	case "click":
		err = s.click(rest)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	if err != nil {
		return false, err
	}
	s.Show()
	return false, nil
}

// Show prints the visible text of the page.
func (s *Shell) Show() {
	page := s.doc.Query("main")
	if page == nil {
		return
	}
	fmt.Fprintln(s.out, page.VisibleText())
	if search := s.view.SearchValue(); search != "" {
		fmt.Fprintf(s.out, "search: %q\n", search)
	}
}

func (s *Shell) click(sel string) error {
	if sel == "" || !dom.ValidSelector(sel) {
		return fmt.Errorf("invalid selector %q", sel)
	}
	el := s.doc.Query(sel)
	if el == nil {
		return fmt.Errorf("nothing matches %s", sel)
	}
	s.doc.Dispatch(el, dom.Click, "")
	return nil
}

func (s *Shell) clickVisible(sel string) error {
	for _, el := range s.doc.QueryAll(sel) {
		if visible(el) {
			s.doc.Dispatch(el, dom.Click, "")
			return nil
		}
	}
	return fmt.Errorf("nothing visible matches %s", sel)
}

func (s *Shell) clickContact(rawID, control string) error {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("contact id must be a number, got %q", rawID)
	}
	el := s.doc.Query(fmt.Sprintf(`#contacts_list li[data-id="%d"] %s`, id, control))
	if el == nil {
		return fmt.Errorf("no contact with id %d", id)
	}
	s.doc.Dispatch(el, dom.Click, "")
	return nil
}

func (s *Shell) clickTag(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, el := range s.doc.QueryAll("#contacts_list .tag") {
		if strings.ToLower(strings.TrimSpace(el.Text())) == name {
			s.doc.Dispatch(el, dom.Click, "")
			return nil
		}
	}
	return fmt.Errorf("no tag %q on the page", name)
}

// typeText sends one keydown per character to the search box. Keys that
// are not handled fall back to the default action of editing the value.
func (s *Shell) typeText(text string) error {
	search := s.doc.ByID("search")
	if search == nil {
		return fmt.Errorf("page has no search box")
	}
	for _, r := range text {
		s.key(search, string(r))
	}
	return nil
}

func (s *Shell) backspace(rawCount string) error {
	n := 1
	if rawCount != "" {
		var err error
		if n, err = strconv.Atoi(rawCount); err != nil || n < 1 {
			return fmt.Errorf("backspace count must be a positive number, got %q", rawCount)
		}
	}
	search := s.doc.ByID("search")
	if search == nil {
		return fmt.Errorf("page has no search box")
	}
	for i := 0; i < n; i++ {
		s.key(search, "Backspace")
	}
	return nil
}

func (s *Shell) key(el *dom.Element, key string) {
	ev := s.doc.Dispatch(el, dom.KeyDown, key)
	if ev.DefaultPrevented() {
		return
	}
	v := []rune(el.Value())
	switch {
	case key == "Backspace":
		if len(v) > 0 {
			v = v[:len(v)-1]
		}
	case len([]rune(key)) == 1:
		v = append(v, []rune(key)...)
	}
	el.SetValue(string(v))
}

// fill focuses a form field, replaces its value and leaves it, so focus
// handlers run the same way they do for a typing user.
func (s *Shell) fill(args string) error {
	form := s.view.Form()
	if form == nil {
		return fmt.Errorf("no form is open")
	}
	name, value, _ := strings.Cut(args, " ")
	if name == "" {
		return fmt.Errorf("usage: fill FIELD VALUE")
	}
	input := form.Query(fmt.Sprintf(`[name=%q]`, name))
	if input == nil || !input.IsControl() {
		return fmt.Errorf("form has no field %q", name)
	}
	s.doc.Dispatch(input, dom.FocusIn, "")
	input.SetValue(strings.TrimSpace(value))
	s.doc.Dispatch(input, dom.FocusOut, "")
	return nil
}

func (s *Shell) submit() error {
	form := s.view.Form()
	if form == nil {
		return fmt.Errorf("no form is open")
	}
	s.doc.Dispatch(form, dom.Submit, "")
	return nil
}

func visible(el *dom.Element) bool {
	for e := el; e != nil; e = e.Parent() {
		if e.Hidden() || e.HasClass("hidden") {
			return false
		}
	}
	return true
}

const usage = `commands:
  show                 print the page
  new                  open an empty contact form
  edit ID              open the form for contact ID
  delete ID            delete contact ID (asks first)
  tag NAME             show only contacts tagged NAME
  clear                clear the tag filter
  type TEXT            type TEXT into the search box
  backspace [N]        erase N characters from the search box
  fill FIELD VALUE     set a form field
  submit               submit the form
  cancel               close the form
  click SELECTOR       click the first element matching a CSS selector
  html                 dump the document markup
  quit                 leave
`
