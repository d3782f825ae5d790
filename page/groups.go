package page

import (
	"fmt"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

// GroupsSelectors locate the group list and the create form.
var GroupsSelectors = struct {
	Table, Rows, Names, Search         locator.Locator
	New, Form, Name, Description, Save locator.Locator
	NameError, DescriptionError        locator.Locator
	ConfirmDelete, Toast               locator.Locator
}{
	Table:            locator.CSS("table#groups"),
	Rows:             locator.CSS("table#groups tbody tr"),
	Names:            locator.CSS("table#groups tbody tr td.group-name"),
	Search:           locator.CSS("input[type='search']"),
	New:              locator.Path("//button[normalize-space()='New group']"),
	Form:             locator.CSS("form#group-form"),
	Name:             locator.ID("groupName"),
	Description:      locator.ID("groupDescription"),
	Save:             locator.CSS("form#group-form button[type='submit']"),
	NameError:        locator.CSS("#groupName ~ .invalid-feedback"),
	DescriptionError: locator.CSS("#groupDescription ~ .invalid-feedback"),
	ConfirmDelete:    locator.Path("//div[contains(@class,'modal')]//button[normalize-space()='Delete']"),
	Toast:            locator.CSS(".toast .toast-body"),
}

// GroupRow locates the table row whose name cell is exactly name.
func GroupRow(name string) locator.Locator {
	return locator.Path(fmt.Sprintf("//table[@id='groups']//tr[td[contains(@class,'group-name')][normalize-space()=%s]]", xpathLiteral(name)))
}

func groupDelete(name string) locator.Locator {
	return locator.Path(GroupRow(name).Expression() + "//button[contains(@class,'delete')]")
}

type Groups struct {
	*Base
}

func NewGroups(s *session.Session, urls config.URLs, opts ...Option) *Groups {
	sel := GroupsSelectors
	return &Groups{Base: newBase(s, "groups", urls.Groups, sel.Table, map[locator.Locator]locator.Locator{
		sel.Name:        sel.NameError,
		sel.Description: sel.DescriptionError,
	}, opts)}
}

// NewGroup opens the create form.
func (p *Groups) NewGroup() error {
	if err := p.Click(GroupsSelectors.New); err != nil {
		return err
	}
	_, err := p.s.FindVisible(GroupsSelectors.Form, p.timeout)
	return err
}

func (p *Groups) EnterName(name string) error {
	return p.Fill(GroupsSelectors.Name, name)
}

func (p *Groups) EnterDescription(desc string) error {
	return p.Fill(GroupsSelectors.Description, desc)
}

// Save submits the form and waits for it to close.
func (p *Groups) Save() error {
	if err := p.Click(GroupsSelectors.Save); err != nil {
		return err
	}
	return p.s.Waiter().Absent(GroupsSelectors.Form, p.timeout)
}

// Create runs the whole create flow for g.
func (p *Groups) Create(g fixtures.Group) error {
	if err := p.NewGroup(); err != nil {
		return err
	}
	if err := p.EnterName(g.Name); err != nil {
		return err
	}
	if err := p.EnterDescription(g.Description); err != nil {
		return err
	}
	return p.Save()
}

// Search filters the list. An empty query shows every group.
func (p *Groups) Search(query string) error {
	return p.Fill(GroupsSelectors.Search, query)
}

// GroupNames returns the names currently listed, in table order.
func (p *Groups) GroupNames() ([]string, error) {
	hs, err := p.s.FindAll(GroupsSelectors.Names)
	if err != nil {
		return nil, err
	}
	return texts(hs)
}

// HasGroup reports whether a row for name is listed right now.
func (p *Groups) HasGroup(name string) (bool, error) {
	return p.Exists(GroupRow(name))
}

// WaitGroup waits for a row for name to appear.
func (p *Groups) WaitGroup(name string) error {
	_, err := p.s.FindVisible(GroupRow(name), p.timeout)
	return err
}

// DeleteGroup deletes the row for name, confirms, and waits for the row to go.
func (p *Groups) DeleteGroup(name string) error {
	if err := p.Click(groupDelete(name)); err != nil {
		return err
	}
	if err := p.Click(GroupsSelectors.ConfirmDelete); err != nil {
		return err
	}
	return p.s.Waiter().Absent(GroupRow(name), p.timeout)
}

// Toast returns the text of the notification shown after a save or delete.
func (p *Groups) Toast() (string, error) {
	return p.Text(GroupsSelectors.Toast)
}
