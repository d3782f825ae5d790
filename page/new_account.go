package page

import (
	"fmt"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/focus"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

// Field names an input of the registration form.
type Field string

const (
	FirstName       Field = "first_name"
	LastName        Field = "last_name"
	Email           Field = "email"
	Username        Field = "username"
	Password        Field = "password"
	ConfirmPassword Field = "confirm_password"
)

// Fields lists the registration inputs in form order.
var Fields = []Field{FirstName, LastName, Email, Username, Password, ConfirmPassword}

// NewAccountSelectors locate the registration form. Inputs and their error
// nodes are keyed by Field.
var NewAccountSelectors = struct {
	Inputs  map[Field]locator.Locator
	Errors  map[Field]locator.Locator
	Submit  locator.Locator
	Success locator.Locator
}{
	Inputs: map[Field]locator.Locator{
		FirstName:       locator.ID("firstName"),
		LastName:        locator.ID("lastName"),
		Email:           locator.ID("email"),
		Username:        locator.ID("newUsername"),
		Password:        locator.ID("newPassword"),
		ConfirmPassword: locator.ID("confirmPassword"),
	},
	Errors: map[Field]locator.Locator{
		FirstName:       locator.CSS("#firstName ~ .invalid-feedback"),
		LastName:        locator.CSS("#lastName ~ .invalid-feedback"),
		Email:           locator.CSS("#email ~ .invalid-feedback"),
		Username:        locator.CSS("#newUsername ~ .invalid-feedback"),
		Password:        locator.CSS("#newPassword ~ .invalid-feedback"),
		ConfirmPassword: locator.CSS("#confirmPassword ~ .invalid-feedback"),
	},
	Submit:  locator.CSS("form#new-account button[type='submit']"),
	Success: locator.CSS(".alert-success"),
}

type NewAccount struct {
	*Base
}

func NewNewAccount(s *session.Session, urls config.URLs, opts ...Option) *NewAccount {
	sel := NewAccountSelectors
	errs := make(map[locator.Locator]locator.Locator, len(sel.Inputs))
	for f, in := range sel.Inputs {
		errs[in] = sel.Errors[f]
	}
	return &NewAccount{Base: newBase(s, "new account", urls.NewAccount, sel.Inputs[FirstName], errs, opts)}
}

func input(f Field) (locator.Locator, error) {
	loc, ok := NewAccountSelectors.Inputs[f]
	if !ok {
		return locator.Locator{}, fmt.Errorf("unknown field %q", f)
	}
	return loc, nil
}

// EnterField replaces the content of one input.
func (p *NewAccount) EnterField(f Field, value string) error {
	loc, err := input(f)
	if err != nil {
		return err
	}
	return p.Base.Fill(loc, value)
}

// Fill enters every field of acct, confirming the password with itself.
func (p *NewAccount) Fill(acct fixtures.Account) error {
	values := map[Field]string{
		FirstName:       acct.FirstName,
		LastName:        acct.LastName,
		Email:           acct.Email,
		Username:        acct.Username,
		Password:        acct.Password,
		ConfirmPassword: acct.Password,
	}
	for _, f := range Fields {
		if err := p.EnterField(f, values[f]); err != nil {
			return err
		}
	}
	return nil
}

func (p *NewAccount) Submit() error {
	return p.Click(NewAccountSelectors.Submit)
}

func (p *NewAccount) SubmitEnabled() (bool, error) {
	return p.Enabled(NewAccountSelectors.Submit)
}

func (p *NewAccount) FieldError(f Field) (string, error) {
	loc, err := input(f)
	if err != nil {
		return "", err
	}
	return p.Base.FieldError(loc)
}

func (p *NewAccount) HasFieldError(f Field) (bool, error) {
	loc, err := input(f)
	if err != nil {
		return false, err
	}
	return p.Base.HasFieldError(loc)
}

func (p *NewAccount) VerifyBlurValidation(f Field, expected string) (bool, error) {
	loc, err := input(f)
	if err != nil {
		return false, err
	}
	return p.Base.VerifyBlurValidation(loc, expected)
}

func (p *NewAccount) SuccessMessage() (string, error) {
	return p.Text(NewAccountSelectors.Success)
}

func (p *NewAccount) TabOrder() []focus.Entry {
	entries := make([]focus.Entry, 0, len(Fields))
	for i, f := range Fields {
		entries = append(entries, focus.Entry{
			Locator:  NewAccountSelectors.Inputs[f],
			Label:    string(f),
			TabCount: i + 1,
		})
	}
	return entries
}
