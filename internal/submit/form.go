// Package submit collects a new offer interactively.
package submit

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/five82/offerwatch/internal/offerapi"
)

// Draft holds the raw form values.
type Draft struct {
	CompanyName    string
	PositionTitle  string
	ContactEmail   string
	ContactPhone   string
	EmploymentType string
	WorkType       string
	SalaryMin      string
	SalaryMax      string
	Message        string
}

// NewDraft returns a draft with the first employment and work types chosen.
func NewDraft() *Draft {
	return &Draft{
		EmploymentType: string(offerapi.EmploymentTypes[0]),
		WorkType:       string(offerapi.WorkTypes[0]),
	}
}

// Form builds the huh form bound to d.
func Form(d *Draft) *huh.Form {
	employment := make([]huh.Option[string], 0, len(offerapi.EmploymentTypes))
	for _, t := range offerapi.EmploymentTypes {
		employment = append(employment, huh.NewOption(t.Label(), string(t)))
	}
	work := make([]huh.Option[string], 0, len(offerapi.WorkTypes))
	for _, t := range offerapi.WorkTypes {
		work = append(work, huh.NewOption(t.Label(), string(t)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("회사명").
				Value(&d.CompanyName).
				Validate(validateRequired("회사명")),
			huh.NewInput().
				Title("포지션").
				Value(&d.PositionTitle).
				Validate(validateRequired("포지션")),
			huh.NewSelect[string]().
				Title("고용형태").
				Options(employment...).
				Value(&d.EmploymentType),
			huh.NewSelect[string]().
				Title("근무형태").
				Options(work...).
				Value(&d.WorkType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("연락 이메일").
				Description("선택").
				Value(&d.ContactEmail).
				Validate(validateEmail),
			huh.NewInput().
				Title("연락처").
				Description("선택, 숫자만 입력해도 됩니다").
				Placeholder("010-1234-5678").
				Value(&d.ContactPhone),
			huh.NewInput().
				Title("최소 연봉").
				Description("원 단위, 비워두면 협의").
				Value(&d.SalaryMin),
			huh.NewInput().
				Title("최대 연봉").
				Value(&d.SalaryMax),
			huh.NewText().
				Title("메시지").
				Value(&d.Message),
		),
	)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s을(를) 입력해 주세요", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("이메일 형식이 올바르지 않습니다")
	}
	return nil
}

// Request converts the draft into an API request. Blank optional fields
// become nil.
func (d Draft) Request() (offerapi.CreateRequest, error) {
	req := offerapi.CreateRequest{
		CompanyName:    strings.TrimSpace(d.CompanyName),
		PositionTitle:  strings.TrimSpace(d.PositionTitle),
		EmploymentType: offerapi.EmploymentType(d.EmploymentType),
		WorkType:       offerapi.WorkType(d.WorkType),
		ContactEmail:   optional(d.ContactEmail),
		Message:        optional(d.Message),
		SalaryMin:      offerapi.ParseSalary(d.SalaryMin),
		SalaryMax:      offerapi.ParseSalary(d.SalaryMax),
	}
	if phone := offerapi.FormatPhone(d.ContactPhone); phone != "" {
		req.ContactPhone = &phone
	}
	if err := validateRequired("회사명")(req.CompanyName); err != nil {
		return offerapi.CreateRequest{}, err
	}
	if err := validateRequired("포지션")(req.PositionTitle); err != nil {
		return offerapi.CreateRequest{}, err
	}
	if err := validateEmail(d.ContactEmail); err != nil {
		return offerapi.CreateRequest{}, err
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		return offerapi.CreateRequest{}, errors.New("최소 연봉이 최대 연봉보다 큽니다")
	}
	return req, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
