package offerapi

import (
	"strconv"
	"strings"
	"time"
)

const serverTimestampLayout = "2006-01-02T15:04:05"

// Status is the review stage of an offer.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusReviewed  Status = "REVIEWED"
	StatusQnA       Status = "QNA"
	StatusInterview Status = "INTERVIEW"
	StatusClosed    Status = "CLOSED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusSubmitted, StatusReviewed, StatusQnA, StatusInterview, StatusClosed}

var statusLabels = map[Status]string{
	StatusSubmitted: "제출됨",
	StatusReviewed:  "검토중",
	StatusQnA:       "질의응답",
	StatusInterview: "면접진행",
	StatusClosed:    "종료",
}

// Label returns the display label, or the raw value when unknown.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Next returns the following status in workflow order, wrapping around.
func (s Status) Next() Status {
	for i, candidate := range Statuses {
		if candidate == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return Statuses[0]
}

// EmploymentType is the contract kind offered.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentIntern   EmploymentType = "INTERN"
	EmploymentContract EmploymentType = "CONTRACT"
	EmploymentPartTime EmploymentType = "PART_TIME"
)

// EmploymentTypes lists every employment type in display order.
var EmploymentTypes = []EmploymentType{EmploymentFullTime, EmploymentIntern, EmploymentContract, EmploymentPartTime}

var employmentLabels = map[EmploymentType]string{
	EmploymentFullTime: "정규직",
	EmploymentIntern:   "인턴",
	EmploymentContract: "계약직",
	EmploymentPartTime: "파트타임",
}

// Label returns the display label, or the raw value when unknown.
func (e EmploymentType) Label() string {
	if label, ok := employmentLabels[e]; ok {
		return label
	}
	return string(e)
}

// WorkType is where the work happens.
type WorkType string

const (
	WorkOnsite WorkType = "ONSITE"
	WorkRemote WorkType = "REMOTE"
	WorkHybrid WorkType = "HYBRID"
)

// WorkTypes lists every work type in display order.
var WorkTypes = []WorkType{WorkOnsite, WorkRemote, WorkHybrid}

var workLabels = map[WorkType]string{
	WorkOnsite: "출퇴근",
	WorkRemote: "재택 근무",
	WorkHybrid: "하이브리드",
}

// Label returns the display label, or the raw value when unknown.
func (w WorkType) Label() string {
	if label, ok := workLabels[w]; ok {
		return label
	}
	return string(w)
}

// Me mirrors the payload returned by /api/auth/me.
type Me struct {
	Authenticated bool   `json:"authenticated"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email"`
	Role          string `json:"role"`
}

// Offer mirrors a single element of /api/offers.
type Offer struct {
	ID             int64          `json:"offerId"`
	RecruiterEmail string         `json:"recruiterEmail"`
	CompanyName    string         `json:"companyName"`
	PositionTitle  string         `json:"positionTitle"`
	ContactEmail   *string        `json:"contactEmail"`
	ContactPhone   *string        `json:"contactPhone"`
	EmploymentType EmploymentType `json:"employmentType"`
	WorkType       WorkType       `json:"workType"`
	Message        string         `json:"message"`
	Status         Status         `json:"status"`
	SalaryMin      *float64       `json:"salaryMin"`
	CreatedAt      string         `json:"createdAt"`
	Read           bool           `json:"read"`
	AdminRead      bool           `json:"adminRead"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (o Offer) ParsedCreatedAt() time.Time {
	return parseTime(o.CreatedAt)
}

// SalaryLabel renders the minimum salary in won, or 협의 when absent.
func (o Offer) SalaryLabel() string {
	if o.SalaryMin == nil {
		return "협의"
	}
	return FormatWon(int64(*o.SalaryMin))
}

// UnreadCountResponse mirrors /api/offers/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// ConfirmAllResponse mirrors POST /api/offers/confirm. Server builds have
// used both field names for the confirmed total.
type ConfirmAllResponse struct {
	ConfirmedCount int `json:"confirmedCount"`
	Count          int `json:"count"`
}

// Total returns whichever confirmed count the server populated.
func (r ConfirmAllResponse) Total() int {
	if r.ConfirmedCount > 0 {
		return r.ConfirmedCount
	}
	return r.Count
}

// CreateRequest is the body of POST /api/offers.
type CreateRequest struct {
	CompanyName    string         `json:"companyName"`
	PositionTitle  string         `json:"positionTitle"`
	ContactEmail   *string        `json:"contactEmail"`
	ContactPhone   *string        `json:"contactPhone"`
	EmploymentType EmploymentType `json:"employmentType"`
	WorkType       WorkType       `json:"workType"`
	Message        *string        `json:"message"`
	SalaryMin      *int64         `json:"salaryMin"`
	SalaryMax      *int64         `json:"salaryMax"`
}

// FormatWon renders an amount with thousands separators and the 원 suffix.
func FormatWon(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "원"
	if neg {
		return "-" + out
	}
	return out
}

// ParseSalary extracts the digits from free-form input. Empty input yields nil.
func ParseSalary(input string) *int64 {
	digits := onlyDigits(input)
	if digits == "" {
		return nil
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

// FormatPhone formats up to eleven digits as 010-1234-5678.
func FormatPhone(input string) string {
	digits := onlyDigits(input)
	if len(digits) > 11 {
		digits = digits[:11]
	}
	switch {
	case len(digits) < 4:
		return digits
	case len(digits) < 8:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	}
}

func onlyDigits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// LocalDateTime has no zone and may carry fractional seconds.
	if idx := strings.IndexByte(value, '.'); idx > 0 {
		value = value[:idx]
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
