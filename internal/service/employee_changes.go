package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/pkg/config"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

const dateLayout = "2006-01-02"

// EmployeeChange is a validated edit to one employee attribute. The set of implementations is
// closed; values are only produced by NewEmployeeChange and ParseSnapshotChanges.
type EmployeeChange interface {
	// Field is the client-facing attribute name, e.g. "position".
	Field() string
	// Value is the normalised requested value as stored on the request.
	Value() string
	applyTo(e *models.Employee, catalog config.Catalog)
}

// TextChange replaces a free-text attribute. The value is already sanitised.
type TextChange struct {
	field string
	value string
}

func (c TextChange) Field() string { return c.field }
func (c TextChange) Value() string { return c.value }
func (c TextChange) applyTo(e *models.Employee, _ config.Catalog) {
	if ref := textFieldRef(e, c.field); ref != nil {
		*ref = c.value
	}
}

// EmailChange replaces the employee email. Uniqueness is checked when applied.
type EmailChange struct {
	email string
}

func (c EmailChange) Field() string { return "email" }
func (c EmailChange) Value() string { return c.email }
func (c EmailChange) applyTo(e *models.Employee, _ config.Catalog) {
	e.Email = c.email
}

// PhoneChange replaces the cellphone number. Empty clears it.
type PhoneChange struct {
	phone string
}

func (c PhoneChange) Field() string { return "cellphone" }
func (c PhoneChange) Value() string { return c.phone }
func (c PhoneChange) applyTo(e *models.Employee, _ config.Catalog) {
	e.Cellphone = c.phone
}

// DateChange replaces birthday or dateHired. A nil date clears it.
type DateChange struct {
	field string
	date  *time.Time
}

func (c DateChange) Field() string { return c.field }
func (c DateChange) Value() string { return formatDate(c.date) }
func (c DateChange) applyTo(e *models.Employee, _ config.Catalog) {
	switch c.field {
	case "birthday":
		e.Birthday = c.date
	case "dateHired":
		e.DateHired = c.date
	}
}

// DepartmentChange moves the employee to another department.
type DepartmentChange struct {
	department string
}

func (c DepartmentChange) Field() string { return "department" }
func (c DepartmentChange) Value() string { return c.department }
func (c DepartmentChange) applyTo(e *models.Employee, _ config.Catalog) {
	e.Department = c.department
}

// PositionChange assigns a new position and re-derives the salary from the catalog.
type PositionChange struct {
	position string
}

func (c PositionChange) Field() string { return "position" }
func (c PositionChange) Value() string { return c.position }
func (c PositionChange) applyTo(e *models.Employee, catalog config.Catalog) {
	e.Position = c.position
	e.Salary = catalog.SalaryFor(c.position)
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindRequiredText
	kindEmail
	kindPhone
	kindDate
	kindDepartment
	kindPosition
)

type fieldSpec struct {
	kind      fieldKind
	maxLength int
}

var employeeFields = map[string]fieldSpec{
	"firstName":       {kind: kindRequiredText, maxLength: 100},
	"lastName":        {kind: kindRequiredText, maxLength: 100},
	"middleInitial":   {kind: kindText, maxLength: 10},
	"suffix":          {kind: kindText, maxLength: 20},
	"religion":        {kind: kindText, maxLength: 100},
	"bloodType":       {kind: kindText, maxLength: 5},
	"sss":             {kind: kindText, maxLength: 32},
	"philhealth":      {kind: kindText, maxLength: 32},
	"pagibig":         {kind: kindText, maxLength: 32},
	"tin":             {kind: kindText, maxLength: 32},
	"addressHouse":    {kind: kindText, maxLength: 200},
	"addressBarangay": {kind: kindText, maxLength: 100},
	"addressCity":     {kind: kindText, maxLength: 100},
	"addressProvince": {kind: kindText, maxLength: 50},
	"addressZip":      {kind: kindText, maxLength: 10},
	"addressCountry":  {kind: kindText, maxLength: 100},
	"email":           {kind: kindEmail},
	"cellphone":       {kind: kindPhone},
	"birthday":        {kind: kindDate},
	"dateHired":       {kind: kindDate},
	"department":      {kind: kindDepartment, maxLength: 100},
	"position":        {kind: kindPosition, maxLength: 100},
}

// Snapshot keys that are derived or read-only. They are skipped instead of rejected.
var ignoredSnapshotKeys = map[string]struct{}{
	"id":         {},
	"employeeId": {},
	"salary":     {},
	"image":      {},
	"createdAt":  {},
	"updatedAt":  {},
}

// SupportedEmployeeFields lists the attributes a modify request may target.
func SupportedEmployeeFields() []string {
	fields := make([]string, 0, len(employeeFields))
	for name := range employeeFields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// NewEmployeeChange validates value for field and returns the typed change.
func NewEmployeeChange(field, value string, now time.Time) (EmployeeChange, error) {
	field = strings.TrimSpace(field)
	spec, ok := employeeFields[field]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedField, fmt.Sprintf("unsupported field: %s", field))
	}

	switch spec.kind {
	case kindEmail:
		email := strings.TrimSpace(value)
		if !validation.IsValidEmail(email) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email format")
		}
		return EmailChange{email: email}, nil
	case kindPhone:
		phone := strings.TrimSpace(value)
		if !validation.IsValidPhone(phone) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid cellphone format")
		}
		return PhoneChange{phone: phone}, nil
	case kindDate:
		date, err := parseDate(field, value, now)
		if err != nil {
			return nil, err
		}
		return DateChange{field: field, date: date}, nil
	}

	text := validation.Sanitize(value)
	if spec.kind == kindRequiredText && text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is required", field))
	}
	if spec.maxLength > 0 && len([]rune(text)) > spec.maxLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be at most %d characters", field, spec.maxLength))
	}
	switch spec.kind {
	case kindDepartment:
		return DepartmentChange{department: text}, nil
	case kindPosition:
		return PositionChange{position: text}, nil
	default:
		return TextChange{field: field, value: text}, nil
	}
}

// ParseSnapshotChanges diffs updatedData against originalData (both JSON objects) and returns
// one change per modified supported key, ordered by key.
func ParseSnapshotChanges(originalData, updatedData string, now time.Time) ([]EmployeeChange, error) {
	updated, err := decodeSnapshot(updatedData)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "updatedData must be a JSON object")
	}
	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "updatedData is required")
	}
	original, err := decodeSnapshot(originalData)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "originalData must be a JSON object")
	}

	keys := make([]string, 0, len(updated))
	for key := range updated {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]EmployeeChange, 0, len(keys))
	for _, key := range keys {
		if _, skip := ignoredSnapshotKeys[key]; skip {
			continue
		}
		if _, ok := employeeFields[key]; !ok {
			return nil, appErrors.Clone(appErrors.ErrUnsupportedField, fmt.Sprintf("unsupported field: %s", key))
		}
		value, _, err := readString(updated, key)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a string", key))
		}
		previous, hasPrevious, err := readString(original, key)
		hasPrevious = hasPrevious && err == nil
		if hasPrevious && *previous == *value {
			continue
		}
		change, err := NewEmployeeChange(key, *value, now)
		if err != nil {
			return nil, err
		}
		if hasPrevious {
			if before, err := NewEmployeeChange(key, *previous, now); err == nil && before.Value() == change.Value() {
				continue
			}
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// ApplyEmployeeChanges applies changes in order.
func ApplyEmployeeChanges(e *models.Employee, changes []EmployeeChange, catalog config.Catalog) {
	for _, change := range changes {
		change.applyTo(e, catalog)
	}
}

// EmployeeFieldValue returns the current value of a supported attribute in request form.
func EmployeeFieldValue(e *models.Employee, field string) (string, bool) {
	if ref := textFieldRef(e, field); ref != nil {
		return *ref, true
	}
	switch field {
	case "email":
		return e.Email, true
	case "cellphone":
		return e.Cellphone, true
	case "birthday":
		return formatDate(e.Birthday), true
	case "dateHired":
		return formatDate(e.DateHired), true
	case "department":
		return e.Department, true
	case "position":
		return e.Position, true
	}
	return "", false
}

// EmployeeSnapshot renders the employee as the JSON object used for originalData.
func EmployeeSnapshot(e *models.Employee) (string, error) {
	snapshot := make(map[string]interface{}, len(employeeFields)+2)
	for field := range employeeFields {
		value, _ := EmployeeFieldValue(e, field)
		snapshot[field] = value
	}
	snapshot["id"] = e.ID
	snapshot["salary"] = e.Salary
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func textFieldRef(e *models.Employee, field string) *string {
	switch field {
	case "firstName":
		return &e.FirstName
	case "lastName":
		return &e.LastName
	case "middleInitial":
		return &e.MiddleInitial
	case "suffix":
		return &e.Suffix
	case "religion":
		return &e.Religion
	case "bloodType":
		return &e.BloodType
	case "sss":
		return &e.SSS
	case "philhealth":
		return &e.PhilHealth
	case "pagibig":
		return &e.PagIbig
	case "tin":
		return &e.TIN
	case "addressHouse":
		return &e.AddressHouse
	case "addressBarangay":
		return &e.AddressBarangay
	case "addressCity":
		return &e.AddressCity
	case "addressProvince":
		return &e.AddressProvince
	case "addressZip":
		return &e.AddressZip
	case "addressCountry":
		return &e.AddressCountry
	}
	return nil
}

func parseDate(field, raw string, now time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(dateLayout, raw)
	if err != nil {
		// Employee JSON carries dates as RFC3339 timestamps; only the calendar date counts.
		full, ferr := time.Parse(time.RFC3339, raw)
		if ferr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be YYYY-MM-DD", field))
		}
		ts = time.Date(full.Year(), full.Month(), full.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !validation.IsDateNotInFuture(&ts, now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s cannot be in the future", field))
	}
	return &ts, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func decodeSnapshot(raw string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// readString reads key as a string. JSON null reads as the empty string.
func readString(payload map[string]json.RawMessage, keys ...string) (*string, bool, error) {
	for _, key := range keys {
		if raw, ok := payload[key]; ok {
			var val *string
			if err := json.Unmarshal(raw, &val); err != nil {
				return nil, false, err
			}
			if val == nil {
				empty := ""
				return &empty, true, nil
			}
			trimmed := strings.TrimSpace(*val)
			return &trimmed, true, nil
		}
	}
	return nil, false, nil
}
