package dto

// CreateEmployeeRequest is the payload for adding an employee. Salary is derived from position.
type CreateEmployeeRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	MiddleInitial   string `json:"middleInitial" validate:"max=10"`
	Suffix          string `json:"suffix" validate:"max=20"`
	Email           string `json:"email" validate:"required,payroll_email"`
	Cellphone       string `json:"cellphone" validate:"phone"`
	Birthday        string `json:"birthday"`
	DateHired       string `json:"dateHired"`
	Department      string `json:"department" validate:"max=100"`
	Position        string `json:"position" validate:"max=100"`
	Religion        string `json:"religion" validate:"max=100"`
	BloodType       string `json:"bloodType" validate:"max=5"`
	SSS             string `json:"sss" validate:"max=32"`
	PhilHealth      string `json:"philhealth" validate:"max=32"`
	PagIbig         string `json:"pagibig" validate:"max=32"`
	TIN             string `json:"tin" validate:"max=32"`
	Image           string `json:"image"`
	AddressHouse    string `json:"addressHouse" validate:"max=200"`
	AddressBarangay string `json:"addressBarangay" validate:"max=100"`
	AddressCity     string `json:"addressCity" validate:"max=100"`
	AddressProvince string `json:"addressProvince" validate:"max=50"`
	AddressZip      string `json:"addressZip" validate:"max=10"`
	AddressCountry  string `json:"addressCountry" validate:"max=100"`
}

// UpdateEmployeeRequest applies a partial update; nil fields are left unchanged.
type UpdateEmployeeRequest struct {
	FirstName       *string `json:"firstName" validate:"omitempty,max=100"`
	LastName        *string `json:"lastName" validate:"omitempty,max=100"`
	MiddleInitial   *string `json:"middleInitial" validate:"omitempty,max=10"`
	Suffix          *string `json:"suffix" validate:"omitempty,max=20"`
	Email           *string `json:"email" validate:"omitempty,payroll_email"`
	Cellphone       *string `json:"cellphone" validate:"omitempty,phone"`
	Birthday        *string `json:"birthday"`
	DateHired       *string `json:"dateHired"`
	Department      *string `json:"department" validate:"omitempty,max=100"`
	Position        *string `json:"position" validate:"omitempty,max=100"`
	Religion        *string `json:"religion" validate:"omitempty,max=100"`
	BloodType       *string `json:"bloodType" validate:"omitempty,max=5"`
	SSS             *string `json:"sss" validate:"omitempty,max=32"`
	PhilHealth      *string `json:"philhealth" validate:"omitempty,max=32"`
	PagIbig         *string `json:"pagibig" validate:"omitempty,max=32"`
	TIN             *string `json:"tin" validate:"omitempty,max=32"`
	Image           *string `json:"image"`
	AddressHouse    *string `json:"addressHouse" validate:"omitempty,max=200"`
	AddressBarangay *string `json:"addressBarangay" validate:"omitempty,max=100"`
	AddressCity     *string `json:"addressCity" validate:"omitempty,max=100"`
	AddressProvince *string `json:"addressProvince" validate:"omitempty,max=50"`
	AddressZip      *string `json:"addressZip" validate:"omitempty,max=10"`
	AddressCountry  *string `json:"addressCountry" validate:"omitempty,max=100"`
}

// Fields returns the present fields keyed by attribute name.
func (r UpdateEmployeeRequest) Fields() map[string]string {
	out := make(map[string]string)
	add := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	add("firstName", r.FirstName)
	add("lastName", r.LastName)
	add("middleInitial", r.MiddleInitial)
	add("suffix", r.Suffix)
	add("email", r.Email)
	add("cellphone", r.Cellphone)
	add("birthday", r.Birthday)
	add("dateHired", r.DateHired)
	add("department", r.Department)
	add("position", r.Position)
	add("religion", r.Religion)
	add("bloodType", r.BloodType)
	add("sss", r.SSS)
	add("philhealth", r.PhilHealth)
	add("pagibig", r.PagIbig)
	add("tin", r.TIN)
	add("addressHouse", r.AddressHouse)
	add("addressBarangay", r.AddressBarangay)
	add("addressCity", r.AddressCity)
	add("addressProvince", r.AddressProvince)
	add("addressZip", r.AddressZip)
	add("addressCountry", r.AddressCountry)
	return out
}

// Fields returns every attribute of the create payload keyed by attribute name.
func (r CreateEmployeeRequest) Fields() map[string]string {
	return map[string]string{
		"firstName":       r.FirstName,
		"lastName":        r.LastName,
		"middleInitial":   r.MiddleInitial,
		"suffix":          r.Suffix,
		"email":           r.Email,
		"cellphone":       r.Cellphone,
		"birthday":        r.Birthday,
		"dateHired":       r.DateHired,
		"department":      r.Department,
		"position":        r.Position,
		"religion":        r.Religion,
		"bloodType":       r.BloodType,
		"sss":             r.SSS,
		"philhealth":      r.PhilHealth,
		"pagibig":         r.PagIbig,
		"tin":             r.TIN,
		"addressHouse":    r.AddressHouse,
		"addressBarangay": r.AddressBarangay,
		"addressCity":     r.AddressCity,
		"addressProvince": r.AddressProvince,
		"addressZip":      r.AddressZip,
		"addressCountry":  r.AddressCountry,
	}
}

// EmployeeQuery mirrors listing filters.
type EmployeeQuery struct {
	Search     string
	Department string
	Position   string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
