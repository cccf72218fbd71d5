package models

import "time"

// Employee is a personnel record in the employees table.
type Employee struct {
	ID              int64      `db:"id" json:"id"`
	FirstName       string     `db:"first_name" json:"firstName"`
	LastName        string     `db:"last_name" json:"lastName"`
	MiddleInitial   string     `db:"middle_initial" json:"middleInitial"`
	Suffix          string     `db:"suffix" json:"suffix"`
	Email           string     `db:"email" json:"email"`
	Cellphone       string     `db:"cellphone" json:"cellphone"`
	Birthday        *time.Time `db:"birthday" json:"birthday,omitempty"`
	DateHired       *time.Time `db:"date_hired" json:"dateHired,omitempty"`
	Department      string     `db:"department" json:"department"`
	Position        string     `db:"position" json:"position"`
	Salary          float64    `db:"salary" json:"salary"`
	Religion        string     `db:"religion" json:"religion"`
	BloodType       string     `db:"blood_type" json:"bloodType"`
	SSS             string     `db:"sss" json:"sss"`
	PhilHealth      string     `db:"philhealth" json:"philhealth"`
	PagIbig         string     `db:"pagibig" json:"pagibig"`
	TIN             string     `db:"tin" json:"tin"`
	Image           string     `db:"image" json:"image"`
	AddressHouse    string     `db:"address_house" json:"addressHouse"`
	AddressBarangay string     `db:"address_barangay" json:"addressBarangay"`
	AddressCity     string     `db:"address_city" json:"addressCity"`
	AddressProvince string     `db:"address_province" json:"addressProvince"`
	AddressZip      string     `db:"address_zip" json:"addressZip"`
	AddressCountry  string     `db:"address_country" json:"addressCountry"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// FullName renders "First M. Last Suffix".
func (e Employee) FullName() string {
	name := e.FirstName
	if e.MiddleInitial != "" {
		name += " " + e.MiddleInitial + "."
	}
	name += " " + e.LastName
	if e.Suffix != "" {
		name += " " + e.Suffix
	}
	return name
}

// Address returns the postal address parts of the employee.
func (e Employee) Address() Address {
	return Address{
		House:    e.AddressHouse,
		Barangay: e.AddressBarangay,
		City:     e.AddressCity,
		Province: e.AddressProvince,
		Zip:      e.AddressZip,
		Country:  e.AddressCountry,
	}
}

// Address groups the postal fields used for validation.
type Address struct {
	House    string `json:"house"`
	Barangay string `json:"barangay"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Complete reports whether the fields required for validation are all present.
func (a Address) Complete() bool {
	return a.House != "" && a.City != "" && a.Province != "" && a.Zip != ""
}

// EmployeeFilter constrains employee listings.
type EmployeeFilter struct {
	Search     string
	Department string
	Position   string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
