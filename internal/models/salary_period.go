package models

import "time"

// SalaryPeriod records the pay computed for one employee over a date range. Rows are never
// updated after creation.
type SalaryPeriod struct {
	ID                     int64     `db:"id" json:"id"`
	EmployeeID             int64     `db:"employee_id" json:"employeeId"`
	PeriodFrom             time.Time `db:"period_from" json:"periodFrom"`
	PeriodTo               time.Time `db:"period_to" json:"periodTo"`
	MonthlyRate            float64   `db:"monthly_rate" json:"monthlyRate"`
	RegularHours           *float64  `db:"regular_hours" json:"regularHours,omitempty"`
	OvertimeHours          *float64  `db:"overtime_hours" json:"overtimeHours,omitempty"`
	HolidayHours           *float64  `db:"holiday_hours" json:"holidayHours,omitempty"`
	NightDiffHours         *float64  `db:"night_diff_hours" json:"nightDiffHours,omitempty"`
	RatePerDay             *float64  `db:"rate_per_day" json:"ratePerDay,omitempty"`
	RatePerHour            *float64  `db:"rate_per_hour" json:"ratePerHour,omitempty"`
	RegularPay             *float64  `db:"regular_pay" json:"regularPay,omitempty"`
	OvertimePay            *float64  `db:"overtime_pay" json:"overtimePay,omitempty"`
	HolidayPay             *float64  `db:"holiday_pay" json:"holidayPay,omitempty"`
	NightDiffPay           *float64  `db:"night_diff_pay" json:"nightDiffPay,omitempty"`
	GrossPay               *float64  `db:"gross_pay" json:"grossPay,omitempty"`
	SSSContribution        *float64  `db:"sss_contribution" json:"sssContribution,omitempty"`
	PhilHealthContribution *float64  `db:"philhealth_contribution" json:"philhealthContribution,omitempty"`
	PagIbigContribution    *float64  `db:"pagibig_contribution" json:"pagibigContribution,omitempty"`
	WithholdingTax         *float64  `db:"withholding_tax" json:"withholdingTax,omitempty"`
	TotalDeductions        *float64  `db:"total_deductions" json:"totalDeductions,omitempty"`
	NetPay                 *float64  `db:"net_pay" json:"netPay,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
}
