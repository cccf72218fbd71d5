package dto

// CreateSalaryPeriodRequest records a computed pay period. Pay amounts are stored as supplied.
type CreateSalaryPeriodRequest struct {
	EmployeeID             *int64   `json:"employeeId"`
	PeriodFrom             string   `json:"periodFrom"`
	PeriodTo               string   `json:"periodTo"`
	MonthlyRate            *float64 `json:"monthlyRate"`
	RegularHours           *float64 `json:"regularHours"`
	OvertimeHours          *float64 `json:"overtimeHours"`
	HolidayHours           *float64 `json:"holidayHours"`
	NightDiffHours         *float64 `json:"nightDiffHours"`
	RatePerDay             *float64 `json:"ratePerDay"`
	RatePerHour            *float64 `json:"ratePerHour"`
	RegularPay             *float64 `json:"regularPay"`
	OvertimePay            *float64 `json:"overtimePay"`
	HolidayPay             *float64 `json:"holidayPay"`
	NightDiffPay           *float64 `json:"nightDiffPay"`
	GrossPay               *float64 `json:"grossPay"`
	SSSContribution        *float64 `json:"sssContribution"`
	PhilHealthContribution *float64 `json:"philhealthContribution"`
	PagIbigContribution    *float64 `json:"pagibigContribution"`
	WithholdingTax         *float64 `json:"withholdingTax"`
	TotalDeductions        *float64 `json:"totalDeductions"`
	NetPay                 *float64 `json:"netPay"`
}
