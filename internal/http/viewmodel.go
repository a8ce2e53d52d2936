package http

import (
	"financas/internal/service"
)

type categoryRow struct {
	Name   string
	Amount string
}

type recordRow struct {
	Date        string
	Category    string
	Description string
	Amount      string
	Kind        string
}

type periodOption struct {
	Label    string
	Year     int
	Month    int
	Selected bool
}

type dashboardData struct {
	PeriodLabel  string
	Year         int
	Month        int
	Found        bool
	Inflow       string
	Outflow      string
	Balance      string
	BalanceClass string
	Breakdown    []categoryRow
	Top          []categoryRow
	Records      []recordRow
	ZeroedRows   int
	UnknownKinds int
	Rejected     int
	Periods      []periodOption
	Categories   []string
	Kinds        []string
}

func buildDashboardData(v service.View) dashboardData {
	balance := v.Summary.Balance
	balanceClass := ""
	if balance.Cents > 0 {
		balanceClass = "metric__value--positive"
	} else if balance.Cents < 0 {
		balanceClass = "metric__value--negative"
	}

	data := dashboardData{
		PeriodLabel:  v.Period.Label(),
		Year:         v.Period.Year,
		Month:        int(v.Period.Month),
		Found:        v.Found,
		Inflow:       v.Summary.TotalInflow.Format(),
		Outflow:      v.Summary.TotalOutflow.Format(),
		Balance:      balance.Format(),
		BalanceClass: balanceClass,
		ZeroedRows:   v.Report.ZeroedAmounts,
		UnknownKinds: v.Report.UnknownKinds,
		Rejected:     v.Report.Rejected(),
		Categories:   entryCategories,
		Kinds:        entryKinds,
	}

	for _, c := range v.Summary.Breakdown {
		data.Breakdown = append(data.Breakdown, categoryRow{Name: c.Name, Amount: c.Amount.Format()})
	}
	for _, c := range v.Top {
		data.Top = append(data.Top, categoryRow{Name: c.Name, Amount: c.Amount.Format()})
	}
	for _, tx := range v.Records {
		data.Records = append(data.Records, recordRow{
			Date:        tx.Date,
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.Format(),
			Kind:        string(tx.Kind),
		})
	}
	for _, p := range v.Periods {
		data.Periods = append(data.Periods, periodOption{
			Label:    p.Label(),
			Year:     p.Year,
			Month:    int(p.Month),
			Selected: p == v.Period,
		})
	}

	return data
}
