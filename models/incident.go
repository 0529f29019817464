package models

import (
	"strings"
	"time"
)

// IncidentCategory is the kind of obstacle a driver reports.
type IncidentCategory string

const (
	IncidentTraffic        IncidentCategory = "Trafico"
	IncidentMechanical     IncidentCategory = "Mecanico"
	IncidentCustomerAbsent IncidentCategory = "Cliente"
	IncidentAccident       IncidentCategory = "Accidente"
	IncidentOther          IncidentCategory = "Otro"
)

// IncidentCategories lists the categories in display order.
var IncidentCategories = []IncidentCategory{
	IncidentTraffic, IncidentMechanical, IncidentCustomerAbsent, IncidentAccident, IncidentOther,
}

var incidentAliases = map[string]IncidentCategory{
	"trafico":         IncidentTraffic,
	"traffic":         IncidentTraffic,
	"mecanico":        IncidentMechanical,
	"mechanical":      IncidentMechanical,
	"cliente":         IncidentCustomerAbsent,
	"customer-absent": IncidentCustomerAbsent,
	"customer_absent": IncidentCustomerAbsent,
	"accidente":       IncidentAccident,
	"accident":        IncidentAccident,
	"otro":            IncidentOther,
	"other":           IncidentOther,
}

// ParseIncidentCategory accepts wire values and English aliases, case-insensitively.
func ParseIncidentCategory(s string) (IncidentCategory, bool) {
	c, ok := incidentAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Valid reports whether c is a known category.
func (c IncidentCategory) Valid() bool {
	for _, k := range IncidentCategories {
		if k == c {
			return true
		}
	}
	return false
}

// Incident is a driver-submitted report. The client only ever creates them.
type Incident struct {
	ID          int64            `json:"id,omitempty"`
	Category    IncidentCategory `json:"tipo"`
	Description string           `json:"descripcion"`
	ReportedAt  *time.Time       `json:"fecha_reporte,omitempty"`
}
