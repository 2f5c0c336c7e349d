package services

import (
	"bytes"
	"html/template"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rentaBack/internal/models"
)

var contractTemplate = template.Must(template.New("contract").Funcs(template.FuncMap{
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	"money": func(v float64) string { return formatMoney(v) },
}).Parse(`<article class="rental-contract">
<h1>Contrato de arrendamiento de vivienda urbana</h1>
<p>Entre <strong>{{.Owner.FullName}}</strong> (arrendador) y <strong>{{.Tenant.FullName}}</strong> (arrendatario) se celebra el presente contrato sobre el inmueble <strong>{{.Property.Title}}</strong>, ubicado en {{.Property.Address}}, {{.Property.City}}.</p>
<ul>
<li>Canon mensual: {{money .Contract.MonthlyRent}}</li>
<li>Depósito: {{money .Contract.Deposit}}</li>
<li>Duración: {{.Contract.DurationMonths}} meses</li>
<li>Fecha de inicio: {{date .Contract.StartDate}}</li>
<li>Fecha de terminación: {{date .Contract.EndDate}}</li>
</ul>
<p>El arrendatario se obliga a pagar el canon dentro de los cinco primeros días de cada periodo mensual.</p>
</article>`))

type contractDocument struct {
	Contract models.RentalContract
	Property models.Property
	Tenant   models.Profile
	Owner    models.Profile
}

func renderContract(doc contractDocument) (string, error) {
	var buf bytes.Buffer
	if err := contractTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var moneyPrinter = message.NewPrinter(language.Spanish)

// formatMoney renders whole pesos with Spanish thousand separators.
func formatMoney(v float64) string {
	return moneyPrinter.Sprintf("$%d", int64(math.Round(v)))
}

// contractDates fills the end date from start and duration.
func contractDates(c *models.RentalContract) {
	if c.StartDate.IsZero() {
		return
	}
	c.EndDate = c.StartDate.AddDate(0, c.DurationMonths, 0)
}
