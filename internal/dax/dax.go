// Package dax turns parameterized measure templates into concrete DAX
// measure definitions bound to the generated model's table and column
// names.
//
// Templates reference model elements with {table} and {table[column]}
// placeholders. Binding is validated against the model schema before
// anything is rendered; a template that references a missing element fails
// alone, the rest still synthesize.
package dax

import (
	"fmt"
	"regexp"
	"strings"

	"salesmart/internal/star"
)

// Template is one parameterized measure definition.
type Template struct {
	Name        string
	Description string
	Category    string
	Format      string

	// Expression is DAX text with {table} and {table[column]}
	// placeholders for every model element it touches. References to
	// other measures ([Total Revenue]) are plain DAX, not placeholders.
	Expression string
}

// Measure is a synthesized measure with all placeholders resolved.
type Measure struct {
	Name        string
	Description string
	Category    string
	Format      string
	Formula     string
}

// BindingError reports a template whose placeholder does not resolve
// against the model schema. Scoped to one measure: the offending template
// is omitted, others proceed.
type BindingError struct {
	Template  string
	Reference string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("measure %q: unresolved model reference %s", e.Template, e.Reference)
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?:\[([A-Za-z_][A-Za-z0-9_]*)\])?\}`)

// Synthesize binds every template against the schema. Measures come back
// in template order; failed bindings are reported separately, one per
// offending template (first unresolved reference wins).
func Synthesize(schema star.Schema, templates []Template) ([]Measure, []*BindingError) {
	var measures []Measure
	var failures []*BindingError

	for _, tpl := range templates {
		formula, badRef := bind(schema, tpl.Expression)
		if badRef != "" {
			failures = append(failures, &BindingError{Template: tpl.Name, Reference: badRef})
			continue
		}
		measures = append(measures, Measure{
			Name:        tpl.Name,
			Description: tpl.Description,
			Category:    tpl.Category,
			Format:      tpl.Format,
			Formula:     formula,
		})
	}
	return measures, failures
}

// bind resolves placeholders in expr. It returns the rendered formula, or
// the first reference that does not exist in the schema.
func bind(schema star.Schema, expr string) (formula, badRef string) {
	expr = strings.TrimSpace(expr)
	out := placeholderRe.ReplaceAllStringFunc(expr, func(ph string) string {
		if badRef != "" {
			return ph
		}
		m := placeholderRe.FindStringSubmatch(ph)
		table, column := m[1], m[2]
		if column == "" {
			if !schema.HasTable(table) {
				badRef = table
				return ph
			}
			return table
		}
		if !schema.HasColumn(table, column) {
			badRef = fmt.Sprintf("%s[%s]", table, column)
			return ph
		}
		return fmt.Sprintf("%s[%s]", table, column)
	})
	if badRef != "" {
		return "", badRef
	}
	return out, ""
}

// DefaultTemplates returns the built-in e-commerce measure set. topN
// parameterizes the customer ranking measure; non-positive values fall
// back to 10.
func DefaultTemplates(topN int) []Template {
	if topN <= 0 {
		topN = 10
	}
	return []Template{
		{
			Name:        "Total Revenue",
			Description: "Sum of all sales revenue",
			Category:    "Financial",
			Format:      "Currency",
			Expression:  "SUM({fact_sales[line_total]})",
		},
		{
			Name:        "Transaction Count",
			Description: "Number of transactions",
			Category:    "Operational",
			Format:      "Whole Number",
			Expression:  "COUNTROWS({fact_sales})",
		},
		{
			Name:        "Average Ticket",
			Description: "Average revenue per transaction",
			Category:    "Financial",
			Format:      "Currency",
			Expression:  "DIVIDE([Total Revenue], [Transaction Count], 0)",
		},
		{
			Name:        "Unique Customers",
			Description: "Distinct customers with at least one purchase",
			Category:    "Customer",
			Format:      "Whole Number",
			Expression:  "DISTINCTCOUNT({fact_sales[customer_key]})",
		},
		{
			Name:        "MoM Revenue Growth",
			Description: "Revenue growth versus the previous month",
			Category:    "Financial",
			Format:      "Percentage",
			Expression: strings.Join([]string{
				"VAR CurrentRevenue = [Total Revenue]",
				"VAR PriorRevenue = CALCULATE([Total Revenue], DATEADD({dim_date[date]}, -1, MONTH))",
				"RETURN",
				"IF(PriorRevenue <> 0, DIVIDE(CurrentRevenue - PriorRevenue, PriorRevenue), BLANK())",
			}, "\n"),
		},
		{
			Name:        "Category Revenue Rank",
			Description: "Dense rank of the current category by revenue",
			Category:    "Product",
			Format:      "Whole Number",
			Expression:  "RANKX(ALL({dim_product[category]}), [Total Revenue], , DESC, DENSE)",
		},
		{
			Name:        fmt.Sprintf("Top %d Customer Revenue", topN),
			Description: fmt.Sprintf("Revenue attributable to the top %d customers", topN),
			Category:    "Customer",
			Format:      "Currency",
			Expression: fmt.Sprintf(
				"CALCULATE([Total Revenue], KEEPFILTERS(TOPN(%d, ALL({dim_customer[customer_id]}), [Total Revenue], DESC)))",
				topN),
		},
	}
}
