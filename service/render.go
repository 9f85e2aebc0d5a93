package service

import (
	"fmt"
	"strings"

	"diligence-backend/models"
	"diligence-backend/registry"
)

// riskCategoryTitle returns the human-readable report title for a risk
// category. Provider-defined categories fall through unchanged.
func riskCategoryTitle(category string) string {
	titles := map[string]string{
		models.RiskAdministrativeOffenses: "Administrative offenses",
		models.RiskCriminalProceedings:    "Criminal proceedings",
		models.RiskCivilProceedings:       "Civil proceedings",
	}
	if title, ok := titles[category]; ok {
		return title
	}
	return category
}

// renderReport assembles the due-diligence conclusion text from the
// reconciled findings. Content is fully deterministic: the same inputs
// always produce the same report.
func renderReport(
	activity *models.Activity,
	company *registry.Company,
	owner *registry.Owner,
	profile *BuildRiskProfileResult,
	graph *registry.GraphNode,
) string {
	var b strings.Builder

	b.WriteString("DUE DILIGENCE CONCLUSION\n\n")
	b.WriteString(fmt.Sprintf("Guarantee application %s\n\n", activity.GuaranteeID))

	b.WriteString("I. APPLICANT\n")
	b.WriteString(fmt.Sprintf("%s (%s)\n", company.FullName, company.Identifier))
	if company.LegalAddress != "" {
		b.WriteString(fmt.Sprintf("Registered address: %s\n", company.LegalAddress))
	}
	if company.RegisterDate != nil {
		b.WriteString(fmt.Sprintf("Registered on: %s\n", company.RegisterDate.Format("02.01.2006")))
	}
	b.WriteString("\n")

	b.WriteString("II. OWNERSHIP\n")
	b.WriteString(fmt.Sprintf("Head: %s\n", owner.Owner.Name))
	if len(owner.Founders) > 0 {
		b.WriteString("Founders:\n")
		for _, f := range owner.Founders {
			b.WriteString(fmt.Sprintf("  - %s\n", f.Name))
		}
	}
	if owner.RiskFactor {
		b.WriteString("Owner risk factor reported by the registry.\n")
	}
	b.WriteString("\n")

	if activity.Guarantee != nil {
		g := activity.Guarantee
		b.WriteString("III. GUARANTEE TERMS\n")
		b.WriteString(fmt.Sprintf("Bank: %s\n", g.Bank))
		b.WriteString(fmt.Sprintf("Crediting purpose: %s\n", g.CreditingPurpose))
		b.WriteString(fmt.Sprintf("Credit amount: %s for %d months\n",
			prettifyAmount(g.CreditAmount), g.CreditPeriod))
		b.WriteString(fmt.Sprintf("Guarantee amount: %s for %d months\n",
			prettifyAmount(g.GuaranteeAmount), g.GuaranteePeriod))
		if len(activity.Participants) > 0 {
			b.WriteString("Parties:\n")
			for _, p := range activity.Participants {
				line := fmt.Sprintf("  - %s", p.Name)
				if p.Role != "" {
					line += fmt.Sprintf(" (%s)", p.Role)
				}
				if p.TaxID != "" {
					line += ", " + p.TaxID
				}
				b.WriteString(line + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("IV. RISK FINDINGS\n")
	categories := profile.Signals.Categories()
	if len(categories) == 0 {
		b.WriteString("No risk categories flagged after reconciliation.\n")
	} else {
		for _, category := range categories {
			b.WriteString(fmt.Sprintf("  - %s\n", riskCategoryTitle(category)))
		}
	}
	b.WriteString("\n")

	if profile.Cases.Len() > 0 {
		b.WriteString("V. LEGAL CASE HISTORY\n")
		for _, c := range profile.Cases.Cases() {
			line := fmt.Sprintf("  - [%s] %s, %s, %d", c.Kind, c.Number, c.Organ, c.Year)
			if c.Role != nil && *c.Role != "" {
				line += fmt.Sprintf(", role: %s", *c.Role)
			}
			if c.Result != "" {
				line += fmt.Sprintf(": %s", c.Result)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if graph != nil {
		b.WriteString("VI. RELATED ENTITIES\n")
		writeGraphNode(&b, graph, 0)
		b.WriteString("\n")
	}

	return b.String()
}

func writeGraphNode(b *strings.Builder, node *registry.GraphNode, depth int) {
	indent := strings.Repeat("  ", depth+1)
	line := fmt.Sprintf("%s- %s", indent, node.Name)
	if node.Relation != "" {
		line += fmt.Sprintf(" (%s)", node.Relation)
	}
	if node.Share != nil {
		line += fmt.Sprintf(" %.1f%%", *node.Share)
	}
	b.WriteString(line + "\n")
	for i := range node.Children {
		writeGraphNode(b, &node.Children[i], depth+1)
	}
}

// prettifyAmount formats a monetary amount with thin spaces for thousands
func prettifyAmount(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(digit)
	}
	return grouped.String() + "," + fracPart
}
