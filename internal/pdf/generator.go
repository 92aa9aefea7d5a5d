package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ProjectReport is the data rendered into a single project PDF
type ProjectReport struct {
	Title                string
	TeamName             string
	Field                string
	ProblemStatement     string
	TechnicalDescription string
	ScientificReference  string

	// Scores are optional; a nil FinalScore renders the report without the
	// evaluation section.
	FinalScore *float64
	AdminScore float64
	AIScore    float64
	AdminMax   float64
	AIMax      float64
}

// RankedProject is one row of the all-projects report table
type RankedProject struct {
	Rank       int
	Title      string
	TeamName   string
	Field      string
	FinalScore *float64
}

// RosterMember is one participant line in a team roster PDF
type RosterMember struct {
	FullName string
	Email    string
	Phone    string
	IsLeader bool
}

// TeamRoster is the data rendered into a team PDF
type TeamRoster struct {
	TeamName         string
	Field            string
	RegistrationType string
	InitialIdea      string
	Members          []RosterMember
}

// Generator renders competition reports as A4 PDFs
type Generator struct {
	marginMM float64
}

// NewGenerator creates a PDF generator with standard margins
func NewGenerator() *Generator {
	return &Generator{marginMM: 20}
}

func (g *Generator) newDoc() *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(g.marginMM, g.marginMM, g.marginMM)
	doc.SetAutoPageBreak(true, g.marginMM)
	doc.AddPage()
	return doc
}

func (g *Generator) output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(doc *gofpdf.Fpdf, text string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(51, 51, 51)
	doc.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	doc.Ln(1)
}

func body(doc *gofpdf.Fpdf, text string) {
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, 6, text, "", "L", false)
	doc.Ln(3)
}

func footerDate(doc *gofpdf.Fpdf, layout string) {
	doc.Ln(8)
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(128, 128, 128)
	doc.CellFormat(0, 5, "Report generated "+time.Now().Format(layout), "", 1, "L", false, 0, "")
}

// ProjectPDF renders a full report for a single project submission
func (g *Generator) ProjectPDF(r ProjectReport) ([]byte, error) {
	doc := g.newDoc()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(102, 126, 234)
	doc.CellFormat(0, 12, "Project: "+r.Title, "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(51, 51, 51)
	doc.CellFormat(0, 7, "Team: "+r.TeamName, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, "Field: "+r.Field, "", 1, "L", false, 0, "")
	doc.Ln(4)

	heading(doc, "Problem the project solves")
	body(doc, r.ProblemStatement)

	heading(doc, "Technical description")
	body(doc, r.TechnicalDescription)

	heading(doc, "Scientific reference")
	body(doc, r.ScientificReference)

	if r.FinalScore != nil {
		heading(doc, "Evaluation")
		body(doc, fmt.Sprintf("Total score: %.2f/%.0f", *r.FinalScore, r.AdminMax+r.AIMax))
		body(doc, fmt.Sprintf("Panel score: %.2f/%.0f", r.AdminScore, r.AdminMax))
		body(doc, fmt.Sprintf("Automated score: %.2f/%.0f", r.AIScore, r.AIMax))
	}

	footerDate(doc, "2006-01-02 15:04")
	return g.output(doc)
}

// ProjectsReportPDF renders the ranked all-projects table
func (g *Generator) ProjectsReportPDF(projects []RankedProject) ([]byte, error) {
	doc := g.newDoc()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(102, 126, 234)
	doc.CellFormat(0, 12, "Projects Report", "", 1, "C", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 6, fmt.Sprintf("Projects: %d", len(projects)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	colWidths := []float64{12, 68, 45, 30, 15}
	headers := []string{"#", "Project", "Team", "Field", "Score"}

	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(102, 126, 234)
	doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		doc.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	fill := false
	for _, p := range projects {
		doc.SetFillColor(245, 245, 245)

		title := p.Title
		if len(title) > 38 {
			title = title[:38] + "..."
		}
		score := "-"
		if p.FinalScore != nil {
			score = fmt.Sprintf("%.2f", *p.FinalScore)
		}

		row := []string{fmt.Sprintf("%d", p.Rank), title, p.TeamName, p.Field, score}
		for i, cell := range row {
			doc.CellFormat(colWidths[i], 8, cell, "1", 0, "C", fill, 0, "")
		}
		doc.Ln(-1)
		fill = !fill
	}

	footerDate(doc, "2006-01-02")
	return g.output(doc)
}

// TeamPDF renders a team roster with the initial project idea
func (g *Generator) TeamPDF(t TeamRoster) ([]byte, error) {
	doc := g.newDoc()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(102, 126, 234)
	doc.CellFormat(0, 12, "Team: "+t.TeamName, "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 7, "Field: "+t.Field, "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, "Registration type: "+t.RegistrationType, "", 1, "L", false, 0, "")
	doc.Ln(4)

	heading(doc, "Team members")
	for _, m := range t.Members {
		mark := ""
		if m.IsLeader {
			mark = " (team leader)"
		}
		body(doc, fmt.Sprintf("- %s%s | %s | %s", m.FullName, mark, m.Email, m.Phone))
	}

	if t.InitialIdea != "" {
		heading(doc, "Initial project idea")
		body(doc, t.InitialIdea)
	}

	footerDate(doc, "2006-01-02")
	return g.output(doc)
}
