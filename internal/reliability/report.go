// internal/reliability/report.go
package reliability

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report renders the record and score as plain text. The output depends only on its
// arguments, so the same inputs always produce the same bytes.
func Report(jobTitle string, record *VerifiedWorkforceRecord, score ReliabilityScore) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "# WORKFORCE INTELLIGENCE REPORT - %s\n\n", strings.ToUpper(jobTitle))
	p.Fprintf(&b, "## RELIABILITY SCORE: %d%%\n\n", score.OverallScore)

	b.WriteString("### DATA QUALITY\n")
	p.Fprintf(&b, "- Document data: %d%%\n", score.DataQuality.DocumentData)
	p.Fprintf(&b, "- Market data: %d%%\n", score.DataQuality.MarketData)
	p.Fprintf(&b, "- Workforce data: %d%%\n", score.DataQuality.WorkforceData)
	p.Fprintf(&b, "- Manual data: %d%%\n\n", score.DataQuality.ManualData)

	if record == nil {
		b.WriteString("### WORKFORCE SEGMENTATION\nNo verified workforce record available.\n\n")
	} else {
		writeSegments(&b, p, record)
		writeDemographics(&b, record)
	}

	b.WriteString("### DATA LIMITATIONS\n")
	writeList(&b, score.Blockers, "No significant limitations")

	b.WriteString("\n### RECOMMENDATIONS\n")
	writeList(&b, score.Recommendations, "Data quality sufficient for a reliable analysis")

	if record != nil {
		m := record.Metadata
		b.WriteString("\n---\n")
		p.Fprintf(&b, "Data source: %s\n", m.DataSource)
		p.Fprintf(&b, "Last updated: %s\n", reportDate(m.LastUpdated))
		p.Fprintf(&b, "Sample size: %d\n", m.SampleSize)
		p.Fprintf(&b, "Methodology: %s\n", m.Methodology)
	}

	return b.String()
}

func writeSegments(b *strings.Builder, p *message.Printer, record *VerifiedWorkforceRecord) {
	segments := AnalyzeSegments(record)

	b.WriteString("### WORKFORCE SEGMENTATION\n")
	p.Fprintf(b, "Total available: %d professionals\n\n", record.TotalAvailable)

	for _, s := range []struct {
		title   string
		segment Segment
	}{
		{"Active job seekers", segments.Active},
		{"Passive candidates", segments.Passive},
	} {
		p.Fprintf(b, "%s:\n", s.title)
		p.Fprintf(b, "- Count: %d\n", s.segment.Count)
		p.Fprintf(b, "- Percentage: %s%%\n", formatPercent(s.segment.Percentage))
		p.Fprintf(b, "- Status: %s\n\n", s.segment.Reliability)
	}
	p.Fprintf(b, "Verified job seekers: %d\n", segments.TotalVerified)
	for _, w := range segments.Warnings {
		b.WriteString("- warning: " + w + "\n")
	}
	b.WriteString("\n")
}

func writeDemographics(b *strings.Builder, record *VerifiedWorkforceRecord) {
	demographics := AnalyzeDemographics(record)

	b.WriteString("### DEMOGRAPHIC DISTRIBUTION\n")
	b.WriteString("Experience (reliability: " + strconv.Itoa(demographics.ReliabilityScore) + "%)\n")
	for _, s := range experienceShares(demographics.Experience) {
		b.WriteString("- " + s.key + ": " + formatPercent(s.share.Percentage) + "% (" + string(s.share.Reliability) + ")\n")
	}
	b.WriteString("\nAge\n")
	for _, s := range ageShares(demographics.Age) {
		b.WriteString("- " + s.key + ": " + formatPercent(s.share.Percentage) + "% (" + string(s.share.Reliability) + ")\n")
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reportDate shows the calendar day of an RFC 3339 timestamp, or the raw value if it
// does not parse.
func reportDate(lastUpdated string) string {
	t, err := time.Parse(time.RFC3339, lastUpdated)
	if err != nil {
		return lastUpdated
	}
	return t.UTC().Format("2006-01-02")
}
