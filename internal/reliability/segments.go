// internal/reliability/segments.go
package reliability

import "fmt"

// AnalyzeSegments totals the job-seeker counts that are backed by verified data.
func AnalyzeSegments(record *VerifiedWorkforceRecord) SegmentAnalysis {
	if record == nil {
		return SegmentAnalysis{Warnings: []string{"no workforce record"}}
	}

	warnings := []string{}
	total := 0

	if record.ActiveJobSeekers.Reliability == Verified {
		total += record.ActiveJobSeekers.Count
	} else {
		warnings = append(warnings, "active job seekers data not verified")
	}

	if record.PassiveJobSeekers.Reliability == Verified {
		total += record.PassiveJobSeekers.Count
	} else {
		warnings = append(warnings, "passive job seekers data not verified")
	}

	return SegmentAnalysis{
		Active:        record.ActiveJobSeekers,
		Passive:       record.PassiveJobSeekers,
		NotSeeking:    record.NotJobSeeking,
		TotalVerified: total,
		Warnings:      warnings,
	}
}

type namedShare struct {
	key   string
	share Share
}

func experienceShares(d ExperienceDistribution) []namedShare {
	return []namedShare{{"junior", d.Junior}, {"medior", d.Medior}, {"senior", d.Senior}}
}

func ageShares(d AgeDistribution) []namedShare {
	return []namedShare{{"under30", d.Under30}, {"30to45", d.Age30To45}, {"over45", d.Over45}}
}

// AnalyzeDemographics scores how many of the six demographic categories are verified.
func AnalyzeDemographics(record *VerifiedWorkforceRecord) DemographicAnalysis {
	if record == nil {
		return DemographicAnalysis{DataGaps: []string{"no workforce record"}}
	}

	gaps := []string{}
	verified := 0
	categories := 0

	for _, s := range experienceShares(record.ExperienceDistribution) {
		categories++
		if s.share.Reliability == Verified {
			verified++
		} else {
			gaps = append(gaps, fmt.Sprintf("%s experience data not verified", s.key))
		}
	}
	for _, s := range ageShares(record.AgeDistribution) {
		categories++
		if s.share.Reliability == Verified {
			verified++
		} else {
			gaps = append(gaps, fmt.Sprintf("%s age data not verified", s.key))
		}
	}

	return DemographicAnalysis{
		Experience:       record.ExperienceDistribution,
		Age:              record.AgeDistribution,
		ReliabilityScore: roundPercent(verified * 100 * 100 / categories),
		DataGaps:         gaps,
	}
}
