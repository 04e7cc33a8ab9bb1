package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// trialRecord is a normalized study ready for chunking. Sections keep their
// emission order so stored passages read top to bottom like the study page.
type trialRecord struct {
	NCTID    string
	Sections []trialSection
}

type trialSection struct {
	Name string
	Text string
}

var (
	markupPattern        = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	inclusionHeadPattern = regexp.MustCompile(`(?i)inclusion\s+criteria\s*:?`)
	exclusionHeadPattern = regexp.MustCompile(`(?i)exclusion\s+criteria\s*:?`)
)

// Normalize reshapes a Data API study into the flat section list the chunker
// and passage store work with. Studies without an NCT identifier are dropped
// by returning ok=false; empty sections are skipped.
func Normalize(study Study) (trialRecord, bool) {
	proto := study.ProtocolSection

	record := trialRecord{NCTID: strings.TrimSpace(proto.IdentificationModule.NCTID)}
	if record.NCTID == "" {
		return trialRecord{}, false
	}

	add := func(name, text string) {
		text = strings.TrimSpace(text)
		if text != "" {
			record.Sections = append(record.Sections, trialSection{Name: name, Text: text})
		}
	}

	add("title", firstNonEmpty(proto.IdentificationModule.BriefTitle, proto.IdentificationModule.OfficialTitle))
	add("overview", StripMarkup(proto.DescriptionModule.BriefSummary))
	add("description", StripMarkup(proto.DescriptionModule.DetailedDescription))
	add("conditions", strings.Join(compact(proto.ConditionsModule.Conditions), "; "))

	inclusion, exclusion := splitCriteria(StripMarkup(proto.EligibilityModule.EligibilityCriteria))
	add("eligibility.inclusion", inclusion)
	add("eligibility.exclusion", exclusion)
	add("eligibility.summary", eligibilitySummary(proto.EligibilityModule.Sex, proto.EligibilityModule.MinimumAge, proto.EligibilityModule.MaximumAge))

	var arms []string
	for _, arm := range proto.ArmsInterventionsModule.ArmGroups {
		arms = append(arms, labelled(arm.Label, arm.Description))
	}
	add("arms", strings.Join(arms, "\n"))

	var interventions []string
	for _, iv := range proto.ArmsInterventionsModule.Interventions {
		name := labelled(strings.ToUpper(iv.Type), iv.Name)
		interventions = append(interventions, labelled(name, iv.Description))
	}
	add("interventions", strings.Join(interventions, "\n"))

	var outcomes []string
	for _, outcome := range proto.OutcomesModule.PrimaryOutcomes {
		outcomes = append(outcomes, labelled(outcome.Measure, outcome.Description))
	}
	add("outcomes", strings.Join(outcomes, "\n"))

	add("sponsor", proto.SponsorCollaboratorsModule.LeadSponsor.Name)
	add("status", proto.StatusModule.OverallStatus)

	return record, true
}

// StripMarkup removes HTML tags from description text. Study descriptions
// occasionally carry markup fragments; plain text passes through untouched.
func StripMarkup(text string) string {
	if !markupPattern.MatchString(text) {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return markupPattern.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(doc.Text())
}

// splitCriteria separates a combined eligibility criteria block into its
// inclusion and exclusion parts using the standard headings. Text before an
// "Inclusion Criteria" heading, or a block with no headings at all, counts
// as inclusion.
func splitCriteria(text string) (inclusion, exclusion string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	exclusionLoc := exclusionHeadPattern.FindStringIndex(text)
	if exclusionLoc == nil {
		return stripHeading(text, inclusionHeadPattern), ""
	}

	inclusion = stripHeading(text[:exclusionLoc[0]], inclusionHeadPattern)
	exclusion = strings.TrimSpace(text[exclusionLoc[1]:])
	return inclusion, exclusion
}

func stripHeading(text string, heading *regexp.Regexp) string {
	if loc := heading.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

func eligibilitySummary(sex, minAge, maxAge string) string {
	var parts []string
	if sex != "" {
		parts = append(parts, "Sex: "+sex)
	}
	if minAge != "" {
		parts = append(parts, "Minimum age: "+minAge)
	}
	if maxAge != "" {
		parts = append(parts, "Maximum age: "+maxAge)
	}
	return strings.Join(parts, ". ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// labelled joins "Label: detail", dropping whichever side is empty.
func labelled(label, detail string) string {
	label = strings.TrimSpace(label)
	detail = strings.TrimSpace(detail)
	switch {
	case label == "":
		return detail
	case detail == "":
		return label
	default:
		return label + ": " + detail
	}
}
