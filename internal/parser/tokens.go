package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dateRe          = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	evalPrefixRe    = regexp.MustCompile(`(?i)^Evaluación\s+\d+`)
	noiseRe         = regexp.MustCompile(`Obligatoria|Acum\.Opcional|Requisito de aprobación`)
	gradeSuffixRe   = regexp.MustCompile(`\d{1,2}\.\d$`)
	digitsRe        = regexp.MustCompile(`^\d+$`)
	leadingDigitsRe = regexp.MustCompile(`^\d+`)
	unitWeightRe    = regexp.MustCompile(`^\d{1,3}`)
	leadingFloatRe  = regexp.MustCompile(`^[+-]?\d+(?:[.,]\d+)?`)
	numericTokenRe  = regexp.MustCompile(`^\d+(?:[.,]\d+)?%?$`)
	unitMarkerRe    = regexp.MustCompile(`(.*?)(NO EXIGIBLE|EXIGIBLE)(.*)`)
	campusTagRe     = regexp.MustCompile(`\((?:CURICO|CURICÓ|TALCA|SANTIAGO|LINARES|COLCHAGUA|PEHUENCHE)\)\s*`)
	leadingDashRe   = regexp.MustCompile(`^\s*-\s*`)
	bareNumberRe    = regexp.MustCompile(`^\d+%?$`)
)

const (
	markerFamilyA      = "Area"
	markerUnitRequired = "EXIGIBLE"
	gateRequirement    = "Requisito de aprobación"
	defaultUnitName    = "Evaluaciones"
	defaultEvalName    = "Evaluación"
	headerVeto         = "Evaluación"
)

var markersFamilyB = []string{"Tipo", "Calidad", "Fecha de Prueba"}

// splitLines normalises raw clipboard text into trimmed, non-empty lines.
func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimSpace(part)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// findDate returns the first DD/MM/YYYY token in the line.
func findDate(line string) (string, bool) {
	date := dateRe.FindString(line)
	return date, date != ""
}

// splitOnDate mirrors a split on every occurrence of the anchor: the name is
// what precedes the first occurrence, the tail is what lies between the first
// and second.
func splitOnDate(line, date string) (before, after string) {
	parts := strings.Split(line, date)
	before = parts[0]
	if len(parts) > 1 {
		after = parts[1]
	}
	return before, after
}

func stripNoise(text string) string {
	return strings.TrimSpace(noiseRe.ReplaceAllString(text, ""))
}

func stripEvalPrefix(text string) string {
	return evalPrefixRe.ReplaceAllString(text, "")
}

// parseLeadingInt reads the leading digit run, defaulting to 0.
func parseLeadingInt(text string) int {
	digits := leadingDigitsRe.FindString(strings.TrimSpace(text))
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// parseGrade reads a leading decimal number, accepting a comma separator.
// Anything unparseable yields nil.
func parseGrade(text string) *float64 {
	raw := leadingFloatRe.FindString(strings.TrimSpace(text))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

// numericTokens returns the whitespace separated tokens that look like numbers.
func numericTokens(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if numericTokenRe.MatchString(field) {
			out = append(out, field)
		}
	}
	return out
}

// cleanCourseName removes campus tags and leading dashes from a header line.
func cleanCourseName(line string) string {
	name := campusTagRe.ReplaceAllString(line, "")
	name = leadingDashRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// plausibleCourseName rejects short or purely numeric headers such as "45%".
func plausibleCourseName(name string) bool {
	if len([]rune(name)) <= 3 {
		return false
	}
	return !bareNumberRe.MatchString(name)
}

func containsAll(line string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(line, token) {
			return false
		}
	}
	return true
}
