// Package normalize canonicalizes free-form bank-description and
// customer-name text for the matching engine (spec.md §4.A). It is a
// pure function with no I/O, clock, or randomness.
package normalize

import "strings"

// noiseWords is the closed set of tokens stripped after uppercasing
// and tokenizing (§4.A). Order does not matter; membership does.
var noiseWords = map[string]struct{}{
	"PAYMENT": {}, "DEPOSIT": {}, "TRANSFER": {}, "WITHDRAWAL": {},
	"CREDIT": {}, "DEBIT": {}, "CHK": {}, "CHECK": {}, "CHEQUE": {},
	"ACH": {}, "WIRE": {}, "EFT": {}, "ONLINE": {}, "ELECTRONIC": {},
	"EBANK": {}, "INTERNET": {}, "MOBILE": {}, "PMT": {}, "DEP": {},
	"TRF": {}, "TXN": {}, "REF": {}, "POS": {}, "FROM": {}, "TO": {},
	"FOR": {}, "THE": {}, "AND": {}, "PENDING": {}, "CLEARED": {},
	"POSTED": {}, "MEMO": {},
}

// Normalize canonicalizes s into an uppercase, space-joined token
// stream: uppercase -> replace non-alphanumeric with space -> split ->
// drop empty/noise tokens -> rejoin -> trim. Idempotent (§4.A,
// property 5 of §8): Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	upper := strings.ToUpper(s)

	cleaned := make([]rune, 0, len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cleaned = append(cleaned, r)
		} else {
			cleaned = append(cleaned, ' ')
		}
	}

	fields := strings.Fields(string(cleaned))
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if _, isNoise := noiseWords[tok]; isNoise {
			continue
		}
		tokens = append(tokens, tok)
	}

	return strings.TrimSpace(strings.Join(tokens, " "))
}
