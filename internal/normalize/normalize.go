// Package normalize is the single source of truth for credential text
// normalization.
//
// Use these helpers instead of scattered strings.ToLower / strings.TrimSpace
// calls. Every earlier revision of this product that re-derived its own
// cleaning rules per endpoint ended up with stored emails and password
// hashes written under slightly different rules — which is exactly why
// EmailCandidates and PasswordCandidates exist: login must stay compatible
// with rows created before the current rules were in effect.
//
// THE PROBLEM THIS SOLVES:
// Users paste credentials from notes apps and LINE messages. Those strings
// arrive with characters that *look* like spaces but aren't: no-break space
// (U+00A0), ideographic space (U+3000, the full-width space every Japanese
// IME inserts), zero-width space (U+200B), and friends. A password typed on
// a phone can also arrive in a different Unicode normalization form than the
// one it was hashed from. Without normalization, "password1<NBSP>" and
// "password1" hash differently and the user is locked out of their own
// account.
//
// PIPELINE (in order):
//  1. NFC — fold the string to the stable composed form, so "é" is one code
//     point regardless of how the client composed it. NFC, not NFKC: NFKC
//     would also rewrite full-width letters and other compatibility
//     characters, silently changing passwords that legitimately contain them.
//  2. Confusable whitespace mapping — the specific code points we have seen
//     in production, mapped to a plain space or removed (table below).
//  3. Trim — leading/trailing Unicode whitespace.
//  4. Lowercase — email only. Passwords are case-sensitive.
//
// Every step is pure and total; empty input normalizes to the empty string.
// The pipeline is idempotent: Email(Email(s)) == Email(s).
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// confusables maps whitespace-like code points observed in real input to
// their replacement. Rendering-width spaces become a plain space; zero-width
// characters vanish entirely.
//
// This table is additive. If support staff report a new confusable, add it
// here — never special-case it at a call site.
var confusables = map[rune]rune{
	' ': ' ', // no-break space
	'　': ' ', // ideographic (full-width) space
	'​': -1,  // zero-width space
	'‌': -1,  // zero-width non-joiner
	'‍': -1,  // zero-width joiner
	'⁠': -1,  // word joiner
	'\uFEFF': -1,  // byte-order mark / deprecated zero-width no-break space
}

// clean runs steps 1–3 of the pipeline: NFC, confusable mapping, trim.
func clean(raw string) string {
	s := norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := confusables[r]; ok {
			if repl >= 0 {
				b.WriteRune(repl)
			}
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// Email returns the canonical form of an email address: cleaned and
// lowercased. This is the form stored at signup and tried first at login.
func Email(raw string) string {
	return strings.ToLower(clean(raw))
}

// Password returns the canonical form of a password: cleaned but NOT
// lowercased. The hash stored at signup is always computed from this form.
func Password(raw string) string {
	return clean(raw)
}

// EmailCandidates returns the ordered, de-duplicated list of email forms to
// try when resolving a login against the store.
//
// Order matters and is part of the login contract:
//  1. Email(raw) — current canonical form; matches rows written by the
//     current revision.
//  2. strings.TrimSpace(raw) — the raw input merely trimmed, original case
//     preserved; matches legacy rows stored before lowercasing and
//     confusable mapping existed.
//
// The candidate list is additive: when a normalization rule changes,
// append the previous canonical form here rather than migrating rows.
func EmailCandidates(raw string) []string {
	return dedupe([]string{
		Email(raw),
		strings.TrimSpace(raw),
	})
}

// PasswordCandidates returns the ordered, de-duplicated list of password
// forms to verify against a stored hash.
//
// Raw comes FIRST: legacy rows were hashed from un-normalized input, and the
// common case (a well-formed password under either era) verifies on the
// first try. The normalized form comes second for rows written after
// normalization was introduced.
func PasswordCandidates(raw string) []string {
	return dedupe([]string{
		raw,
		Password(raw),
	})
}

// dedupe removes duplicates while preserving first-occurrence order.
// Candidate lists are tiny, so the quadratic scan is fine.
func dedupe(in []string) []string {
	out := in[:0]
	for _, s := range in {
		seen := false
		for _, prev := range out {
			if prev == s {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, s)
		}
	}
	return out
}
