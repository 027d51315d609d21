package errors

import (
	"fmt"
	"strings"
)

// SuggestFieldName suggests the closest declared field for an unknown key.
// It uses Levenshtein distance to find similar field names.
func SuggestFieldName(unknown string, validFields []string) string {
	if len(validFields) == 0 {
		return ""
	}

	if best, ok := closest(unknown, validFields); ok {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}

	if len(validFields) > 5 {
		return fmt.Sprintf("Valid fields include: %s, ...", strings.Join(validFields[:5], ", "))
	}
	return fmt.Sprintf("Valid fields: %s", strings.Join(validFields, ", "))
}

// SuggestValue suggests the closest allowed value of an enumeration or a
// union tag. It returns "" when nothing is close enough; the violation
// message already lists the allowed set.
func SuggestValue(got string, allowed []string) string {
	if best, ok := closest(got, allowed); ok {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return ""
}

// SuggestMissingField suggests adding a required field.
func SuggestMissingField(fieldName string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s' to the declaration", fieldName, exampleValue)
	}
	return fmt.Sprintf("Add '%s' field to the declaration", fieldName)
}

// closest returns the candidate with the smallest edit distance when that
// distance is below 5 and at most half the length of word.
func closest(word string, candidates []string) (string, bool) {
	minDistance := 1000
	var bestMatch string

	for _, c := range candidates {
		dist := levenshteinDistance(word, c)
		if dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	if minDistance < 5 && minDistance*2 <= len(word) {
		return bestMatch, true
	}
	return "", false
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	prev := make([]int, len2+1)
	curr := make([]int, len2+1)
	for j := 0; j <= len2; j++ {
		prev[j] = j
	}

	for i := 1; i <= len1; i++ {
		curr[0] = i
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len2]
}
