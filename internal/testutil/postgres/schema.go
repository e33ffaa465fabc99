package postgres

import (
	_ "embed"
	"regexp"
	"strings"
)

//go:embed schema.sql
var rawSchema string

var createPublicSchema = regexp.MustCompile(`(?i)CREATE SCHEMA public;`)

// Schema returns schema.sql ready for a fresh PostgreSQL container: the
// public schema already exists there and pg_dump banner lines are dropped.
func Schema() string {
	schema := createPublicSchema.ReplaceAllString(rawSchema, "")

	var filtered []string
	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-- Dumped from") ||
			strings.HasPrefix(trimmed, "-- Dumped by") ||
			strings.HasPrefix(trimmed, "-- PostgreSQL database dump") {
			continue
		}
		filtered = append(filtered, line)
	}

	return strings.Join(filtered, "\n")
}
