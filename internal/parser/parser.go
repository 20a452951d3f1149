package parser

import "gtr/internal/domain"

// Parser turns the raw output of a test executable run into a ResultSet
type Parser interface {
	Parse(executable string, exitCode int, output string) *domain.ResultSet
}
