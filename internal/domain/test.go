package domain

// ValidationState is the outcome of checking an executable path
type ValidationState int

const (
	// Unvalidated means no path has been checked yet.
	Unvalidated ValidationState = iota
	// Valid means the path is an existing file the current user may execute.
	Valid
	// FileNotFound means the path does not resolve to an existing file.
	FileNotFound
	// InsufficientPrivileges means the file exists but is not executable by the current user.
	InsufficientPrivileges
)

func (s ValidationState) String() string {
	switch s {
	case Unvalidated:
		return "UNVALIDATED"
	case Valid:
		return "VALID"
	case FileNotFound:
		return "FILE_NOT_FOUND"
	case InsufficientPrivileges:
		return "INSUFFICIENT_PRIVILEGES"
	}
	return "UNKNOWN"
}

// ListingEntry is one suite of a parsed listing with its tests in input order
type ListingEntry struct {
	Suite string
	Tests []string
}

// QualifiedName joins a suite and test the way gtest addresses them ("Suite.Test")
func QualifiedName(suite, test string) string {
	if suite == "" {
		return test
	}
	return suite + "." + test
}
