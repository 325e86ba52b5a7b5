package model

import "strings"

// RevisionFromName extracts the source revision from an artifact file name
// such as "LabKey20.3-65432.7-ClientAPI-Java.zip": the second hyphen-separated
// token, truncated at its first dot ("65432").
func RevisionFromName(name string) (string, bool) {
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return "", false
	}
	rev, _, _ := strings.Cut(parts[1], ".")
	return rev, true
}
