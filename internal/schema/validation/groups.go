package validation

import (
	"fmt"
	"strings"
)

var operationGroupSuffixes = map[string]string{
	"Post":  "create",
	"Patch": "update",
	"Put":   "replace",
}

// GroupFor maps an operation kind to the validation group applied to it:
// "{resource}:create" for Post, ":update" for Patch, ":replace" for Put and
// the lower-case kind otherwise.
func GroupFor(operation, resource string) string {
	suffix, ok := operationGroupSuffixes[operation]
	if !ok {
		suffix = strings.ToLower(operation)
	}
	return fmt.Sprintf("%s:%s", strings.ToLower(resource), suffix)
}
