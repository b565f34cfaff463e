package adhandler

import "strings"

/*
common.go carries the small set of string helpers shared across this
package.
*/

func lc(s string) string { return strings.ToLower(s) }
