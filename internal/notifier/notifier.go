// Package notifier contains the announcement sinks the poll cycle delivers to.
// Sinks are interchangeable; the poll service only sees the Send contract.
package notifier

import "fmt"

// Render builds the announcement text. The source name, entry title and link
// must all appear; everything else is cosmetic.
func Render(sourceName, title, link string) string {
	return fmt.Sprintf("**%s**\n%s\n%s", title, sourceName, link)
}
