// Package main provides the entry point for the pressgen CLI.
//
// pressgen generates a post with a completion API, finds a featured image
// on Pexels and creates or updates the post on a WordPress site by slug.
//
// Usage:
//
//	pressgen publish
//	pressgen publish --slug my-post --title "My Post"
//	pressgen pages
//	pressgen history [slug]
//
// See --help for all available options.
package main

// main is the entry point for pressgen.
func main() {
	Execute()
}
