// Package html extracts the visible text of web pages.
// Non-content elements (scripts, styles, navigation, page headers and
// footers) are dropped and whitespace is collapsed to single spaces.
package html
