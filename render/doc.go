// Package render turns templates and event data into message text.
package render
