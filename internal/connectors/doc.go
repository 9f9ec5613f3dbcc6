// Package connectors finds and watches the local files docmind ingests.
package connectors
