// Package enrich provides optional pure-function text enrichment: shorthand
// auto-correction, tone detection and emoji suggestions. Consumers apply it
// at display time; nothing in the message contract depends on it.
package enrich
