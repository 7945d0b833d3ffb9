// Package build orchestrates pagesmith's three build modes.
//
// A Context is assembled once per invocation from the resolved configuration:
// site config, template set, image manifest, parser, renderer, change
// detection cache, slug ledger, metrics recorder and history store. A Builder
// drives one of:
//
//   - Clean removes generated output and invalidates the ledger.
//   - BuildFile re-renders a single source file when its content changed, or
//     removes its output when the file is gone.
//   - BuildAll renders every page, prunes stale page directories and
//     regenerates tag pages and the sitemap.
//
// Every mode returns a Report. Per-document problems are logged and counted;
// only configuration and template loading errors abort an invocation.
package build
