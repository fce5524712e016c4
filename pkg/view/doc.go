// Package view orchestrates template rendering. A View picks an engine by
// template extension, constructs engines lazily bound to itself and its
// service locator, caches the output of the last Render for layouts
// (content()) and renders partials on behalf of engines.
package view
