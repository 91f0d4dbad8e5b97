// Package template defines the template seam renderers rely on and a
// pongo2-backed implementation that loads templates from an fs.FS.
package template
