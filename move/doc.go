// Package move reads Move package manifests and turns a Move package directory into the
// metadata and bytecode that a publish transaction uploads.
//
// Packages are built with the Aptos CLI (see CLIBuilder) or loaded from a payload file that
// was produced ahead of time (see LoadPayloadFile).
package move
