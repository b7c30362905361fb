//go:build debug

package transform

const invariantChecks = true
