// Package uniuri generates random alphanumeric strings for generated secrets,
// passwords and session identifiers.
package uniuri
