// Package source turns a directory of declaration files into compiler
// entries. Each file becomes one entry named after the file without its
// extension; unreadable or malformed files become entries carrying the
// error.
package source
