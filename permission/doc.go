// Package permission maps portal roles to capability-string sets. The
// registry of known permission names and the role manager are populated
// during initialization and frozen before use.
package permission
